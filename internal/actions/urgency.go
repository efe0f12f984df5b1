package actions

import (
	"fmt"
	"maps"
)

// DefaultFallbackDays is the day count at or below which any item is urgent.
const DefaultFallbackDays = 5

// Policy decides urgency from an item's kind and day count.
type Policy struct {
	// Windows holds the inclusive urgent window in days for each listed kind.
	Windows map[Kind]int
	// FallbackDays makes any item with DaysUntilDue <= FallbackDays urgent,
	// including overdue items.
	FallbackDays int
}

// DefaultPolicy returns the standard alert windows.
func DefaultPolicy() Policy {
	return Policy{
		Windows: map[Kind]int{
			KindExpiration:   10,
			KindAuditDue:     5,
			KindPaymentDue:   14,
			KindRenewal:      10,
			KindNoticePeriod: 7,
		},
		FallbackDays: DefaultFallbackDays,
	}
}

// WithWindows returns a copy of p with the given per-kind windows replaced.
func (p Policy) WithWindows(windows map[string]int) (Policy, error) {
	out := Policy{
		Windows:      maps.Clone(p.Windows),
		FallbackDays: p.FallbackDays,
	}
	if out.Windows == nil {
		out.Windows = make(map[Kind]int)
	}

	for name, days := range windows {
		k := ParseKind(name)
		if string(k) != name || k == KindOther {
			return Policy{}, fmt.Errorf("unknown action item kind %q", name)
		}
		if days < 0 {
			return Policy{}, fmt.Errorf("window for %s must be non-negative", name)
		}
		out.Windows[k] = days
	}

	return out, nil
}

// IsUrgent reports whether item needs an alert. Items without a day count are never urgent.
func (p Policy) IsUrgent(item Item) bool {
	if item.DaysUntilDue == nil {
		return false
	}
	days := *item.DaysUntilDue

	if days <= p.FallbackDays {
		return true
	}

	window, ok := p.Windows[item.Kind]
	return ok && days >= 0 && days <= window
}

// FilterUrgent returns the urgent items in input order.
func (p Policy) FilterUrgent(items []Item) []Item {
	var urgent []Item
	for _, item := range items {
		if p.IsUrgent(item) {
			urgent = append(urgent, item)
		}
	}
	return urgent
}
