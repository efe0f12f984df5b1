// Package actions extracts time-sensitive obligations from model output and decides
// which of them warrant an alert.
package actions

import (
	"strings"
	"time"
)

// Kind is the obligation type of an action item.
type Kind string

const (
	KindExpiration   Kind = "expiration"
	KindPaymentDue   Kind = "payment_due"
	KindAuditDue     Kind = "audit_due"
	KindRenewal      Kind = "renewal"
	KindNoticePeriod Kind = "notice_period"
	KindOther        Kind = "other"
)

var kinds = []Kind{
	KindExpiration,
	KindPaymentDue,
	KindAuditDue,
	KindRenewal,
	KindNoticePeriod,
	KindOther,
}

// Kinds returns every recognized kind.
func Kinds() []Kind {
	return kinds
}

// ParseKind maps a model-supplied type onto a Kind. Unrecognized values are KindOther.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range kinds {
		if k == known {
			return k
		}
	}
	return KindOther
}

// Label is the upper-case display form used in alerts.
func (k Kind) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(k), "_", " "))
}

// Priority ranks an action item.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority maps a model-supplied priority onto a Priority, defaulting to medium.
func ParsePriority(s string) Priority {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityMedium
	}
}

// Item is one time-qualified obligation found in a contract.
//
// DueDate is display text. When the model supplied a YYYY-MM-DD date, Due holds the
// parsed date and DaysUntilDue the locally computed day count; a date recovered from
// free text sets DueDate only.
type Item struct {
	Kind           Kind       `json:"kind"`
	Description    string     `json:"description"`
	DueDate        string     `json:"due_date,omitempty"`
	Due            *time.Time `json:"due,omitempty"`
	DaysUntilDue   *int       `json:"days_until_due,omitempty"`
	Priority       Priority   `json:"priority"`
	ActionRequired string     `json:"action_required,omitempty"`
	SourceContract string     `json:"source_contract"`
}
