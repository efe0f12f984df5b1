package actions

import (
	"fmt"
	"strconv"
	"strings"
)

// Alert is the single notification sent for a batch of urgent items.
type Alert struct {
	Subject string
	Body    string
}

// NewAlert formats one notification covering every item in urgent.
func NewAlert(urgent []Item) Alert {
	var b strings.Builder

	b.WriteString("Contract Action Items Alert\n\n")
	fmt.Fprintf(&b, "You have %d urgent action item(s) requiring attention:\n\n", len(urgent))

	for i, item := range urgent {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Kind.Label())
		fmt.Fprintf(&b, "   Contract: %s\n", item.SourceContract)
		fmt.Fprintf(&b, "   Description: %s\n", item.Description)
		fmt.Fprintf(&b, "   Due Date: %s\n", orNA(item.DueDate))

		days := "N/A"
		if item.DaysUntilDue != nil {
			days = strconv.Itoa(*item.DaysUntilDue)
		}
		fmt.Fprintf(&b, "   Days Until Due: %s\n", days)

		priority := item.Priority
		if priority == "" {
			priority = PriorityMedium
		}
		fmt.Fprintf(&b, "   Priority: %s\n", strings.ToUpper(string(priority)))

		action := item.ActionRequired
		if action == "" {
			action = "Review contract"
		}
		fmt.Fprintf(&b, "   Action Required: %s\n\n", action)
	}

	b.WriteString("This is an automated notification from the Contract Protection System.\n")

	return Alert{
		Subject: fmt.Sprintf("Contract Action Items - %d Urgent Item(s)", len(urgent)),
		Body:    b.String(),
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
