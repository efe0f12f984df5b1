package actions_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/counsel/internal/actions"
)

func TestNewAlert(t *testing.T) {
	items := []actions.Item{
		{
			Kind:           actions.KindPaymentDue,
			Description:    "Quarterly payment",
			DueDate:        "2025-01-15",
			DaysUntilDue:   days(5),
			Priority:       actions.PriorityHigh,
			ActionRequired: "Pay invoice",
			SourceContract: "lease",
		},
		{
			Kind:           actions.KindOther,
			Description:    "Deliver report",
			SourceContract: "sow",
		},
	}

	alert := actions.NewAlert(items)

	if alert.Subject != "Contract Action Items - 2 Urgent Item(s)" {
		t.Errorf("subject: %q", alert.Subject)
	}

	for _, want := range []string{
		"You have 2 urgent action item(s) requiring attention:",
		"1. PAYMENT DUE",
		"Contract: lease",
		"Due Date: 2025-01-15",
		"Days Until Due: 5",
		"Priority: HIGH",
		"Action Required: Pay invoice",
		"2. OTHER",
		"Due Date: N/A",
		"Days Until Due: N/A",
		"Priority: MEDIUM",
		"Action Required: Review contract",
		"automated notification",
	} {
		if !strings.Contains(alert.Body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
