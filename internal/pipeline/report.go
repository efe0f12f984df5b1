package pipeline

import (
	"time"

	"github.com/JaimeStill/counsel/internal/actions"
	"github.com/JaimeStill/counsel/internal/contracts"
)

// OutcomeStatus summarizes how one contract's processing ended.
type OutcomeStatus string

const (
	// StatusCompleted means all three artifacts were generated and uploaded.
	StatusCompleted OutcomeStatus = "completed"
	// StatusDegraded means all three artifacts were uploaded but at least one is a placeholder.
	StatusDegraded OutcomeStatus = "degraded"
	// StatusFailed means the contract was abandoned before its artifact set was uploaded.
	StatusFailed OutcomeStatus = "failed"
)

// Outcome records the processing result for one contract.
type Outcome struct {
	contracts.Identity
	Category     contracts.Category `json:"category,omitempty"`
	Status       OutcomeStatus      `json:"status"`
	Artifacts    []string           `json:"artifacts,omitempty"`
	Placeholders int                `json:"placeholders"`
	Attempts     int                `json:"attempts"`
	Error        string             `json:"error,omitempty"`
}

// Report summarizes one discovery pass.
type Report struct {
	PassID     string        `json:"pass_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Discovered int           `json:"discovered"`
	Skipped    int           `json:"skipped"`
	Outcomes   []Outcome     `json:"outcomes"`
}

// Processed returns the number of contracts handled in the pass.
func (r *Report) Processed() int {
	return len(r.Outcomes)
}

// SweepReport summarizes one action-item sweep.
type SweepReport struct {
	SweepID   string         `json:"sweep_id"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Scanned   int            `json:"scanned"`
	Failed    []string       `json:"failed,omitempty"`
	Items     int            `json:"items"`
	Urgent    []actions.Item `json:"urgent,omitempty"`
	Notified  bool           `json:"notified"`
	Recipient string         `json:"recipient,omitempty"`
	Error     string         `json:"error,omitempty"`
}
