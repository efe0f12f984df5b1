// Package ledger records which contracts have already produced output so that each
// contract identity is processed at most once. Backends: an in-process map with an
// optional size cap, a SQL table (PostgreSQL or SQLite), and Redis hashes with a TTL.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

// ErrEmptyKey indicates a lookup or record against an empty identity key.
var ErrEmptyKey = errors.New("ledger key must not be empty")

// Entry is the recorded processing history for one contract identity.
type Entry struct {
	Key       string    `json:"key"`
	Attempts  int       `json:"attempts"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settled reports whether the entry should be skipped: it completed, or its failed
// attempts have used up maxAttempts. A maxAttempts below 1 is treated as 1.
func (e Entry) Settled(maxAttempts int) bool {
	if e.Completed {
		return true
	}
	return e.Attempts >= max(maxAttempts, 1)
}

// Ledger is the persistent or in-process seen-set consulted before processing a contract.
type Ledger interface {
	// Start registers connection and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Lookup returns the entry for key. The boolean is false when key was never recorded.
	Lookup(ctx context.Context, key string) (Entry, bool, error)
	// Record counts one processing attempt for key. A completed attempt settles the entry
	// permanently; a failed one only increments the attempt count.
	Record(ctx context.Context, key string, completed bool) (Entry, error)
	// Backend names the storage backend for status reporting.
	Backend() string
}

// Cycler is implemented by ledgers that bound their size by discovery cycle. Callers
// begin a cycle before the lookups of each pass; entries touched during the current
// cycle are retained.
type Cycler interface {
	BeginCycle()
}
