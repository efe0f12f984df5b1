package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/counsel/pkg/database"
	"github.com/JaimeStill/counsel/pkg/lifecycle"
	"github.com/JaimeStill/counsel/pkg/repository"
)

const (
	lookupQuery = `
SELECT identity_key, attempts, completed, updated_at
FROM ledger_entries
WHERE identity_key = ?`

	recordQuery = `
INSERT INTO ledger_entries (identity_key, attempts, completed, updated_at)
VALUES (?, 1, ?, ?)
ON CONFLICT (identity_key) DO UPDATE SET
    attempts = ledger_entries.attempts + 1,
    completed = ledger_entries.completed OR excluded.completed,
    updated_at = excluded.updated_at
RETURNING attempts, completed`
)

// SQL is a Ledger backed by the ledger_entries table. The upsert makes each Record
// atomic, so concurrent processes sharing the database agree on attempt counts.
type SQL struct {
	db         database.System
	migrateURL string
	now        func() time.Time
	logger     *slog.Logger
	lookupStmt string
	recordStmt string
}

// NewSQL creates a SQL ledger over db. When migrateURL is non-empty the schema is
// migrated during startup.
func NewSQL(db database.System, migrateURL string, logger *slog.Logger) *SQL {
	driver := db.Driver()
	return &SQL{
		db:         db,
		migrateURL: migrateURL,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With("system", "ledger", "backend", driver),
		lookupStmt: repository.Rebind(driver, lookupQuery),
		recordStmt: repository.Rebind(driver, recordQuery),
	}
}

func (s *SQL) Backend() string { return s.db.Driver() }

func (s *SQL) Start(lc *lifecycle.Coordinator) error {
	if err := s.db.Start(lc); err != nil {
		return fmt.Errorf("start database: %w", err)
	}

	if s.migrateURL == "" {
		return nil
	}

	lc.OnStartup(func() {
		if err := Migrate(s.migrateURL); err != nil {
			s.logger.Error("ledger migration failed", "error", err)
			return
		}
		s.logger.Info("ledger schema current")
	})

	return nil
}

func (s *SQL) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrEmptyKey
	}

	e, err := repository.QueryOne(ctx, s.db.Connection(), s.lookupStmt, []any{key}, scanEntry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("lookup %s: %w", key, err)
	}
	return e, true, nil
}

func (s *SQL) Record(ctx context.Context, key string, completed bool) (Entry, error) {
	if key == "" {
		return Entry{}, ErrEmptyKey
	}

	now := s.now()
	e := Entry{Key: key, UpdatedAt: now}

	err := s.db.Connection().
		QueryRowContext(ctx, s.recordStmt, key, completed, now).
		Scan(&e.Attempts, &e.Completed)
	if err != nil {
		return Entry{}, fmt.Errorf("record %s: %w", key, err)
	}

	return e, nil
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e         Entry
		updatedAt sql.NullTime
	)
	if err := s.Scan(&e.Key, &e.Attempts, &e.Completed, &updatedAt); err != nil {
		return Entry{}, err
	}
	e.UpdatedAt = updatedAt.Time
	return e, nil
}
