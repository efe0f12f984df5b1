package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/JaimeStill/counsel/pkg/repository"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE items (name TEXT PRIMARY KEY, n INTEGER NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		query  string
		want   string
	}{
		{"postgres", "postgres", "SELECT a FROM t WHERE k = ? AND n > ?", "SELECT a FROM t WHERE k = $1 AND n > $2"},
		{"sqlite untouched", "sqlite", "SELECT a FROM t WHERE k = ?", "SELECT a FROM t WHERE k = ?"},
		{"no placeholders", "postgres", "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.Rebind(tt.driver, tt.query); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryOne(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `INSERT INTO items (name, n) VALUES (?, ?)`, "a", 7); err != nil {
		t.Fatal(err)
	}

	scanN := func(s repository.Scanner) (int, error) {
		var n int
		err := s.Scan(&n)
		return n, err
	}

	n, err := repository.QueryOne(ctx, db, `SELECT n FROM items WHERE name = ?`, []any{"a"}, scanN)
	if err != nil {
		t.Fatalf("query one: %v", err)
	}
	if n != 7 {
		t.Errorf("got %d, want 7", n)
	}

	_, err = repository.QueryOne(ctx, db, `SELECT n FROM items WHERE name = ?`, []any{"z"}, scanN)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing row: got %v, want sql.ErrNoRows", err)
	}
}
