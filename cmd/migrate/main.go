package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/pkg/ledger"
)

const envURL = "COUNSEL_DB_URL"

func main() {
	var (
		url     = flag.String("url", "", "Ledger database URL (postgres:// or sqlite://)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	if *url == "" {
		*url = os.Getenv(envURL)
	}
	if *url == "" {
		*url = configuredURL()
	}
	if *url == "" {
		log.Fatalf("no ledger database: pass -url, set %s, or configure a sql ledger backend", envURL)
	}

	m, err := ledger.NewMigrator(*url)
	if err != nil {
		log.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("failed to get version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			log.Fatalf("failed to force version: %v", err)
		}
		fmt.Printf("forced to version %d\n", *force)
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run up migrations: %v", err)
		}
		fmt.Println("migrations applied successfully")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run down migrations: %v", err)
		}
		fmt.Println("migrations reverted successfully")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("failed to run migrations: %v", err)
		}
		fmt.Printf("applied %d migration steps\n", *steps)
	default:
		fmt.Println("usage: migrate [-url <database-url>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}

// configuredURL returns the ledger database URL from the service configuration when
// the ledger uses a SQL backend.
func configuredURL() string {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("config not loaded: %v", err)
		return ""
	}
	switch cfg.Ledger.Backend {
	case ledger.BackendPostgres, ledger.BackendSQLite:
		return cfg.Ledger.Database.URL()
	}
	return ""
}
