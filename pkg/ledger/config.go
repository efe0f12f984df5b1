package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/counsel/pkg/database"
)

// Supported ledger backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// Config selects the ledger backend and its retry budget.
type Config struct {
	Backend     string          `toml:"backend"`
	MaxAttempts int             `toml:"max_attempts"`
	MaxEntries  int             `toml:"max_entries"`
	AutoMigrate bool            `toml:"auto_migrate"`
	Database    database.Config `toml:"database"`
	Redis       RedisConfig     `toml:"redis"`
}

// RedisConfig holds Redis connection parameters for the redis backend.
type RedisConfig struct {
	URL       string `toml:"url"`
	KeyPrefix string `toml:"key_prefix"`
	TTL       string `toml:"ttl"`
}

// TTLDuration returns TTL as a time.Duration. An empty TTL disables expiry.
func (c *RedisConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend     string
	MaxAttempts string
	MaxEntries  string
	RedisURL    string
	RedisTTL    string
	Database    *database.Env
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	if err := c.validate(); err != nil {
		return err
	}

	switch c.Backend {
	case BackendPostgres, BackendSQLite:
		c.Database.Driver = c.Backend
		if c.Backend == BackendSQLite && c.Database.Path == "" {
			c.Database.Path = "counsel-ledger.db"
		}
		var dbEnv *database.Env
		if env != nil {
			dbEnv = env.Database
		}
		if err := c.Database.Finalize(dbEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.MaxEntries != 0 {
		c.MaxEntries = overlay.MaxEntries
	}
	if overlay.AutoMigrate {
		c.AutoMigrate = true
	}
	if overlay.Redis.URL != "" {
		c.Redis.URL = overlay.Redis.URL
	}
	if overlay.Redis.KeyPrefix != "" {
		c.Redis.KeyPrefix = overlay.Redis.KeyPrefix
	}
	if overlay.Redis.TTL != "" {
		c.Redis.TTL = overlay.Redis.TTL
	}
	c.Database.Merge(&overlay.Database)
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 1
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "counsel:ledger:"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = v
		}
	}
	if env.MaxAttempts != "" {
		if v := os.Getenv(env.MaxAttempts); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxAttempts = n
			}
		}
	}
	if env.MaxEntries != "" {
		if v := os.Getenv(env.MaxEntries); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxEntries = n
			}
		}
	}
	if env.RedisURL != "" {
		if v := os.Getenv(env.RedisURL); v != "" {
			c.Redis.URL = v
		}
	}
	if env.RedisTTL != "" {
		if v := os.Getenv(env.RedisTTL); v != "" {
			c.Redis.TTL = v
		}
	}
}

func (c *Config) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1: %d", c.MaxAttempts)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("max_entries must not be negative: %d", c.MaxEntries)
	}

	switch c.Backend {
	case BackendMemory, BackendPostgres, BackendSQLite:
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis url required")
		}
		if c.Redis.TTL != "" {
			if _, err := time.ParseDuration(c.Redis.TTL); err != nil {
				return fmt.Errorf("invalid redis ttl: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// New creates the Ledger selected by cfg.Backend.
func New(cfg *Config, logger *slog.Logger) (Ledger, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(cfg.MaxEntries, logger), nil
	case BackendRedis:
		return NewRedis(cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.Redis.TTLDuration(), logger)
	case BackendPostgres, BackendSQLite:
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		var migrateURL string
		if cfg.AutoMigrate {
			migrateURL = cfg.Database.URL()
		}
		return NewSQL(db, migrateURL, logger), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
