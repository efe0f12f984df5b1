package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Supported notifier backends.
const (
	BackendLog = "log"
	BackendSNS = "sns"
)

// Config selects the alert delivery backend.
type Config struct {
	Backend   string `toml:"backend"`
	TopicARN  string `toml:"topic_arn"`
	Region    string `toml:"region"`
	Recipient string `toml:"recipient"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend   string
	TopicARN  string
	Region    string
	Recipient string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.TopicARN != "" {
		c.TopicARN = overlay.TopicARN
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Recipient != "" {
		c.Recipient = overlay.Recipient
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendLog
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = v
		}
	}
	if env.TopicARN != "" {
		if v := os.Getenv(env.TopicARN); v != "" {
			c.TopicARN = v
		}
	}
	if env.Region != "" {
		if v := os.Getenv(env.Region); v != "" {
			c.Region = v
		}
	}
	if env.Recipient != "" {
		if v := os.Getenv(env.Recipient); v != "" {
			c.Recipient = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendLog:
	case BackendSNS:
		if c.TopicARN == "" {
			return fmt.Errorf("topic_arn required for sns")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// New creates the Notifier selected by cfg.Backend. The log backend writes to w.
func New(ctx context.Context, cfg *Config, w io.Writer, logger *slog.Logger) (Notifier, error) {
	switch cfg.Backend {
	case BackendSNS:
		return NewSNS(ctx, cfg.TopicARN, cfg.Region, logger)
	case BackendLog:
		return NewLog(w, logger), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
}
