package config

import (
	"os"
	"strconv"

	"github.com/JaimeStill/counsel/internal/actions"
)

const EnvUrgencyFallbackDays = "COUNSEL_URGENCY_FALLBACK_DAYS"

// UrgencyConfig overrides the default action-item alert windows. Windows is keyed by
// action item kind; FallbackDays applies to every kind.
type UrgencyConfig struct {
	Windows      map[string]int `toml:"windows"`
	FallbackDays int            `toml:"fallback_days"`
}

// Policy builds the urgency policy described by the config.
func (c *UrgencyConfig) Policy() (actions.Policy, error) {
	base := actions.DefaultPolicy()
	base.FallbackDays = c.FallbackDays
	return base.WithWindows(c.Windows)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *UrgencyConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	_, err := c.Policy()
	return err
}

// Merge overwrites non-zero fields from overlay. Window overrides are merged per kind.
func (c *UrgencyConfig) Merge(overlay *UrgencyConfig) {
	if overlay.FallbackDays != 0 {
		c.FallbackDays = overlay.FallbackDays
	}
	if len(overlay.Windows) > 0 && c.Windows == nil {
		c.Windows = make(map[string]int, len(overlay.Windows))
	}
	for k, v := range overlay.Windows {
		c.Windows[k] = v
	}
}

func (c *UrgencyConfig) loadDefaults() {
	if c.FallbackDays == 0 {
		c.FallbackDays = actions.DefaultFallbackDays
	}
}

func (c *UrgencyConfig) loadEnv() {
	if v := os.Getenv(EnvUrgencyFallbackDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FallbackDays = n
		}
	}
}
