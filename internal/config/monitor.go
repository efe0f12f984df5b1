package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvMonitorPollInterval  = "COUNSEL_MONITOR_POLL_INTERVAL"
	EnvMonitorSweepInterval = "COUNSEL_MONITOR_SWEEP_INTERVAL"
)

// MonitorConfig holds the polling cadence of the monitoring loop.
type MonitorConfig struct {
	PollInterval  string `toml:"poll_interval"`
	SweepInterval string `toml:"sweep_interval"`
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *MonitorConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (c *MonitorConfig) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// SweepEvery returns the number of discovery passes between action-item sweeps.
func (c *MonitorConfig) SweepEvery() int {
	return max(1, int(c.SweepIntervalDuration()/c.PollIntervalDuration()))
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MonitorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *MonitorConfig) Merge(overlay *MonitorConfig) {
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
}

func (c *MonitorConfig) loadDefaults() {
	if c.PollInterval == "" {
		c.PollInterval = "60s"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1h"
	}
}

func (c *MonitorConfig) loadEnv() {
	if v := os.Getenv(EnvMonitorPollInterval); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv(EnvMonitorSweepInterval); v != "" {
		c.SweepInterval = v
	}
}

func (c *MonitorConfig) validate() error {
	poll, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if poll <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	sweep, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return fmt.Errorf("invalid sweep_interval: %w", err)
	}
	if sweep <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	return nil
}
