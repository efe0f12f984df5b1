package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerEnabled      = "COUNSEL_SERVER_ENABLED"
	EnvServerHost         = "COUNSEL_SERVER_HOST"
	EnvServerPort         = "COUNSEL_SERVER_PORT"
	EnvServerReadTimeout  = "COUNSEL_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout = "COUNSEL_SERVER_WRITE_TIMEOUT"
	EnvServerDrainTimeout = "COUNSEL_SERVER_DRAIN_TIMEOUT"
)

// ServerConfig holds the operator HTTP surface parameters. The write timeout bounds
// synchronous /process and /sweep requests, so it defaults well above a typical pass.
type ServerConfig struct {
	Enabled      *bool  `toml:"enabled"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
	DrainTimeout string `toml:"drain_timeout"`
}

// Serving reports whether the HTTP surface should start. It is on unless disabled.
func (c *ServerConfig) Serving() bool {
	return c.Enabled == nil || *c.Enabled
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// DrainTimeoutDuration is how long in-flight requests get to finish on shutdown.
func (c *ServerConfig) DrainTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DrainTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.ReadTimeout != "" {
		c.ReadTimeout = overlay.ReadTimeout
	}
	if overlay.WriteTimeout != "" {
		c.WriteTimeout = overlay.WriteTimeout
	}
	if overlay.DrainTimeout != "" {
		c.DrainTimeout = overlay.DrainTimeout
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8470
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "30s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "30m"
	}
	if c.DrainTimeout == "" {
		c.DrainTimeout = "10s"
	}
}

func (c *ServerConfig) loadEnv() error {
	if v := os.Getenv(EnvServerEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvServerEnabled, err)
		}
		c.Enabled = &enabled
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvServerPort, err)
		}
		c.Port = port
	}

	for env, dst := range map[string]*string{
		EnvServerHost:         &c.Host,
		EnvServerReadTimeout:  &c.ReadTimeout,
		EnvServerWriteTimeout: &c.WriteTimeout,
		EnvServerDrainTimeout: &c.DrainTimeout,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	timeouts := []struct{ name, value string }{
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
		{"drain_timeout", c.DrainTimeout},
	}
	for _, t := range timeouts {
		if d, err := time.ParseDuration(t.value); err != nil {
			return fmt.Errorf("invalid %s: %w", t.name, err)
		} else if d <= 0 {
			return fmt.Errorf("%s must be positive: %s", t.name, t.value)
		}
	}
	return nil
}
