package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/counsel/pkg/database"
	"github.com/JaimeStill/counsel/pkg/generate"
	"github.com/JaimeStill/counsel/pkg/ledger"
	"github.com/JaimeStill/counsel/pkg/notify"
	"github.com/JaimeStill/counsel/pkg/store"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCounselEnv             = "COUNSEL_ENV"
	EnvCounselShutdownTimeout = "COUNSEL_SHUTDOWN_TIMEOUT"
	EnvCounselVersion         = "COUNSEL_VERSION"
)

var storeEnv = &store.Env{
	Backend:               "COUNSEL_STORE_BACKEND",
	Account:               "COUNSEL_STORE_ACCOUNT",
	AzureContainerName:    "COUNSEL_STORE_AZURE_CONTAINER_NAME",
	AzureConnectionString: "COUNSEL_STORE_AZURE_CONNECTION_STRING",
	AzureServiceURL:       "COUNSEL_STORE_AZURE_SERVICE_URL",
	S3Bucket:              "COUNSEL_STORE_S3_BUCKET",
	S3Region:              "COUNSEL_STORE_S3_REGION",
	S3Endpoint:            "COUNSEL_STORE_S3_ENDPOINT",
}

var ledgerEnv = &ledger.Env{
	Backend:     "COUNSEL_LEDGER_BACKEND",
	MaxAttempts: "COUNSEL_LEDGER_MAX_ATTEMPTS",
	MaxEntries:  "COUNSEL_LEDGER_MAX_ENTRIES",
	RedisURL:    "COUNSEL_LEDGER_REDIS_URL",
	RedisTTL:    "COUNSEL_LEDGER_REDIS_TTL",
	Database: &database.Env{
		Driver:          "COUNSEL_DB_DRIVER",
		Path:            "COUNSEL_DB_PATH",
		Host:            "COUNSEL_DB_HOST",
		Port:            "COUNSEL_DB_PORT",
		Name:            "COUNSEL_DB_NAME",
		User:            "COUNSEL_DB_USER",
		Password:        "COUNSEL_DB_PASSWORD",
		SSLMode:         "COUNSEL_DB_SSL_MODE",
		MaxOpenConns:    "COUNSEL_DB_MAX_OPEN_CONNS",
		MaxIdleConns:    "COUNSEL_DB_MAX_IDLE_CONNS",
		ConnMaxLifetime: "COUNSEL_DB_CONN_MAX_LIFETIME",
		ConnTimeout:     "COUNSEL_DB_CONN_TIMEOUT",
	},
}

var modelEnv = &generate.Env{
	Provider:     "COUNSEL_MODEL_PROVIDER",
	Model:        "COUNSEL_MODEL_NAME",
	APIKey:       "COUNSEL_MODEL_API_KEY",
	BaseURL:      "COUNSEL_MODEL_BASE_URL",
	Region:       "COUNSEL_MODEL_REGION",
	AccessKey:    "COUNSEL_MODEL_ACCESS_KEY",
	SecretKey:    "COUNSEL_MODEL_SECRET_KEY",
	SessionToken: "COUNSEL_MODEL_SESSION_TOKEN",
	MaxTokens:    "COUNSEL_MODEL_MAX_TOKENS",
	Temperature:  "COUNSEL_MODEL_TEMPERATURE",
}

var notifyEnv = &notify.Env{
	Backend:   "COUNSEL_NOTIFY_BACKEND",
	TopicARN:  "COUNSEL_NOTIFY_TOPIC_ARN",
	Region:    "COUNSEL_NOTIFY_REGION",
	Recipient: "COUNSEL_NOTIFY_RECIPIENT",
}

// Config is the root configuration for the counsel service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	API             APIConfig        `toml:"api"`
	Store           store.Config     `toml:"store"`
	Ledger          ledger.Config    `toml:"ledger"`
	Model           generate.Config  `toml:"model"`
	Notify          notify.Config    `toml:"notify"`
	Render          RenderConfig     `toml:"render"`
	Taxonomy        TaxonomyConfig   `toml:"taxonomy"`
	Monitor         MonitorConfig    `toml:"monitor"`
	Processing      ProcessingConfig `toml:"processing"`
	Urgency         UrgencyConfig    `toml:"urgency"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the COUNSEL_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCounselEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Store.Merge(&overlay.Store)
	c.Ledger.Merge(&overlay.Ledger)
	c.Model.Merge(&overlay.Model)
	c.Notify.Merge(&overlay.Notify)
	c.Render.Merge(&overlay.Render)
	c.Taxonomy.Merge(&overlay.Taxonomy)
	c.Monitor.Merge(&overlay.Monitor)
	c.Processing.Merge(&overlay.Processing)
	c.Urgency.Merge(&overlay.Urgency)
}

// Finalize applies defaults, environment overrides, and validation to the root
// config and every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"api", c.API.Finalize},
		{"store", func() error { return c.Store.Finalize(storeEnv) }},
		{"ledger", func() error { return c.Ledger.Finalize(ledgerEnv) }},
		{"model", func() error { return c.Model.Finalize(modelEnv) }},
		{"notify", func() error { return c.Notify.Finalize(notifyEnv) }},
		{"render", c.Render.Finalize},
		{"taxonomy", c.Taxonomy.Finalize},
		{"monitor", c.Monitor.Finalize},
		{"processing", c.Processing.Finalize},
		{"urgency", c.Urgency.Finalize},
	}

	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCounselShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCounselVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCounselEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
