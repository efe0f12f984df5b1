package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Supported store backends.
const (
	BackendMemory = "memory"
	BackendAzure  = "azure"
	BackendS3     = "s3"
)

// Config selects and parameterizes the document store backend.
type Config struct {
	Backend string      `toml:"backend"`
	Account string      `toml:"account"`
	Azure   AzureConfig `toml:"azure"`
	S3      S3Config    `toml:"s3"`
}

// AzureConfig holds Azure Blob Storage connection parameters.
type AzureConfig struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
}

// S3Config holds Amazon S3 connection parameters. Endpoint is only set for
// S3-compatible services.
type S3Config struct {
	Bucket   string `toml:"bucket"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend               string
	Account               string
	AzureContainerName    string
	AzureConnectionString string
	AzureServiceURL       string
	S3Bucket              string
	S3Region              string
	S3Endpoint            string
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
	if overlay.Account != "" {
		c.Account = overlay.Account
	}
	if overlay.Azure.ContainerName != "" {
		c.Azure.ContainerName = overlay.Azure.ContainerName
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.ServiceURL != "" {
		c.Azure.ServiceURL = overlay.Azure.ServiceURL
	}
	if overlay.S3.Bucket != "" {
		c.S3.Bucket = overlay.S3.Bucket
	}
	if overlay.S3.Region != "" {
		c.S3.Region = overlay.S3.Region
	}
	if overlay.S3.Endpoint != "" {
		c.S3.Endpoint = overlay.S3.Endpoint
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Azure.ContainerName == "" {
		c.Azure.ContainerName = "contracts"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Backend, &c.Backend)
	set(env.Account, &c.Account)
	set(env.AzureContainerName, &c.Azure.ContainerName)
	set(env.AzureConnectionString, &c.Azure.ConnectionString)
	set(env.AzureServiceURL, &c.Azure.ServiceURL)
	set(env.S3Bucket, &c.S3.Bucket)
	set(env.S3Region, &c.S3.Region)
	set(env.S3Endpoint, &c.S3.Endpoint)
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendAzure:
		if c.Azure.ConnectionString == "" && c.Azure.ServiceURL == "" {
			return fmt.Errorf("azure: connection_string or service_url required")
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3: bucket required")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// New creates the System selected by cfg.Backend.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendAzure:
		return NewAzure(&cfg.Azure, cfg.Account, logger)
	case BackendS3:
		return NewS3(ctx, &cfg.S3, cfg.Account, logger)
	case BackendMemory:
		return NewMemory(cfg.Account, logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
