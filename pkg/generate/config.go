package generate

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported providers.
const (
	ProviderBedrock   = "bedrock"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Config holds model provider parameters and default sampling settings.
type Config struct {
	Provider          string  `toml:"provider"`
	Model             string  `toml:"model"`
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Region            string  `toml:"region"`
	AccessKey         string  `toml:"access_key"`
	SecretKey         string  `toml:"secret_key"`
	SessionToken      string  `toml:"session_token"`
	MaxTokens         int     `toml:"max_tokens"`
	Temperature       float64 `toml:"temperature"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
	Timeout           string  `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string
	Region       string
	AccessKey    string
	SecretKey    string
	SessionToken string
	MaxTokens    string
	Temperature  string
}

// Options returns the default per-call sampling options.
func (c *Config) Options() Options {
	return Options{MaxTokens: c.MaxTokens, Temperature: float32(c.Temperature)}
}

// TimeoutDuration returns Timeout as a time.Duration. Zero means no per-call timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.AccessKey != "" {
		c.AccessKey = overlay.AccessKey
	}
	if overlay.SecretKey != "" {
		c.SecretKey = overlay.SecretKey
	}
	if overlay.SessionToken != "" {
		c.SessionToken = overlay.SessionToken
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.RequestsPerMinute != 0 {
		c.RequestsPerMinute = overlay.RequestsPerMinute
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderBedrock
	}
	if c.Model == "" {
		c.Model = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 8192
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
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

	set(env.Provider, &c.Provider)
	set(env.Model, &c.Model)
	set(env.APIKey, &c.APIKey)
	set(env.BaseURL, &c.BaseURL)
	set(env.Region, &c.Region)
	set(env.AccessKey, &c.AccessKey)
	set(env.SecretKey, &c.SecretKey)
	set(env.SessionToken, &c.SessionToken)

	if env.MaxTokens != "" {
		if v := os.Getenv(env.MaxTokens); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxTokens = n
			}
		}
	}
	if env.Temperature != "" {
		if v := os.Getenv(env.Temperature); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Temperature = f
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderBedrock:
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("api_key required for %s", c.Provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("invalid max_tokens: %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("invalid temperature: %v", c.Temperature)
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}
	return nil
}
