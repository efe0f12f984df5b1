package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/counsel/pkg/formatting"
)

const (
	EnvProcessingClassifyExcerpt    = "COUNSEL_PROCESSING_CLASSIFY_EXCERPT"
	EnvProcessingContextExcerpt     = "COUNSEL_PROCESSING_CONTEXT_EXCERPT"
	EnvProcessingActionItemsExcerpt = "COUNSEL_PROCESSING_ACTION_ITEMS_EXCERPT"
	EnvProcessingConcurrency        = "COUNSEL_PROCESSING_CONCURRENCY"
	EnvProcessingMaxContractSize    = "COUNSEL_PROCESSING_MAX_CONTRACT_SIZE"
)

// ProcessingConfig bounds how much contract text reaches the model and how many
// artifact generations run at once for a single contract.
type ProcessingConfig struct {
	ClassifyExcerpt    int    `toml:"classify_excerpt"`
	ContextExcerpt     int    `toml:"context_excerpt"`
	ActionItemsExcerpt int    `toml:"action_items_excerpt"`
	Concurrency        int    `toml:"concurrency"`
	MaxContractSize    string `toml:"max_contract_size"`
}

// MaxContractSizeBytes returns MaxContractSize in bytes.
func (c *ProcessingConfig) MaxContractSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxContractSize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ProcessingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ProcessingConfig) Merge(overlay *ProcessingConfig) {
	if overlay.ClassifyExcerpt != 0 {
		c.ClassifyExcerpt = overlay.ClassifyExcerpt
	}
	if overlay.ContextExcerpt != 0 {
		c.ContextExcerpt = overlay.ContextExcerpt
	}
	if overlay.ActionItemsExcerpt != 0 {
		c.ActionItemsExcerpt = overlay.ActionItemsExcerpt
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.MaxContractSize != "" {
		c.MaxContractSize = overlay.MaxContractSize
	}
}

func (c *ProcessingConfig) loadDefaults() {
	if c.ClassifyExcerpt == 0 {
		c.ClassifyExcerpt = 3000
	}
	if c.ContextExcerpt == 0 {
		c.ContextExcerpt = 5000
	}
	if c.ActionItemsExcerpt == 0 {
		c.ActionItemsExcerpt = 5000
	}
	if c.Concurrency == 0 {
		c.Concurrency = 3
	}
	if c.MaxContractSize == "" {
		c.MaxContractSize = "10MB"
	}
}

func (c *ProcessingConfig) loadEnv() {
	ints := map[string]*int{
		EnvProcessingClassifyExcerpt:    &c.ClassifyExcerpt,
		EnvProcessingContextExcerpt:     &c.ContextExcerpt,
		EnvProcessingActionItemsExcerpt: &c.ActionItemsExcerpt,
		EnvProcessingConcurrency:        &c.Concurrency,
	}
	for name, dst := range ints {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	if v := os.Getenv(EnvProcessingMaxContractSize); v != "" {
		c.MaxContractSize = v
	}
}

func (c *ProcessingConfig) validate() error {
	if c.ClassifyExcerpt < 1 || c.ContextExcerpt < 1 || c.ActionItemsExcerpt < 1 {
		return fmt.Errorf("excerpt limits must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if _, err := formatting.ParseBytes(c.MaxContractSize); err != nil {
		return fmt.Errorf("invalid max_contract_size: %w", err)
	}
	return nil
}
