package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/counsel/pkg/render"
)

const (
	EnvRenderMirror      = "COUNSEL_RENDER_MIRROR"
	EnvRenderRedline     = "COUNSEL_RENDER_REDLINE"
	EnvRenderNegotiation = "COUNSEL_RENDER_NEGOTIATION"
)

// RenderConfig selects the document format of each generated artifact.
type RenderConfig struct {
	Mirror      string `toml:"mirror"`
	Redline     string `toml:"redline"`
	Negotiation string `toml:"negotiation"`
}

// Formats returns the parsed mirror, redline, and negotiation formats.
func (c *RenderConfig) Formats() (mirror, redline, negotiation render.Format) {
	mirror, _ = render.ParseFormat(c.Mirror)
	redline, _ = render.ParseFormat(c.Redline)
	negotiation, _ = render.ParseFormat(c.Negotiation)
	return mirror, redline, negotiation
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RenderConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RenderConfig) Merge(overlay *RenderConfig) {
	if overlay.Mirror != "" {
		c.Mirror = overlay.Mirror
	}
	if overlay.Redline != "" {
		c.Redline = overlay.Redline
	}
	if overlay.Negotiation != "" {
		c.Negotiation = overlay.Negotiation
	}
}

func (c *RenderConfig) loadDefaults() {
	if c.Mirror == "" {
		c.Mirror = string(render.FormatDOCX)
	}
	if c.Redline == "" {
		c.Redline = string(render.FormatPDF)
	}
	if c.Negotiation == "" {
		c.Negotiation = string(render.FormatDOCX)
	}
}

func (c *RenderConfig) loadEnv() {
	if v := os.Getenv(EnvRenderMirror); v != "" {
		c.Mirror = v
	}
	if v := os.Getenv(EnvRenderRedline); v != "" {
		c.Redline = v
	}
	if v := os.Getenv(EnvRenderNegotiation); v != "" {
		c.Negotiation = v
	}
}

func (c *RenderConfig) validate() error {
	for name, v := range map[string]string{
		"mirror":      c.Mirror,
		"redline":     c.Redline,
		"negotiation": c.Negotiation,
	} {
		if _, err := render.ParseFormat(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
