package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	EnvTaxonomyIntakeFolder    = "COUNSEL_TAXONOMY_INTAKE_FOLDER"
	EnvTaxonomyOutputFolder    = "COUNSEL_TAXONOMY_OUTPUT_FOLDER"
	EnvTaxonomyInterestsFolder = "COUNSEL_TAXONOMY_INTERESTS_FOLDER"
	EnvTaxonomyInterestsFile   = "COUNSEL_TAXONOMY_INTERESTS_FILE"
	EnvTaxonomyExtensions      = "COUNSEL_TAXONOMY_EXTENSIONS"
)

// TaxonomyConfig names the folders and files that make up the store layout.
type TaxonomyConfig struct {
	IntakeFolder    string   `toml:"intake_folder"`
	OutputFolder    string   `toml:"output_folder"`
	InterestsFolder string   `toml:"interests_folder"`
	InterestsFile   string   `toml:"interests_file"`
	SidecarSuffix   string   `toml:"sidecar_suffix"`
	MirrorSuffix    string   `toml:"mirror_suffix"`
	Extensions      []string `toml:"extensions"`
}

// MirrorFolder returns the output folder name for a contract.
func (c *TaxonomyConfig) MirrorFolder(contract string) string {
	return contract + c.MirrorSuffix
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *TaxonomyConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *TaxonomyConfig) Merge(overlay *TaxonomyConfig) {
	if overlay.IntakeFolder != "" {
		c.IntakeFolder = overlay.IntakeFolder
	}
	if overlay.OutputFolder != "" {
		c.OutputFolder = overlay.OutputFolder
	}
	if overlay.InterestsFolder != "" {
		c.InterestsFolder = overlay.InterestsFolder
	}
	if overlay.InterestsFile != "" {
		c.InterestsFile = overlay.InterestsFile
	}
	if overlay.SidecarSuffix != "" {
		c.SidecarSuffix = overlay.SidecarSuffix
	}
	if overlay.MirrorSuffix != "" {
		c.MirrorSuffix = overlay.MirrorSuffix
	}
	if len(overlay.Extensions) > 0 {
		c.Extensions = overlay.Extensions
	}
}

func (c *TaxonomyConfig) loadDefaults() {
	if c.IntakeFolder == "" {
		c.IntakeFolder = "Smart_Contracts"
	}
	if c.OutputFolder == "" {
		c.OutputFolder = "protect_your_interests"
	}
	if c.InterestsFolder == "" {
		c.InterestsFolder = "my_interests"
	}
	if c.InterestsFile == "" {
		c.InterestsFile = "MY_INTERESTS.txt"
	}
	if c.SidecarSuffix == "" {
		c.SidecarSuffix = ".instructions"
	}
	if c.MirrorSuffix == "" {
		c.MirrorSuffix = "_mirror"
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".pdf", ".doc", ".docx", ".txt"}
	}
}

func (c *TaxonomyConfig) loadEnv() {
	if v := os.Getenv(EnvTaxonomyIntakeFolder); v != "" {
		c.IntakeFolder = v
	}
	if v := os.Getenv(EnvTaxonomyOutputFolder); v != "" {
		c.OutputFolder = v
	}
	if v := os.Getenv(EnvTaxonomyInterestsFolder); v != "" {
		c.InterestsFolder = v
	}
	if v := os.Getenv(EnvTaxonomyInterestsFile); v != "" {
		c.InterestsFile = v
	}
	if v := os.Getenv(EnvTaxonomyExtensions); v != "" {
		c.Extensions = strings.Split(v, ",")
	}
}

func (c *TaxonomyConfig) validate() error {
	for name, folder := range map[string]string{
		"intake_folder":    c.IntakeFolder,
		"output_folder":    c.OutputFolder,
		"interests_folder": c.InterestsFolder,
	} {
		if strings.Contains(folder, "/") {
			return fmt.Errorf("%s must be a single folder name: %q", name, folder)
		}
	}

	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return fmt.Errorf("empty extension")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext == c.SidecarSuffix {
			return fmt.Errorf("extension %s collides with sidecar_suffix", ext)
		}
		c.Extensions[i] = ext
	}
	return nil
}
