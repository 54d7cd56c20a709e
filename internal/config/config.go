// Package config loads nomadkit settings from an optional HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// DefaultPath is looked up in the working directory when --config is unset.
const DefaultPath = "nomadkit.hcl"

// DefaultBaseURL is the public NOMAD v1 API.
const DefaultBaseURL = "https://nomad-lab.eu/prod/v1/api/v1"

// Config holds all nomadkit configuration.
type Config struct {
	Archive *Archive `hcl:"archive,block"`
	Plot    *Plot    `hcl:"plot,block"`
}

// Archive configures the Archive Service client.
type Archive struct {
	BaseURL string `hcl:"base_url,optional"`
	// Timeout is a Go duration string, e.g. "30s".
	Timeout string `hcl:"timeout,optional"`
}

// Plot configures SVG output.
type Plot struct {
	Width  int `hcl:"width,optional"`
	Height int `hcl:"height,optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Archive: &Archive{
			BaseURL: DefaultBaseURL,
			Timeout: "60s",
		},
		Plot: &Plot{
			Width:  1000,
			Height: 700,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
		cfg.applyEnvOverrides()
		return cfg, cfg.Validate()
	}

	var file Config
	if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.merge(&file)
	cfg.applyEnvOverrides()

	return cfg, cfg.Validate()
}

func (c *Config) merge(file *Config) {
	if a := file.Archive; a != nil {
		if a.BaseURL != "" {
			c.Archive.BaseURL = a.BaseURL
		}
		if a.Timeout != "" {
			c.Archive.Timeout = a.Timeout
		}
	}
	if p := file.Plot; p != nil {
		if p.Width > 0 {
			c.Plot.Width = p.Width
		}
		if p.Height > 0 {
			c.Plot.Height = p.Height
		}
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NOMADKIT_BASE_URL"); v != "" {
		c.Archive.BaseURL = v
	}
	if v := os.Getenv("NOMADKIT_TIMEOUT"); v != "" {
		c.Archive.Timeout = v
	}
}

// Validate checks values that HCL cannot type.
func (c *Config) Validate() error {
	if c.Archive.BaseURL == "" {
		return fmt.Errorf("archive.base_url must not be empty")
	}
	if _, err := c.Archive.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout.
func (a *Archive) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("archive.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("archive.timeout must be positive, got %s", a.Timeout)
	}
	return d, nil
}
