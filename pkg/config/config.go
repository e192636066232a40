// Package config loads storey's run configuration from a YAML file, a
// .env file and STOREY_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/storey/pkg/engine"
	"github.com/chazu/storey/pkg/floor"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load.
const (
	EnvConfig      = "STOREY_CONFIG"
	EnvScript      = "STOREY_SCRIPT"
	EnvProject     = "STOREY_PROJECT"
	EnvOutDir      = "STOREY_OUT_DIR"
	EnvStartHeight = "STOREY_START_HEIGHT"
	EnvTolerance   = "STOREY_TOLERANCE"
	EnvCacheSize   = "STOREY_CACHE_SIZE"
)

// Config is the run configuration.
type Config struct {
	Script      string  `yaml:"script"`       // DSL script to evaluate
	Project     string  `yaml:"project"`      // YAML project file, alternative to Script
	OutDir      string  `yaml:"out_dir"`      // where STL files are written
	StartHeight string  `yaml:"start_height"` // highest, lowest or last
	Tolerance   float64 `yaml:"tolerance"`    // face height matching tolerance
	CacheSize   int     `yaml:"cache_size"`   // evaluated scripts remembered by the engine
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		OutDir:      "out",
		StartHeight: floor.HighestFace.String(),
		Tolerance:   floor.DefaultHeightTolerance,
		CacheSize:   engine.DefaultCacheSize,
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path falls back to STOREY_CONFIG; when
// that is empty too only defaults and environment are used. A .env file in
// the working directory is loaded if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvScript)); v != "" {
		c.Script = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvProject)); v != "" {
		c.Project = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutDir)); v != "" {
		c.OutDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStartHeight)); v != "" {
		c.StartHeight = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTolerance)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTolerance, err)
		}
		c.Tolerance = f
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvCacheSize, err)
		}
		c.CacheSize = n
	}
	return nil
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Script != "" && c.Project != "" {
		errs = append(errs, errors.New("config: script and project are mutually exclusive"))
	}
	if c.OutDir == "" {
		errs = append(errs, errors.New("config: out_dir is empty"))
	}
	if _, err := floor.ParseStartHeightRule(c.StartHeight); err != nil {
		errs = append(errs, err)
	}
	if c.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("config: tolerance %g is negative", c.Tolerance))
	}
	if c.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("config: cache_size %d must be positive", c.CacheSize))
	}
	return errors.Join(errs...)
}

// Rule returns the parsed start height rule. Call Validate first.
func (c *Config) Rule() floor.StartHeightRule {
	r, _ := floor.ParseStartHeightRule(c.StartHeight)
	return r
}
