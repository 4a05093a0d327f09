package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand path
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	// Read file
	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'guidematch config init' to create)", expandedPath)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Parse TOML
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Expand paths in config
	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the config file if it exists, otherwise returns defaults.
func LoadOrDefault(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.expandPaths(); err != nil {
			return nil, fmt.Errorf("failed to expand paths: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	var err error

	c.History.Path, err = expandPath(c.History.Path)
	if err != nil {
		return err
	}

	c.Output.MatchesPath, err = expandPath(c.Output.MatchesPath)
	if err != nil {
		return err
	}

	c.Output.DetailedPath, err = expandPath(c.Output.DetailedPath)
	if err != nil {
		return err
	}

	c.Output.WeightsPath, err = expandPath(c.Output.WeightsPath)
	if err != nil {
		return err
	}

	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Embedding validation
	if c.Embedding.Endpoint == "" {
		errs = append(errs, errors.New("embedding.endpoint is required"))
	}
	if c.Embedding.TimeoutSeconds < 1 || c.Embedding.TimeoutSeconds > 600 {
		errs = append(errs, errors.New("embedding.timeout_seconds must be between 1 and 600"))
	}

	// History validation
	if c.History.Path == "" {
		errs = append(errs, errors.New("history.path is required"))
	}

	// Output validation
	if c.Output.MatchesPath == "" {
		errs = append(errs, errors.New("output.matches_path is required"))
	}
	if c.Output.WeightsPath == "" {
		errs = append(errs, errors.New("output.weights_path is required"))
	}

	// Learn validation
	if c.Learn.MinEvents < 1 {
		errs = append(errs, errors.New("learn.min_events must be at least 1"))
	}
	if c.Learn.MinPositive < 1 {
		errs = append(errs, errors.New("learn.min_positive must be at least 1"))
	}

	return errors.Join(errs...)
}
