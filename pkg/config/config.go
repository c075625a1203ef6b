// Package config loads default build flags for the axm CLI from an
// optional YAML file, so a publishing pipeline issuing repeated `axm build
// compile` invocations doesn't need to repeat the same namespace,
// publisher identity, and key path on every call.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds default CLI flag values. Explicit flags always override
// these when both are present.
type Config struct {
	Namespace     string `yaml:"namespace"`
	PublisherID   string `yaml:"publisher_id"`
	PublisherName string `yaml:"publisher_name"`
	KeyPath       string `yaml:"key_path"`
}

// Load reads a YAML config file from path. A missing file is not an error:
// it returns a zero-value Config so callers fall back to flag defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// StringOr returns flagValue if non-empty, otherwise fallback. Used to
// layer explicit CLI flags over config-file defaults.
func StringOr(flagValue, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	return fallback
}
