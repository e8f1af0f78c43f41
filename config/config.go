// Package config holds the daemon configuration: a flat YAML file with
// defaults for every field, so an empty or absent file yields a runnable
// setup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the daemon configuration.
type Config struct {
	Server struct {
		Port            int   `yaml:"port"`
		MaxRequestBytes int64 `yaml:"max_request_bytes"`
	} `yaml:"server"`
	Storage struct {
		Root         string `yaml:"root"`
		MaxBlobBytes int64  `yaml:"max_blob_bytes"`
	} `yaml:"storage"`
	Cache struct {
		// Address is a Redis host:port. Empty disables caching.
		Address    string `yaml:"address"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.MaxRequestBytes = 1 << 20
	cfg.Storage.Root = "data"
	cfg.Storage.MaxBlobBytes = 1 << 20
	cfg.Cache.TTLSeconds = 300
	cfg.Log.Level = "info"
	return &cfg
}

// Load reads the configuration from a YAML file, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Re-apply defaults for fields an explicit zero value would break.
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxRequestBytes <= 0 {
		cfg.Server.MaxRequestBytes = 1 << 20
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = "data"
	}
	if cfg.Storage.MaxBlobBytes <= 0 {
		cfg.Storage.MaxBlobBytes = 1 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}
