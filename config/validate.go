package config

import (
	"fmt"
	"net"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that all configuration values are within acceptable ranges
// and returns the first error encountered, or nil if valid.
func (cfg *Config) Validate() error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Server.Port)
	}

	if cfg.Storage.Root == "" {
		return ErrEmptyRoot
	}

	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return ErrInvalidLogLevel
	}

	if cfg.Cache.Address != "" {
		if _, _, err := net.SplitHostPort(cfg.Cache.Address); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCacheAddr, err)
		}
	}

	if cfg.Cache.TTLSeconds < 0 {
		return ErrInvalidTTL
	}

	return nil
}
