package config

import "errors"

var (
	// ErrNotFound indicates the configuration file does not exist.
	ErrNotFound = errors.New("config: configuration file not found")

	// ErrInvalidPort indicates the port is outside 1-65535.
	ErrInvalidPort = errors.New("config: invalid port")

	// ErrEmptyRoot indicates the storage root path is empty.
	ErrEmptyRoot = errors.New("config: storage root must not be empty")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrInvalidCacheAddr indicates the cache address is malformed.
	ErrInvalidCacheAddr = errors.New("config: invalid cache address")

	// ErrInvalidTTL indicates the cache TTL is negative.
	ErrInvalidTTL = errors.New("config: cache TTL must not be negative")
)
