package jsonstore

import "errors"

var (
	// ErrNamespaceNotFound indicates the key's namespace directory does not
	// exist. Namespaces are provisioned out-of-band and never created by
	// store operations.
	ErrNamespaceNotFound = errors.New("jsonstore: namespace not found")

	// ErrNotFound indicates no blob exists for the sanitized filename.
	ErrNotFound = errors.New("jsonstore: blob not found")

	// ErrInvalidContent indicates the blob file exists but does not hold
	// valid JSON.
	ErrInvalidContent = errors.New("jsonstore: blob content is not valid JSON")

	// ErrTooLarge indicates the serialized or read content exceeds the
	// configured maximum blob size.
	ErrTooLarge = errors.New("jsonstore: blob exceeds maximum size")

	// ErrInvalidName indicates a key or filename that sanitizes to an empty
	// string.
	ErrInvalidName = errors.New("jsonstore: invalid name")

	// ErrIO indicates a filesystem read/write/enumerate failure.
	ErrIO = errors.New("jsonstore: I/O failure")

	// ErrEncoding indicates JSON serialization of a payload failed.
	ErrEncoding = errors.New("jsonstore: JSON encoding failed")
)
