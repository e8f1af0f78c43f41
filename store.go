// Package jsonstore provides a keyed JSON-blob store over the local
// filesystem: clients present a key naming a pre-provisioned namespace
// directory and put/get/list JSON documents inside it.
//
// # Design
//
// Blobs live at <root>/<key>/<sanitized-filename>.json, one file per blob,
// the file's bytes being exactly the serialized JSON document. Filenames are
// sanitized before any path is built, which removes path-traversal capability
// by construction: separators and dots never survive into the joined path.
//
// Why namespaces are never auto-created: a key acts as a pre-provisioned
// identifier, not a credential. Treating an absent namespace as a reportable
// condition instead of something to fix keeps provisioning an explicit,
// out-of-band step.
//
// # Usage
//
//	store, err := jsonstore.New("/data")
//	if err != nil {
//		return err
//	}
//
//	err = store.Put(ctx, "users", "cfg", map[string]int{"a": 1})
//
//	raw, err := store.Get(ctx, "users", "cfg")
//
//	names, err := store.List(ctx, "users")
//
// # Concurrency
//
// All operations are safe for concurrent use. Writes go through a temporary
// file in the namespace directory followed by an atomic rename, so readers
// observe either the previous or the new content, never a partial write.
// Concurrent writes to the same blob race at the filesystem level and the
// last completed rename wins.
//
// # Error Handling
//
// Every failure is reported as a value wrapping one of the package's
// sentinel errors and can be matched with errors.Is.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is a stateless-behavior handle over an injected root directory.
// Keys are sanitized with the same character rules as filenames, so
// namespace directories must be provisioned under their sanitized names.
type Store struct {
	root string
	opts *Options
}

// New creates a Store rooted at root, creating the root directory if it does
// not exist. Namespace directories below the root are never created here.
func New(root string, opts ...OptionFunc) (*Store, error) {
	// Copy default options to avoid mutating the global default.
	options := &Options{
		FileMode:    defaultOpts.FileMode,
		DirMode:     defaultOpts.DirMode,
		MaxBlobSize: defaultOpts.MaxBlobSize,
	}

	for _, opt := range opts {
		opt(options)
	}

	root = filepath.Clean(root)
	if err := os.MkdirAll(root, options.DirMode); err != nil {
		return nil, fmt.Errorf("creating root directory: %w", err)
	}

	return &Store{
		root: root,
		opts: options,
	}, nil
}

// Put serializes data and stores it under (key, filename), fully replacing
// any previous content at that path. The size bound is enforced before
// anything touches disk.
//
// Why temp file: writing to a temporary file in the namespace directory and
// renaming it into place makes the write atomic from the caller's
// perspective - a failed or partial write is never visible as the blob.
func (s *Store) Put(ctx context.Context, key, filename string, data any) error {
	nsPath, err := s.namespacePath(key)
	if err != nil {
		return err
	}

	name := SanitizeFilename(filename)
	if name == "" {
		return fmt.Errorf("filename %q: %w", filename, ErrInvalidName)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	if int64(len(payload)) > s.opts.MaxBlobSize {
		return fmt.Errorf("%d bytes: %w", len(payload), ErrTooLarge)
	}

	return s.writeBlob(nsPath, name, payload)
}

func (s *Store) writeBlob(nsPath, name string, payload []byte) error {
	// Temp name carries no .json suffix, so List never observes it.
	tmp, err := os.CreateTemp(nsPath, ".put-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmpPath := tmp.Name()

	// Clean up on any failure; after a successful rename the temp path
	// no longer exists and the remove is a no-op.
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := tmp.Chmod(s.opts.FileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(nsPath, name)); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return nil
}

// Get reads the blob stored under (key, filename) and returns its content.
// The filename goes through the same sanitization as Put, so the two resolve
// identical raw names to the identical path. Content larger than the size
// bound fails with ErrTooLarge, protecting against files grown out-of-band.
func (s *Store) Get(ctx context.Context, key, filename string) (json.RawMessage, error) {
	if filename == "" {
		return nil, fmt.Errorf("empty filename: %w", ErrInvalidName)
	}

	nsPath, err := s.namespacePath(key)
	if err != nil {
		return nil, err
	}

	name := SanitizeFilename(filename)
	if name == "" {
		return nil, fmt.Errorf("filename %q: %w", filename, ErrInvalidName)
	}

	path := filepath.Join(nsPath, name)
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if fi.Size() > s.opts.MaxBlobSize {
		return nil, fmt.Errorf("%d bytes: %w", fi.Size(), ErrTooLarge)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if int64(len(content)) > s.opts.MaxBlobSize {
		return nil, fmt.Errorf("%d bytes: %w", len(content), ErrTooLarge)
	}

	if !json.Valid(content) {
		return nil, fmt.Errorf("blob %q: %w", name, ErrInvalidContent)
	}

	return json.RawMessage(content), nil
}

// List enumerates the blobs directly inside the key's namespace directory:
// regular files carrying the canonical suffix, sorted lexicographically
// ascending. Sub-directories and foreign files are skipped.
func (s *Store) List(ctx context.Context, key string) ([]string, error) {
	nsPath, err := s.namespacePath(key)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(nsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), Suffix) {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	return names, nil
}

// NamespaceExists reports whether the key's namespace directory exists.
// A cheap probe for callers that do not want to attempt an operation.
func (s *Store) NamespaceExists(key string) bool {
	if key == "" {
		return false
	}
	name := SanitizeKey(key)
	if name == "" {
		return false
	}

	fi, err := os.Stat(filepath.Join(s.root, name))
	return err == nil && fi.IsDir()
}

// namespacePath resolves key to its directory below the root. The key gets
// the same character sanitization as filenames; a key that sanitizes to
// nothing is invalid, and an absent directory is reported, never created.
func (s *Store) namespacePath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key: %w", ErrInvalidName)
	}

	name := SanitizeKey(key)
	if name == "" {
		return "", fmt.Errorf("key %q: %w", key, ErrInvalidName)
	}

	path := filepath.Join(s.root, name)
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return "", fmt.Errorf("namespace %q: %w", name, ErrNamespaceNotFound)
	}

	return path, nil
}
