package jsonstore

import "os"

// DefaultMaxBlobSize bounds serialized blob content on both the write and
// the read path. 1 MiB, matching the transport's request body cap.
const DefaultMaxBlobSize = 1 << 20

// Options configures Store behavior.
type Options struct {
	FileMode    os.FileMode // Permission bits for blob files
	DirMode     os.FileMode // Permission bits for the root directory
	MaxBlobSize int64       // Maximum serialized blob size in bytes
}

// OptionFunc is a functional option for configuring a Store.
type OptionFunc func(opts *Options)

// WithFileMode sets the file permission mode for blob files.
// Default is 0644 (owner read/write, group and others read-only).
func WithFileMode(mode os.FileMode) OptionFunc {
	return func(opts *Options) {
		opts.FileMode = mode
	}
}

// WithDirMode sets the directory permission mode used when creating the
// storage root. Default is 0755 (owner read/write/execute, group and others
// read/execute).
func WithDirMode(mode os.FileMode) OptionFunc {
	return func(opts *Options) {
		opts.DirMode = mode
	}
}

// WithMaxBlobSize sets the maximum serialized blob size in bytes, enforced
// before any write touches disk and again when reading content back.
// Non-positive values are ignored and the default is kept.
func WithMaxBlobSize(n int64) OptionFunc {
	return func(opts *Options) {
		if n > 0 {
			opts.MaxBlobSize = n
		}
	}
}

// defaultOpts provides sensible default options.
// Why these defaults: 0644 for files allows owner to modify, others to read.
// 0755 for directories allows traversal while protecting against modification.
var defaultOpts = &Options{
	FileMode:    0644,
	DirMode:     0755,
	MaxBlobSize: DefaultMaxBlobSize,
}
