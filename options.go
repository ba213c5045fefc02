package tmod

import (
	"log/slog"

	"github.com/campbellcole/tmod-unpacker/internal/container"
)

const (
	// DefaultMaxEntrySize is the default per-entry size limit (256MB).
	DefaultMaxEntrySize = container.DefaultMaxEntrySize

	// DefaultReadAheadBytes caps payload bytes held by concurrent workers (64MB).
	DefaultReadAheadBytes = 64 << 20
)

type config struct {
	logger       *slog.Logger
	progress     ProgressFunc
	maxEntrySize int64
	verifyHash   bool
}

// Option configures an Archive.
type Option func(*config)

// WithLogger sets the logger for reading and extraction.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProgress sets a callback for table reads and extraction.
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) {
		c.progress = fn
	}
}

// WithMaxEntrySize limits the compressed and uncompressed size of every entry.
// Set limit to 0 to disable the limit.
func WithMaxEntrySize(limit int64) Option {
	return func(c *config) {
		c.maxEntrySize = limit
	}
}

// WithVerifyHash checks the header hash and data length during Extract.
//
// For random access sources the check runs before anything is written.
// For streams it runs after the last payload, since the hash covers the
// whole stream.
func WithVerifyHash(enabled bool) Option {
	return func(c *config) {
		c.verifyHash = enabled
	}
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	workers        int
	readAheadBytes int64
	allowUnsafe    bool
	directWrite    bool
	filter         func(name string) bool
}

// ExtractWithWorkers sets the number of concurrent workers for random access
// sources. Values < 0 force serial processing. Zero uses GOMAXPROCS.
// Stream-backed archives are always extracted serially.
func ExtractWithWorkers(n int) ExtractOption {
	return func(c *extractConfig) {
		c.workers = n
	}
}

// ExtractWithReadAheadBytes caps the payload bytes held in memory by
// concurrent workers. A value of 0 disables the byte budget.
func ExtractWithReadAheadBytes(limit int64) ExtractOption {
	return func(c *extractConfig) {
		c.readAheadBytes = limit
	}
}

// ExtractWithAllowUnsafePaths writes entry names as given, even when they
// resolve outside the output directory.
func ExtractWithAllowUnsafePaths(allow bool) ExtractOption {
	return func(c *extractConfig) {
		c.allowUnsafe = allow
	}
}

// ExtractWithDirectWrites writes directly to final paths instead of using
// temp files and renames. Faster, but a failed entry may leave a partial file.
func ExtractWithDirectWrites(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.directWrite = enabled
	}
}

// ExtractWithFilter extracts only entries for which keep returns true.
// keep must be safe for concurrent calls.
func ExtractWithFilter(keep func(name string) bool) ExtractOption {
	return func(c *extractConfig) {
		c.filter = keep
	}
}
