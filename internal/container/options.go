package container

import (
	"hash"
	"log/slog"

	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

// DefaultMaxEntrySize is the default per-entry size limit (256MB).
const DefaultMaxEntrySize = 256 << 20

type config struct {
	maxEntrySize int64
	logger       *slog.Logger
	progress     tmodtype.ProgressFunc
	sectionHash  hash.Hash
}

// Option configures header and table reads.
type Option func(*config)

// WithMaxEntrySize limits the compressed and uncompressed size of every entry.
// Set limit to 0 to disable the limit.
func WithMaxEntrySize(limit int64) Option {
	return func(c *config) {
		c.maxEntrySize = limit
	}
}

// WithLogger sets the logger for read operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProgress sets a callback invoked after each table entry is read.
func WithProgress(fn tmodtype.ProgressFunc) Option {
	return func(c *config) {
		c.progress = fn
	}
}

// WithSectionHash feeds every byte after the data length field into h,
// starting during ReadHeader. Used to verify the header hash on streams.
func WithSectionHash(h hash.Hash) Option {
	return func(c *config) {
		c.sectionHash = h
	}
}

func newConfig(opts []Option) *config {
	c := &config{maxEntrySize: DefaultMaxEntrySize}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = tmodtype.DiscardLogger(c.logger)
	return c
}
