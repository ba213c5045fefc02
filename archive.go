package tmod

import (
	"crypto/sha1" //nolint:gosec // the container format hashes with SHA-1
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/campbellcole/tmod-unpacker/internal/batch"
	"github.com/campbellcole/tmod-unpacker/internal/container"
	"github.com/campbellcole/tmod-unpacker/internal/file"
	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
	"github.com/campbellcole/tmod-unpacker/internal/wire"
)

const outputDirPerm = 0o755 //nolint:gosec // extracted trees are meant to be shared like any unpacked archive

// Archive is a parsed container whose header and entry table have been read.
//
// An Archive backed by a ByteSource (Open, OpenSource) reads payloads at
// their offsets and may be extracted any number of times, concurrently.
// An Archive backed by an io.Reader (NewReader) is forward-only and may be
// extracted once.
type Archive struct {
	header  *Header
	entries []Entry
	cfg     config
	pool    *file.DecompressPool

	src    ByteSource
	closer io.Closer

	mu       sync.Mutex
	cursor   *wire.Cursor
	section  hash.Hash
	consumed bool
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	return tmodtype.DiscardLogger(a.cfg.logger)
}

// Open opens the container at path for random access.
// Call Close when done.
func Open(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		return nil, err
	}
	a, err := OpenSource(&fileSource{File: f, size: info.Size()}, opts...)
	if err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.closer = f
	return a, nil
}

// OpenSource reads the header and entry table from src.
//
// Payloads are read from src during Extract, so src must remain valid for
// the lifetime of the Archive.
func OpenSource(src ByteSource, opts ...Option) (*Archive, error) {
	a := newArchive(opts)
	c := wire.NewCursor(io.NewSectionReader(src, 0, src.Size()), 0)
	if err := a.readTable(c); err != nil {
		return nil, err
	}
	a.src = src
	return a, nil
}

// NewReader reads the header and entry table from r.
//
// The returned Archive is positioned at the first payload and can be
// extracted once. With WithVerifyHash, every byte after the data length
// field is hashed as it is consumed.
func NewReader(r io.Reader, opts ...Option) (*Archive, error) {
	a := newArchive(opts)
	c := wire.NewCursor(r, 0)
	var extra []container.Option
	if a.cfg.verifyHash {
		a.section = sha1.New() //nolint:gosec // the container format hashes with SHA-1
		extra = append(extra, container.WithSectionHash(a.section))
	}
	if err := a.readTable(c, extra...); err != nil {
		return nil, err
	}
	a.cursor = c
	return a, nil
}

func newArchive(opts []Option) *Archive {
	a := &Archive{
		cfg:  config{maxEntrySize: DefaultMaxEntrySize},
		pool: file.NewDecompressPool(),
	}
	for _, opt := range opts {
		opt(&a.cfg)
	}
	return a
}

// readTable reads the header and the complete entry table from c.
func (a *Archive) readTable(c *wire.Cursor, extra ...container.Option) error {
	opts := []container.Option{
		container.WithLogger(a.cfg.logger),
		container.WithProgress(a.cfg.progress),
		container.WithMaxEntrySize(a.cfg.maxEntrySize),
	}
	opts = append(opts, extra...)

	h, err := container.ReadHeader(c, opts...)
	if err != nil {
		return err
	}
	entries, err := container.ReadEntries(c, h.EntryCount, opts...)
	if err != nil {
		return err
	}
	a.header = h
	a.entries = entries
	return nil
}

// Header returns the container header.
func (a *Archive) Header() Header {
	return *a.header
}

// Entries returns a copy of the entry table in container order.
func (a *Archive) Entries() []Entry {
	return slices.Clone(a.entries)
}

// Len returns the number of entries in the table, duplicates included.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Extract writes every entry to destDir, creating it if needed.
//
// Entries are written in table order for streams and concurrently for
// random access sources; in both cases the last entry with a given name
// wins. Extraction stops at the first error. Files committed before the
// error remain on disk.
//
// Extracting a stream-backed Archive a second time returns ErrConsumed.
func (a *Archive) Extract(destDir string, opts ...ExtractOption) (ExtractStats, error) {
	cfg := extractConfig{readAheadBytes: DefaultReadAheadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}

	if a.src == nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.consumed {
			return ExtractStats{}, ErrConsumed
		}
		a.consumed = true
	} else if a.cfg.verifyHash {
		if err := a.Verify(); err != nil {
			return ExtractStats{}, err
		}
	}

	if err := os.MkdirAll(destDir, outputDirPerm); err != nil {
		return ExtractStats{}, fmt.Errorf("create output directory %s: %w", destDir, err)
	}
	sink, err := batch.NewFileSink(destDir,
		batch.WithAllowUnsafePaths(cfg.allowUnsafe),
		batch.WithDirectWrites(cfg.directWrite),
		batch.WithFilter(cfg.filter),
	)
	if err != nil {
		return ExtractStats{}, err
	}
	defer sink.Close() //nolint:errcheck // nothing to flush

	proc := batch.NewProcessor(a.pool,
		batch.WithWorkers(cfg.workers),
		batch.WithReadAheadBytes(cfg.readAheadBytes),
		batch.WithProcessorLogger(a.cfg.logger),
		batch.WithProcessorProgress(a.cfg.progress),
	)

	var stats ExtractStats
	if a.src != nil {
		stats, err = proc.ProcessAt(a.src, a.entries, sink)
	} else {
		stats, err = proc.ProcessStream(a.cursor, a.entries, sink)
		if err == nil && a.section != nil {
			err = a.verifyStream()
		}
	}
	if err != nil {
		return stats, err
	}

	a.log().Info("extraction complete",
		"dir", destDir,
		"files", stats.Extracted,
		"skipped", stats.Skipped,
		"bytes", stats.TotalBytes,
	)
	return stats, nil
}

// Close releases the file opened by Open. It is a no-op otherwise.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
