package container

import (
	"fmt"

	"github.com/campbellcole/tmod-unpacker/internal/sizing"
	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
	"github.com/campbellcole/tmod-unpacker/internal/wire"
)

// maxPrealloc caps the table capacity reserved up front, since count comes
// from untrusted input.
const maxPrealloc = 4096

// ReadEntries reads exactly count table entries from c.
//
// Entries keep table order and duplicates. Once the table is consumed, each
// entry's Offset is assigned from a running sum of compressed sizes starting
// at the cursor position, which is where the first payload begins.
func ReadEntries(c *wire.Cursor, count int32, opts ...Option) ([]tmodtype.Entry, error) {
	cfg := newConfig(opts)
	log := cfg.logger

	if count < 0 {
		return nil, fmt.Errorf("%w: negative entry count %d", tmodtype.ErrFormat, count)
	}

	log.Info("reading file entries", "count", count)
	entries := make([]tmodtype.Entry, 0, min(int(count), maxPrealloc))
	for i := range int(count) {
		entry, err := readEntry(c, cfg)
		if err != nil {
			return nil, fmt.Errorf("read entry %d: %w", i, err)
		}
		entries = append(entries, entry)

		if cfg.progress != nil {
			cfg.progress(tmodtype.ProgressEvent{
				Stage:      tmodtype.StageReadingEntries,
				Path:       entry.Name,
				FilesDone:  i + 1,
				FilesTotal: int(count),
			})
		}
	}

	offset := c.Offset()
	for i := range entries {
		entries[i].Offset = offset
		next, ok := sizing.AddInt64(offset, int64(entries[i].CompressedSize))
		if !ok {
			return nil, fmt.Errorf("entry %s: %w", entries[i].Name, tmodtype.ErrSizeOverflow)
		}
		offset = next
	}
	return entries, nil
}

func readEntry(c *wire.Cursor, cfg *config) (tmodtype.Entry, error) {
	var (
		entry tmodtype.Entry
		err   error
	)
	log := cfg.logger

	tmodtype.Trace(log, "reading entry name")
	if entry.Name, err = c.ReadString(); err != nil {
		return entry, fmt.Errorf("name: %w", err)
	}
	tmodtype.Trace(log, "entry name", "name", entry.Name)

	tmodtype.Trace(log, "reading uncompressed length")
	if entry.UncompressedSize, err = c.ReadInt32(); err != nil {
		return entry, fmt.Errorf("%s: uncompressed length: %w", entry.Name, err)
	}
	tmodtype.Trace(log, "uncompressed length", "bytes", entry.UncompressedSize)

	tmodtype.Trace(log, "reading compressed length")
	if entry.CompressedSize, err = c.ReadInt32(); err != nil {
		return entry, fmt.Errorf("%s: compressed length: %w", entry.Name, err)
	}
	tmodtype.Trace(log, "compressed length", "bytes", entry.CompressedSize)

	if entry.UncompressedSize < 0 || entry.CompressedSize < 0 {
		return entry, fmt.Errorf("%w: %s: negative size (%d uncompressed, %d compressed)",
			tmodtype.ErrFormat, entry.Name, entry.UncompressedSize, entry.CompressedSize)
	}
	if cfg.maxEntrySize > 0 &&
		(int64(entry.UncompressedSize) > cfg.maxEntrySize || int64(entry.CompressedSize) > cfg.maxEntrySize) {
		return entry, fmt.Errorf("%s: %w", entry.Name, tmodtype.ErrSizeOverflow)
	}
	return entry, nil
}
