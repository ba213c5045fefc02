package container

import (
	"fmt"

	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
	"github.com/campbellcole/tmod-unpacker/internal/wire"
)

// ReadHeader reads the container header from c.
//
// The magic is checked before anything else is read; a mismatch fails with
// ErrFormat. On success c is positioned at the first table entry.
func ReadHeader(c *wire.Cursor, opts ...Option) (*tmodtype.Header, error) {
	cfg := newConfig(opts)
	log := cfg.logger

	tmodtype.Trace(log, "reading magic")
	var magic [4]byte
	if err := c.ReadFull(magic[:]); err != nil {
		return nil, fmt.Errorf("read header: magic: %w", err)
	}
	if magic != tmodtype.Magic {
		return nil, fmt.Errorf("%w: magic %q, want %q", tmodtype.ErrFormat, magic[:], tmodtype.Magic[:])
	}
	log.Debug("TMOD magic found")

	h := &tmodtype.Header{}
	var err error

	tmodtype.Trace(log, "reading format version")
	if h.FormatVersion, err = c.ReadString(); err != nil {
		return nil, fmt.Errorf("read header: format version: %w", err)
	}
	log.Info("container format version", "version", h.FormatVersion)

	tmodtype.Trace(log, "reading hash")
	if err := c.ReadFull(h.Hash[:]); err != nil {
		return nil, fmt.Errorf("read header: hash: %w", err)
	}
	log.Debug("container hash", "hash", h.HashHex())

	tmodtype.Trace(log, "reading signature")
	if err := c.ReadFull(h.Signature[:]); err != nil {
		return nil, fmt.Errorf("read header: signature: %w", err)
	}
	log.Debug("container signature", "signature", h.SignatureHex())

	tmodtype.Trace(log, "reading data length")
	if h.DataLength, err = c.ReadUint32(); err != nil {
		return nil, fmt.Errorf("read header: data length: %w", err)
	}
	h.HashStart = c.Offset()
	if cfg.sectionHash != nil {
		c.Tee(cfg.sectionHash)
	}
	log.Debug("container data length", "bytes", h.DataLength)

	tmodtype.Trace(log, "reading package name")
	if h.Name, err = c.ReadString(); err != nil {
		return nil, fmt.Errorf("read header: name: %w", err)
	}
	log.Info("package name", "name", h.Name)

	tmodtype.Trace(log, "reading package version")
	if h.Version, err = c.ReadString(); err != nil {
		return nil, fmt.Errorf("read header: version: %w", err)
	}
	log.Info("package version", "version", h.Version)

	tmodtype.Trace(log, "reading entry count")
	if h.EntryCount, err = c.ReadInt32(); err != nil {
		return nil, fmt.Errorf("read header: entry count: %w", err)
	}
	if h.EntryCount < 0 {
		return nil, fmt.Errorf("%w: negative entry count %d", tmodtype.ErrFormat, h.EntryCount)
	}
	log.Debug("entry count", "count", h.EntryCount)

	return h, nil
}
