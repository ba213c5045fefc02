package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
	"unicode/utf8"

	"github.com/campbellcole/tmod-unpacker/internal/sizing"
	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

// Cursor is a forward-only reader over a container.
// It tracks the absolute offset of the next byte and can feed every
// consumed byte into a hash.
type Cursor struct {
	r   *bufio.Reader
	off int64
	tee hash.Hash
}

// NewCursor returns a Cursor reading from r. base is the absolute offset of
// the first byte r yields.
func NewCursor(r io.Reader, base int64) *Cursor {
	return &Cursor{r: bufio.NewReader(r), off: base}
}

// Offset returns the absolute offset of the next unread byte.
func (c *Cursor) Offset() int64 {
	return c.off
}

// Tee feeds every byte consumed from now on into h.
func (c *Cursor) Tee(h hash.Hash) {
	c.tee = h
}

// Read implements io.Reader.
func (c *Cursor) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.consumed(p[:n])
	}
	return n, err
}

// ReadByte implements io.ByteReader.
func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err != nil {
		return 0, err
	}
	c.consumed([]byte{b})
	return b, nil
}

// ReadFull fills p, failing with ErrTruncated if the stream ends first.
func (c *Cursor) ReadFull(p []byte) error {
	if _, err := io.ReadFull(c, p); err != nil {
		return truncated(err)
	}
	return nil
}

// ReadBytes reads exactly n bytes.
func (c *Cursor) ReadBytes(n int64) ([]byte, error) {
	data, err := sizing.ReadN(c, n)
	if err != nil {
		return nil, truncated(err)
	}
	return data, nil
}

// ReadUint32 reads a little-endian uint32.
func (c *Cursor) ReadUint32() (uint32, error) {
	var buf [4]byte
	if err := c.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadInt32 reads a little-endian int32.
func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err //nolint:gosec // two's complement reinterpretation is the wire format
}

// ReadString reads a length-prefixed UTF-8 string.
func (c *Cursor) ReadString() (string, error) {
	length, err := ReadLength(c)
	if err != nil {
		return "", err
	}
	data, err := c.ReadBytes(int64(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %d-byte string is not UTF-8", tmodtype.ErrEncoding, len(data))
	}
	return string(data), nil
}

// Discard skips exactly n bytes.
func (c *Cursor) Discard(n int64) error {
	copied, err := io.CopyN(io.Discard, c, n)
	if err == nil && copied < n {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return truncated(err)
	}
	return nil
}

func (c *Cursor) consumed(p []byte) {
	c.off += int64(len(p))
	if c.tee != nil {
		_, _ = c.tee.Write(p) //nolint:errcheck // hash writes never fail
	}
}

// truncated maps end-of-stream errors to ErrTruncated and passes others through.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", tmodtype.ErrTruncated, err)
	}
	return err
}
