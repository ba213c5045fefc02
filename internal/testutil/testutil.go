// Package testutil builds TMOD containers for tests.
package testutil

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // the container format hashes with SHA-1
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"

	"github.com/campbellcole/tmod-unpacker/internal/wire"
)

// Entry is a table entry plus the payload bytes stored for it.
type Entry struct {
	Name             string
	UncompressedSize int32
	CompressedSize   int32
	Payload          []byte
}

// Builder assembles a container byte by byte.
// The zero value is not useful; call NewBuilder.
type Builder struct {
	Magic         [4]byte
	FormatVersion string
	Name          string
	Version       string
	Signature     [256]byte

	entries    []Entry
	hash       *[20]byte
	dataLength *uint32
	countDelta int32
}

// NewBuilder returns a Builder for a container with format version "1.4",
// package name "ExampleMod", and version "1.0".
func NewBuilder() *Builder {
	b := &Builder{
		Magic:         [4]byte{'T', 'M', 'O', 'D'},
		FormatVersion: "1.4",
		Name:          "ExampleMod",
		Version:       "1.0",
	}
	for i := range b.Signature {
		b.Signature[i] = byte(i)
	}
	return b
}

// AddStored adds an entry whose payload is stored verbatim.
func (b *Builder) AddStored(name string, data []byte) *Builder {
	size := int32(len(data)) //nolint:gosec // test data is small
	return b.AddRaw(name, size, size, data)
}

// AddCompressed adds an entry whose payload is raw-deflate compressed.
// It fails the test if compression does not change the size, since equal
// sizes would mark the entry as stored.
func (b *Builder) AddCompressed(tb testing.TB, name string, data []byte) *Builder {
	tb.Helper()
	payload := Deflate(tb, data)
	if len(payload) == len(data) {
		tb.Fatalf("testutil: compressed %s has the same size as its input", name)
	}
	return b.AddRaw(name, int32(len(data)), int32(len(payload)), payload) //nolint:gosec // test data is small
}

// AddRaw adds an entry with arbitrary table sizes and payload.
func (b *Builder) AddRaw(name string, uncompressed, compressed int32, payload []byte) *Builder {
	b.entries = append(b.entries, Entry{
		Name:             name,
		UncompressedSize: uncompressed,
		CompressedSize:   compressed,
		Payload:          payload,
	})
	return b
}

// WithHash overrides the computed header hash.
func (b *Builder) WithHash(hash [20]byte) *Builder {
	b.hash = &hash
	return b
}

// WithDataLength overrides the computed data length field.
func (b *Builder) WithDataLength(n uint32) *Builder {
	b.dataLength = &n
	return b
}

// WithEntryCountDelta adds delta to the written entry count.
func (b *Builder) WithEntryCountDelta(delta int32) *Builder {
	b.countDelta = delta
	return b
}

// Bytes returns the encoded container.
func (b *Builder) Bytes() []byte {
	var body []byte
	body = appendString(body, b.Name)
	body = appendString(body, b.Version)
	body = binary.LittleEndian.AppendUint32(body, uint32(int32(len(b.entries))+b.countDelta)) //nolint:gosec // test data is small
	for _, e := range b.entries {
		body = appendString(body, e.Name)
		body = binary.LittleEndian.AppendUint32(body, uint32(e.UncompressedSize)) //nolint:gosec // two's complement on the wire
		body = binary.LittleEndian.AppendUint32(body, uint32(e.CompressedSize))   //nolint:gosec // two's complement on the wire
	}
	for _, e := range b.entries {
		body = append(body, e.Payload...)
	}

	hash := sha1.Sum(body) //nolint:gosec // the container format hashes with SHA-1
	if b.hash != nil {
		hash = *b.hash
	}
	dataLength := uint32(len(body)) //nolint:gosec // test data is small
	if b.dataLength != nil {
		dataLength = *b.dataLength
	}

	var out []byte
	out = append(out, b.Magic[:]...)
	out = appendString(out, b.FormatVersion)
	out = append(out, hash[:]...)
	out = append(out, b.Signature[:]...)
	out = binary.LittleEndian.AppendUint32(out, dataLength)
	return append(out, body...)
}

// WriteFile writes the container to a file in a fresh temp directory and
// returns its path.
func (b *Builder) WriteFile(tb testing.TB) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "test.tmod")
	if err := os.WriteFile(path, b.Bytes(), 0o600); err != nil {
		tb.Fatalf("testutil: write container: %v", err)
	}
	return path
}

// Deflate raw-deflate compresses data.
func Deflate(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		tb.Fatalf("testutil: new deflate writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		tb.Fatalf("testutil: deflate: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("testutil: deflate close: %v", err)
	}
	return buf.Bytes()
}

func appendString(dst []byte, s string) []byte {
	dst = wire.AppendLength(dst, uint32(len(s))) //nolint:gosec // test strings are short
	return append(dst, s...)
}

// MockByteSource implements a simple in-memory random access source for tests.
type MockByteSource struct {
	data []byte
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}
