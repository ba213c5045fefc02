package file

import (
	"hash"
	"io"
)

// HashingReader feeds everything read from r into a hash and counts the bytes.
type HashingReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

// NewHashingReader returns a HashingReader over r.
func NewHashingReader(r io.Reader, h hash.Hash) *HashingReader {
	return &HashingReader{r: r, h: h}
}

// Read implements io.Reader.
func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		_, _ = hr.h.Write(p[:n]) //nolint:errcheck // hash writes never fail
		hr.n += int64(n)
	}
	return n, err
}

// Sum returns the hash of the bytes read so far.
func (hr *HashingReader) Sum() []byte {
	return hr.h.Sum(nil)
}

// N returns the number of bytes read so far.
func (hr *HashingReader) N() int64 {
	return hr.n
}
