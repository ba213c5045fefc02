package file

import (
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// DecompressPool manages reusable raw-deflate readers to reduce allocation overhead.
type DecompressPool struct {
	pool sync.Pool
}

// NewDecompressPool creates a new pool for deflate readers.
func NewDecompressPool() *DecompressPool {
	return &DecompressPool{}
}

// Get returns a deflate reader reading from r.
// The caller must call the returned release function when done.
// If an error is returned, no release function needs to be called.
func (p *DecompressPool) Get(r io.Reader) (io.ReadCloser, func(), error) {
	if p == nil {
		dec := flate.NewReader(r)
		return dec, func() { _ = dec.Close() }, nil
	}

	dec, ok := p.pool.Get().(io.ReadCloser)
	if !ok {
		dec = flate.NewReader(r)
	} else if err := dec.(flate.Resetter).Reset(r, nil); err != nil { //nolint:forcetypeassert // only flate readers are pooled
		_ = dec.Close()
		dec = flate.NewReader(r)
	}

	return dec, func() {
		p.pool.Put(dec)
	}, nil
}
