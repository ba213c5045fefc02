// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

import (
	"bytes"
	"errors"
	"io"
	"math"
)

// preallocLimit is the largest read that is allocated up front.
// Larger reads grow with the data that actually arrives, so a bogus
// declared length cannot force a huge allocation on a short stream.
const preallocLimit = 1 << 20

// ToInt converts an int64 to int, returning overflowErr if it is negative or doesn't fit.
func ToInt(size int64, overflowErr error) (int, error) {
	if size < 0 || size > math.MaxInt {
		return 0, overflowErr
	}
	return int(size), nil
}

// AddInt64 adds two non-negative int64 values, returning (result, false) on overflow.
func AddInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// ReadN reads exactly n bytes from r.
// It returns io.ErrUnexpectedEOF (with the bytes read so far) if r ends early,
// including when r is empty and n > 0.
func ReadN(r io.Reader, n int64) ([]byte, error) {
	if n < 0 {
		return nil, errors.New("sizing: negative read length")
	}
	if n <= preallocLimit {
		buf := make([]byte, n)
		read, err := io.ReadFull(r, buf)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return buf[:read], err
	}

	var buf bytes.Buffer
	buf.Grow(preallocLimit)
	copied, err := io.CopyN(&buf, r, n)
	if err == io.EOF || (err == nil && copied < n) {
		err = io.ErrUnexpectedEOF
	}
	return buf.Bytes(), err
}
