package tmod

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // the container format hashes with SHA-1
	"fmt"
	"io"

	"github.com/campbellcole/tmod-unpacker/internal/file"
)

// Verify checks the header hash and data length against the source.
//
// The hash covers every byte after the data length field up to the end of
// the source, and the data length must equal that section's size. Verify
// does not check the signature.
//
// Verify returns ErrNotRandomAccess for stream-backed archives; use
// WithVerifyHash to check those during Extract.
func (a *Archive) Verify() error {
	if a.src == nil {
		return ErrNotRandomAccess
	}
	size := a.src.Size() - a.header.HashStart
	hr := file.NewHashingReader(io.NewSectionReader(a.src, a.header.HashStart, size), sha1.New())
	if _, err := io.Copy(io.Discard, hr); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	return a.checkSection(hr.N(), hr.Sum())
}

// verifyStream drains what is left of the stream into the section hash and
// checks the result.
func (a *Archive) verifyStream() error {
	if _, err := io.Copy(io.Discard, a.cursor); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	return a.checkSection(a.cursor.Offset()-a.header.HashStart, a.section.Sum(nil))
}

func (a *Archive) checkSection(n int64, sum []byte) error {
	h := a.header
	if n != int64(h.DataLength) {
		return fmt.Errorf("%w: data length is %d, hashed section is %d bytes", ErrFormat, h.DataLength, n)
	}
	if !bytes.Equal(sum, h.Hash[:]) {
		return fmt.Errorf("%w: header hash %s, computed %x", ErrHashMismatch, h.HashHex(), sum)
	}
	a.log().Debug("hash verified", "hash", h.HashHex(), "bytes", n)
	return nil
}
