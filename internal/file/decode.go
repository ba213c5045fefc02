package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

// Entry is an alias for tmodtype.Entry.
type Entry = tmodtype.Entry

// Decode returns the file content for entry given its stored payload.
//
// Stored entries are returned verbatim. Compressed entries are inflated and
// must produce exactly UncompressedSize bytes; anything else fails with
// ErrDecompression.
func Decode(entry *Entry, payload []byte, pool *DecompressPool) ([]byte, error) {
	if len(payload) != int(entry.CompressedSize) {
		return nil, fmt.Errorf("%w: payload is %d of %d bytes", tmodtype.ErrTruncated, len(payload), entry.CompressedSize)
	}
	if !entry.IsCompressed() {
		return payload, nil
	}

	dec, release, err := pool.Get(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tmodtype.ErrDecompression, err)
	}
	defer release()

	content := make([]byte, entry.UncompressedSize)
	n, err := io.ReadFull(dec, content)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short output (%d of %d bytes)", tmodtype.ErrDecompression, n, entry.UncompressedSize)
		}
		return nil, fmt.Errorf("%w: %v", tmodtype.ErrDecompression, err)
	}
	if err := EnsureNoExtra(dec); err != nil {
		return nil, err
	}
	return content, nil
}

// EnsureNoExtra reads from r and returns an error if any data is available.
// This is used to detect when decompressed data exceeds the expected size.
func EnsureNoExtra(r io.Reader) error {
	var scratch [1]byte
	n, err := r.Read(scratch[:])
	if n > 0 {
		return fmt.Errorf("%w: output exceeds declared size", tmodtype.ErrDecompression)
	}
	if err == nil || err == io.EOF {
		return nil
	}
	return fmt.Errorf("%w: %v", tmodtype.ErrDecompression, err)
}
