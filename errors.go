package tmod

import (
	"errors"

	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

// Sentinel errors re-exported from internal/tmodtype.
var (
	// ErrFormat is returned when the input is not a valid container,
	// for example when the magic is not "TMOD" or the entry count is negative.
	ErrFormat = tmodtype.ErrFormat

	// ErrTruncated is returned when the input ends before a field or payload is complete.
	ErrTruncated = tmodtype.ErrTruncated

	// ErrEncoding is returned when a string is not valid UTF-8.
	ErrEncoding = tmodtype.ErrEncoding

	// ErrDecompression is returned when a payload cannot be inflated to its declared size.
	ErrDecompression = tmodtype.ErrDecompression

	// ErrHashMismatch is returned when hash verification fails.
	ErrHashMismatch = tmodtype.ErrHashMismatch

	// ErrSizeOverflow is returned when sizes exceed supported limits.
	ErrSizeOverflow = tmodtype.ErrSizeOverflow

	// ErrUnsafePath is returned when an entry name resolves outside the output directory.
	ErrUnsafePath = tmodtype.ErrUnsafePath
)

// Sentinel errors specific to the tmod package.
var (
	// ErrConsumed is returned when a stream-backed archive is extracted twice.
	ErrConsumed = errors.New("tmod: stream already consumed")

	// ErrNotRandomAccess is returned by Verify on stream-backed archives.
	ErrNotRandomAccess = errors.New("tmod: archive is not backed by a random access source")
)
