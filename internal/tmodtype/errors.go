package tmodtype

import "errors"

// Sentinel errors for container operations.
var (
	// ErrFormat is returned when the container does not follow the TMOD grammar.
	ErrFormat = errors.New("tmod: invalid container format")

	// ErrTruncated is returned when the stream ends before a field or payload is complete.
	ErrTruncated = errors.New("tmod: unexpected end of container")

	// ErrEncoding is returned when a string is not valid UTF-8.
	ErrEncoding = errors.New("tmod: invalid string encoding")

	// ErrDecompression is returned when decompression fails.
	ErrDecompression = errors.New("tmod: decompression failed")

	// ErrHashMismatch is returned when the hashed section does not match the header hash.
	ErrHashMismatch = errors.New("tmod: hash verification failed")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("tmod: size overflow")

	// ErrUnsafePath is returned when an entry name resolves outside the output root.
	ErrUnsafePath = errors.New("tmod: entry path escapes output root")
)
