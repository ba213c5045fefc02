package tmodtype

// Entry describes one file stored in the container.
type Entry struct {
	// Name is the slash-separated path relative to the output root (e.g., "Assets/icon.png").
	Name string

	// UncompressedSize is the size in bytes of the extracted file.
	UncompressedSize int32

	// CompressedSize is the size in bytes of the stored payload.
	// Equal to UncompressedSize for stored entries.
	CompressedSize int32

	// Offset is the absolute position of the payload in the container.
	// It is derived from the table order and never stored in the container.
	Offset int64
}

// IsCompressed reports whether the payload is raw-deflate compressed.
// Differing sizes are the only compression signal the format carries.
func (e *Entry) IsCompressed() bool {
	return e.CompressedSize != e.UncompressedSize
}
