package tmodtype

import "encoding/hex"

// Magic is the 4-byte marker every container starts with.
var Magic = [4]byte{'T', 'M', 'O', 'D'}

const (
	// HashSize is the length of the content hash stored in the header.
	HashSize = 20

	// SignatureSize is the length of the signature stored in the header.
	SignatureSize = 256
)

// Header is the fixed metadata block at the start of a container.
type Header struct {
	// FormatVersion is the version of the tool that produced the container.
	FormatVersion string

	// Hash is the SHA-1 of every byte after the DataLength field.
	Hash [HashSize]byte

	// Signature is carried verbatim and never verified.
	Signature [SignatureSize]byte

	// DataLength is the declared length of the hashed section.
	DataLength uint32

	// Name is the package name.
	Name string

	// Version is the package version.
	Version string

	// EntryCount is the number of entries in the file table.
	EntryCount int32

	// HashStart is the offset of the first byte covered by Hash.
	HashStart int64
}

// HashHex returns the hash as lowercase hex.
func (h *Header) HashHex() string {
	return hex.EncodeToString(h.Hash[:])
}

// SignatureHex returns the signature as lowercase hex.
func (h *Header) SignatureHex() string {
	return hex.EncodeToString(h.Signature[:])
}
