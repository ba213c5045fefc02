package batch

import digest "github.com/opencontainers/go-digest"

// ProcessStats contains statistics from an extraction.
type ProcessStats struct {
	// Extracted is the number of entries written to the sink.
	Extracted int

	// Skipped is the number of entries skipped (ShouldProcess returned false).
	Skipped int

	// TotalBytes is the sum of UncompressedSize for all extracted entries.
	TotalBytes uint64

	// Files lists every extracted entry in table order.
	Files []ExtractedFile
}

// ExtractedFile records one entry written to the sink.
type ExtractedFile struct {
	// Name is the entry name as stored in the container.
	Name string

	// Size is the number of bytes written.
	Size int64

	// Digest is the sha256 digest of the written content.
	Digest digest.Digest
}

// add records a successfully extracted file.
func (s *ProcessStats) add(f ExtractedFile) {
	s.Extracted++
	s.TotalBytes += uint64(f.Size) //nolint:gosec // sizes are non-negative
	s.Files = append(s.Files, f)
}
