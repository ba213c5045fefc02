package tmod

import (
	"github.com/campbellcole/tmod-unpacker/internal/batch"
	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

// Re-export types from internal packages for the public API.
type (
	// Header is the fixed metadata block at the start of a container.
	Header = tmodtype.Header

	// Entry describes one file stored in the container.
	Entry = tmodtype.Entry

	// ExtractStats summarizes an extraction.
	ExtractStats = batch.ProcessStats

	// ExtractedFile records one file written during extraction.
	ExtractedFile = batch.ExtractedFile
)

// LevelTrace is the slog level used for per-field reads.
const LevelTrace = tmodtype.LevelTrace
