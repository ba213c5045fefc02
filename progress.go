package tmod

import "github.com/campbellcole/tmod-unpacker/internal/tmodtype"

// Re-export progress types.
type (
	// ProgressEvent represents a progress update while reading or extracting.
	ProgressEvent = tmodtype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = tmodtype.ProgressStage

	// ProgressFunc receives progress updates.
	// Implementations must be safe for concurrent calls.
	ProgressFunc = tmodtype.ProgressFunc
)

// Re-export progress stage constants.
const (
	// StageReadingEntries fires once per file table entry read.
	StageReadingEntries = tmodtype.StageReadingEntries

	// StageExtracting fires once per file extracted.
	StageExtracting = tmodtype.StageExtracting
)
