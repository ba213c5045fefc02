package tmodtype

// ProgressEvent represents a progress update while reading or extracting a container.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the entry currently being processed.
	Path string

	// BytesDone is the number of uncompressed bytes completed so far.
	BytesDone uint64

	// FilesDone is the number of entries completed.
	FilesDone int

	// FilesTotal is the total number of entries.
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages, in the order they occur.
const (
	// StageReadingEntries indicates the file table is being read.
	StageReadingEntries ProgressStage = iota

	// StageExtracting indicates files are being extracted.
	StageExtracting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageReadingEntries:
		return "reading entries"
	case StageExtracting:
		return "extracting files"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
