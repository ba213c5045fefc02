package batch

import (
	"io"

	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

// Entry is an alias for tmodtype.Entry.
type Entry = tmodtype.Entry

// Sink is the destination for decoded entries.
//
// With ProcessAt, both methods are called from worker goroutines.
type Sink interface {
	// ShouldProcess reports whether the entry is wanted. Unwanted entries
	// are counted as skipped; on a stream their payload is read and dropped.
	ShouldProcess(entry *Entry) bool

	// Key identifies the destination an entry is written to. Entries with
	// equal keys overwrite each other, so ProcessAt handles them in one
	// task in table order.
	Key(entry *Entry) string

	// Writer opens the destination for one entry. The processor calls
	// Commit once the full content is written and Discard if anything fails.
	Writer(entry *Entry) (Committer, error)
}

// Committer receives one entry's content and publishes it on Commit.
type Committer interface {
	io.Writer

	// Commit makes the written content visible at its destination.
	Commit() error

	// Discard drops whatever was written.
	Discard() error
}
