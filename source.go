package tmod

import (
	"io"
	"os"
)

// ByteSource provides random access to a container.
//
// Implementations exist for local files and HTTP range requests
// (see the http subpackage).
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// fileSource adapts an *os.File to ByteSource.
type fileSource struct {
	*os.File
	size int64
}

// Size returns the file size captured when the file was opened.
func (f *fileSource) Size() int64 {
	return f.size
}
