package batch

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

const (
	dirPerm  = 0o755 //nolint:gosec // extracted trees are meant to be shared like any unpacked archive
	filePerm = 0o644 //nolint:gosec // extracted trees are meant to be shared like any unpacked archive
)

// destFS is the subset of *os.Root the sink needs.
type destFS interface {
	MkdirAll(name string, perm fs.FileMode) error
	OpenFile(name string, flag int, perm fs.FileMode) (*os.File, error)
	Rename(oldname, newname string) error
	Remove(name string) error
}

// hostFS resolves names by joining them onto base, without confinement.
type hostFS struct {
	base string
}

func (h hostFS) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(h.base, name)
}

func (h hostFS) MkdirAll(name string, perm fs.FileMode) error {
	return os.MkdirAll(h.path(name), perm)
}

func (h hostFS) OpenFile(name string, flag int, perm fs.FileMode) (*os.File, error) {
	return os.OpenFile(h.path(name), flag, perm)
}

func (h hostFS) Rename(oldname, newname string) error {
	return os.Rename(h.path(oldname), h.path(newname))
}

func (h hostFS) Remove(name string) error {
	return os.Remove(h.path(name))
}

// FileSink writes entries to the filesystem under destDir.
//
// By default, files are written to a temporary file in the same directory
// and renamed to the final path on Commit, replacing any existing file.
// Partially written files are never visible at the final path.
//
// Unless WithAllowUnsafePaths is set, all writes go through an *os.Root, so
// entry names cannot reach outside destDir.
type FileSink struct {
	destDir     string
	allowUnsafe bool
	directWrite bool
	filter      func(name string) bool

	fsys destFS
	root *os.Root

	dirs    singleflight.Group
	created sync.Map
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithAllowUnsafePaths disables confinement to destDir.
// Entry names are joined onto destDir as-is, so ".." segments and absolute
// names may write anywhere the process can.
func WithAllowUnsafePaths(allow bool) FileSinkOption {
	return func(s *FileSink) {
		s.allowUnsafe = allow
	}
}

// WithDirectWrites disables temp files and writes directly to the final path.
func WithDirectWrites(enabled bool) FileSinkOption {
	return func(s *FileSink) {
		s.directWrite = enabled
	}
}

// WithFilter extracts only entries for which keep returns true.
// keep must be safe for concurrent calls.
func WithFilter(keep func(name string) bool) FileSinkOption {
	return func(s *FileSink) {
		s.filter = keep
	}
}

// NewFileSink creates a FileSink that writes to destDir.
//
// destDir must already exist. Call Close when done.
func NewFileSink(destDir string, opts ...FileSinkOption) (*FileSink, error) {
	s := &FileSink{destDir: destDir}
	for _, opt := range opts {
		opt(s)
	}

	if s.allowUnsafe {
		s.fsys = hostFS{base: destDir}
		return s, nil
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return nil, fmt.Errorf("open destination root %s: %w", destDir, err)
	}
	s.root = root
	s.fsys = root
	return s, nil
}

// Close releases the destination root.
func (s *FileSink) Close() error {
	if s.root == nil {
		return nil
	}
	return s.root.Close()
}

// ShouldProcess applies the filter, if any.
func (s *FileSink) ShouldProcess(entry *Entry) bool {
	return s.filter == nil || s.filter(entry.Name)
}

// Key returns the destination an entry resolves to. In confined mode this
// is the cleaned relative path; otherwise it is the joined host path.
// Names that fail resolution in Writer still get a distinct key.
func (s *FileSink) Key(entry *Entry) string {
	rel := filepath.Clean(filepath.FromSlash(entry.Name))
	if s.allowUnsafe {
		return hostFS{base: s.destDir}.path(rel)
	}
	return rel
}

// Writer returns a Committer for the entry's destination path.
func (s *FileSink) Writer(entry *Entry) (Committer, error) {
	destRel, err := s.resolve(entry.Name)
	if err != nil {
		return nil, err
	}
	destPath := filepath.Join(s.destDir, destRel)

	if dir := filepath.Dir(destRel); dir != "." {
		if err := s.mkdirAll(dir); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", filepath.Join(s.destDir, dir), err)
		}
	}

	if s.directWrite {
		f, err := s.fsys.OpenFile(destRel, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm)
		if err != nil {
			return nil, fmt.Errorf("create file %s: %w", destPath, err)
		}
		return &directCommitter{file: f, destRel: destRel, fsys: s.fsys}, nil
	}

	tempFile, tempRel, err := createTempFile(s.fsys, filepath.Dir(destRel), ".tmod-")
	if err != nil {
		return nil, fmt.Errorf("create temp file for %s: %w", destPath, err)
	}
	return &fileCommitter{
		destPath: destPath,
		destRel:  destRel,
		tempFile: tempFile,
		tempRel:  tempRel,
		fsys:     s.fsys,
	}, nil
}

// resolve converts an entry name to a path relative to destDir.
func (s *FileSink) resolve(name string) (string, error) {
	rel := filepath.FromSlash(name)
	if s.allowUnsafe {
		return rel, nil
	}
	if !filepath.IsLocal(rel) {
		return "", &fs.PathError{Op: "extract", Path: name, Err: tmodtype.ErrUnsafePath}
	}
	return filepath.Clean(rel), nil
}

// mkdirAll creates dir once, coalescing concurrent callers.
func (s *FileSink) mkdirAll(dir string) error {
	if _, ok := s.created.Load(dir); ok {
		return nil
	}
	_, err, _ := s.dirs.Do(dir, func() (any, error) {
		if err := s.fsys.MkdirAll(dir, dirPerm); err != nil {
			return nil, err
		}
		s.created.Store(dir, struct{}{})
		return nil, nil
	})
	return err
}

// fileCommitter writes to a temp file and renames on Commit.
type fileCommitter struct {
	destPath string
	destRel  string
	tempFile *os.File
	tempRel  string
	fsys     destFS
}

// Write implements io.Writer.
func (c *fileCommitter) Write(p []byte) (int, error) {
	return c.tempFile.Write(p)
}

// Commit closes the temp file and renames it over the final path.
func (c *fileCommitter) Commit() error {
	if err := c.tempFile.Close(); err != nil {
		_ = c.fsys.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := c.fsys.Rename(c.tempRel, c.destRel); err != nil {
		_ = c.fsys.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", c.destPath, err)
	}
	return nil
}

// Discard closes and removes the temp file.
func (c *fileCommitter) Discard() error {
	_ = c.tempFile.Close() //nolint:errcheck // we're cleaning up
	return c.fsys.Remove(c.tempRel)
}

// directCommitter writes directly to the final path.
type directCommitter struct {
	file    *os.File
	destRel string
	fsys    destFS
}

// Write implements io.Writer.
func (c *directCommitter) Write(p []byte) (int, error) {
	return c.file.Write(p)
}

// Commit closes the file.
func (c *directCommitter) Commit() error {
	if err := c.file.Close(); err != nil {
		_ = c.fsys.Remove(c.destRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// Discard closes and removes the file.
func (c *directCommitter) Discard() error {
	_ = c.file.Close() //nolint:errcheck // best-effort cleanup
	return c.fsys.Remove(c.destRel)
}

func createTempFile(fsys destFS, dir, prefix string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		relPath := filepath.Join(dir, prefix+name)
		f, err := fsys.OpenFile(relPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
		if err == nil {
			return f, relPath, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
