package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

func writeEntry(t *testing.T, sink *FileSink, name string, content []byte) error {
	t.Helper()
	w, err := sink.Writer(&Entry{Name: name})
	if err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		_ = w.Discard()
		return err
	}
	return w.Commit()
}

func newSink(t *testing.T, dir string, opts ...FileSinkOption) *FileSink {
	t.Helper()
	sink, err := NewFileSink(dir, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink
}

func TestFileSink_NestedPath(t *testing.T) {
	t.Parallel()

	for _, direct := range []bool{false, true} {
		t.Run(fmt.Sprintf("direct=%v", direct), func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			sink := newSink(t, dir, WithDirectWrites(direct))
			require.NoError(t, writeEntry(t, sink, "sub/dir/file.dat", []byte("nested")))

			got, err := os.ReadFile(filepath.Join(dir, "sub", "dir", "file.dat"))
			require.NoError(t, err)
			assert.Equal(t, []byte("nested"), got)
			assertNoTempFiles(t, dir)
		})
	}
}

func TestFileSink_Overwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old and longer"), 0o600))

	sink := newSink(t, dir)
	require.NoError(t, writeEntry(t, sink, "a.txt", []byte("new")))

	got, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestFileSink_RejectsUnsafePaths(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"../escape.txt", "a/../../escape.txt", "/abs/escape.txt", ""} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			base := t.TempDir()
			dest := filepath.Join(base, "out")
			require.NoError(t, os.Mkdir(dest, 0o750))

			sink := newSink(t, dest)
			err := writeEntry(t, sink, name, []byte("pwned"))

			var pathErr *fs.PathError
			require.ErrorAs(t, err, &pathErr)
			require.ErrorIs(t, err, tmodtype.ErrUnsafePath)
			_, statErr := os.Stat(filepath.Join(base, "escape.txt"))
			require.ErrorIs(t, statErr, fs.ErrNotExist)
		})
	}
}

func TestFileSink_AllowUnsafePaths(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	dest := filepath.Join(base, "out")
	require.NoError(t, os.Mkdir(dest, 0o750))

	sink := newSink(t, dest, WithAllowUnsafePaths(true))
	require.NoError(t, writeEntry(t, sink, "../escape.txt", []byte("outside")))

	got, err := os.ReadFile(filepath.Join(base, "escape.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("outside"), got)
}

func TestFileSink_Discard(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink := newSink(t, dir)
	w, err := sink.Writer(&Entry{Name: "gone/x.bin"})
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Discard())

	_, err = os.Stat(filepath.Join(dir, "gone", "x.bin"))
	require.ErrorIs(t, err, fs.ErrNotExist)
	assertNoTempFiles(t, dir)
}

func TestFileSink_Filter(t *testing.T) {
	t.Parallel()

	sink := newSink(t, t.TempDir(), WithFilter(func(name string) bool {
		return strings.HasSuffix(name, ".png")
	}))
	assert.True(t, sink.ShouldProcess(&Entry{Name: "icon.png"}))
	assert.False(t, sink.ShouldProcess(&Entry{Name: "build.txt"}))
}

func TestFileSink_ConcurrentDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink := newSink(t, dir)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("shared/deep/%d/f%d.txt", i%3, i)
			if err := writeEntry(t, sink, name, []byte(name)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "shared", "deep", "2", "f5.txt"))
	require.NoError(t, err)
	assert.Equal(t, "shared/deep/2/f5.txt", string(got))
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		assert.False(t, strings.HasPrefix(d.Name(), ".tmod-"), "leftover temp file %s", path)
		return nil
	})
	require.NoError(t, err)
}

func TestFileSink_Key(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	confined, err := NewFileSink(dest)
	require.NoError(t, err)
	t.Cleanup(func() { _ = confined.Close() })
	unsafe, err := NewFileSink(dest, WithAllowUnsafePaths(true))
	require.NoError(t, err)

	for _, name := range []string{"dir/a.bin", "dir/./a.bin", "dir//a.bin", "dir/x/../a.bin"} {
		assert.Equal(t, filepath.Join("dir", "a.bin"), confined.Key(&Entry{Name: name}), name)
		assert.Equal(t, filepath.Join(dest, "dir", "a.bin"), unsafe.Key(&Entry{Name: name}), name)
	}
	assert.NotEqual(t, confined.Key(&Entry{Name: "dir/a.bin"}), confined.Key(&Entry{Name: "dir/b.bin"}))
}
