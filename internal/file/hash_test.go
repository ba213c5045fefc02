package file

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // the container format hashes with SHA-1
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingReader(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("payload "), 1000)
	hr := NewHashingReader(bytes.NewReader(data), sha1.New())

	n, err := io.Copy(io.Discard, hr)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, int64(len(data)), hr.N())

	want := sha1.Sum(data) //nolint:gosec // matches the format
	assert.Equal(t, want[:], hr.Sum())
}
