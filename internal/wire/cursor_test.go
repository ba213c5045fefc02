package wire

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // matches the container hash
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

func encodeString(s string) []byte {
	return append(AppendLength(nil, uint32(len(s))), s...) //nolint:gosec // test strings are short
}

func TestCursor_ReadFields(t *testing.T) {
	t.Parallel()

	var data []byte
	data = binary.LittleEndian.AppendUint32(data, 0xDEADBEEF)
	data = binary.LittleEndian.AppendUint32(data, uint32(0xFFFFFFFE))
	data = append(data, encodeString("héllo")...)
	data = append(data, 1, 2, 3)

	c := NewCursor(bytes.NewReader(data), 0)

	u, err := c.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u)

	i, err := c.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-2), i)

	s, err := c.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	raw, err := c.ReadBytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, raw)
	assert.Equal(t, int64(len(data)), c.Offset())
}

func TestCursor_Offset(t *testing.T) {
	t.Parallel()

	c := NewCursor(bytes.NewReader([]byte("abcdef")), 100)
	_, err := c.ReadByte()
	require.NoError(t, err)
	require.NoError(t, c.Discard(2))
	assert.Equal(t, int64(103), c.Offset())
}

func TestCursor_ReadString_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "invalid utf8", data: []byte{0x02, 0xC3, 0x28}, wantErr: tmodtype.ErrEncoding},
		{name: "length beyond stream", data: []byte{0x0A, 'a', 'b'}, wantErr: tmodtype.ErrTruncated},
		{name: "huge length beyond stream", data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07, 'a'}, wantErr: tmodtype.ErrTruncated},
		{name: "missing prefix", data: nil, wantErr: tmodtype.ErrTruncated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewCursor(bytes.NewReader(tc.data), 0).ReadString()
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCursor_TruncatedInt(t *testing.T) {
	t.Parallel()

	_, err := NewCursor(bytes.NewReader([]byte{1, 2}), 0).ReadInt32()
	require.ErrorIs(t, err, tmodtype.ErrTruncated)
}

func TestCursor_Tee(t *testing.T) {
	t.Parallel()

	data := []byte("prefix|hashed section")
	c := NewCursor(bytes.NewReader(data), 0)
	_, err := c.ReadBytes(7)
	require.NoError(t, err)

	h := sha1.New() //nolint:gosec // matches the container hash
	c.Tee(h)
	_, err = c.ReadByte()
	require.NoError(t, err)
	require.NoError(t, c.Discard(int64(len(data)-8)))

	want := sha1.Sum(data[7:]) //nolint:gosec // matches the container hash
	assert.Equal(t, want[:], h.Sum(nil))
}

func TestCursor_DiscardPastEnd(t *testing.T) {
	t.Parallel()

	c := NewCursor(bytes.NewReader([]byte("abc")), 0)
	require.ErrorIs(t, c.Discard(10), tmodtype.ErrTruncated)
}
