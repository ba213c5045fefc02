package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
)

// maxLengthGroups is the number of 7-bit groups that fit a 32-bit length.
// The last group may only carry the top 4 bits.
const maxLengthGroups = 5

// ReadLength decodes a length stored as little-endian 7-bit groups, where the
// high bit of each byte marks that another group follows.
//
// A prefix that would overflow 32 bits fails with ErrFormat rather than
// wrapping; a stream that ends mid-prefix fails with ErrTruncated.
func ReadLength(r io.ByteReader) (uint32, error) {
	var length uint32
	for step := range maxLengthGroups {
		b, err := r.ReadByte()
		if err != nil {
			return 0, truncated(err)
		}
		if step == maxLengthGroups-1 && b > 0x0F {
			break
		}
		length |= uint32(b&0x7F) << (7 * step)
		if b&0x80 == 0 {
			return length, nil
		}
	}
	return 0, fmt.Errorf("%w: length prefix overflows 32 bits", tmodtype.ErrFormat)
}

// AppendLength appends the 7-bit-group encoding of n to dst.
func AppendLength(dst []byte, n uint32) []byte {
	return binary.AppendUvarint(dst, uint64(n))
}
