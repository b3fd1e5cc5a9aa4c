package rdb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIntset(width uint32, values []int64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:4], width)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(values)))
	for _, v := range values {
		buf := make([]byte, width)
		switch width {
		case 2:
			binary.LittleEndian.PutUint16(buf, uint16(int16(v)))
		case 4:
			binary.LittleEndian.PutUint32(buf, uint32(int32(v)))
		case 8:
			binary.LittleEndian.PutUint64(buf, uint64(v))
		}
		out = append(out, buf...)
	}
	return out
}

func TestParseIntset_Width2(t *testing.T) {
	blob := buildIntset(2, []int64{1, -2, 32767})
	members, err := parseIntset(blob)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("1"), []byte("-2"), []byte("32767")}, members)
}

func TestParseIntset_Width4(t *testing.T) {
	blob := buildIntset(4, []int64{100000, -100000})
	members, err := parseIntset(blob)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("100000"), []byte("-100000")}, members)
}

func TestParseIntset_Width8(t *testing.T) {
	blob := buildIntset(8, []int64{9223372036854775807, -1})
	members, err := parseIntset(blob)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("9223372036854775807"), []byte("-1")}, members)
}

func TestParseIntset_InvalidWidth(t *testing.T) {
	blob := buildIntset(3, nil)
	_, err := parseIntset(blob)
	require.Error(t, err)
}

func TestParseIntset_TooShort(t *testing.T) {
	_, err := parseIntset([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestParseIntset_TruncatedEntries(t *testing.T) {
	blob := buildIntset(4, []int64{1, 2})
	blob = blob[:len(blob)-2] // drop part of the last entry
	members, err := parseIntset(blob)
	require.Error(t, err)
	assert.Len(t, members, 1, "fully-read entries before the truncation are still returned")
}
