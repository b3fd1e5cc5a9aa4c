package rdb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildZiplist assembles a minimal ziplist blob: header + raw entry bytes
// (each already including its prevlen byte) + terminator.
func buildZiplist(entries ...[]byte) []byte {
	var body []byte
	for _, e := range entries {
		body = append(body, e...)
	}
	header := make([]byte, 10)
	total := uint32(10 + len(body) + 1)
	binary.LittleEndian.PutUint32(header[0:4], total)
	binary.LittleEndian.PutUint32(header[4:8], uint32(10+len(body)))
	binary.LittleEndian.PutUint16(header[8:10], uint16(len(entries)))
	out := append(header, body...)
	return append(out, 0xFF)
}

func ziplistStringEntry(s string) []byte {
	// prevlen=0 (first entry), 6-bit-length string encoding.
	return append([]byte{0x00, byte(len(s))}, s...)
}

func ziplistInt16Entry(v int16) []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, uint16(v))
	return append([]byte{0x00, 0xC0}, buf...)
}

func TestParseZiplist_Strings(t *testing.T) {
	blob := buildZiplist(ziplistStringEntry("alpha"), ziplistStringEntry("beta"))
	entries, err := parseZiplist(blob)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("alpha"), []byte("beta")}, entries)
}

func TestParseZiplist_ImmediateAndEncodedIntegers(t *testing.T) {
	imm := []byte{0x00, 0xF5} // 1111xxxx, xxxx=5 -> value 4
	blob := buildZiplist(imm, ziplistInt16Entry(-7))
	entries, err := parseZiplist(blob)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("4"), []byte("-7")}, entries)
}

func TestParseZiplist_Int8(t *testing.T) {
	entry := []byte{0x00, 0xFE, 0xFF} // int8 encoding, value -1
	blob := buildZiplist(entry)
	entries, err := parseZiplist(blob)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("-1")}, entries)
}

func TestParseZiplist_LargePrevlen(t *testing.T) {
	// prevlen >= 254 uses a 5-byte marker: 254 followed by a LE32 length.
	prevlen := append([]byte{254}, 0, 0, 0, 0)
	entry := append(prevlen, 0x03, 'f', 'o', 'o') // 6-bit string "foo"
	blob := buildZiplist(entry)
	entries, err := parseZiplist(blob)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("foo")}, entries)
}

func TestParseZiplist_MissingTerminator(t *testing.T) {
	blob := buildZiplist(ziplistStringEntry("x"))
	blob = blob[:len(blob)-1] // drop the 0xFF terminator
	_, err := parseZiplist(blob)
	require.Error(t, err)
}

func TestParseZiplist_TruncatedHeader(t *testing.T) {
	_, err := parseZiplist([]byte{0, 0, 0})
	require.Error(t, err)
}

func TestParseZiplist_TruncatedMultiByteInteger(t *testing.T) {
	entry := []byte{0x00, 0xD0, 0x01} // int32 encoding, but only 1 payload byte
	blob := buildZiplist(entry)
	_, err := parseZiplist(blob)
	require.Error(t, err)
}
