package rdb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQuicklistV1_ConcatenatesZiplistNodes(t *testing.T) {
	node1 := buildZiplist(ziplistStringEntry("a"), ziplistStringEntry("b"))
	node2 := buildZiplist(ziplistStringEntry("c"))

	var buf bytes.Buffer
	buf.WriteByte(0x02) // 2 nodes
	buf.WriteByte(byte(len(node1)))
	buf.Write(node1)
	buf.WriteByte(byte(len(node2)))
	buf.Write(node2)

	d := NewDecoder(bytes.NewReader(buf.Bytes()), Options{})
	elems, err := d.readQuicklistV1()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, elems)
}

func TestReadQuicklistV2_PackedListpackNode(t *testing.T) {
	e1 := lpEntry(append([]byte{0x80 | 1}, "x"...))
	lp := buildListpack(1, e1)

	var buf bytes.Buffer
	buf.WriteByte(0x01)                  // 1 node
	buf.WriteByte(quicklistContainerPacked)
	buf.WriteByte(byte(len(lp)))
	buf.Write(lp)

	d := NewDecoder(bytes.NewReader(buf.Bytes()), Options{})
	elems, err := d.readQuicklistV2()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x")}, elems)
}

func TestReadQuicklistV2_PlainNode(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x01)
	buf.WriteByte(quicklistContainerPlain)
	buf.WriteByte(0x03)
	buf.WriteString("raw")

	d := NewDecoder(bytes.NewReader(buf.Bytes()), Options{})
	elems, err := d.readQuicklistV2()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("raw")}, elems)
}

func TestReadQuicklistV2_UnknownContainerType(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x01)
	buf.WriteByte(0x09) // not 1 or 2
	buf.WriteByte(0x00)

	d := NewDecoder(bytes.NewReader(buf.Bytes()), Options{})
	_, err := d.readQuicklistV2()
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrBadEncoding, de.Kind)
}
