package envelope

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_NoEnvelope_PassesThrough(t *testing.T) {
	payload := []byte("REDIS0012...")
	r, kind, err := Open(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, KindNone, kind)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestOpen_Gzip_Unwraps(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("REDIS0012payload"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	r, kind, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, KindGzip, kind)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("REDIS0012payload"), got)
}

func TestOpen_ShortInputNoPanic(t *testing.T) {
	r, kind, err := Open(bytes.NewReader([]byte{0x1f}))
	require.NoError(t, err)
	assert.Equal(t, KindNone, kind)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f}, got)
}

func TestOpen_Zstd_Unwraps(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte("REDIS0012payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r, kind, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, KindZstd, kind)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("REDIS0012payload"), got)
}

func TestOpen_LZ4_Unwraps(t *testing.T) {
	var buf bytes.Buffer
	lw := lz4.NewWriter(&buf)
	_, err := lw.Write([]byte("REDIS0012payload"))
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	r, kind, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, KindLZ4, kind)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("REDIS0012payload"), got)
}

func TestOpen_EmptyInput(t *testing.T) {
	r, kind, err := Open(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, KindNone, kind)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}
