package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdbsnap/internal/rdb"
)

func TestWrite_FullFormRoundTripsThroughJSON(t *testing.T) {
	freq := 3
	result := &rdb.SnapshotResult{
		MagicVersion: 12,
		Keys: []rdb.KeyRecord{
			{
				Key:     []byte("greeting"),
				DBIndex: 0,
				Freq:    &freq,
				Value:   rdb.LogicalValue{Kind: rdb.KindString, Str: []byte("hello")},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result, Options{}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, float64(12), doc["magic_version"])

	keys := doc["keys"].([]any)
	require.Len(t, keys, 1)
	key := keys[0].(map[string]any)
	assert.Equal(t, "greeting", key["key"])
	assert.Equal(t, "hello", key["value"])
	assert.Equal(t, float64(3), key["freq"])
}

func TestWrite_NonUTF8IsHexEscaped(t *testing.T) {
	result := &rdb.SnapshotResult{
		Keys: []rdb.KeyRecord{
			{
				Key:   []byte{0xff, 0xfe},
				Value: rdb.LogicalValue{Kind: rdb.KindString, Str: []byte{0x00, 0xff}},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result, Options{}))
	assert.Contains(t, buf.String(), `\\x`)
}

func TestWrite_SimpleFlattensHashAndZSet(t *testing.T) {
	result := &rdb.SnapshotResult{
		Keys: []rdb.KeyRecord{
			{
				Key: []byte("h"),
				Value: rdb.LogicalValue{
					Kind: rdb.KindHash,
					Hash: []rdb.HashField{{Field: []byte("f1"), Value: []byte("v1")}},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result, Options{Simple: true}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	keys := doc["keys"].([]any)
	key := keys[0].(map[string]any)
	value := key["value"].(map[string]any)
	assert.Equal(t, "v1", value["f1"])
}

func TestWrite_Pretty_IndentsOutput(t *testing.T) {
	result := &rdb.SnapshotResult{}

	var plain, pretty bytes.Buffer
	require.NoError(t, Write(&plain, result, Options{}))
	require.NoError(t, Write(&pretty, result, Options{Pretty: true}))

	assert.NotContains(t, plain.String(), "\n  ")
	assert.Contains(t, pretty.String(), "\n  ")
}

func TestWrite_DecodeErrorOmitsValue(t *testing.T) {
	result := &rdb.SnapshotResult{
		Keys: []rdb.KeyRecord{
			{Key: []byte("broken"), DecodeErr: "BadEncoding at offset 4"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, result, Options{}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	keys := doc["keys"].([]any)
	key := keys[0].(map[string]any)
	assert.Equal(t, "BadEncoding at offset 4", key["decode_error"])
	_, hasValue := key["value"]
	assert.False(t, hasValue, "a placeholder entry must not carry a value field")
}
