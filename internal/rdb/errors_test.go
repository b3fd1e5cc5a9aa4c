package rdb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeError_ErrorMessageIncludesOffsetAndWrappedError(t *testing.T) {
	inner := errors.New("short read")
	err := newDecodeError(ErrIo, 42, inner)
	assert.Equal(t, "Io at offset 42: short read", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestDecodeError_ErrorMessageWithoutWrappedError(t *testing.T) {
	err := newDecodeError(ErrBadEncoding, 7, nil)
	assert.Equal(t, "BadEncoding at offset 7", err.Error())
}

func TestPool_RecycledRecordIsZeroed(t *testing.T) {
	rec := getKeyRecord()
	rec.Key = []byte("leftover")
	rec.DBIndex = 5
	putKeyRecord(rec)

	rec2 := getKeyRecord()
	assert.Nil(t, rec2.Key, "a recycled record must not leak the previous entry's fields")
	assert.Equal(t, 0, rec2.DBIndex)
}
