package rdb

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeStats_SnapshotIsIndependentCopy(t *testing.T) {
	s := newDecodeStats()
	s.recordKey(typeString)
	s.recordKey(typeString)
	s.recordWarning()

	snap := s.snapshot(128)
	assert.Equal(t, int64(2), snap.KeysByType[typeString])
	assert.Equal(t, int64(1), snap.Warnings)
	assert.Equal(t, int64(128), snap.BytesRead)

	s.recordKey(typeString)
	assert.Equal(t, int64(2), snap.KeysByType[typeString], "a taken snapshot must not observe later updates")
}

func TestDecodeStats_ConcurrentRecordKey(t *testing.T) {
	s := newDecodeStats()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.recordKey(typeList)
		}()
	}
	wg.Wait()

	snap := s.snapshot(0)
	assert.Equal(t, int64(100), snap.KeysByType[typeList])
}
