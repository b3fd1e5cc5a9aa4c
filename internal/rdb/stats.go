package rdb

import (
	"sync"
	"sync/atomic"
)

// decodeStats holds atomic/mutex-guarded counters updated on the hot
// decode path, cheaper to maintain than appending to the structured
// Warnings slice on every event. Snapshotted into DecodeStats once the
// pass finishes.
type decodeStats struct {
	mu         sync.Mutex
	keysByType map[byte]int64
	warnings   atomic.Int64
}

func newDecodeStats() *decodeStats {
	return &decodeStats{keysByType: make(map[byte]int64)}
}

func (s *decodeStats) recordKey(typeByte byte) {
	s.mu.Lock()
	s.keysByType[typeByte]++
	s.mu.Unlock()
}

func (s *decodeStats) recordWarning() {
	s.warnings.Add(1)
}

func (s *decodeStats) snapshot(bytesRead int64) DecodeStats {
	s.mu.Lock()
	byType := make(map[byte]int64, len(s.keysByType))
	for k, v := range s.keysByType {
		byType[k] = v
	}
	s.mu.Unlock()
	return DecodeStats{
		KeysByType: byType,
		Warnings:   s.warnings.Load(),
		BytesRead:  bytesRead,
	}
}
