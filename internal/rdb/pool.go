package rdb

import "sync"

// keyRecordPool reuses KeyRecord shells across entries to cut allocation
// churn on snapshots with millions of keys. Nothing returned to the
// caller is pool-owned: the driver copies an entry's decoded fields out
// into the result slice before recycling the shell.
var keyRecordPool = sync.Pool{
	New: func() any {
		return &KeyRecord{}
	},
}

func getKeyRecord() *KeyRecord {
	return keyRecordPool.Get().(*KeyRecord)
}

func putKeyRecord(e *KeyRecord) {
	*e = KeyRecord{}
	keyRecordPool.Put(e)
}
