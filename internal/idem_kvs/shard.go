package idem_kvs

import (
	"hash/fnv"
	"sync"
)

// shard is one critical section of the store: its records, the dedup
// entries for those records and the lock guarding both.
// the key is part of every fingerprint, so a key's dedup entries always
// land in the same shard as the key.
type shard struct {
	mu    sync.Mutex
	kv    map[string]string
	dedup *dedupCache
}

func newShard(maxDedup int) *shard {
	return &shard{
		kv:    make(map[string]string),
		dedup: newDedupCache(maxDedup),
	}
}

// shardIndex picks which shard holds a given key.
// hash the key and mod by the number of shards.
func shardIndex(key string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
