package idem_kvs

import "fmt"

// store.go defines the KV store data struct.
// we keep a map from string keys to string values and
// a dedup cache so that a retried put/append is never applied twice.
// both live behind the same lock so they always move together.
//
// by default there is a single shard, which means one global lock
// serializing every get, put and append.

type Store struct {
	shards []*shard
}

func NewStore(shards, maxDedup int) (*Store, error) {
	if shards < 1 {
		return nil, fmt.Errorf("error: NewStore() needs at least 1 shard, got %d", shards)
	}
	if maxDedup < 0 {
		return nil, fmt.Errorf("error: NewStore() dedup bound must be >= 0, got %d", maxDedup)
	}

	st := Store{shards: make([]*shard, shards)}
	for i := range st.shards {
		st.shards[i] = newShard(shardDedupBound(maxDedup, shards, i))
	}
	return &st, nil
}

// shardDedupBound splits the store-wide dedup bound across shards so the
// shard bounds sum to maxDedup. every shard keeps at least one entry,
// because 0 would mean unbounded.
func shardDedupBound(maxDedup, shards, i int) int {
	if maxDedup == 0 {
		return 0
	}
	n := maxDedup / shards
	if i < maxDedup%shards {
		n++
	}
	return max(n, 1)
}

func (store *Store) shardFor(key string) *shard {
	return store.shards[shardIndex(key, len(store.shards))]
}

// Get returns the value at key, or "" if there is none.
// it never touches the dedup cache.
func (store *Store) Get(key string) string {
	sh := store.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	return sh.kv[key]
}

// Put sets key to value unless this exact request was already applied,
// in which case the cached result is returned and nothing changes.
func (store *Store) Put(key, value, requestID string) string {
	res, _ := store.mutate(CmdPut, key, value, requestID)
	return res
}

// Append concatenates value onto the current value of key (an absent key
// counts as "") and returns the new value. Duplicates return the cached result.
func (store *Store) Append(key, value, requestID string) string {
	res, _ := store.mutate(CmdAppend, key, value, requestID)
	return res
}

// mutate does the dedup check and the write inside one critical section.
// the fingerprint is computed before taking the lock, hashing needs no state.
func (store *Store) mutate(op CommandType, key, value, requestID string) (string, bool) {
	fp := Fingerprint(op, requestID, key, value)

	sh := store.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if res, ok := sh.dedup.lookup(fp); ok {
		return res, true
	}

	var res string
	switch op {
	case CmdPut:
		res = value
	case CmdAppend:
		res = sh.kv[key] + value
	}
	sh.kv[key] = res
	sh.dedup.record(fp, res)

	return res, false
}

// Apply runs a command against the store.
func (store *Store) Apply(cmd Command) (ApplyResult, error) {
	switch cmd.Instruct {
	case CmdGet:
		return ApplyResult{Value: store.Get(cmd.Key)}, nil
	case CmdPut, CmdAppend:
		res, dup := store.mutate(cmd.Instruct, cmd.Key, cmd.Value, cmd.RequestID)
		return ApplyResult{Value: res, Duplicate: dup}, nil
	}
	return ApplyResult{}, fmt.Errorf("%w: %d", ErrUnknownCommand, cmd.Instruct)
}

// Len returns the number of keys held.
func (store *Store) Len() int {
	n := 0
	for _, sh := range store.shards {
		sh.mu.Lock()
		n += len(sh.kv)
		sh.mu.Unlock()
	}
	return n
}

// DedupLen returns the number of fingerprints remembered.
func (store *Store) DedupLen() int {
	n := 0
	for _, sh := range store.shards {
		sh.mu.Lock()
		n += sh.dedup.len()
		sh.mu.Unlock()
	}
	return n
}
