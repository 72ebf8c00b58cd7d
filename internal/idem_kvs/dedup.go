package idem_kvs

import "container/list"

// dedupCache maps a request fingerprint to the result of its first application.
// it is not safe for concurrent use: it is owned by a shard and only touched
// while that shard's lock is held.
//
// with max == 0 the cache grows forever. with max > 0 the least recently
// used fingerprint is evicted once the bound is exceeded.
type dedupCache struct {
	max     int
	entries map[string]*list.Element
	order   *list.List // front = most recently used
}

type dedupEntry struct {
	fp     string
	result string
}

func newDedupCache(max int) *dedupCache {
	return &dedupCache{
		max:     max,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *dedupCache) lookup(fp string) (string, bool) {
	el, ok := c.entries[fp]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*dedupEntry).result, true
}

func (c *dedupCache) record(fp, result string) {
	if el, ok := c.entries[fp]; ok {
		el.Value.(*dedupEntry).result = result
		c.order.MoveToFront(el)
		return
	}
	c.entries[fp] = c.order.PushFront(&dedupEntry{fp: fp, result: result})

	if c.max > 0 && c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*dedupEntry).fp)
	}
}

func (c *dedupCache) len() int {
	return len(c.entries)
}
