package idem_kvs

import (
	"fmt"
	"testing"
)

func TestDedupCacheUnbounded(t *testing.T) {
	c := newDedupCache(0)
	for i := 0; i < 1000; i++ {
		c.record(fmt.Sprint(i), "r")
	}
	if c.len() != 1000 {
		t.Fatalf("len = %d, want 1000", c.len())
	}
	if _, ok := c.lookup("0"); !ok {
		t.Fatal("oldest entry evicted from an unbounded cache")
	}
}

func TestDedupCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newDedupCache(2)
	c.record("a", "1")
	c.record("b", "2")

	// touch a so b becomes the oldest
	if res, ok := c.lookup("a"); !ok || res != "1" {
		t.Fatalf("lookup(a) = %q, %v", res, ok)
	}
	c.record("c", "3")

	if c.len() != 2 {
		t.Fatalf("len = %d, want 2", c.len())
	}
	if _, ok := c.lookup("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.lookup("a"); !ok {
		t.Fatal("a should still be cached")
	}
	if res, ok := c.lookup("c"); !ok || res != "3" {
		t.Fatalf("lookup(c) = %q, %v", res, ok)
	}
}

func TestBoundedStoreForgetsOldRequests(t *testing.T) {
	s, err := NewStore(1, 1)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	s.Append("k", "a", "r1")
	s.Append("k", "b", "r2") // evicts r1

	if n := s.DedupLen(); n != 1 {
		t.Fatalf("DedupLen = %d, want 1", n)
	}
	// r2 is still remembered
	if got := s.Append("k", "b", "r2"); got != "ab" {
		t.Fatalf("retry of r2 = %q, want %q", got, "ab")
	}
	// r1 is past the eviction horizon and applies again
	if got := s.Append("k", "a", "r1"); got != "aba" {
		t.Fatalf("retry of evicted r1 = %q, want %q", got, "aba")
	}
}

func TestDedupBoundIsStoreWide(t *testing.T) {
	s, err := NewStore(4, 10)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	total := 0
	for _, sh := range s.shards {
		total += sh.dedup.max
	}
	if total != 10 {
		t.Fatalf("shard bounds sum to %d, want 10", total)
	}

	for i := 0; i < 200; i++ {
		k := fmt.Sprintf("key-%d", i)
		s.Put(k, "v", "r-"+k)
	}
	if n := s.DedupLen(); n > 10 {
		t.Fatalf("DedupLen = %d, want <= 10", n)
	}
}

func TestShardDedupBoundNeverUnbounded(t *testing.T) {
	// fewer entries than shards: each shard still keeps one
	for i := 0; i < 8; i++ {
		if b := shardDedupBound(3, 8, i); b != 1 {
			t.Fatalf("shard %d bound = %d, want 1", i, b)
		}
	}
	if b := shardDedupBound(0, 8, 0); b != 0 {
		t.Fatalf("unbounded store gave shard bound %d, want 0", b)
	}
}
