// Copyright 2026 The WANproxy-Go Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xcodec

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wanproxy-go/wanproxy/internal/segment"
)

// cacheShards is the number of independent locks the cache stripes its
// fingerprint space across, so that concurrent connections mostly take
// uncontended locks on the (very common) lookup-hit path (spec.md §5).
const cacheShards = 16

type cacheShard struct {
	mu  sync.Mutex
	m   map[uint64]*segment.Segment
	lru *lru.Cache[uint64, *segment.Segment]
}

// Cache is the dictionary: fingerprint -> segment, process-wide or
// per-peer depending on how many *Cache handles the caller constructs and
// shares (spec.md §3, §9 - "process-wide cache" is a caller choice, not a
// package-level singleton).
type Cache struct {
	shards [cacheShards]*cacheShard
}

// NewCache returns an empty cache. capacity bounds the number of segments
// retained; capacity <= 0 means never evict, the simplest-correct policy
// spec.md §9 calls out. When bounded, each internal shard holds
// capacity/cacheShards entries (rounded down, at least 1) and evicts its
// own least recently used entry, so the total held is that per-shard
// figure times cacheShards, which can differ from capacity.
func NewCache(capacity int) *Cache {
	c := &Cache{}
	perShard := capacity / cacheShards
	for i := range c.shards {
		s := &cacheShard{}
		if capacity > 0 {
			if perShard < 1 {
				perShard = 1
			}
			l, err := lru.New[uint64, *segment.Segment](perShard)
			if err != nil {
				panic(err)
			}
			s.lru = l
		} else {
			s.m = make(map[uint64]*segment.Segment)
		}
		c.shards[i] = s
	}
	return c
}

// shardFor picks a lock shard for fingerprint h using a hash independent
// of h itself (xxhash over h's big-endian encoding), so that fingerprints
// whose low bits happen to cluster - plausible for similar input streams -
// still spread across shards.
func (c *Cache) shardFor(h uint64) *cacheShard {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h)
	return c.shards[xxhash.Sum64(b[:])%cacheShards]
}

func (s *cacheShard) get(h uint64) (*segment.Segment, bool) {
	if s.lru != nil {
		return s.lru.Get(h)
	}
	seg, ok := s.m[h]
	return seg, ok
}

func (s *cacheShard) put(h uint64, seg *segment.Segment) {
	if s.lru != nil {
		s.lru.Add(h, seg)
		return
	}
	s.m[h] = seg
}

// Lookup returns the segment stored under fingerprint h, if any.
func (c *Cache) Lookup(h uint64) (*segment.Segment, bool) {
	s := c.shardFor(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(h)
}

// Enter inserts (h, seg) if h is absent, as a single atomic
// check-and-insert. If h is already present, Enter never overwrites it
// (first-writer-wins): it reports whether the existing entry's bytes match
// seg's, and always returns the entry that is now authoritative in the
// cache - the caller (on the encoder side) should use it in place of seg
// to keep equal-fingerprint segments from diverging between backref window
// entries.
func (c *Cache) Enter(h uint64, seg *segment.Segment) (stored *segment.Segment, collision bool) {
	s := c.shardFor(h)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.get(h); ok {
		if existing.Equal(seg) {
			return existing, false
		}
		return existing, true
	}
	s.put(h, seg)
	return seg, false
}

// Len returns the number of segments currently held across all shards.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		if s.lru != nil {
			n += s.lru.Len()
		} else {
			n += len(s.m)
		}
		s.mu.Unlock()
	}
	return n
}
