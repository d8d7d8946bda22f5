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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wanproxy-go/wanproxy/internal/segment"
)

func seg(b byte) *segment.Segment {
	w := make([]byte, SegmentLen)
	for i := range w {
		w[i] = b
	}
	return segment.New(w)
}

func TestCacheLookupMiss(t *testing.T) {
	c := NewCache(0)
	_, ok := c.Lookup(1)
	assert.False(t, ok)
}

func TestCacheEnterThenLookup(t *testing.T) {
	c := NewCache(0)
	s := seg('a')

	stored, collision := c.Enter(42, s)
	assert.False(t, collision)
	assert.True(t, stored.Equal(s))

	got, ok := c.Lookup(42)
	assert.True(t, ok)
	assert.True(t, got.Equal(s))
}

func TestCacheIdempotentEnter(t *testing.T) {
	c := NewCache(0)
	a := seg('a')
	b := seg('a') // distinct pointer, equal bytes

	_, collision1 := c.Enter(7, a)
	stored, collision2 := c.Enter(7, b)

	assert.False(t, collision1)
	assert.False(t, collision2)
	assert.True(t, stored.Equal(a))
	assert.Equal(t, 1, c.Len())
}

func TestCacheCollision(t *testing.T) {
	c := NewCache(0)
	a := seg('a')
	b := seg('b')

	c.Enter(7, a)
	stored, collision := c.Enter(7, b)

	assert.True(t, collision)
	assert.True(t, stored.Equal(a), "first writer wins")
}

func TestCacheBoundedEviction(t *testing.T) {
	c := NewCache(cacheShards) // 1 entry per shard
	// Force everything into shard 0 isn't guaranteed, but total capacity
	// across all shards is cacheShards entries; inserting many more must
	// not grow Len beyond capacity.
	for i := uint64(0); i < 4096; i++ {
		c.Enter(i, seg(byte(i)))
	}
	assert.LessOrEqual(t, c.Len(), cacheShards)
}

func TestCacheConcurrentEnter(t *testing.T) {
	c := NewCache(0)
	s := seg('x')

	var wg sync.WaitGroup
	results := make([]bool, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, collision := c.Enter(99, s)
			results[i] = collision
		}(i)
	}
	wg.Wait()

	for _, collision := range results {
		assert.False(t, collision, "identical segment must never collide with itself")
	}
	assert.Equal(t, 1, c.Len())
}
