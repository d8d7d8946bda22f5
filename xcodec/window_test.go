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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowDeclareAndDereference(t *testing.T) {
	w := NewWindow(4)
	a, b, c := seg('a'), seg('b'), seg('c')

	w.Declare(1, a)
	w.Declare(2, b)
	w.Declare(3, c)

	got, ok := w.Dereference(0)
	assert.True(t, ok)
	assert.True(t, got.Equal(c))

	got, ok = w.Dereference(2)
	assert.True(t, ok)
	assert.True(t, got.Equal(a))

	_, ok = w.Dereference(3)
	assert.False(t, ok)
}

func TestWindowIndexOf(t *testing.T) {
	w := NewWindow(4)
	w.Declare(1, seg('a'))
	w.Declare(2, seg('b'))

	idx, ok := w.IndexOf(1)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = w.IndexOf(99)
	assert.False(t, ok)
}

func TestWindowRedeclareMovesToFront(t *testing.T) {
	w := NewWindow(4)
	w.Declare(1, seg('a'))
	w.Declare(2, seg('b'))
	w.Declare(1, seg('a'))

	idx, ok := w.IndexOf(1)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 2, w.Len())
}

func TestWindowEvictsBeyondCapacity(t *testing.T) {
	w := NewWindow(2)
	w.Declare(1, seg('a'))
	w.Declare(2, seg('b'))
	w.Declare(3, seg('c'))

	assert.Equal(t, 2, w.Len())
	_, ok := w.IndexOf(1)
	assert.False(t, ok, "oldest entry must be evicted once capacity is exceeded")
}

func TestNewWindowClampsCapacity(t *testing.T) {
	w := NewWindow(WindowCap + 100)
	for i := 0; i < WindowCap+10; i++ {
		w.Declare(uint64(i), seg(byte(i)))
	}
	assert.Equal(t, WindowCap, w.Len())
}
