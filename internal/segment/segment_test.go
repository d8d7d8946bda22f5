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

package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func window(b byte) []byte {
	w := make([]byte, Len)
	for i := range w {
		w[i] = b
	}
	return w
}

func TestNewAndBytes(t *testing.T) {
	s := New(window('a'))
	assert.Equal(t, window('a'), s.Bytes())
}

func TestEqual(t *testing.T) {
	a := New(window('a'))
	b := New(window('a'))
	c := New(window('b'))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestEqualBytes(t *testing.T) {
	a := New(window('a'))
	assert.True(t, a.EqualBytes(window('a')))
	assert.False(t, a.EqualBytes(window('z')))
}

func TestNewPanicsOnWrongLength(t *testing.T) {
	assert.Panics(t, func() {
		New([]byte{1, 2, 3})
	})
}
