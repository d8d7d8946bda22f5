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
	"github.com/stretchr/testify/require"
)

func TestPipePairRoundTrip(t *testing.T) {
	cache := NewCache(0)
	client := NewPipePair(RoleClient, cache)
	server := NewPipePair(RoleServer, cache)

	wire, err := client.Outgoing().Push([]byte("hello from client"), true)
	require.NoError(t, err)

	got, err := server.Incoming().Push(wire, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello from client"), got)
}

func TestPipePairRepeatAcrossSeparateCaches(t *testing.T) {
	// Two independent caches, as real peers would have: the server only
	// learns what the client's encoder has told it over the wire.
	client := NewPipePair(RoleClient, NewCache(0))
	server := NewPipePair(RoleServer, NewCache(0))

	p := distinctSegment(0)

	wire, err := client.Outgoing().Push(p, false)
	require.NoError(t, err)

	app, err := server.Incoming().Push(wire, false)
	require.NoError(t, err)
	assert.Equal(t, p, app)

	// Second occurrence becomes a REF/BACKREF on the wire; the server
	// already knows it from the first EXTRACT, so no ASK is needed.
	wire, err = client.Outgoing().Push(p, false)
	require.NoError(t, err)
	assert.Greater(t, len(p), len(wire))

	app, err = server.Incoming().Push(wire, false)
	require.NoError(t, err)
	assert.Equal(t, p, app)
}

func TestPipePairErrorIsSticky(t *testing.T) {
	pair := NewPipePair(RoleServer, NewCache(0))

	bad := []byte{Magic, 0x7f}
	_, err := pair.Incoming().Push(bad, false)
	require.Error(t, err)

	_, err2 := pair.Incoming().Push([]byte("more"), false)
	assert.Equal(t, err, err2)

	_, err3 := pair.Outgoing().Push([]byte("data"), false)
	assert.Equal(t, err, err3)
}
