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

package controller

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanproxy-go/wanproxy/confengine"
	"github.com/wanproxy-go/wanproxy/pipeline"
	"github.com/wanproxy-go/wanproxy/xcodec"
)

func noPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	conf, err := confengine.LoadContent([]byte("pipeline: []\n"))
	require.NoError(t, err)
	pl, err := pipeline.New(conf)
	require.NoError(t, err)
	return pl
}

func TestSessionRoundTrip(t *testing.T) {
	pl := noPipeline(t)
	cache := xcodec.NewCache(0)

	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close(); serverConn.Close() })

	client := newSession(clientConn, xcodec.RoleClient, cache, pl)
	srv := newSession(serverConn, xcodec.RoleServer, cache, pl)

	var mu sync.Mutex
	var got []byte
	done := make(chan struct{})
	srv.OnData = func(b []byte) {
		mu.Lock()
		got = append(got, b...)
		mu.Unlock()
		select {
		case <-done:
		default:
			close(done)
		}
	}
	go srv.serve()
	go client.serve() // drains the server's HELLO so its read loop never blocks on net.Pipe

	require.NoError(t, client.Send([]byte("hello session")))
	require.NoError(t, client.Flush())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivered data")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []byte("hello session"), got)
}

func TestSessionDedupesRepeatedSegmentAcrossSends(t *testing.T) {
	pl := noPipeline(t)
	cache := xcodec.NewCache(0)

	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close(); serverConn.Close() })

	client := newSession(clientConn, xcodec.RoleClient, cache, pl)
	srv := newSession(serverConn, xcodec.RoleServer, cache, pl)

	var mu sync.Mutex
	var got [][]byte
	recv := make(chan struct{}, 8)
	srv.OnData = func(b []byte) {
		cp := append([]byte(nil), b...)
		mu.Lock()
		got = append(got, cp)
		mu.Unlock()
		recv <- struct{}{}
	}
	go srv.serve()
	go client.serve() // drains the server's HELLO so its read loop never blocks on net.Pipe

	payload := make([]byte, 128)
	for i := range payload {
		payload[i] = byte(i)
	}

	require.NoError(t, client.Send(payload))
	<-recv
	require.NoError(t, client.Send(payload))
	<-recv

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, payload, got[0])
	assert.Equal(t, payload, got[1])
}
