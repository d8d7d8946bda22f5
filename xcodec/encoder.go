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

	"github.com/wanproxy-go/wanproxy/internal/rollhash"
	"github.com/wanproxy-go/wanproxy/internal/segment"
)

// Encoder turns one direction's application byte stream into the XCodec
// token stream. It owns no I/O: callers hand it chunks as they arrive and
// write its return value to the wire (spec.md §4.4). One Encoder serves
// one direction of one connection; its cache and backref window are the
// only state it shares with anything else.
type Encoder struct {
	mu        sync.Mutex
	cache     *Cache
	window    *Window
	pending   []byte
	helloSent bool
}

// NewEncoder returns an Encoder over the given cache and backref window.
// cache may be shared with a co-located Decoder for the reverse direction;
// window must not be, since each direction keeps its own.
func NewEncoder(cache *Cache, window *Window) *Encoder {
	return &Encoder{cache: cache, window: window}
}

// Encode consumes the next chunk of application bytes, possibly empty, and
// returns the token-stream bytes to write out. The first call on a fresh
// Encoder leads with a HELLO token. Bytes too short to complete another
// SegmentLen window are held back in e.pending rather than emitted, since
// a later call may supply the rest of a matching segment; pass eof true
// once no more data is coming on this direction so that held-back tail
// is flushed as a literal run instead of being silently retained forever.
func (e *Encoder) Encode(data []byte, eof bool) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []byte
	if !e.helloSent {
		out = appendHello(out)
		e.helloSent = true
	}

	e.pending = append(e.pending, data...)

	i := 0
	runStart := 0
	needInit := true
	var roller rollhash.Roller

	for len(e.pending)-i >= SegmentLen {
		win := e.pending[i : i+SegmentLen]

		var h uint64
		if needInit {
			h = roller.Init(win)
			needInit = false
		} else {
			h = roller.Roll(e.pending[i-1], e.pending[i+SegmentLen-1])
		}

		stored, ok := e.cache.Lookup(h)
		switch {
		case ok && stored.EqualBytes(win):
			out = appendLiteral(out, e.pending[runStart:i])
			if idx, found := e.window.IndexOf(h); found {
				out = appendBackref(out, idx)
			} else {
				out = appendRef(out, h)
			}
			e.window.Declare(h, stored)
			i += SegmentLen
			runStart = i
			needInit = true

		case ok:
			// A different segment already owns this fingerprint
			// elsewhere in the shared cache - an actual 64-bit hash
			// collision. Demote this byte to a literal rather than
			// teach a wrong mapping (spec.md §7).
			i++

		default:
			s := segment.New(win)
			entered, collision := e.cache.Enter(h, s)
			if collision {
				i++
				continue
			}
			out = appendLiteral(out, e.pending[runStart:i])
			out = appendExtract(out, entered.Bytes())
			e.window.Declare(h, entered)
			i += SegmentLen
			runStart = i
			needInit = true
		}
	}

	out = appendLiteral(out, e.pending[runStart:i])
	if eof {
		out = appendLiteral(out, e.pending[i:])
		e.pending = nil
		return out
	}
	e.pending = append([]byte(nil), e.pending[i:]...)
	return out
}

// EncodeAsk answers an incoming ASK(fingerprint) from the peer with a
// LEARN token. fingerprint must already be present in this encoder's
// cache: ASK only ever asks about a segment this side previously extracted
// or learned itself (spec.md §4.4 "Handling ASK", §4.5 "ASK(f)").
func (e *Encoder) EncodeAsk(fingerprint uint64) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stored, ok := e.cache.Lookup(fingerprint)
	if !ok {
		return nil, newProtocolError("ask for fingerprint %016x this side never taught", fingerprint)
	}
	return appendLearn(nil, stored.Bytes()), nil
}
