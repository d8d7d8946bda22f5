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

	"github.com/wanproxy-go/wanproxy/internal/rollhash"
	"github.com/wanproxy-go/wanproxy/internal/segment"
)

func roundTrip(t *testing.T, input []byte) []byte {
	t.Helper()
	enc := NewEncoder(NewCache(0), NewWindow(WindowCap))
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	wire := enc.Encode(input, true)
	out, outbound, err := dec.Decode(wire)
	require.NoError(t, err)
	assert.Empty(t, outbound, "a self-contained stream never needs to ask for anything")
	return out
}

func TestDecodeRoundTripPassThrough(t *testing.T) {
	got := roundTrip(t, []byte("hello world"))
	assert.Equal(t, []byte("hello world"), got)
}

func TestDecodeRoundTripEmpty(t *testing.T) {
	got := roundTrip(t, nil)
	assert.Empty(t, got)
}

func TestDecodeRoundTripEscape(t *testing.T) {
	got := roundTrip(t, []byte{Magic})
	assert.Equal(t, []byte{Magic}, got)
}

func TestDecodeRoundTripLearnAndReuse(t *testing.T) {
	p := distinctSegment(0)
	q := distinctSegment(90)
	input := append(append(append([]byte{}, p...), q...), p...)

	got := roundTrip(t, input)
	assert.Equal(t, input, got)
}

func TestDecodeRoundTripBackref(t *testing.T) {
	p := distinctSegment(0)
	q := distinctSegment(90)
	input := append(append(append([]byte{}, p...), q...), p...)

	enc := NewEncoder(NewCache(0), NewWindow(WindowCap))
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	wire := enc.Encode(input, true)
	out, _, err := dec.Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, input, out)

	// encoder and decoder windows must agree on what's been emitted.
	assert.Equal(t, enc.window.Len(), dec.window.Len())
	for i := 0; i < enc.window.Len(); i++ {
		encSeg, ok := enc.window.Dereference(i)
		require.True(t, ok)
		decSeg, ok := dec.window.Dereference(i)
		require.True(t, ok)
		assert.True(t, encSeg.Equal(decSeg), "window entry %d must match", i)
	}
}

func TestDecodeRoundTripArbitraryLengths(t *testing.T) {
	for _, n := range []int{0, 1, 50, 127, 128, 129, 200, 256, 300} {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(i * 7)
		}
		got := roundTrip(t, buf)
		assert.Equal(t, buf, got, "length %d", n)
	}
}

func TestDecodeAskLearnRecovery(t *testing.T) {
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	p := distinctSegment(0)
	h := rollhash.Hash(p)

	wire := appendHello(nil)
	wire = appendRef(wire, h)
	wire = append(wire, []byte("tail")...)

	out, outbound, err := dec.Decode(wire)
	require.NoError(t, err)
	assert.Empty(t, out, "no output may appear while the REF is unresolved")
	assert.NotEmpty(t, outbound, "decoder must emit an ASK for the unknown fingerprint")
	assert.Equal(t, Magic, outbound[0])
	assert.Equal(t, byte(opAsk), outbound[1])

	learn := appendLearn(nil, p)
	out, outbound, err = dec.Decode(learn)
	require.NoError(t, err)
	assert.Empty(t, outbound)
	assert.Equal(t, append(append([]byte{}, p...), []byte("tail")...), out)
}

func TestDecodeAskDeduplicated(t *testing.T) {
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	p := distinctSegment(0)
	h := rollhash.Hash(p)

	wire := appendHello(nil)
	wire = appendRef(wire, h)
	wire = appendRef(wire, h)

	_, outbound, err := dec.Decode(wire)
	require.NoError(t, err)

	count := 0
	for i := 0; i+1 < len(outbound); i++ {
		if outbound[i] == Magic && outbound[i+1] == opAsk {
			count++
		}
	}
	assert.Equal(t, 1, count, "the same outstanding fingerprint must only be asked for once")
}

func TestDecodeCollisionStreamFatal(t *testing.T) {
	cache := NewCache(0)
	dec := NewDecoder(cache, NewWindow(WindowCap), nil)

	real := distinctSegment(0)
	other := segment.New(distinctSegment(60))
	h := rollhash.Hash(real)
	cache.Enter(h, other)

	wire := appendHello(nil)
	wire = append(wire, []byte("prefix")...)
	wire = appendExtract(wire, real)

	out, _, err := dec.Decode(wire)

	var ce *CollisionError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, h, ce.Fingerprint)
	assert.Equal(t, []byte("prefix"), out, "bytes before the collision must survive")
}

func TestDecodeDuplicateHelloIsFatal(t *testing.T) {
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	wire := appendHello(nil)
	wire = appendHello(wire)

	_, _, err := dec.Decode(wire)
	var pe *ProtocolError
	assert.ErrorAs(t, err, &pe)
}

func TestDecodeHelloBadOptionLength(t *testing.T) {
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	wire := []byte{Magic, opHello, 0x01, 0x00}
	_, _, err := dec.Decode(wire)
	var pe *ProtocolError
	assert.ErrorAs(t, err, &pe)
}

func TestDecodeUnknownOpcodeIsFatal(t *testing.T) {
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	wire := appendHello(nil)
	wire = append(wire, Magic, 0x7f)
	_, _, err := dec.Decode(wire)
	var pe *ProtocolError
	assert.ErrorAs(t, err, &pe)
}

func TestDecodeBackrefOutOfRangeIsFatal(t *testing.T) {
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	wire := appendHello(nil)
	wire = appendBackref(wire, 3)
	_, _, err := dec.Decode(wire)
	var pe *ProtocolError
	assert.ErrorAs(t, err, &pe)
}

func TestDecodeAskWithNoLocalEncoderIsFatal(t *testing.T) {
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	wire := appendHello(nil)
	wire = appendAsk(wire, 0xdeadbeef)
	_, _, err := dec.Decode(wire)
	var pe *ProtocolError
	assert.ErrorAs(t, err, &pe)
}

func TestDecodeAskWithLocalEncoderAnswers(t *testing.T) {
	cache := NewCache(0)
	p := distinctSegment(0)
	h := rollhash.Hash(p)
	cache.Enter(h, segment.New(p))

	enc := NewEncoder(cache, NewWindow(WindowCap))
	dec := NewDecoder(cache, NewWindow(WindowCap), enc)

	wire := appendHello(nil)
	wire = appendAsk(wire, h)

	_, outbound, err := dec.Decode(wire)
	require.NoError(t, err)

	want := appendLearn(nil, p)
	assert.Equal(t, want, outbound)
}

func TestDecodeWindowOrderSurvivesBlockedExtract(t *testing.T) {
	// Stream order: REF(f1) arrives first and is unresolvable, blocking the
	// decoder; EXTRACT(q) for a second, unrelated segment arrives next,
	// still while blocked; LEARN(p) finally resolves f1. An encoder
	// producing this exact sequence would have declared f1 then q, in that
	// order, leaving q at window index 0 and p(f1) at index 1. The decoder
	// must land on the same window regardless of which token's ASK
	// resolves last (spec.md §4.3).
	cache := NewCache(0)
	p := distinctSegment(0)
	q := distinctSegment(90)
	f1 := rollhash.Hash(p)

	dec := NewDecoder(cache, NewWindow(WindowCap), nil)

	wire := appendHello(nil)
	wire = appendRef(wire, f1)
	wire = appendExtract(wire, q)

	out, outbound, err := dec.Decode(wire)
	require.NoError(t, err)
	assert.Empty(t, out, "nothing may surface while f1's REF is still blocked")
	assert.NotEmpty(t, outbound)

	out, _, err = dec.Decode(appendLearn(nil, p))
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, p...), q...), out)

	qSeg, ok := dec.window.Dereference(0)
	require.True(t, ok)
	assert.True(t, qSeg.Equal(segment.New(q)), "q must be declared last, at index 0")

	pSeg, ok := dec.window.Dereference(1)
	require.True(t, ok)
	assert.True(t, pSeg.Equal(segment.New(p)), "p must be declared first, at index 1")
}

func TestDecodeIncompleteTokenWaitsForMoreInput(t *testing.T) {
	dec := NewDecoder(NewCache(0), NewWindow(WindowCap), nil)

	wire := appendHello(nil)
	full := appendRef(nil, 42)
	out, outbound, err := dec.Decode(append(wire, full[:5]...))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, outbound)

	out, outbound, err = dec.Decode(full[5:])
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotEmpty(t, outbound) // unresolved REF(42) triggers an ASK
}
