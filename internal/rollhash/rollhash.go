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

// Package rollhash computes the 64-bit fingerprint XCodec uses to name a
// segment. The hash is a multiplicative polynomial hash over a fixed-length
// window: it is position-independent (hashing a window from scratch gives
// the same value as rolling into it one byte at a time) and costs one
// multiply-add per byte, as spec.md §4.1 requires.
package rollhash

// Window is the length, in bytes, over which a fingerprint is computed. It
// must match segment.Len.
const Window = 128

// mul is the multiplier. It is odd (so it's invertible mod 2^64) and has no
// short bit-pattern cycles, which keeps the hash from collapsing on the
// kind of repetitive network payloads (runs of zero bytes, ASCII text) this
// codec sees in practice.
const mul uint64 = 0x9E3779B97F4A7C15

// mulPow is mul^(Window-1) mod 2^64, precomputed so Roller.Roll can remove a
// dropped byte's contribution in O(1).
var mulPow = func() uint64 {
	p := uint64(1)
	for i := 0; i < Window-1; i++ {
		p *= mul
	}
	return p
}()

// Hash computes the fingerprint of window, which must be exactly Window
// bytes, from scratch.
//
//	h = sum(window[i] * mul^(Window-1-i)) mod 2^64
func Hash(window []byte) uint64 {
	if len(window) != Window {
		panic("rollhash: window must be exactly Window bytes")
	}
	var h uint64
	for _, b := range window {
		h = h*mul + uint64(b)
	}
	return h
}

// Roller maintains the incremental state needed to slide a Window-byte
// window forward one byte at a time without rehashing it from scratch.
type Roller struct {
	h uint64
}

// NewRoller returns a Roller with no window loaded yet.
func NewRoller() *Roller {
	return &Roller{}
}

// Init seeds the roller with window (exactly Window bytes) and returns its
// hash. Equivalent to Hash(window) but also arms Roll for the next byte.
func (r *Roller) Init(window []byte) uint64 {
	r.h = Hash(window)
	return r.h
}

// Roll advances the window by one byte: dropped is the byte leaving the
// window at its start, added is the byte entering it at its end. Roll
// returns the same value as calling Hash on the shifted window from
// scratch.
func (r *Roller) Roll(dropped, added byte) uint64 {
	r.h = (r.h-uint64(dropped)*mulPow)*mul + uint64(added)
	return r.h
}

// Reset clears the roller so the next Init call starts fresh.
func (r *Roller) Reset() {
	r.h = 0
}
