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

// Package segment implements the fixed-length immutable byte block that the
// XCodec dictionary treats as its atomic unit.
package segment

import "bytes"

// Len is the compile-time segment length. Changing it invalidates every
// fingerprint already computed under the old value.
const Len = 128

// Segment is an immutable 128-byte block, shared by reference between the
// dictionary cache, the backref window and in-flight output. Go's garbage
// collector gives a *Segment reference-counted-like lifetime for free, so
// unlike the C++ original there is no explicit refcount field to bump or
// release.
type Segment struct {
	data [Len]byte
}

// New copies window (which must be exactly Len bytes) into a new Segment.
func New(window []byte) *Segment {
	if len(window) != Len {
		panic("segment: window must be exactly Len bytes")
	}
	s := new(Segment)
	copy(s.data[:], window)
	return s
}

// Bytes returns the segment's contents. The caller must not modify it.
func (s *Segment) Bytes() []byte {
	return s.data[:]
}

// Equal reports whether s holds the same bytes as other.
func (s *Segment) Equal(other *Segment) bool {
	return s.data == other.data
}

// EqualBytes reports whether s holds the same bytes as window, which must be
// exactly Len bytes.
func (s *Segment) EqualBytes(window []byte) bool {
	return bytes.Equal(s.data[:], window)
}
