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

import "github.com/wanproxy-go/wanproxy/internal/segment"

type windowEntry struct {
	fingerprint uint64
	seg         *segment.Segment
}

// Window is the bounded ring of recently-emitted segments that lets the
// encoder substitute a one-byte BACKREF index for a full 8-byte REF
// fingerprint. The encoder's and the decoder's windows for one direction
// must stay bitwise identical: both sides call Declare in exactly the same
// order, once per segment emitted (spec.md §4.3).
type Window struct {
	cap     int
	entries []windowEntry
}

// NewWindow returns an empty window holding at most capacity entries.
// capacity must be at most WindowCap, since BACKREF addresses an entry with
// a single index byte.
func NewWindow(capacity int) *Window {
	if capacity <= 0 || capacity > WindowCap {
		capacity = WindowCap
	}
	return &Window{cap: capacity}
}

// Declare pushes (fingerprint, seg) to index 0, shifting every other entry
// back by one. If fingerprint was already present, its old slot is removed
// first, so declaring it again moves it to the front rather than
// duplicating it. Entries beyond the window's capacity are dropped.
func (w *Window) Declare(fingerprint uint64, seg *segment.Segment) {
	for i, e := range w.entries {
		if e.fingerprint == fingerprint {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			break
		}
	}

	w.entries = append(w.entries, windowEntry{})
	copy(w.entries[1:], w.entries[:len(w.entries)-1])
	w.entries[0] = windowEntry{fingerprint: fingerprint, seg: seg}

	if len(w.entries) > w.cap {
		w.entries = w.entries[:w.cap]
	}
}

// Dereference returns the segment emitted index positions ago (0 = most
// recent), or false if the window doesn't have that many entries yet.
func (w *Window) Dereference(index int) (*segment.Segment, bool) {
	if index < 0 || index >= len(w.entries) {
		return nil, false
	}
	return w.entries[index].seg, true
}

// DereferenceEntry is Dereference plus the entry's fingerprint, needed by
// the decoder to re-declare a resolved BACKREF at index 0, mirroring the
// encoder's own re-declare on emitting a BACKREF (spec.md §4.4).
func (w *Window) DereferenceEntry(index int) (fingerprint uint64, seg *segment.Segment, ok bool) {
	if index < 0 || index >= len(w.entries) {
		return 0, nil, false
	}
	e := w.entries[index]
	return e.fingerprint, e.seg, true
}

// IndexOf returns the smallest index at which fingerprint currently
// appears in the window, or false if it isn't present.
func (w *Window) IndexOf(fingerprint uint64) (int, bool) {
	for i, e := range w.entries {
		if e.fingerprint == fingerprint {
			return i, true
		}
	}
	return 0, false
}

// Len returns the number of entries currently held.
func (w *Window) Len() int {
	return len(w.entries)
}
