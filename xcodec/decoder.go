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
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/wanproxy-go/wanproxy/internal/rollhash"
	"github.com/wanproxy-go/wanproxy/internal/segment"
)

// queuedItem is one deferred unit of decoded output, held back while the
// decoder is Blocked, in the exact order its token appeared on the wire.
// Three shapes:
//   - plain data (an ESCAPE literal or the bytes before a Magic): only
//     data is set.
//   - a resolved token (EXTRACT, a REF that hit the cache, a BACKREF) that
//     still needs its window Declare applied in stream order: fingerprint
//     and stored are set.
//   - a REF that named an unlearned fingerprint: fingerprint and deferred
//     are set; it is resolved against the cache once every outstanding ask
//     has cleared (spec.md §4.5, §3 "Queued buffer").
//
// Declaring window entries through this queue rather than at parse time
// keeps the decoder's window in the same order the encoder declared it in,
// even when a later, already-cached token arrives on the wire while an
// earlier REF is still blocked on its ASK (spec.md §4.3 "identical...
// byte-for-byte").
type queuedItem struct {
	data        []byte
	fingerprint uint64
	stored      *segment.Segment
	deferred    bool
}

// Decoder reassembles one direction's application byte stream from its
// XCodec token stream. It is a small state machine with two states,
// Normal and Blocked, per spec.md §4.5.
type Decoder struct {
	mu sync.Mutex

	cache   *Cache
	window  *Window
	encoder *Encoder // local encoder servicing incoming ASK tokens; nil in decoder-only mode

	buf    []byte
	output []byte

	asked   map[uint64]struct{}
	queue   []queuedItem
	blocked bool

	helloSeen bool
}

// NewDecoder returns a Decoder over the given cache and backref window.
// encoder may be nil, in which case an incoming ASK token is stream-fatal
// (spec.md §4.5 "ASK(f)").
func NewDecoder(cache *Cache, window *Window, encoder *Encoder) *Decoder {
	return &Decoder{
		cache:   cache,
		window:  window,
		encoder: encoder,
		asked:   make(map[uint64]struct{}),
	}
}

// Decode consumes the next chunk of wire bytes. It returns application
// bytes ready for the downstream sink, any control bytes (ASK requests
// this decoder originates, LEARN replies this decoder's local encoder
// produces) that must be written back out to the peer, and a non-nil
// error exactly when a stream-fatal condition was encountered - at which
// point the Decoder must not be used again.
func (d *Decoder) Decode(chunk []byte) (output []byte, outbound []byte, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf = append(d.buf, chunk...)

	pos := 0
	for {
		rest := d.buf[pos:]
		idx := bytes.IndexByte(rest, Magic)
		if idx < 0 {
			d.emit(rest)
			pos = len(d.buf)
			break
		}
		idx += pos

		if idx > pos {
			d.emit(d.buf[pos:idx])
		}

		consumed, ob, serr := d.step(idx)
		if serr != nil {
			out := d.output
			d.output = nil
			d.buf = nil
			return out, outbound, serr
		}
		if consumed == 0 {
			pos = idx
			break
		}
		outbound = append(outbound, ob...)
		pos = idx + consumed

		if d.blocked && len(d.asked) == 0 {
			d.blocked = false
			d.emit(d.drainQueue())
		}
	}

	d.buf = append([]byte(nil), d.buf[pos:]...)
	out := d.output
	d.output = nil
	return out, outbound, nil
}

// emit routes decoded bytes to the output if Normal, or to the queued
// buffer if Blocked (spec.md §4.5 step 2).
func (d *Decoder) emit(data []byte) {
	if len(data) == 0 {
		return
	}
	if d.blocked {
		d.queue = append(d.queue, queuedItem{data: append([]byte(nil), data...)})
		return
	}
	d.output = append(d.output, data...)
}

func (d *Decoder) deferFingerprint(f uint64) {
	d.queue = append(d.queue, queuedItem{fingerprint: f, deferred: true})
}

// declareAndEmit applies a resolved token's window Declare and output
// bytes together, in order: immediately if Normal, or queued for drain
// if Blocked so a token parsed after an outstanding REF doesn't jump the
// queue and declare its window entry ahead of that REF's (spec.md §4.3).
func (d *Decoder) declareAndEmit(fingerprint uint64, stored *segment.Segment) {
	if d.blocked {
		d.queue = append(d.queue, queuedItem{fingerprint: fingerprint, stored: stored})
		return
	}
	d.window.Declare(fingerprint, stored)
	d.output = append(d.output, stored.Bytes()...)
}

// drainQueue resolves every item queued while Blocked, applying window
// Declares in the same order their tokens appeared on the wire. Every
// deferred fingerprint is guaranteed present in the cache by the time this
// runs, since it only runs once the asked set it belongs to has emptied.
func (d *Decoder) drainQueue() []byte {
	var out []byte
	for _, item := range d.queue {
		switch {
		case item.deferred:
			stored, ok := d.cache.Lookup(item.fingerprint)
			if !ok {
				panic("xcodec: deferred fingerprint missing from cache at drain time")
			}
			d.window.Declare(item.fingerprint, stored)
			out = append(out, stored.Bytes()...)
		case item.stored != nil:
			d.window.Declare(item.fingerprint, item.stored)
			out = append(out, item.stored.Bytes()...)
		default:
			out = append(out, item.data...)
		}
	}
	d.queue = d.queue[:0]
	return out
}

// step parses exactly one token at d.buf[idx:] (d.buf[idx] == Magic) and
// applies its side effects. It returns the number of bytes consumed
// (including the Magic and opcode bytes), or 0 if more input is needed.
// ob carries any control bytes this token produces for the outbound
// channel (an originated ASK, or a LEARN answering an incoming ASK).
func (d *Decoder) step(idx int) (consumed int, ob []byte, err error) {
	if idx+1 >= len(d.buf) {
		return 0, nil, nil
	}
	op := d.buf[idx+1]

	switch op {
	case opHello:
		if idx+2 >= len(d.buf) {
			return 0, nil, nil
		}
		l := int(d.buf[idx+2])
		need := idx + 3 + l
		if len(d.buf) < need {
			return 0, nil, nil
		}
		if d.helloSeen {
			return 0, nil, newProtocolError("duplicate HELLO")
		}
		if l != 0 {
			return 0, nil, newProtocolError("HELLO with unsupported option length %d", l)
		}
		d.helloSeen = true
		return need - idx, nil, nil

	case opEscape:
		d.emit([]byte{Magic})
		return 2, nil, nil

	case opExtract:
		need := idx + 2 + SegmentLen
		if len(d.buf) < need {
			return 0, nil, nil
		}
		segBytes := d.buf[idx+2 : need]
		h := rollhash.Hash(segBytes)
		s := segment.New(segBytes)
		stored, collision := d.cache.Enter(h, s)
		if collision {
			return 0, nil, &CollisionError{Fingerprint: h}
		}
		delete(d.asked, h)
		d.declareAndEmit(h, stored)
		return need - idx, nil, nil

	case opRef:
		need := idx + 2 + 8
		if len(d.buf) < need {
			return 0, nil, nil
		}
		h := binary.BigEndian.Uint64(d.buf[idx+2 : need])
		if stored, ok := d.cache.Lookup(h); ok {
			d.declareAndEmit(h, stored)
			return need - idx, nil, nil
		}
		var outbound []byte
		if _, already := d.asked[h]; !already {
			d.asked[h] = struct{}{}
			outbound = appendAsk(outbound, h)
		}
		d.blocked = true
		d.deferFingerprint(h)
		return need - idx, outbound, nil

	case opBackref:
		need := idx + 3
		if len(d.buf) < need {
			return 0, nil, nil
		}
		index := int(d.buf[idx+2])
		f, stored, ok := d.window.DereferenceEntry(index)
		if !ok {
			return 0, nil, newProtocolError("backref index %d out of range", index)
		}
		d.declareAndEmit(f, stored)
		return need - idx, nil, nil

	case opLearn:
		need := idx + 2 + SegmentLen
		if len(d.buf) < need {
			return 0, nil, nil
		}
		segBytes := d.buf[idx+2 : need]
		h := rollhash.Hash(segBytes)
		s := segment.New(segBytes)
		_, collision := d.cache.Enter(h, s)
		if collision {
			return 0, nil, &CollisionError{Fingerprint: h}
		}
		delete(d.asked, h)
		return need - idx, nil, nil

	case opAsk:
		need := idx + 2 + 8
		if len(d.buf) < need {
			return 0, nil, nil
		}
		h := binary.BigEndian.Uint64(d.buf[idx+2 : need])
		if d.encoder == nil {
			return 0, nil, newProtocolError("ASK received with no local encoder")
		}
		learn, aerr := d.encoder.EncodeAsk(h)
		if aerr != nil {
			return 0, nil, aerr
		}
		return need - idx, learn, nil

	default:
		return 0, nil, newProtocolError("unknown opcode 0x%02x", op)
	}
}
