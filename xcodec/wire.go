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
	"encoding/binary"

	"github.com/valyala/bytebufferpool"
)

// appendHello appends the single legal HELLO token: MAGIC, OP_HELLO, a
// zero option-length byte. No options are currently defined.
func appendHello(dst []byte) []byte {
	return append(dst, Magic, opHello, 0x00)
}

// appendEscape appends a two-byte ESCAPE token standing in for one literal
// MAGIC byte.
func appendEscape(dst []byte) []byte {
	return append(dst, Magic, opEscape)
}

// appendExtract appends an EXTRACT token carrying the segment's raw bytes.
func appendExtract(dst []byte, segBytes []byte) []byte {
	dst = append(dst, Magic, opExtract)
	return append(dst, segBytes...)
}

// appendRef appends a REF token for the given fingerprint.
func appendRef(dst []byte, fingerprint uint64) []byte {
	dst = append(dst, Magic, opRef)
	return binary.BigEndian.AppendUint64(dst, fingerprint)
}

// appendBackref appends a BACKREF token for the given one-byte window
// index.
func appendBackref(dst []byte, index int) []byte {
	return append(dst, Magic, opBackref, byte(index))
}

// appendLearn appends a LEARN token carrying the segment's raw bytes.
func appendLearn(dst []byte, segBytes []byte) []byte {
	dst = append(dst, Magic, opLearn)
	return append(dst, segBytes...)
}

// appendAsk appends an ASK token for the given fingerprint.
func appendAsk(dst []byte, fingerprint uint64) []byte {
	dst = append(dst, Magic, opAsk)
	return binary.BigEndian.AppendUint64(dst, fingerprint)
}

// appendLiteral copies raw to dst, escaping every byte equal to Magic. It
// pools its scratch buffer through bytebufferpool since this runs on the
// encoder's hot path for every byte that isn't part of a matched segment.
func appendLiteral(dst []byte, raw []byte) []byte {
	if len(raw) == 0 {
		return dst
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	start := 0
	for i, b := range raw {
		if b != Magic {
			continue
		}
		buf.Write(raw[start:i])
		buf.WriteByte(Magic)
		buf.WriteByte(opEscape)
		start = i + 1
	}
	buf.Write(raw[start:])

	return append(dst, buf.Bytes()...)
}
