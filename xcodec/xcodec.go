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

// Package xcodec implements WANproxy's content-addressed stream
// deduplication: a rolling-hash segment extractor, a shared dictionary
// cache, an encoder that turns a byte stream into a token stream, a decoder
// that reverses it, and the small control protocol (HELLO/EXTRACT/REF/
// BACKREF/ASK/LEARN/ESCAPE) the two sides use to keep their dictionaries in
// sync across a live connection.
//
// The package does no network I/O of its own: an Encoder and Decoder each
// consume and produce plain byte slices. A PipePair wires a pair of them to
// one connection direction each and routes the out-of-band ASK/LEARN
// exchange between them.
package xcodec

import "github.com/wanproxy-go/wanproxy/internal/segment"

// SegmentLen is the fixed segment length in bytes. It is defined as
// segment.Len; rollhash.Window is a separate literal of the same value, so
// a mismatch there is not caught at compile time (rollhash.Hash panics on a
// window of the wrong length).
const SegmentLen = segment.Len

// WindowCap is the maximum number of entries the backref window can hold.
// It must fit in one byte, since BACKREF addresses it with a single index
// byte on the wire.
const WindowCap = 256

// Magic is the byte that begins every control token. A literal data byte
// equal to Magic must be escaped with OP_ESCAPE.
const Magic byte = 0xf1

// Wire opcodes, assigned per spec.md's External Interfaces table.
const (
	opHello   byte = 0x00
	opLearn   byte = 0x01
	opAsk     byte = 0x02
	opExtract byte = 0x03
	opRef     byte = 0x04
	opBackref byte = 0x05
	opEscape  byte = 0x06
)
