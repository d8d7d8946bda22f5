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

import "github.com/pkg/errors"

// ProtocolError reports a stream-fatal protocol violation: an unknown
// opcode, a duplicate HELLO, an unsupported HELLO option length, a
// BACKREF index out of range in the window, an ASK received with no
// local encoder to service it, an ASK for a fingerprint the local encoder's
// cache does not hold, or (from an incoming PipePair push with eof set) a
// token cut off by the end of the stream. The decoder that returns one must not be
// used again; the owning PipePair tears the connection down.
type ProtocolError struct {
	msg string
}

func newProtocolError(format string, args ...any) *ProtocolError {
	return &ProtocolError{msg: errors.Errorf(format, args...).Error()}
}

func (e *ProtocolError) Error() string {
	return "xcodec: protocol violation: " + e.msg
}

// CollisionError reports that the peer's dictionary disagrees with ours:
// an EXTRACT or LEARN taught a fingerprint that our cache already maps to
// different bytes. This can only mean a bug or wire corruption, never a
// benign race, so it is also stream-fatal.
type CollisionError struct {
	Fingerprint uint64
}

func (e *CollisionError) Error() string {
	return errors.Errorf("xcodec: collision on fingerprint %016x: peer's dictionary disagrees with ours", e.Fingerprint).Error()
}
