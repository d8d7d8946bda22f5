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

import "sync"

// Role distinguishes which end of a connection a PipePair sits on. The
// two roles run an identical protocol; the only difference is which of
// dial or listen produced the underlying connection (spec.md §3 "Session
// role").
//
// xcodec_pipe_pair.h swaps which of its two internal pipes backs
// get_incoming/get_outgoing by Role, because it splices a PipePair between
// two independently-terminated connections - a plaintext leg and a WAN
// leg - and "incoming"/"outgoing" name which of those two legs a pipe
// feeds, not a fixed encode/decode direction. This PipePair has only one
// underlying net.Conn per instance (controller.Session binds exactly one),
// so that asymmetry has nothing to attach to: regardless of Role, bytes
// written to that one conn must always be encoded and bytes read from it
// must always be decoded, or the peer - running the same code - could
// never understand the result. Outgoing and Incoming are therefore fixed
// to encode and decode respectively for both roles; Role only selects
// dial vs listen at the controller layer and labels sessions for logs and
// metrics.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// String renders a Role the way log lines and metric labels want it.
func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// Pipe is the narrow interface an I/O loop drives: push a buffer (or
// signal EOF with an empty, eof=true push) and get back whatever the pipe
// produced, or an error if the pipe has failed permanently. The encoder
// and decoder inside a PipePair are its two concrete implementations
// (spec.md §9 "Polymorphic codec plumbing").
type Pipe interface {
	Push(data []byte, eof bool) ([]byte, error)
}

// PipePair binds one Encoder and one Decoder that share a dictionary
// cache, and exposes them as two Pipe handles: Outgoing (application bytes
// in, wire bytes out) and Incoming (wire bytes in, application bytes out).
// ASK tokens the Decoder originates, and LEARN tokens its local Encoder
// produces in response to an incoming ASK, are folded into whatever the
// next Outgoing push emits rather than surfaced as a separate channel,
// per the simplest design spec.md §4.6 allows.
type PipePair struct {
	Role    Role
	Encoder *Encoder
	Decoder *Decoder

	mu      sync.Mutex
	pending []byte // control bytes awaiting the next outgoing write
	fatal   error
}

// NewPipePair constructs a fresh Encoder/Decoder pair over cache, with
// independent backref windows (one per direction - spec.md §3).
func NewPipePair(role Role, cache *Cache) *PipePair {
	enc := NewEncoder(cache, NewWindow(WindowCap))
	dec := NewDecoder(cache, NewWindow(WindowCap), enc)
	return &PipePair{Role: role, Encoder: enc, Decoder: dec}
}

// Outgoing returns the Pipe that turns application bytes into wire bytes.
func (p *PipePair) Outgoing() Pipe { return &outgoingPipe{p: p} }

// Incoming returns the Pipe that turns wire bytes into application bytes.
func (p *PipePair) Incoming() Pipe { return &incomingPipe{p: p} }

func (p *PipePair) fail(err error) {
	p.mu.Lock()
	if p.fatal == nil {
		p.fatal = err
	}
	p.mu.Unlock()
}

func (p *PipePair) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fatal
}

func (p *PipePair) takePending() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return nil
	}
	b := p.pending
	p.pending = nil
	return b
}

func (p *PipePair) addPending(b []byte) {
	if len(b) == 0 {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, b...)
	p.mu.Unlock()
}

type outgoingPipe struct{ p *PipePair }

// Push encodes data (application bytes) to wire bytes. It leads with any
// control tokens (ASK/LEARN) queued by the incoming side since the last
// call, since spec.md §4.4 allows them at any token boundary.
func (op *outgoingPipe) Push(data []byte, eof bool) ([]byte, error) {
	if err := op.p.failure(); err != nil {
		return nil, err
	}
	control := op.p.takePending()
	out := op.p.Encoder.Encode(data, eof)
	if len(control) == 0 {
		return out, nil
	}
	return append(control, out...), nil
}

type incomingPipe struct{ p *PipePair }

// Push decodes data (wire bytes) to application bytes. A stream-fatal
// error here is sticky: it is recorded on the PipePair so that subsequent
// pushes on either handle fail the same way, matching spec.md §4.6's
// "EOF + error event on both pipe handles".
func (ip *incomingPipe) Push(data []byte, eof bool) ([]byte, error) {
	if err := ip.p.failure(); err != nil {
		return nil, err
	}
	app, toWire, err := ip.p.Decoder.Decode(data)
	if err != nil {
		ip.p.fail(err)
		return app, err
	}
	if eof {
		ip.p.Decoder.mu.Lock()
		partial := len(ip.p.Decoder.buf)
		ip.p.Decoder.mu.Unlock()
		if partial > 0 {
			perr := newProtocolError("stream ended inside a token (%d bytes unparsed)", partial)
			ip.p.fail(perr)
			return app, perr
		}
	}
	ip.p.addPending(toWire)
	return app, nil
}
