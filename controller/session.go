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

package controller

import (
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/wanproxy-go/wanproxy/logger"
	"github.com/wanproxy-go/wanproxy/pipeline"
	"github.com/wanproxy-go/wanproxy/xcodec"
)

const readBufferSize = 32 * 1024

// flusher is satisfied by the buffered compressors the pipeline stages
// may wrap the connection in (snappy.Writer, pgzip.Writer); without a
// Flush a dedup token written at message n could sit in a compressor's
// internal buffer until enough bytes accumulate to fill it.
type flusher interface {
	Flush() error
}

// Session binds one peer net.Conn to an xcodec.PipePair, with the
// configured pipeline layered around the wire side. OnData is called with
// every chunk of recovered application bytes as the read loop decodes
// them; it must not block.
type Session struct {
	ID   string
	Role xcodec.Role

	conn   net.Conn
	pp     *xcodec.PipePair
	OnData func([]byte)

	writeMu    sync.Mutex
	wireWriter io.Writer
	wireReader io.Reader
}

func newSession(conn net.Conn, role xcodec.Role, cache *xcodec.Cache, pl *pipeline.Pipeline) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Role:       role,
		conn:       conn,
		pp:         xcodec.NewPipePair(role, cache),
		wireWriter: pl.WrapWriter(conn),
		wireReader: pl.WrapReader(conn),
	}
}

// Send encodes data as application bytes and writes the resulting wire
// bytes (plus any control tokens queued by the decoder side) to the peer.
func (s *Session) Send(data []byte) error {
	out, err := s.pp.Outgoing().Push(data, false)
	if err != nil {
		return err
	}
	bytesIn.WithLabelValues(s.ID).Add(float64(len(data)))
	return s.writeWire(out)
}

func (s *Session) writeWire(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.wireWriter.Write(b); err != nil {
		return err
	}
	bytesOut.WithLabelValues(s.ID).Add(float64(len(b)))
	if f, ok := s.wireWriter.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// flushControl pushes an empty application write through the encoder so
// that any ASK/LEARN tokens queued by the decoder side (in response to a
// peer ASK, or an unresolved REF of our own) reach the wire promptly
// instead of waiting for the next application Send.
func (s *Session) flushControl() error {
	out, err := s.pp.Outgoing().Push(nil, false)
	if err != nil {
		return err
	}
	return s.writeWire(out)
}

// Flush forces out whatever the encoder is holding back because it was too
// short to complete another segment window, as a literal run, right now.
// Send alone never does this: a chunk under SegmentLen bytes sits pending
// in case the next Send completes a match (spec.md §4.4). Low-latency
// callers - a line typed at an interactive stdin pump, for instance - call
// Flush after every Send so their data reaches the peer promptly instead
// of waiting on a future write that may never come.
func (s *Session) Flush() error {
	out, err := s.pp.Outgoing().Push(nil, true)
	if err != nil {
		return err
	}
	return s.writeWire(out)
}

// serve runs the read loop until the connection closes or the codec
// reports a stream-fatal error. It returns the terminal error, nil on a
// clean EOF.
func (s *Session) serve() error {
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.wireReader.Read(buf)
		if n > 0 {
			app, derr := s.pp.Incoming().Push(buf[:n], false)
			if len(app) > 0 && s.OnData != nil {
				bytesDelivered.WithLabelValues(s.ID).Add(float64(len(app)))
				s.OnData(app)
			}
			if derr != nil {
				sessionErrors.WithLabelValues("protocol").Inc()
				return derr
			}
			if ferr := s.flushControl(); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) String() string {
	return s.ID + "/" + s.Role.String()
}

func logSessionClosed(s *Session, err error) {
	if err != nil {
		logger.Warnf("session %s closed: %v", s, err)
		return
	}
	logger.Infof("session %s closed", s)
}
