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

// Package gzipstage registers a "gzip" pipeline stage backed by
// klauspost/pgzip, standing in for the zlib wrapper spec.md §1 names as
// an external collaborator.
package gzipstage

import (
	"io"

	"github.com/klauspost/pgzip"

	"github.com/wanproxy-go/wanproxy/stage"
)

type Stage struct {
	level int
}

func New(conf map[string]any) (stage.Stage, error) {
	level := pgzip.DefaultCompression
	if v, ok := conf["level"]; ok {
		if lv, ok := v.(int); ok {
			level = lv
		}
	}
	return &Stage{level: level}, nil
}

func init() {
	stage.Register("gzip", New)
}

func (s *Stage) Name() string { return "gzip" }

func (s *Stage) WrapWriter(w io.Writer) io.Writer {
	gw, err := pgzip.NewWriterLevel(w, s.level)
	if err != nil {
		gw = pgzip.NewWriter(w)
	}
	return gw
}

func (s *Stage) WrapReader(r io.Reader) io.Reader {
	return &lazyReader{src: r}
}

// lazyReader defers pgzip.NewReader until the first Read: constructing a
// gzip reader eagerly would require reading (and possibly failing on) the
// gzip header before the caller has a chance to even start using the
// wrapped io.Reader.
type lazyReader struct {
	src io.Reader
	gr  *pgzip.Reader
	err error
}

func (l *lazyReader) Read(p []byte) (int, error) {
	if l.gr == nil && l.err == nil {
		l.gr, l.err = pgzip.NewReader(l.src)
	}
	if l.err != nil {
		return 0, l.err
	}
	return l.gr.Read(p)
}
