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

// Package snappystage registers a "snappy" pipeline stage using
// github.com/golang/snappy's streaming framing format.
package snappystage

import (
	"io"

	"github.com/golang/snappy"

	"github.com/wanproxy-go/wanproxy/stage"
)

func init() {
	stage.Register("snappy", New)
}

type Stage struct{}

func New(map[string]any) (stage.Stage, error) {
	return Stage{}, nil
}

func (Stage) Name() string { return "snappy" }

func (Stage) WrapWriter(w io.Writer) io.Writer {
	return snappy.NewBufferedWriter(w)
}

func (Stage) WrapReader(r io.Reader) io.Reader {
	return snappy.NewReader(r)
}
