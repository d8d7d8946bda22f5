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

// Package stage provides the registry of optional stream-compression
// stages that sit between XCodec and the wire (spec.md §1's "zlib
// wrapper" collaborator, generalized to whichever compressor is
// configured).
package stage

import (
	"io"

	"github.com/pkg/errors"
)

// Stage wraps a connection's reader and writer with a streaming
// transform. WrapWriter and WrapReader must be inverses of each other.
type Stage interface {
	Name() string
	WrapWriter(io.Writer) io.Writer
	WrapReader(io.Reader) io.Reader
}

// Factory builds a Stage from its pipeline config block.
type Factory func(conf map[string]any) (Stage, error)

var factory = map[string]Factory{}

// Register adds a stage factory under name. Stage packages call this
// from an init func, mirroring the processor.Register pattern.
func Register(name string, f Factory) {
	factory[name] = f
}

// Get looks up a previously registered stage factory.
func Get(name string) (Factory, error) {
	f, ok := factory[name]
	if !ok {
		return nil, errors.Errorf("stage factory (%s) not found", name)
	}
	return f, nil
}
