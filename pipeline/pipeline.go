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

package pipeline

import (
	"io"

	"github.com/wanproxy-go/wanproxy/confengine"
	"github.com/wanproxy-go/wanproxy/stage"
)

type Config struct {
	Name   string         `config:"name"`
	Config map[string]any `config:"config"`
}

type Configs []Config

// Pipeline chains the configured compression stages around a connection.
// It sits outside XCodec: application bytes flow through the codec first,
// and only the codec's already-deduplicated token stream passes through
// the pipeline on its way to the wire (spec.md §1's "optional stream
// compression (zlib)" collaborator).
type Pipeline struct {
	stages []stage.Stage
}

func New(conf *confengine.Config) (*Pipeline, error) {
	configs, err := loadStages(conf)
	if err != nil {
		return nil, err
	}

	var stages []stage.Stage
	for _, c := range configs {
		f, err := stage.Get(c.Name)
		if err != nil {
			return nil, err
		}
		s, err := f(c.Config)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return &Pipeline{stages: stages}, nil
}

// WrapWriter layers every configured stage around w, last-configured
// stage closest to the wire.
func (p *Pipeline) WrapWriter(w io.Writer) io.Writer {
	for i := len(p.stages) - 1; i >= 0; i-- {
		w = p.stages[i].WrapWriter(w)
	}
	return w
}

// WrapReader layers every configured stage around r in the order that
// undoes WrapWriter.
func (p *Pipeline) WrapReader(r io.Reader) io.Reader {
	for i := len(p.stages) - 1; i >= 0; i-- {
		r = p.stages[i].WrapReader(r)
	}
	return r
}

func loadStages(conf *confengine.Config) (Configs, error) {
	var configs Configs
	if err := conf.UnpackChild("pipeline", &configs); err != nil {
		return nil, err
	}
	return configs, nil
}
