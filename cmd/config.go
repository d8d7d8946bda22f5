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

package cmd

import (
	"bytes"
	"html/template"

	"github.com/wanproxy-go/wanproxy/confengine"
)

// configTemplate fills in the handful of settings client/server actually
// expose as flags; anything else (pipeline stages, pprof, admin server
// timeout, log file settings) is only reachable via --config.
const configTemplate = `
peer:
  role: {{ .Role }}
  peer: {{ .Peer }}
  dialTimeout: {{ .DialTimeout }}
  cache:
    capacity: {{ .CacheCapacity }}
pipeline: []
server:
  enabled: {{ .AdminEnabled }}
  address: {{ .AdminAddress }}
  pprof: false
  timeout: 10s
logger:
  stdout: true
  level: {{ .LogLevel }}
`

type cliConfig struct {
	Role          string
	Peer          string
	DialTimeout   string
	CacheCapacity int
	AdminEnabled  bool
	AdminAddress  string
	LogLevel      string
}

func renderConfig(c cliConfig) ([]byte, error) {
	tpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// loadConfig loads path if given, otherwise synthesizes one from the
// flags that stand in for a config file in the common case.
func loadConfig(path string, c cliConfig) (*confengine.Config, error) {
	if path != "" {
		return confengine.LoadConfigPath(path)
	}
	content, err := renderConfig(c)
	if err != nil {
		return nil, err
	}
	return confengine.LoadContent(content)
}
