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

import "time"

// Config is the "peer" block of the top-level config, with its nested
// "cache" block: which end of the tunnel this process is, where to dial or
// listen, and how the shared dictionary cache is sized.
type Config struct {
	// Role is "client" (dials Peer) or "server" (listens on Peer).
	Role string `config:"role"`
	// Peer is the dial address in client role, the listen address in
	// server role.
	Peer string `config:"peer"`
	// DialTimeout bounds how long a client-role dial may take.
	DialTimeout time.Duration `config:"dialTimeout"`

	Cache struct {
		// Capacity bounds the number of segments the dictionary
		// cache retains, with per-shard LRU eviction (see
		// xcodec.NewCache). <= 0 means unbounded (spec.md §9).
		Capacity int `config:"capacity"`
	} `config:"cache"`
}

func (c Config) dialTimeout() time.Duration {
	if c.DialTimeout <= 0 {
		return 10 * time.Second
	}
	return c.DialTimeout
}
