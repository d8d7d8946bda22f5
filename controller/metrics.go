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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wanproxy-go/wanproxy/common"
)

var (
	uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "uptime",
			Help:      "Uptime in seconds",
		},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "build_info",
			Help:      "Build information",
		},
		[]string{"version", "git_hash", "build_time"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "active_sessions",
			Help:      "Currently established peer sessions",
		},
	)

	cacheSegments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "cache_segments",
			Help:      "Segments currently held in the shared dictionary cache",
		},
	)

	bytesIn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "bytes_in_total",
			Help:      "Application bytes accepted for encoding, per session",
		},
		[]string{"session"},
	)

	bytesOut = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "bytes_out_total",
			Help:      "Encoded bytes handed to the pipeline for writing (before any pipeline compression), per session",
		},
		[]string{"session"},
	)

	bytesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "bytes_delivered_total",
			Help:      "Application bytes recovered by decoding, per session",
		},
		[]string{"session"},
	)

	sessionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "session_errors_total",
			Help:      "Sessions torn down by a stream-fatal codec error",
		},
		[]string{"reason"},
	)
)
