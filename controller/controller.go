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

// Package controller wires a dialed-or-listened peer connection to an
// xcodec.PipePair and an optional compression pipeline, and runs the
// admin HTTP surface (metrics, logger level, reload) alongside it.
package controller

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wanproxy-go/wanproxy/common"
	"github.com/wanproxy-go/wanproxy/confengine"
	"github.com/wanproxy-go/wanproxy/internal/rescue"
	"github.com/wanproxy-go/wanproxy/internal/sigs"
	"github.com/wanproxy-go/wanproxy/logger"
	"github.com/wanproxy-go/wanproxy/pipeline"
	"github.com/wanproxy-go/wanproxy/server"
	"github.com/wanproxy-go/wanproxy/xcodec"
)

// OnSession is invoked once per accepted or dialed Session, before its
// read loop starts. Callers use it to wire Session.OnData and to drive
// Session.Send from whatever produces application bytes (a local
// listener being proxied, a test harness, and so on).
type OnSession func(*Session)

type Controller struct {
	cfg       Config
	buildInfo common.BuildInfo

	cache *xcodec.Cache
	pl    *pipeline.Pipeline
	svr   *server.Server

	onSession OnSession

	mu       sync.Mutex
	sessions map[string]*Session
	listener net.Listener
	stopped  bool
}

func setupLogger(conf *confengine.Config) error {
	var opts logger.Options
	if err := conf.UnpackChild("logger", &opts); err != nil {
		return err
	}
	if opts.Filename == "" {
		opts.Filename = "wanproxy.log"
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 10
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = 100
	}
	logger.SetOptions(opts)
	return nil
}

// New builds a Controller from conf. onSession is called for every
// session this controller establishes (dialed in client role, accepted
// in server role); pass nil to only run the codec with no application
// data source, useful for smoke-testing a deployment's reachability.
func New(conf *confengine.Config, buildInfo common.BuildInfo, onSession OnSession) (*Controller, error) {
	if err := setupLogger(conf); err != nil {
		return nil, err
	}

	var cfg Config
	if err := conf.UnpackChild("peer", &cfg); err != nil {
		return nil, err
	}
	if cfg.Role != "client" && cfg.Role != "server" {
		return nil, errors.Errorf("peer.role must be \"client\" or \"server\", got %q", cfg.Role)
	}

	pl, err := pipeline.New(conf)
	if err != nil {
		return nil, err
	}

	svr, err := server.New(conf)
	if err != nil {
		return nil, err
	}

	return &Controller{
		cfg:       cfg,
		buildInfo: buildInfo,
		cache:     xcodec.NewCache(cfg.Cache.Capacity),
		pl:        pl,
		svr:       svr,
		onSession: onSession,
		sessions:  make(map[string]*Session),
	}, nil
}

// Start begins dialing (client role) or accepting (server role) peer
// connections, and the admin HTTP server if one is configured. It
// returns once the initial dial/listen succeeds; ongoing connection
// handling runs in background goroutines.
func (c *Controller) Start() error {
	c.setupServer()
	if c.svr != nil {
		go func() {
			err := c.svr.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("admin server stopped: %v", err)
			}
		}()
	}

	switch c.cfg.Role {
	case "client":
		return c.startClient()
	default:
		return c.startServer()
	}
}

func (c *Controller) startClient() error {
	conn, err := net.DialTimeout("tcp", c.cfg.Peer, c.cfg.dialTimeout())
	if err != nil {
		return errors.Wrapf(err, "dial %s", c.cfg.Peer)
	}
	c.adopt(conn, xcodec.RoleClient)
	return nil
}

func (c *Controller) startServer() error {
	l, err := net.Listen("tcp", c.cfg.Peer)
	if err != nil {
		return errors.Wrapf(err, "listen %s", c.cfg.Peer)
	}
	c.mu.Lock()
	c.listener = l
	c.mu.Unlock()

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				if !c.isStopped() {
					logger.Errorf("accept on %s: %v", c.cfg.Peer, err)
				}
				return
			}
			c.adopt(conn, xcodec.RoleServer)
		}
	}()
	return nil
}

func (c *Controller) adopt(conn net.Conn, role xcodec.Role) {
	s := newSession(conn, role, c.cache, c.pl)
	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()
	activeSessions.Inc()
	logger.Infof("session %s established", s)

	if c.onSession != nil {
		c.onSession(s)
	}

	go func() {
		defer rescue.HandleCrash()
		defer func() {
			c.mu.Lock()
			delete(c.sessions, s.ID)
			c.mu.Unlock()
			activeSessions.Dec()
		}()
		logSessionClosed(s, s.serve())
	}()
}

func (c *Controller) recordMetrics() {
	uptime.Set(float64(time.Now().Unix() - common.Started()))
	buildInfo.WithLabelValues(c.buildInfo.Version, c.buildInfo.GitHash, c.buildInfo.Time).Inc()
	cacheSegments.Set(float64(c.cache.Len()))
}

func (c *Controller) setupServer() {
	if c.svr == nil {
		return
	}

	c.svr.RegisterGetRoute("/metrics", func(w http.ResponseWriter, r *http.Request) {
		c.recordMetrics()
		promhttp.Handler().ServeHTTP(w, r)
	})
	c.svr.RegisterPostRoute("/-/logger", func(w http.ResponseWriter, r *http.Request) {
		logger.SetLoggerLevel(r.FormValue("level"))
		w.Write([]byte(`{"status": "success"}`))
	})
	c.svr.RegisterPostRoute("/-/reload", func(w http.ResponseWriter, r *http.Request) {
		if err := sigs.SelfReload(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(err.Error()))
		}
	})
}

// Reload re-applies the logger block of conf; the peer role/address and
// cache sizing are fixed for the lifetime of a Controller.
func (c *Controller) Reload(conf *confengine.Config) error {
	return setupLogger(conf)
}

func (c *Controller) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Stop closes the listener (server role) and every live session,
// aggregating whatever errors close() returns.
func (c *Controller) Stop() error {
	c.mu.Lock()
	c.stopped = true
	l := c.listener
	sessions := make([]*Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.mu.Unlock()

	var result *multierror.Error
	if l != nil {
		if err := l.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
