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
	"fmt"
	"os"
	"time"

	"github.com/wanproxy-go/wanproxy/common"
	"github.com/wanproxy-go/wanproxy/confengine"
	"github.com/wanproxy-go/wanproxy/controller"
	"github.com/wanproxy-go/wanproxy/internal/sigs"
	"github.com/wanproxy-go/wanproxy/logger"
)

// pumpStdin feeds process stdin into the session as application bytes
// until stdin closes or the session stops accepting writes.
func pumpStdin(s *controller.Session) {
	buf := make([]byte, 32*1024)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			if serr := s.Send(buf[:n]); serr != nil {
				logger.Errorf("send to %s: %v", s, serr)
				return
			}
			if ferr := s.Flush(); ferr != nil {
				logger.Errorf("flush to %s: %v", s, ferr)
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// onStdio wires a session's decoded output to stdout and starts a
// goroutine pumping stdin into it, turning the process into a transparent
// tunnel endpoint.
func onStdio(s *controller.Session) {
	s.OnData = func(b []byte) { os.Stdout.Write(b) }
	go pumpStdin(s)
}

// runController runs a controller built from cfg until a termination
// signal arrives, reloading its logger settings on SIGHUP.
func runController(cfg *confengine.Config) {
	ctr, err := controller.New(cfg, common.GetBuildInfo(), onStdio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create controller: %v\n", err)
		os.Exit(1)
	}
	if err := ctr.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start controller: %v\n", err)
		os.Exit(1)
	}

	var reloadTotal int
	for {
		select {
		case <-sigs.Terminate():
			if err := ctr.Stop(); err != nil {
				logger.Errorf("error stopping controller: %v", err)
			}
			return

		case <-sigs.Reload():
			reloadTotal++
			start := time.Now()
			if err := ctr.Reload(cfg); err != nil {
				logger.Errorf("failed to reload (count=%d): %v", reloadTotal, err)
				continue
			}
			logger.Infof("reload (count=%d) took %s", reloadTotal, time.Since(start))
		}
	}
}
