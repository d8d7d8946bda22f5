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

	"github.com/spf13/cobra"
)

var clientFlags = cliConfig{Role: "client"}
var clientConfigPath string

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Dial a wanproxy server and tunnel stdin/stdout through it",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(clientConfigPath, clientFlags)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		runController(cfg)
	},
	Example: "# wanproxy client --peer 127.0.0.1:9000",
}

func init() {
	clientCmd.Flags().StringVar(&clientConfigPath, "config", "", "Configuration file path; overrides the other flags entirely")
	clientCmd.Flags().StringVar(&clientFlags.Peer, "peer", "127.0.0.1:9000", "Address of the wanproxy server to dial")
	clientCmd.Flags().StringVar(&clientFlags.DialTimeout, "dial-timeout", "10s", "Timeout for the initial dial")
	clientCmd.Flags().IntVar(&clientFlags.CacheCapacity, "cache-capacity", 0, "Segments retained before LRU eviction; 0 means unbounded")
	clientCmd.Flags().BoolVar(&clientFlags.AdminEnabled, "admin", false, "Enable the admin HTTP server (/metrics, /-/logger, /-/reload)")
	clientCmd.Flags().StringVar(&clientFlags.AdminAddress, "admin-address", "127.0.0.1:9091", "Admin HTTP server listen address")
	clientCmd.Flags().StringVar(&clientFlags.LogLevel, "log-level", "info", "Logger level: debug, info, warn, error")
	rootCmd.AddCommand(clientCmd)
}
