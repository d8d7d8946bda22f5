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

var serverFlags = cliConfig{Role: "server", DialTimeout: "0s"}
var serverConfigPath string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Listen for a wanproxy client and tunnel stdin/stdout through it",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(serverConfigPath, serverFlags)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		runController(cfg)
	},
	Example: "# wanproxy server --peer :9000",
}

func init() {
	serverCmd.Flags().StringVar(&serverConfigPath, "config", "", "Configuration file path; overrides the other flags entirely")
	serverCmd.Flags().StringVar(&serverFlags.Peer, "peer", ":9000", "Address to listen on for the wanproxy client")
	serverCmd.Flags().IntVar(&serverFlags.CacheCapacity, "cache-capacity", 0, "Segments retained before LRU eviction; 0 means unbounded")
	serverCmd.Flags().BoolVar(&serverFlags.AdminEnabled, "admin", false, "Enable the admin HTTP server (/metrics, /-/logger, /-/reload)")
	serverCmd.Flags().StringVar(&serverFlags.AdminAddress, "admin-address", "127.0.0.1:9092", "Admin HTTP server listen address")
	serverCmd.Flags().StringVar(&serverFlags.LogLevel, "log-level", "info", "Logger level: debug, info, warn, error")
	rootCmd.AddCommand(serverCmd)
}
