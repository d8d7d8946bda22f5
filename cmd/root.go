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

// Package cmd implements the wanproxy CLI: a client subcommand that
// dials a peer and a server subcommand that listens for one, each
// tunneling its process's stdin/stdout through the resulting
// XCodec-deduplicated connection.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wanproxy",
	Short: "Run one end of an XCodec-deduplicated TCP tunnel",
}

func Execute() error {
	return rootCmd.Execute()
}
