// Copyright 2024 The a2s Authors
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

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// listenCmd and proxyCmd round out the CLI surface named alongside
// query, but passive capture and MITM proxying are optional event-loop
// implementations outside the query engine's core.
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Passively watch for A2S traffic (not built in this distribution)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("a2sq listen: not implemented in this build")
	},
}

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Man-in-the-middle proxy for A2S traffic (not built in this distribution)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("a2sq proxy: not implemented in this build")
	},
}

func init() {
	rootCmd.AddCommand(listenCmd, proxyCmd)
}
