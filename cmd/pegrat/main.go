// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command pegrat exercises the packrat engine's parse/describe/trace
// surface against a small built-in left-recursive arithmetic grammar.
package main

import (
	"os"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pegrat",
	Short: "Parse, describe, and trace a packrat PEG grammar",
}

func main() {
	defer log.Flush()
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("pegrat: %v", err)
		os.Exit(1)
	}
}
