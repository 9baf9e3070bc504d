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

package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	log "github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/salikh/pegrat/driver"
	"github.com/salikh/pegrat/expr"
)

type watchParams struct {
	symbol string
}

var configuredWatchParams = watchParams{symbol: "sum"}

var watchCommand = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-parse a file's contents against the built-in grammar each time it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(args[0], &configuredWatchParams, cmd)
	},
}

func runWatch(path string, params *watchParams, cmd *cobra.Command) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pegrat watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("pegrat watch: %w", err)
	}

	r := buildArithmeticGrammar()
	parseOnce := func() {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Warningf("pegrat watch: reading %q: %v", path, err)
			return
		}
		value, rest, ok, err := driver.Parse(r, expr.Nonterminal{Symbol: params.symbol}, string(content), driver.Options{
			JunkAllowed: true,
			Predicates:  r.Predicates(),
		})
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "error: %v\n", err)
			return
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "no match (junk starts at %d)\n", rest)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %v\n", value)
	}

	parseOnce()
	for {
		select {
		case event, open := <-watcher.Events:
			if !open {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				parseOnce()
			}
		case werr, open := <-watcher.Errors:
			if !open {
				return nil
			}
			log.Warningf("pegrat watch: %v", werr)
		}
	}
}

func init() {
	watchCommand.Flags().StringVar(&configuredWatchParams.symbol, "symbol", "sum", "start rule to parse from")
	rootCmd.AddCommand(watchCommand)
}
