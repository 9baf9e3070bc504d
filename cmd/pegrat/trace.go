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

	"github.com/spf13/cobra"

	"github.com/salikh/pegrat/driver"
	"github.com/salikh/pegrat/expr"
)

type traceParams struct {
	symbols []string
	start   string
}

var configuredTraceParams = traceParams{start: "sum"}

var traceCommand = &cobra.Command{
	Use:   "trace <text>",
	Short: "Parse text while recording invocations of the given rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrace(args[0], &configuredTraceParams, cmd)
	},
}

func runTrace(text string, params *traceParams, cmd *cobra.Command) error {
	r := buildArithmeticGrammar()
	symbols := params.symbols
	if len(symbols) == 0 {
		symbols = r.Symbols()
	}
	for _, sym := range symbols {
		r.EnableTrace(sym)
	}

	value, rest, ok, err := driver.Parse(r, expr.Nonterminal{Symbol: params.start}, text, driver.Options{
		JunkAllowed: true,
		Predicates:  r.Predicates(),
	})
	if err != nil {
		return err
	}

	for _, sym := range symbols {
		entries := r.Trace(sym)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d invocation(s)\n", sym, len(entries))
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "  @%d\n", e.Position)
		}
	}

	if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "result: %v (rest=%d)\n", value, rest)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "result: no match (junk starts at %d)\n", rest)
	}
	return nil
}

func init() {
	traceCommand.Flags().StringSliceVar(&configuredTraceParams.symbols, "rule", nil, "rule symbol to trace (repeatable); defaults to every rule")
	traceCommand.Flags().StringVar(&configuredTraceParams.start, "symbol", "sum", "start rule to parse from")
	rootCmd.AddCommand(traceCommand)
}
