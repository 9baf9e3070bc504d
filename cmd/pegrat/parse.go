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

type parseParams struct {
	symbol      string
	junkAllowed bool
}

var configuredParseParams = parseParams{symbol: "sum"}

var parseCommand = &cobra.Command{
	Use:   "parse <text>",
	Short: "Parse text against the built-in arithmetic grammar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(args[0], &configuredParseParams, cmd)
	},
}

func runParse(text string, params *parseParams, cmd *cobra.Command) error {
	r := buildArithmeticGrammar()
	value, rest, ok, err := driver.Parse(r, expr.Nonterminal{Symbol: params.symbol}, text, driver.Options{
		JunkAllowed: params.junkAllowed,
		Predicates:  r.Predicates(),
	})
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "no match (junk starts at %d)\n", rest)
		return nil
	}
	if rest < 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %v\n", value)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %v (unconsumed from %d)\n", value, rest)
	}
	return nil
}

func init() {
	parseCommand.Flags().StringVar(&configuredParseParams.symbol, "symbol", "sum", "start rule to parse from")
	parseCommand.Flags().BoolVar(&configuredParseParams.junkAllowed, "junk-allowed", false, "allow an incomplete parse instead of erroring")
	rootCmd.AddCommand(parseCommand)
}
