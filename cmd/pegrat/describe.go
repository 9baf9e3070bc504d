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

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/cobra"

	"github.com/salikh/pegrat/registry"
)

// renderCache memoizes the rendered text for a rule keyed by its *Rule
// pointer, bounded to 256 entries. This is a presentation-layer cache, distinct from (and much coarser than) the engine's exact
// per-(symbol,position) parse memoization in engine/cache.go.
var renderCache, _ = lru.New[*registry.Rule, string](256)

func renderRule(symbol string, rule *registry.Rule) string {
	if cached, ok := renderCache.Get(rule); ok {
		return cached
	}
	rendered := fmt.Sprintf("%s <- %s", symbol, rule.Expr.String())
	renderCache.Add(rule, rendered)
	return rendered
}

type describeParams struct {
	pattern string
	asYAML  bool
}

var configuredDescribeParams describeParams

var describeCommand = &cobra.Command{
	Use:   "describe",
	Short: "Print the built-in grammar, optionally as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDescribe(&configuredDescribeParams, cmd)
	},
}

func runDescribe(params *describeParams, cmd *cobra.Command) error {
	r := buildArithmeticGrammar()

	if params.asYAML {
		out, err := r.DescribeYAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	symbols := r.Symbols()
	if params.pattern != "" {
		matched, err := r.FindRules(params.pattern)
		if err != nil {
			return err
		}
		symbols = matched
	}
	for _, sym := range symbols {
		rule, _ := r.FindRule(sym)
		fmt.Fprintln(cmd.OutOrStdout(), renderRule(sym, rule))
	}
	return nil
}

func init() {
	describeCommand.Flags().StringVar(&configuredDescribeParams.pattern, "filter", "", "only describe rules whose name matches this glob pattern")
	describeCommand.Flags().BoolVar(&configuredDescribeParams.asYAML, "yaml", false, "render as YAML instead of the text pretty-printer")
	rootCmd.AddCommand(describeCommand)
}
