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
	log "github.com/golang/glog"

	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/registry"
)

// buildArithmeticGrammar wires a small left-recursive arithmetic grammar
// into a fresh registry, the same shape as scenario S1 of the engine's
// test suite: sum <- sum ("+" / "-") term / term, term <- term "*" factor
// / factor, factor <- "(" sum ")" / num, num <- digit+.
//
// This is the grammar every pegrat subcommand demonstrates against, since
// the surface rule-definition syntax (reading a grammar from a file) is
// out of scope for this module.
func buildArithmeticGrammar() *registry.Registry {
	r := registry.New()

	must := func(symbol string, e expr.Expr, opts ...registry.RuleOption) {
		rule, err := registry.NewRule(e, opts...)
		if err != nil {
			log.Fatalf("pegrat: building built-in grammar, rule %q: %v", symbol, err)
		}
		if _, err := r.AddRule(symbol, rule); err != nil {
			log.Fatalf("pegrat: attaching built-in rule %q: %v", symbol, err)
		}
	}

	digit := expr.NewCharRanges([]expr.RangeItem{{Lo: '0', Hi: '9'}})
	must("num", expr.Plus{Sub: digit}, registry.Text())

	must("factor", expr.Or{Subs: []expr.Expr{
		expr.And{Subs: []expr.Expr{
			expr.Literal{Text: "(", CaseSensitive: true},
			expr.Nonterminal{Symbol: "sum"},
			expr.Literal{Text: ")", CaseSensitive: true},
		}},
		expr.Nonterminal{Symbol: "num"},
	}}, registry.Destructure(func(a registry.Accessor) interface{} {
		if a.Len() == 3 {
			return a.Child(1).Value()
		}
		return a.Value()
	}))

	must("term", expr.Or{Subs: []expr.Expr{
		expr.And{Subs: []expr.Expr{
			expr.Nonterminal{Symbol: "term"},
			expr.Literal{Text: "*", CaseSensitive: true},
			expr.Nonterminal{Symbol: "factor"},
		}},
		expr.Nonterminal{Symbol: "factor"},
	}})

	must("sum", expr.Or{Subs: []expr.Expr{
		expr.And{Subs: []expr.Expr{
			expr.Nonterminal{Symbol: "sum"},
			expr.Or{Subs: []expr.Expr{
				expr.Literal{Text: "+", CaseSensitive: true},
				expr.Literal{Text: "-", CaseSensitive: true},
			}},
			expr.Nonterminal{Symbol: "term"},
		}},
		expr.Nonterminal{Symbol: "term"},
	}})

	return r
}
