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

package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Symbols returns the symbols with an attached rule, sorted.
func (r *Registry) Symbols() []string {
	out := make([]string, 0, len(r.cells))
	for sym, cell := range r.cells {
		if cell.rule != nil {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// Describe renders every attached rule as a "symbol <- expression" line, in
// the bracket-annotation style of expr.Expr.String, sorted by symbol. This
// is the Go-native analogue of the teacher's textual grammar pretty-printer
// (generator/peg.go's Grammar.String).
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, sym := range r.Symbols() {
		fmt.Fprintf(&b, "%s <- %s\n", sym, r.cells[sym].rule.Expr.String())
	}
	return b.String()
}

// FindRules returns the attached symbols whose name matches a gobwas/glob
// pattern (e.g. "expr_*"), sorted.
func (r *Registry) FindRules(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("registry: invalid pattern %q: %w", pattern, err)
	}
	var out []string
	for _, sym := range r.Symbols() {
		if g.Match(sym) {
			out = append(out, sym)
		}
	}
	return out, nil
}

// ruleDescription is the YAML-serializable view of one attached rule used
// by DescribeYAML.
type ruleDescription struct {
	Symbol       string   `yaml:"symbol"`
	Expression   string   `yaml:"expression"`
	Guard        string   `yaml:"guard,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Undefined    []string `yaml:"undefined,omitempty"`
}

// DescribeYAML renders the attached grammar as YAML, one document entry per
// rule, including each rule's guard kind and its nonterminal dependencies
// (split into defined and undefined).
func (r *Registry) DescribeYAML() ([]byte, error) {
	descs := make([]ruleDescription, 0, len(r.cells))
	for _, sym := range r.Symbols() {
		rule := r.cells[sym].rule
		defined, undefined := r.RuleDependencies(rule)
		guard := ""
		switch rule.GuardKind {
		case GuardNever:
			guard = "never"
		case GuardFunc:
			guard = "function"
		}
		descs = append(descs, ruleDescription{
			Symbol:       sym,
			Expression:   rule.Expr.String(),
			Guard:        guard,
			Dependencies: defined,
			Undefined:    undefined,
		})
	}
	return yaml.Marshal(descs)
}
