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

import "github.com/salikh/pegrat/expr"

// StartTerminal is one terminal expression that may appear at the very
// start of a match of some larger expression.
type StartTerminal struct {
	Expr expr.Expr
}

// StartTerminals computes the set of terminal expressions that can begin a
// match of e, following Nonterminal references through the registry (with
// cycle guarding) and descending into And only while the leading
// subexpressions are nullable. This is a conservative static
// approximation, useful for diagnostics (e.g. "can rule X ever start with
// a digit?") rather than a precise first-set computation.
func (r *Registry) StartTerminals(e expr.Expr) []StartTerminal {
	var out []StartTerminal
	seen := map[string]bool{}
	var walk func(expr.Expr)
	walk = func(e expr.Expr) {
		switch v := e.(type) {
		case expr.Character, expr.Literal, expr.LengthString, expr.CharRanges, expr.FunctionTerminal:
			out = append(out, StartTerminal{Expr: v})
		case expr.Not:
			// Not always tries to consume one character regardless of what
			// sub is; approximate its start set with a wildcard.
			out = append(out, StartTerminal{Expr: expr.Character{}})
		case expr.Nonterminal:
			if seen[v.Symbol] {
				return
			}
			seen[v.Symbol] = true
			if cell, ok := r.cells[v.Symbol]; ok && cell.rule != nil {
				walk(cell.rule.Expr)
			}
		case expr.And:
			for _, sub := range v.Subs {
				walk(sub)
				if !nullable(sub) {
					break
				}
			}
		case expr.Or:
			for _, sub := range v.Subs {
				walk(sub)
			}
		case expr.NegAhead:
			walk(v.Sub)
		case expr.Ahead:
			walk(v.Sub)
		case expr.Star:
			walk(v.Sub)
		case expr.Plus:
			walk(v.Sub)
		case expr.Optional:
			walk(v.Sub)
		case expr.Predicate:
			walk(v.Sub)
		}
	}
	walk(e)
	return dedupeTerminals(out)
}

// nullable reports whether e may match the empty string, used to decide
// whether StartTerminals must look past a leading And subexpression.
func nullable(e expr.Expr) bool {
	switch v := e.(type) {
	case expr.Optional, expr.Star, expr.NegAhead, expr.Ahead:
		return true
	case expr.And:
		for _, sub := range v.Subs {
			if !nullable(sub) {
				return false
			}
		}
		return true
	case expr.Or:
		for _, sub := range v.Subs {
			if nullable(sub) {
				return true
			}
		}
		return false
	case expr.Plus:
		return nullable(v.Sub)
	default:
		return false
	}
}

func dedupeTerminals(in []StartTerminal) []StartTerminal {
	seen := map[string]bool{}
	var out []StartTerminal
	for _, t := range in {
		key := t.Expr.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
