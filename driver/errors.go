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

// Package driver implements the top-level Parse entry point: allocating a
// fresh per-call engine.Context, evaluating an expression against it, and
// mapping the engine's Ok/FailedParse/InactiveRule results to the surface
// (value, rest, ok, err) shape a caller deals with.
package driver

import (
	"fmt"

	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

// ParseError is the common base of every error Parse can return.
type ParseError struct {
	Text     string
	Position int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d", e.Position)
}

// SimpleParseError reports an ordinary parse failure: the expression chain
// (outermost first, deepest last) that could not match at Position.
type SimpleParseError struct {
	ParseError
	Message string
	Chain   []expr.Expr
}

func (e *SimpleParseError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Message, e.Position)
}

func (e *SimpleParseError) Unwrap() error { return &e.ParseError }

// IncompleteParse is raised when the expression matched but did not consume
// the whole input and junkAllowed was false.
type IncompleteParse struct {
	ParseError
}

func (e *IncompleteParse) Error() string {
	return fmt.Sprintf("incomplete parse: unconsumed input remains at position %d", e.Position)
}

func (e *IncompleteParse) Unwrap() error { return &e.ParseError }

// InactiveRuleError is raised when parsing fails because the top-level
// expression bottomed out in a guarded-off rule and junkAllowed was false.
type InactiveRuleError struct {
	ParseError
	Symbol string
}

func (e *InactiveRuleError) Error() string {
	return fmt.Sprintf("rule %q is not active at position %d", e.Symbol, e.Position)
}

func (e *InactiveRuleError) Unwrap() error { return &e.ParseError }

// LeftRecursionError is raised when the evaluator's left-recursion policy
// is set to error-on-detection and a recursive invocation was observed.
type LeftRecursionError struct {
	ParseError
	Nonterminal string
	Path        []string
}

func (e *LeftRecursionError) Error() string {
	return fmt.Sprintf("left recursion on rule %q at position %d (path: %v)", e.Nonterminal, e.Position, e.Path)
}

func (e *LeftRecursionError) Unwrap() error { return &e.ParseError }

// deepestFailure walks a FailedParse's Detail chain, which is built up one
// wrapping per enclosing And/Plus/rule-body (spec §7: "the detail chain ...
// is carried through wrapping"). It returns the chain of expressions from
// outermost to innermost, and the position of the innermost (deepest)
// failure, the "subexpression that could not be parsed."
func deepestFailure(fp result.FailedParse) ([]expr.Expr, int) {
	chain := []expr.Expr{fp.Expression}
	pos := fp.Position
	detail := fp.Detail
	for {
		nested, ok := detail.(result.FailedParse)
		if !ok {
			return chain, pos
		}
		chain = append(chain, nested.Expression)
		pos = nested.Position
		detail = nested.Detail
	}
}
