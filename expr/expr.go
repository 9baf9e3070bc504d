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

// Package expr defines the parsing expression tree: the tagged-variant AST
// that every rule body and every combinator compiles from. It mirrors the
// shape of github.com/salikh/peg's generator.Term/RHS tree, but instead of
// being parsed from a textual grammar it is built directly by Go code, one
// variant per combinator named in the PEG core.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/salikh/pegrat/charclass"
)

// Expr is a node of the parsing expression tree. The concrete types below
// are the only implementations; the interface is closed by the unexported
// isExpr method, the same way github.com/salikh/peg/generator keeps its
// Term union closed over a fixed set of fields.
type Expr interface {
	isExpr()
	// String renders the expression in the bracket-annotation style used
	// throughout the teacher package (see generator.Term.String).
	String() string
}

// Character matches any single code point.
type Character struct{}

func (Character) isExpr() {}
func (Character) String() string { return "(Character)" }

// Literal matches a terminal string, case-sensitively or case-folded.
type Literal struct {
	Text          string
	CaseSensitive bool
}

func (Literal) isExpr() {}
func (l Literal) String() string {
	if l.CaseSensitive {
		return fmt.Sprintf("(Literal %s)", strconv.Quote(l.Text))
	}
	return fmt.Sprintf("(Literal %s :ci)", strconv.Quote(l.Text))
}

// LengthString is the internal form produced by `(string N)`: match any N
// characters regardless of their value.
type LengthString struct {
	N int
}

func (LengthString) isExpr() {}
func (l LengthString) String() string { return fmt.Sprintf("(LengthString %d)", l.N) }

// RangeItem is one member of a CharRanges set: either a single character
// (Lo == Hi) or an inclusive [Lo,Hi] range.
type RangeItem struct {
	Lo, Hi rune
}

// Single reports whether the item denotes exactly one character.
func (r RangeItem) Single() bool { return r.Lo == r.Hi }

// CharRanges matches one character covered by any of Items. It is backed
// by a charclass.CharClass, the same matcher the teacher package builds
// from a textual charclass string; NewCharRanges builds that CharClass
// directly from an item list instead of parsing one.
type CharRanges struct {
	Items []RangeItem
	Class *charclass.CharClass
}

// NewCharRanges builds a CharRanges expression from a list of single
// characters and/or ranges.
func NewCharRanges(items []RangeItem) CharRanges {
	var singles []rune
	var ranges [][2]rune
	for _, it := range items {
		if it.Single() {
			singles = append(singles, it.Lo)
		} else {
			ranges = append(ranges, [2]rune{it.Lo, it.Hi})
		}
	}
	return CharRanges{Items: items, Class: charclass.FromRanges(singles, ranges)}
}

func (CharRanges) isExpr() {}
func (c CharRanges) String() string {
	var b strings.Builder
	b.WriteString("(CharRanges")
	for _, it := range c.Items {
		if it.Single() {
			fmt.Fprintf(&b, " %s", strconv.QuoteRune(it.Lo))
		} else {
			fmt.Fprintf(&b, " [%s-%s]", strconv.QuoteRune(it.Lo), strconv.QuoteRune(it.Hi))
		}
	}
	b.WriteString(")")
	return b.String()
}

// Predicate applies a named user function to the production of Sub and
// keeps the match iff the function returns true.
type Predicate struct {
	Name string
	Sub  Expr
}

func (Predicate) isExpr() {}
func (p Predicate) String() string { return fmt.Sprintf("(Predicate %s %s)", p.Name, p.Sub) }

// TerminalFunc implements the function-terminal protocol of spec §4.5: it
// is handed the input text and the [position,end) window and returns a
// production, an optional end position override, and an optional flag.
//
// flag may be nil, a bool, a string (failure detail) or an error (failure
// detail). See the engine package's evalFunctionTerminal for the exact
// success rule.
type TerminalFunc func(text string, position, end int) (production interface{}, endPosition *int, flag interface{})

// FunctionTerminal delegates matching to a user function.
type FunctionTerminal struct {
	Name string
	Func TerminalFunc
}

func (FunctionTerminal) isExpr() {}
func (f FunctionTerminal) String() string { return fmt.Sprintf("(FunctionTerminal %s)", f.Name) }

// Nonterminal references a named rule by symbol.
type Nonterminal struct {
	Symbol string
}

func (Nonterminal) isExpr() {}
func (n Nonterminal) String() string { return fmt.Sprintf("(Nonterminal %s)", n.Symbol) }

// And is an ordered sequence; its production is the list of sub-productions.
type And struct {
	Subs []Expr
}

func (And) isExpr() {}
func (a And) String() string { return wrap("And", a.Subs) }

// Or is ordered choice: the first sub that succeeds wins.
type Or struct {
	Subs []Expr
}

func (Or) isExpr() {}
func (o Or) String() string { return wrap("Or", o.Subs) }

// Not consumes one character if Sub fails to match at the current position,
// and fails if Sub succeeds. Distinct from NegAhead: it is not zero-width.
type Not struct {
	Sub Expr
}

func (Not) isExpr() {}
func (n Not) String() string { return fmt.Sprintf("(Not %s)", n.Sub) }

// NegAhead is the zero-width negative lookahead `!e`.
type NegAhead struct {
	Sub Expr
}

func (NegAhead) isExpr() {}
func (n NegAhead) String() string { return fmt.Sprintf("(NegAhead %s)", n.Sub) }

// Ahead is the zero-width positive lookahead `&e`.
type Ahead struct {
	Sub Expr
}

func (Ahead) isExpr() {}
func (a Ahead) String() string { return fmt.Sprintf("(Ahead %s)", a.Sub) }

// Star is greedy repetition; it never fails.
type Star struct {
	Sub Expr
}

func (Star) isExpr() {}
func (s Star) String() string { return fmt.Sprintf("(Star %s)", s.Sub) }

// Plus is greedy repetition requiring at least one match.
type Plus struct {
	Sub Expr
}

func (Plus) isExpr() {}
func (p Plus) String() string { return fmt.Sprintf("(Plus %s)", p.Sub) }

// Optional succeeds with an empty production when Sub fails.
type Optional struct {
	Sub Expr
}

func (Optional) isExpr() {}
func (o Optional) String() string { return fmt.Sprintf("(Optional %s)", o.Sub) }

func wrap(label string, subs []Expr) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(label)
	for _, s := range subs {
		b.WriteString(" ")
		b.WriteString(s.String())
	}
	b.WriteString(")")
	return b.String()
}
