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

package engine

import (
	"reflect"
	"testing"

	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

// flattenDigits walks a production tree built from the digit grammar below
// (nested []result.Value of runes) and collects the runes in left-to-right
// order, so tests can check growth shape without pinning the exact tree.
func flattenDigits(v result.Value) []rune {
	switch x := v.(type) {
	case rune:
		return []rune{x}
	case string:
		return nil
	case []result.Value:
		var out []rune
		for _, e := range x {
			out = append(out, flattenDigits(e)...)
		}
		return out
	default:
		return nil
	}
}

// directLeftRecursionCells builds S1's grammar: expr <- expr "+" num / num,
// num <- [0-9]+.
func directLeftRecursionCells(ev *Evaluator) testCells {
	numExpr := expr.Plus{Sub: expr.NewCharRanges([]expr.RangeItem{{Lo: '0', Hi: '9'}})}
	exprExpr := expr.Or{Subs: []expr.Expr{
		expr.And{Subs: []expr.Expr{
			expr.Nonterminal{Symbol: "expr"},
			expr.Literal{Text: "+", CaseSensitive: true},
			expr.Nonterminal{Symbol: "num"},
		}},
		expr.Nonterminal{Symbol: "num"},
	}}
	cells := testCells{}
	cells["num"] = func(ctx *Context, pos, end int) (result.Result, error) { return ev.Eval(ctx, numExpr, pos, end) }
	cells["expr"] = func(ctx *Context, pos, end int) (result.Result, error) { return ev.Eval(ctx, exprExpr, pos, end) }
	return cells
}

func TestDirectLeftRecursionGrowsSeed(t *testing.T) {
	ev := &Evaluator{Policy: GrowSeed}
	ev.Cells = directLeftRecursionCells(ev)
	ctx := NewContext("1+2+3", nil)
	r, err := ev.Eval(ctx, expr.Nonterminal{Symbol: "expr"}, 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsOk() || r.Position() != 5 {
		t.Fatalf("Eval(expr) = %s, want Ok at position 5", r)
	}
	digits := flattenDigits(r.Production())
	if string(digits) != "123" {
		t.Errorf("flattened digits = %q, want 123", string(digits))
	}
}

func TestDirectLeftRecursionSingleNumber(t *testing.T) {
	ev := &Evaluator{Policy: GrowSeed}
	ev.Cells = directLeftRecursionCells(ev)
	ctx := NewContext("42", nil)
	r, err := ev.Eval(ctx, expr.Nonterminal{Symbol: "expr"}, 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsOk() || r.Position() != 2 {
		t.Fatalf("Eval(expr) on bare number = %s, want Ok at position 2", r)
	}
}

func TestMemoizationIdempotence(t *testing.T) {
	ev := &Evaluator{Policy: GrowSeed}
	calls := 0
	ev.Cells = testCells{
		"num": func(ctx *Context, pos, end int) (result.Result, error) {
			calls++
			return ev.Eval(ctx, expr.Plus{Sub: expr.NewCharRanges([]expr.RangeItem{{Lo: '0', Hi: '9'}})}, pos, end)
		},
	}
	ctx := NewContext("7", nil)
	r1, err := ev.evalNonterminal(ctx, "num", 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := ev.evalNonterminal(ctx, "num", 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Position() != r2.Position() || !reflect.DeepEqual(r1.Production(), r2.Production()) {
		t.Errorf("repeated invocation at same position gave different results: %s vs %s", r1, r2)
	}
	if calls != 1 {
		t.Errorf("rule body evaluated %d times, want 1 (memoized)", calls)
	}
}

// indirectLeftRecursionCells builds S2's grammar: a <- b "x" / "a",
// b <- a "y" / "b".
func indirectLeftRecursionCells(ev *Evaluator) testCells {
	aExpr := expr.Or{Subs: []expr.Expr{
		expr.And{Subs: []expr.Expr{expr.Nonterminal{Symbol: "b"}, expr.Literal{Text: "x", CaseSensitive: true}}},
		expr.Literal{Text: "a", CaseSensitive: true},
	}}
	bExpr := expr.Or{Subs: []expr.Expr{
		expr.And{Subs: []expr.Expr{expr.Nonterminal{Symbol: "a"}, expr.Literal{Text: "y", CaseSensitive: true}}},
		expr.Literal{Text: "b", CaseSensitive: true},
	}}
	cells := testCells{}
	cells["a"] = func(ctx *Context, pos, end int) (result.Result, error) { return ev.Eval(ctx, aExpr, pos, end) }
	cells["b"] = func(ctx *Context, pos, end int) (result.Result, error) { return ev.Eval(ctx, bExpr, pos, end) }
	return cells
}

func TestIndirectLeftRecursion(t *testing.T) {
	ev := &Evaluator{Policy: GrowSeed}
	ev.Cells = indirectLeftRecursionCells(ev)

	tests := []struct {
		input   string
		wantOk  bool
		wantPos int
	}{
		{"axy", true, 3},
		{"a", true, 1},
		{"byx", false, 0},
	}
	for _, tt := range tests {
		ctx := NewContext(tt.input, nil)
		r, err := ev.Eval(ctx, expr.Nonterminal{Symbol: "a"}, 0, len(tt.input))
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tt.input, err)
		}
		if r.IsOk() != tt.wantOk {
			t.Errorf("input %q: IsOk() = %v, want %v (%s)", tt.input, r.IsOk(), tt.wantOk, r)
			continue
		}
		if tt.wantOk && r.Position() != tt.wantPos {
			t.Errorf("input %q: position = %d, want %d", tt.input, r.Position(), tt.wantPos)
		}
	}
}

func TestLeftRecursionPolicyError(t *testing.T) {
	ev := &Evaluator{Policy: PolicyError}
	ev.Cells = directLeftRecursionCells(ev)
	ctx := NewContext("1+2", nil)
	_, err := ev.Eval(ctx, expr.Nonterminal{Symbol: "expr"}, 0, 3)
	if err == nil {
		t.Fatalf("expected LeftRecursionDetected, got nil error")
	}
	if _, ok := err.(*LeftRecursionDetected); !ok {
		t.Errorf("error = %T(%v), want *LeftRecursionDetected", err, err)
	}
}
