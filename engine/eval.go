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
	"fmt"
	"strings"

	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

// Closure is a compiled (or directly-interpreted) parsing function: given a
// context and a [pos,end) window into ctx.Text, it returns a result.
type Closure func(ctx *Context, pos, end int) (result.Result, error)

// CellLookup resolves a nonterminal symbol to its current closure. The
// registry package is the only implementation; the engine depends only on
// this narrow interface (spec §6) so it never imports registry.
//
// Lookup must never return nil: a cell for a name that was never attached
// resolves to a closure that fails with an "undefined rule" error (spec
// §4.2: "cells for undefined names have a closure that raises Undefined
// rule").
type CellLookup interface {
	Lookup(symbol string) Closure
}

// LeftRecursionPolicy selects what happens the first time a rule recurses
// into itself before consuming input.
type LeftRecursionPolicy int

const (
	// GrowSeed runs Warth's seed-growing algorithm (the default).
	GrowSeed LeftRecursionPolicy = iota
	// PolicyError raises LeftRecursionDetected instead of growing a seed.
	PolicyError
)

// Evaluator interprets expr.Expr trees against a Context. One instance is
// shared across an entire parse (and typically across many parses against
// the same grammar); it carries no per-parse state itself, only the rule
// lookup and the configured left-recursion policy.
type Evaluator struct {
	Cells  CellLookup
	Policy LeftRecursionPolicy
}

// NewEvaluator builds an Evaluator over cells with the default GrowSeed
// policy.
func NewEvaluator(cells CellLookup) *Evaluator {
	return &Evaluator{Cells: cells, Policy: GrowSeed}
}

// Eval dispatches on the dynamic type of e, implementing spec §4.2's one
// function per variant.
func (ev *Evaluator) Eval(ctx *Context, e expr.Expr, pos, end int) (result.Result, error) {
	switch v := e.(type) {
	case expr.Character:
		return ev.evalCharacterProducing(ctx, pos, end)
	case expr.Literal:
		return ev.evalLiteral(ctx, v, pos, end)
	case expr.LengthString:
		return ev.evalLengthString(ctx, v, pos, end)
	case expr.CharRanges:
		return ev.evalCharRanges(ctx, v, pos, end)
	case expr.Predicate:
		return ev.evalPredicate(ctx, v, pos, end)
	case expr.FunctionTerminal:
		return ev.evalFunctionTerminal(ctx, v, pos, end)
	case expr.Nonterminal:
		return ev.evalNonterminal(ctx, v.Symbol, pos, end)
	case expr.And:
		return ev.evalAnd(ctx, v, pos, end)
	case expr.Or:
		return ev.evalOr(ctx, v, pos, end)
	case expr.Not:
		return ev.evalNot(ctx, v, pos, end)
	case expr.NegAhead:
		return ev.evalNegAhead(ctx, v, pos, end)
	case expr.Ahead:
		return ev.evalAhead(ctx, v, pos, end)
	case expr.Star:
		return ev.evalStar(ctx, v, pos, end)
	case expr.Plus:
		return ev.evalPlus(ctx, v, pos, end)
	case expr.Optional:
		return ev.evalOptional(ctx, v, pos, end)
	default:
		return result.Result{}, fmt.Errorf("engine: unhandled expression type %T", e)
	}
}

// evalCharacterProducing matches any single code point at pos.
func (ev *Evaluator) evalCharacterProducing(ctx *Context, pos, end int) (result.Result, error) {
	if pos >= end {
		return result.Fail(result.FailedParse{Position: pos}), nil
	}
	r := []rune(ctx.Text[pos:])[0]
	return result.Ok(pos+runeLen(r), result.Const(r)), nil
}

func runeLen(r rune) int { return len(string(r)) }

func (ev *Evaluator) evalLiteral(ctx *Context, l expr.Literal, pos, end int) (result.Result, error) {
	n := len(l.Text)
	if pos+n > end {
		return result.Fail(result.FailedParse{Expression: l, Position: pos}), nil
	}
	candidate := ctx.Text[pos : pos+n]
	matched := candidate == l.Text
	if !matched && !l.CaseSensitive {
		matched = strings.EqualFold(candidate, l.Text)
	}
	if !matched {
		return result.Fail(result.FailedParse{Expression: l, Position: pos}), nil
	}
	return result.OkValue(pos+n, l.Text), nil
}

func (ev *Evaluator) evalLengthString(ctx *Context, l expr.LengthString, pos, end int) (result.Result, error) {
	if pos+l.N > end {
		return result.Fail(result.FailedParse{Expression: l, Position: pos}), nil
	}
	return result.OkValue(pos+l.N, ctx.Text[pos:pos+l.N]), nil
}

func (ev *Evaluator) evalCharRanges(ctx *Context, c expr.CharRanges, pos, end int) (result.Result, error) {
	if pos >= end {
		return result.Fail(result.FailedParse{Expression: c, Position: pos}), nil
	}
	r := []rune(ctx.Text[pos:])[0]
	if !c.Class.Contains(r) {
		return result.Fail(result.FailedParse{Expression: c, Position: pos}), nil
	}
	return result.Ok(pos+runeLen(r), result.Const(r)), nil
}

func (ev *Evaluator) evalPredicate(ctx *Context, p expr.Predicate, pos, end int) (result.Result, error) {
	sub, err := ev.Eval(ctx, p.Sub, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if !sub.IsOk() {
		return result.Fail(result.FailedParse{Expression: p, Position: pos, Detail: sub.ErrKind()}), nil
	}
	fn, ok := ctx.Predicates[p.Name]
	if !ok {
		return result.Result{}, fmt.Errorf("engine: undefined predicate %q", p.Name)
	}
	if !fn(sub.Production()) {
		return result.Fail(result.FailedParse{Expression: p, Position: pos}), nil
	}
	return sub, nil
}

func (ev *Evaluator) evalNonterminal(ctx *Context, symbol string, pos, end int) (result.Result, error) {
	closure := ev.Cells.Lookup(symbol)
	return ev.withCachedResult(ctx, symbol, pos, end, closure)
}

func (ev *Evaluator) evalAnd(ctx *Context, a expr.And, pos, end int) (result.Result, error) {
	productions := make([]result.Value, 0, len(a.Subs))
	cur := pos
	for _, sub := range a.Subs {
		r, err := ev.Eval(ctx, sub, cur, end)
		if err != nil {
			return result.Result{}, err
		}
		if !r.IsOk() {
			return result.Fail(result.FailedParse{Expression: a, Position: pos, Detail: r.ErrKind()}), nil
		}
		productions = append(productions, r.Production())
		cur = r.Position()
	}
	return result.OkValue(cur, productions), nil
}

func (ev *Evaluator) evalOr(ctx *Context, o expr.Or, pos, end int) (result.Result, error) {
	var worst result.Result
	haveWorst := false
	for _, sub := range o.Subs {
		r, err := ev.Eval(ctx, sub, pos, end)
		if err != nil {
			return result.Result{}, err
		}
		if r.IsOk() {
			return r, nil
		}
		worst, haveWorst = worseFailure(worst, haveWorst, r)
	}
	if !haveWorst {
		return result.Fail(result.FailedParse{Expression: o, Position: pos}), nil
	}
	return worst, nil
}

// worseFailure implements the Or tie-break policy of spec §4.2: prefer an
// InactiveRule over none, else prefer the deeper FailedParse position, on
// ties keep the earlier one.
func worseFailure(cur result.Result, haveCur bool, candidate result.Result) (result.Result, bool) {
	if !haveCur {
		return candidate, true
	}
	_, curInactive := cur.ErrKind().(result.InactiveRule)
	_, candInactive := candidate.ErrKind().(result.InactiveRule)
	if candInactive && !curInactive {
		return candidate, true
	}
	if curInactive {
		return cur, true
	}
	curFP, curOk := cur.ErrKind().(result.FailedParse)
	candFP, candOk := candidate.ErrKind().(result.FailedParse)
	if candOk && (!curOk || candFP.Position > curFP.Position) {
		return candidate, true
	}
	return cur, true
}

func (ev *Evaluator) evalNot(ctx *Context, n expr.Not, pos, end int) (result.Result, error) {
	if pos >= end {
		return result.Fail(result.FailedParse{Expression: n, Position: pos}), nil
	}
	sub, err := ev.Eval(ctx, n.Sub, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if sub.IsOk() {
		return result.Fail(result.FailedParse{Expression: n, Position: pos}), nil
	}
	r := []rune(ctx.Text[pos:])[0]
	return result.Ok(pos+runeLen(r), result.Const(r)), nil
}

func (ev *Evaluator) evalNegAhead(ctx *Context, n expr.NegAhead, pos, end int) (result.Result, error) {
	sub, err := ev.Eval(ctx, n.Sub, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if sub.IsOk() {
		return result.Fail(result.FailedParse{Expression: n, Position: pos}), nil
	}
	return result.OkValue(pos, nil), nil
}

func (ev *Evaluator) evalAhead(ctx *Context, a expr.Ahead, pos, end int) (result.Result, error) {
	sub, err := ev.Eval(ctx, a.Sub, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if !sub.IsOk() {
		return result.Fail(result.FailedParse{Expression: a, Position: pos, Detail: sub.ErrKind()}), nil
	}
	return result.Ok(pos, sub.ProductionThunk()), nil
}

func (ev *Evaluator) evalStar(ctx *Context, s expr.Star, pos, end int) (result.Result, error) {
	var productions []result.Value
	cur := pos
	for {
		r, err := ev.Eval(ctx, s.Sub, cur, end)
		if err != nil {
			return result.Result{}, err
		}
		if !r.IsOk() || r.Position() == cur {
			break
		}
		productions = append(productions, r.Production())
		cur = r.Position()
	}
	return result.OkValue(cur, productions), nil
}

func (ev *Evaluator) evalPlus(ctx *Context, p expr.Plus, pos, end int) (result.Result, error) {
	first, err := ev.Eval(ctx, p.Sub, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if !first.IsOk() {
		return result.Fail(result.FailedParse{Expression: p, Position: pos, Detail: first.ErrKind()}), nil
	}
	productions := []result.Value{first.Production()}
	cur := first.Position()
	for {
		r, err := ev.Eval(ctx, p.Sub, cur, end)
		if err != nil {
			return result.Result{}, err
		}
		if !r.IsOk() || r.Position() == cur {
			break
		}
		productions = append(productions, r.Production())
		cur = r.Position()
	}
	return result.OkValue(cur, productions), nil
}

func (ev *Evaluator) evalOptional(ctx *Context, o expr.Optional, pos, end int) (result.Result, error) {
	r, err := ev.Eval(ctx, o.Sub, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if r.IsOk() {
		return r, nil
	}
	return result.OkValue(pos, nil), nil
}
