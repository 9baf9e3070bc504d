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

	log "github.com/golang/glog"

	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

// Compile specializes e into a closure that re-evaluates the same subtree
// on every call without walking the type switch in Eval again, precomputing
// subexpression closures the way the teacher's gogen package precomputes
// handler functions for each grammar term (generator/gogen/gogen.go).
//
// Compile returns any prefix-shadow warnings collected along the way (spec
// §4.3); it never fails — malformed expressions are rejected earlier by
// expr.Validate.
func (ev *Evaluator) Compile(e expr.Expr) (Closure, []string) {
	var warnings []string
	c := ev.compile(e, &warnings)
	return c, warnings
}

func (ev *Evaluator) compile(e expr.Expr, warnings *[]string) Closure {
	switch v := e.(type) {
	case expr.Character:
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.evalCharacterProducing(ctx, pos, end)
		}
	case expr.Literal:
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.evalLiteral(ctx, v, pos, end)
		}
	case expr.LengthString:
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.evalLengthString(ctx, v, pos, end)
		}
	case expr.CharRanges:
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.evalCharRanges(ctx, v, pos, end)
		}
	case expr.Nonterminal:
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.evalNonterminal(ctx, v.Symbol, pos, end)
		}
	case expr.FunctionTerminal:
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.evalFunctionTerminal(ctx, v, pos, end)
		}
	case expr.Predicate:
		sub := ev.compile(v.Sub, warnings)
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.compiledPredicate(ctx, v, sub, pos, end)
		}
	case expr.And:
		return ev.compileAnd(v, warnings)
	case expr.Or:
		return ev.compileOr(v, warnings)
	case expr.Not:
		sub := ev.compile(v.Sub, warnings)
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.compiledNot(ctx, v, sub, pos, end)
		}
	case expr.NegAhead:
		sub := ev.compile(v.Sub, warnings)
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.compiledNegAhead(ctx, v, sub, pos, end)
		}
	case expr.Ahead:
		sub := ev.compile(v.Sub, warnings)
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.compiledAhead(ctx, v, sub, pos, end)
		}
	case expr.Star:
		sub := ev.compile(v.Sub, warnings)
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.compiledStar(ctx, sub, pos, end)
		}
	case expr.Plus:
		sub := ev.compile(v.Sub, warnings)
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.compiledPlus(ctx, v, sub, pos, end)
		}
	case expr.Optional:
		sub := ev.compile(v.Sub, warnings)
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return ev.compiledOptional(ctx, sub, pos, end)
		}
	default:
		return func(ctx *Context, pos, end int) (result.Result, error) {
			return result.Result{}, fmt.Errorf("engine: cannot compile expression of type %T", e)
		}
	}
}

func (ev *Evaluator) compileAnd(a expr.And, warnings *[]string) Closure {
	subs := make([]Closure, len(a.Subs))
	for i, s := range a.Subs {
		subs[i] = ev.compile(s, warnings)
	}
	return func(ctx *Context, pos, end int) (result.Result, error) {
		productions := make([]result.Value, 0, len(subs))
		cur := pos
		for _, sub := range subs {
			r, err := sub(ctx, cur, end)
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
}

// compileOr implements both required optimizations of spec §4.3: a flat
// character-set test when every alternative is a single-character literal,
// a flat literal scan when every alternative is a literal string, and the
// general recursive choice otherwise.
func (ev *Evaluator) compileOr(o expr.Or, warnings *[]string) Closure {
	lits, allLiteral := literalTexts(o.Subs)
	if allLiteral {
		checkPrefixShadow(o, lits, warnings)
		if allSingleChar(lits) {
			return compileCharSetOr(o, lits)
		}
		return compileLiteralOr(o, lits)
	}
	subs := make([]Closure, len(o.Subs))
	for i, s := range o.Subs {
		subs[i] = ev.compile(s, warnings)
	}
	return func(ctx *Context, pos, end int) (result.Result, error) {
		var worst result.Result
		haveWorst := false
		for _, sub := range subs {
			r, err := sub(ctx, pos, end)
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
}

// literalTexts extracts the case-sensitive text of each sub if every one of
// them is a case-sensitive expr.Literal; otherwise allLiteral is false and
// the Or must fall back to general evaluation (case folding and other
// terminal kinds do not fit the flat scan).
func literalTexts(subs []expr.Expr) (texts []string, allLiteral bool) {
	texts = make([]string, len(subs))
	for i, s := range subs {
		lit, ok := s.(expr.Literal)
		if !ok || !lit.CaseSensitive {
			return nil, false
		}
		texts[i] = lit.Text
	}
	return texts, true
}

func allSingleChar(texts []string) bool {
	for _, t := range texts {
		if len(t) != 1 {
			return false
		}
	}
	return true
}

// checkPrefixShadow warns when an earlier alternative is a proper prefix of
// a later one, per spec §4.3 ("Or('FOO', 'FOOBAR')" makes "FOOBAR"
// unreachable).
func checkPrefixShadow(o expr.Or, texts []string, warnings *[]string) {
	for i := range texts {
		for j := i + 1; j < len(texts); j++ {
			if texts[i] != texts[j] && strings.HasPrefix(texts[j], texts[i]) {
				msg := fmt.Sprintf("%s: alternative %q shadows later alternative %q, which is unreachable", o, texts[i], texts[j])
				*warnings = append(*warnings, msg)
				log.Warningf("%s", msg)
			}
		}
	}
}

func compileCharSetOr(o expr.Or, texts []string) Closure {
	set := make(map[byte]bool, len(texts))
	for _, t := range texts {
		set[t[0]] = true
	}
	return func(ctx *Context, pos, end int) (result.Result, error) {
		if pos >= end {
			return result.Fail(result.FailedParse{Expression: o, Position: pos}), nil
		}
		c := ctx.Text[pos]
		if !set[c] {
			return result.Fail(result.FailedParse{Expression: o, Position: pos}), nil
		}
		return result.OkValue(pos+1, string(c)), nil
	}
}

func compileLiteralOr(o expr.Or, texts []string) Closure {
	return func(ctx *Context, pos, end int) (result.Result, error) {
		for _, t := range texts {
			n := len(t)
			if pos+n <= end && ctx.Text[pos:pos+n] == t {
				return result.OkValue(pos+n, t), nil
			}
		}
		return result.Fail(result.FailedParse{Expression: o, Position: pos}), nil
	}
}

func (ev *Evaluator) compiledPredicate(ctx *Context, p expr.Predicate, sub Closure, pos, end int) (result.Result, error) {
	r, err := sub(ctx, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if !r.IsOk() {
		return result.Fail(result.FailedParse{Expression: p, Position: pos, Detail: r.ErrKind()}), nil
	}
	fn, ok := ctx.Predicates[p.Name]
	if !ok {
		return result.Result{}, fmt.Errorf("engine: undefined predicate %q", p.Name)
	}
	if !fn(r.Production()) {
		return result.Fail(result.FailedParse{Expression: p, Position: pos}), nil
	}
	return r, nil
}

func (ev *Evaluator) compiledNot(ctx *Context, n expr.Not, sub Closure, pos, end int) (result.Result, error) {
	if pos >= end {
		return result.Fail(result.FailedParse{Expression: n, Position: pos}), nil
	}
	r, err := sub(ctx, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if r.IsOk() {
		return result.Fail(result.FailedParse{Expression: n, Position: pos}), nil
	}
	ru := []rune(ctx.Text[pos:])[0]
	return result.Ok(pos+runeLen(ru), result.Const(ru)), nil
}

func (ev *Evaluator) compiledNegAhead(ctx *Context, n expr.NegAhead, sub Closure, pos, end int) (result.Result, error) {
	r, err := sub(ctx, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if r.IsOk() {
		return result.Fail(result.FailedParse{Expression: n, Position: pos}), nil
	}
	return result.OkValue(pos, nil), nil
}

func (ev *Evaluator) compiledAhead(ctx *Context, a expr.Ahead, sub Closure, pos, end int) (result.Result, error) {
	r, err := sub(ctx, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if !r.IsOk() {
		return result.Fail(result.FailedParse{Expression: a, Position: pos, Detail: r.ErrKind()}), nil
	}
	return result.Ok(pos, r.ProductionThunk()), nil
}

func (ev *Evaluator) compiledStar(ctx *Context, sub Closure, pos, end int) (result.Result, error) {
	var productions []result.Value
	cur := pos
	for {
		r, err := sub(ctx, cur, end)
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

func (ev *Evaluator) compiledPlus(ctx *Context, p expr.Plus, sub Closure, pos, end int) (result.Result, error) {
	first, err := sub(ctx, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if !first.IsOk() {
		return result.Fail(result.FailedParse{Expression: p, Position: pos, Detail: first.ErrKind()}), nil
	}
	productions := []result.Value{first.Production()}
	cur := first.Position()
	for {
		r, err := sub(ctx, cur, end)
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

func (ev *Evaluator) compiledOptional(ctx *Context, sub Closure, pos, end int) (result.Result, error) {
	r, err := sub(ctx, pos, end)
	if err != nil {
		return result.Result{}, err
	}
	if r.IsOk() {
		return r, nil
	}
	return result.OkValue(pos, nil), nil
}
