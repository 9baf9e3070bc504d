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
	log "github.com/golang/glog"

	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

// withCachedResult implements spec §4.4's with_cached_result(sym, pos): the
// memoization and left-recursion wrapper every Nonterminal invocation goes
// through before reaching closure, the rule's actual compiled (or
// interpreted) body.
func (ev *Evaluator) withCachedResult(ctx *Context, symbol string, pos, end int, closure Closure) (result.Result, error) {
	key := cacheKey{Symbol: symbol, Position: pos}
	compute := func() (result.Result, error) { return closure(ctx, pos, end) }

	cached, found, err := ctx.recall(symbol, pos, compute)
	if err != nil {
		return result.Result{}, err
	}
	if found {
		if lm, ok := cached.ErrKind().(result.LeftRecursionMarker); !cached.IsOk() && ok {
			return ev.handleMarkerHit(ctx, symbol, pos, lm)
		}
		return cached, nil
	}

	// Cache miss (spec step 4): place a fresh marker, push it, evaluate,
	// overwrite with the real result, pop.
	state := &result.MarkerState{Rule: symbol}
	ctx.cache[key] = result.Fail(result.LeftRecursionMarker{State: state})
	ctx.stack = append(ctx.stack, state)
	real, err := closure(ctx, pos, end)
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	if err != nil {
		return result.Result{}, err
	}
	ctx.cache[key] = real

	if real.IsOk() && state.Head != nil {
		real, err = ev.growSeed(ctx, symbol, pos, end, closure, state.Head, real)
		if err != nil {
			return result.Result{}, err
		}
	}
	return real, nil
}

// handleMarkerHit runs when recall returns a still-pending
// LeftRecursionMarker: symbol has recursed into itself (directly or through
// an indirect cycle) before consuming input at pos.
func (ev *Evaluator) handleMarkerHit(ctx *Context, symbol string, pos int, lm result.LeftRecursionMarker) (result.Result, error) {
	if ev.Policy == PolicyError {
		return result.Result{}, &LeftRecursionDetected{Rule: symbol, Path: ctx.StackPath()}
	}
	state := lm.State
	if state.Head == nil {
		state.Head = result.NewHead(symbol)
	}
	head := state.Head
	for i := len(ctx.stack) - 1; i >= 0; i-- {
		m := ctx.stack[i]
		if m.Head == head {
			break
		}
		m.Head = head
		head.AddInvolved(m.Rule)
	}
	log.V(3).Infof("left recursion detected at rule %q, position %d; involved=%v", symbol, pos, head.Involved)
	return result.Fail(result.FailedParse{Expression: expr.Nonterminal{Symbol: symbol}, Position: pos}), nil
}

// growSeed runs Warth's seed-growing loop (spec §4.4 step 5) once the
// initial evaluation of symbol at pos succeeded and some descendant
// assigned it a left-recursion head during that evaluation.
func (ev *Evaluator) growSeed(ctx *Context, symbol string, pos, end int, closure Closure, head *result.Head, seed result.Result) (result.Result, error) {
	key := cacheKey{Symbol: symbol, Position: pos}
	ctx.heads[pos] = head
	defer delete(ctx.heads, pos)

	current := seed
	for {
		head.ResetEvalSet()
		next, err := closure(ctx, pos, end)
		if err != nil {
			return result.Result{}, err
		}
		if !next.IsOk() || next.Position() <= current.Position() {
			break
		}
		current = next
		ctx.cache[key] = current
		log.V(3).Infof("grow seed for rule %q at %d: extended to position %d", symbol, pos, current.Position())
	}
	return current, nil
}
