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

// Package engine implements the hard part of the parser: the expression
// evaluator, the memoizing cache, Warth's left-recursion algorithm and the
// rule compiler. It is grounded on the memoization model of
// github.com/salikh/peg/parser/parser.go, whose (*Result).apply keeps a
// map[pos]map[*rule]*Node memo; here the memo key is (symbol, position)
// and the value is a result.Result, generalized with the Head/marker
// machinery needed to support left recursion, which the teacher package
// does not implement.
package engine

import (
	"fmt"

	"github.com/salikh/pegrat/result"
)

// cacheKey identifies one memoized (rule, position) parse attempt.
type cacheKey struct {
	Symbol   string
	Position int
}

// Context is the per-parse activation: a fresh cache, heads map and
// pending-marker stack, created once per top-level Parse call and
// discarded at the end (spec §5: "Cache and heads maps live only for the
// duration of a single top-level parse invocation").
type Context struct {
	Text string
	// Predicates resolves the names used by expr.Predicate nodes (spec
	// §4.2); the registry package populates this from rule/grammar-level
	// predicate registrations before a parse starts.
	Predicates map[string]func(result.Value) bool
	cache      map[cacheKey]result.Result
	heads      map[int]*result.Head
	stack      []*result.MarkerState
}

// NewContext allocates an empty parse context over text.
func NewContext(text string, predicates map[string]func(result.Value) bool) *Context {
	if predicates == nil {
		predicates = map[string]func(result.Value) bool{}
	}
	return &Context{
		Text:       text,
		Predicates: predicates,
		cache:      make(map[cacheKey]result.Result),
		heads:      make(map[int]*result.Head),
	}
}

// StackPath returns the rule names currently pending, bottom to top; used
// to build the LeftRecursionError path when the policy is PolicyError.
func (c *Context) StackPath() []string {
	path := make([]string, len(c.stack))
	for i, m := range c.stack {
		path[i] = m.Rule
	}
	return path
}

// recall implements spec §4.4's recall(rule, pos, cache, heads, compute):
// it returns (result, found) where found is false only on a genuine cache
// miss (the caller must then run the full with_cached_result cache-miss
// path, including marker placement and left-recursion head creation).
func (c *Context) recall(symbol string, pos int, compute func() (result.Result, error)) (result.Result, bool, error) {
	key := cacheKey{Symbol: symbol, Position: pos}
	r, rOk := c.cache[key]
	h, hOk := c.heads[pos]
	if !hOk {
		// Step 2: no left-recursion growth in progress at this position.
		if rOk {
			return r, true, nil
		}
		return result.Result{}, false, nil
	}
	if !rOk && symbol != h.Rule && !h.Involved[symbol] {
		// Step 3: prevent unrelated rules from running during seed-grow.
		return result.Fail(result.FailedParse{Position: pos}), true, nil
	}
	if symbol != h.Rule && h.TakeEval(symbol) {
		// Step 4: this rule gets exactly one recompute this grow round. The
		// head's own rule is not recomputed here: growSeed evaluates it
		// once per round, and references to it inside that evaluation see
		// the current seed.
		newRes, err := compute()
		if err != nil {
			return result.Result{}, true, err
		}
		c.cache[key] = newRes
		return newRes, true, nil
	}
	// Step 5.
	if rOk {
		return r, true, nil
	}
	return result.Result{}, false, nil
}

// LeftRecursionDetected is the hard abort the engine raises when the
// configured policy is PolicyError and a rule recurses into itself (or an
// indirect cycle) before consuming any input. The driver package converts
// this into the user-visible LeftRecursionError (spec §6/§7).
type LeftRecursionDetected struct {
	Rule string
	Path []string
}

func (e *LeftRecursionDetected) Error() string {
	return fmt.Sprintf("left recursion detected in rule %q (path: %v)", e.Rule, e.Path)
}
