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

// Package registry implements the grammar-level collaborators named out of
// scope by the core parsing engine: the name-to-rule table with
// dependency back-references, the rule-definition options (options.go),
// grammar description (describe.go), rule tracing (trace.go) and
// start-terminals analysis (terminals.go). It consumes the engine only
// through engine.CellLookup, grounded on the symbolic (not pointer) rule
// references of github.com/salikh/peg's parser2/parser2.go Grammar type.
package registry

import (
	"sort"

	log "github.com/golang/glog"

	"github.com/salikh/pegrat/engine"
	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

// RuleCell is the mutable indirection a symbol resolves to: the current
// parsing closure, the current rule (nil if undefined), trace state, and
// the set of referents (other rules' symbols that mention this one).
// Breaking rule-to-rule references into symbol lookups through a cell,
// rather than direct pointers, is what lets the registry own rule cycles
// without owning cycles of Go values (spec §9).
type RuleCell struct {
	Symbol    string
	closure   engine.Closure
	rule      *Rule
	traced    bool
	trace     []TraceEntry
	Referents map[string]bool
}

// Registry is the process-wide name→rule table. It implements
// engine.CellLookup so an Evaluator can resolve Nonterminal references
// without importing this package.
type Registry struct {
	cells      map[string]*RuleCell
	evaluator  *engine.Evaluator
	predicates map[string]func(result.Value) bool
}

// New creates an empty registry with the default (GrowSeed) left-recursion
// policy.
func New() *Registry {
	r := &Registry{
		cells:      make(map[string]*RuleCell),
		predicates: make(map[string]func(result.Value) bool),
	}
	r.evaluator = &engine.Evaluator{Cells: r, Policy: engine.GrowSeed}
	return r
}

// Evaluator returns the registry's evaluator, the one its compiled rule
// closures evaluate rule bodies with. driver.Parse builds its own
// evaluator for the top-level expression.
func (r *Registry) Evaluator() *engine.Evaluator { return r.evaluator }

// SetLeftRecursionPolicy reconfigures how the evaluator reacts to left
// recursion.
func (r *Registry) SetLeftRecursionPolicy(p engine.LeftRecursionPolicy) {
	r.evaluator.Policy = p
}

// DefinePredicate registers the function a Predicate(name, ...) expression
// invokes by name.
func (r *Registry) DefinePredicate(name string, fn func(result.Value) bool) {
	r.predicates[name] = fn
}

// Predicates exposes the current predicate table, for building a fresh
// engine.Context per parse.
func (r *Registry) Predicates() map[string]func(result.Value) bool {
	return r.predicates
}

func (r *Registry) cellFor(symbol string) *RuleCell {
	cell, ok := r.cells[symbol]
	if !ok {
		cell = &RuleCell{Symbol: symbol, Referents: map[string]bool{}}
		cell.closure = r.undefinedClosure(symbol)
		r.cells[symbol] = cell
	}
	return cell
}

func (r *Registry) undefinedClosure(symbol string) engine.Closure {
	return func(ctx *engine.Context, pos, end int) (result.Result, error) {
		return result.Result{}, &ErrUndefinedRule{Symbol: symbol}
	}
}

// Lookup implements engine.CellLookup.
func (r *Registry) Lookup(symbol string) engine.Closure {
	return r.cellFor(symbol).closure
}

// AddRule attaches rule to symbol, installing a compiled closure in its
// cell. It fails with ErrAlreadyAttached if rule is already bound to a
// symbol, or if symbol already has a rule (use ChangeRule to replace one in
// place).
func (r *Registry) AddRule(symbol string, rule *Rule) (string, error) {
	if rule.cell != nil {
		return "", ErrAlreadyAttached
	}
	cell := r.cellFor(symbol)
	if cell.rule != nil {
		return "", ErrAlreadyAttached
	}
	cell.rule = rule
	rule.cell = cell
	rule.Symbol = symbol
	r.registerReferents(symbol, rule.Expr)
	r.compileCell(cell)
	return symbol, nil
}

// FindRule returns the rule currently attached to symbol, and whether one
// is attached.
func (r *Registry) FindRule(symbol string) (*Rule, bool) {
	cell, ok := r.cells[symbol]
	if !ok || cell.rule == nil {
		return nil, false
	}
	return cell.rule, true
}

// RemoveRule detaches the rule at symbol and returns it. It refuses with
// ErrHasReferents unless force is true or no other rule refers to symbol.
func (r *Registry) RemoveRule(symbol string, force bool) (*Rule, error) {
	cell, ok := r.cells[symbol]
	if !ok || cell.rule == nil {
		return nil, nil
	}
	if len(cell.Referents) > 0 && !force {
		return nil, &ErrHasReferents{Symbol: symbol, Referents: sortedKeys(cell.Referents)}
	}
	rule := cell.rule
	r.unregisterReferents(symbol, rule.Expr)
	cell.rule = nil
	rule.cell = nil
	cell.closure = r.undefinedClosure(symbol)
	// Trace state is preserved across remove/re-add (spec §9): cell.traced
	// and cell.trace are left untouched here.
	return rule, nil
}

// ChangeRule atomically replaces the expression of the rule at symbol,
// preserving the Rule object's identity (and therefore its guard,
// transform and around chain).
func (r *Registry) ChangeRule(symbol string, newExpr expr.Expr) error {
	cell, ok := r.cells[symbol]
	if !ok || cell.rule == nil {
		return &ErrUndefinedRule{Symbol: symbol}
	}
	if err := expr.Validate(newExpr); err != nil {
		return err
	}
	r.unregisterReferents(symbol, cell.rule.Expr)
	cell.rule.Expr = newExpr
	r.registerReferents(symbol, newExpr)
	r.compileCell(cell)
	return nil
}

// RuleDependencies reports the nonterminal symbols rule's expression
// mentions, split into those with an attached rule and those without.
func (r *Registry) RuleDependencies(rule *Rule) (defined, undefined []string) {
	for _, sym := range collectNonterminals(rule.Expr) {
		if cell, ok := r.cells[sym]; ok && cell.rule != nil {
			defined = append(defined, sym)
		} else {
			undefined = append(undefined, sym)
		}
	}
	return defined, undefined
}

func (r *Registry) registerReferents(symbol string, e expr.Expr) {
	for _, sym := range collectNonterminals(e) {
		r.cellFor(sym).Referents[symbol] = true
	}
}

func (r *Registry) unregisterReferents(symbol string, e expr.Expr) {
	for _, sym := range collectNonterminals(e) {
		if cell, ok := r.cells[sym]; ok {
			delete(cell.Referents, symbol)
		}
	}
}

// collectNonterminals walks e and returns every distinct symbol referenced
// by a Nonterminal node, in first-encountered order.
func collectNonterminals(e expr.Expr) []string {
	seen := map[string]bool{}
	var order []string
	var walk func(expr.Expr)
	walk = func(e expr.Expr) {
		switch v := e.(type) {
		case expr.Nonterminal:
			if !seen[v.Symbol] {
				seen[v.Symbol] = true
				order = append(order, v.Symbol)
			}
		case expr.And:
			for _, s := range v.Subs {
				walk(s)
			}
		case expr.Or:
			for _, s := range v.Subs {
				walk(s)
			}
		case expr.Not:
			walk(v.Sub)
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
	return order
}

// compileCell installs a closure on cell implementing spec §4.3's rule
// top-level wrapping: guard check, body evaluation, FailedParse wrapping on
// sub-failure, and the transform/around chain on success. The memoization
// protocol itself lives one level up, in engine.Evaluator.evalNonterminal,
// which wraps whatever closure Lookup returns.
func (r *Registry) compileCell(cell *RuleCell) {
	rule := cell.rule
	symbol := cell.Symbol
	body, warnings := r.evaluator.Compile(rule.Expr)
	for _, w := range warnings {
		log.Warningf("rule %q: %s", symbol, w)
	}
	cell.closure = func(ctx *engine.Context, pos, end int) (result.Result, error) {
		if cell.traced {
			cell.trace = append(cell.trace, TraceEntry{Symbol: symbol, Position: pos})
		}
		if rule.GuardKind == GuardNever {
			return result.Fail(result.InactiveRule{Symbol: symbol}), nil
		}
		if rule.GuardKind == GuardFunc && rule.GuardFn != nil && !rule.GuardFn() {
			return result.Fail(result.InactiveRule{Symbol: symbol}), nil
		}
		sub, err := body(ctx, pos, end)
		if err != nil {
			return result.Result{}, err
		}
		if !sub.IsOk() {
			failPos := pos
			if fp, ok := sub.ErrKind().(result.FailedParse); ok {
				failPos = fp.Position
			}
			return result.Fail(result.FailedParse{Expression: expr.Nonterminal{Symbol: symbol}, Position: failPos, Detail: sub.ErrKind()}), nil
		}
		start := pos
		endPos := sub.Position()
		raw := sub.ProductionThunk()
		thunk := result.NewLazy(func() result.Value {
			return applyTransform(rule, raw.Force(), start, endPos)
		})
		return result.Ok(endPos, thunk), nil
	}
}

func applyTransform(rule *Rule, raw result.Value, start, end int) result.Value {
	call := func() result.Value {
		if rule.Transform != nil {
			return rule.Transform(raw, start, end)
		}
		return raw
	}
	if rule.Around != nil {
		return rule.Around(start, end, call)
	}
	return call()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
