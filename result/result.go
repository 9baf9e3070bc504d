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

package result

import (
	"fmt"

	"github.com/salikh/pegrat/expr"
)

// Result is either Ok or Err; the two are distinguished by IsOk.
//
// This is deliberately a concrete struct rather than an interface: the
// engine's cache (map[cacheKey]Result, see engine/cache.go) is on the hot
// path of every parse, and a struct avoids one indirection/allocation per
// cache entry compared to boxing Ok/Err behind an interface, the same way
// the teacher package's memo stores *Node directly (parser/parser.go)
// rather than an interface type.
type Result struct {
	ok bool
	// Ok fields.
	position   int
	production *Lazy
	// Err field.
	err ErrKind
}

// Ok builds a successful result ending at position, with production
// computed lazily by thunk.
func Ok(position int, thunk *Lazy) Result {
	return Result{ok: true, position: position, production: thunk}
}

// OkValue is a convenience wrapper around Ok for an already-materialized
// production.
func OkValue(position int, value Value) Result {
	return Ok(position, Const(value))
}

// Fail builds a failed result carrying kind.
func Fail(kind ErrKind) Result {
	return Result{ok: false, err: kind}
}

// IsOk reports whether r is a successful result.
func (r Result) IsOk() bool { return r.ok }

// Position returns the Ok position (one past the last consumed
// character). Only valid when IsOk is true.
func (r Result) Position() int { return r.position }

// Production forces and returns the Ok production. Only valid when IsOk
// is true.
func (r Result) Production() Value {
	if r.production == nil {
		return nil
	}
	return r.production.Force()
}

// ProductionThunk returns the unforced lazy production, so callers (e.g.
// Ahead/NegAhead) that discard the match can avoid forcing it.
func (r Result) ProductionThunk() *Lazy { return r.production }

// ErrKind returns the failure detail. Only valid when IsOk is false.
func (r Result) ErrKind() ErrKind { return r.err }

func (r Result) String() string {
	if r.ok {
		return fmt.Sprintf("Ok{position=%d}", r.position)
	}
	return fmt.Sprintf("Err(%s)", r.err)
}

// ErrKind is the closed union of parse-failure shapes: InactiveRule,
// FailedParse, and the transient LeftRecursionMarker sentinel.
type ErrKind interface {
	isErrKind()
	String() string
}

// InactiveRule means the rule's guard rejected this invocation (guard is
// `never`, or a guard function returned false).
type InactiveRule struct {
	Symbol string
}

func (InactiveRule) isErrKind() {}
func (i InactiveRule) String() string { return fmt.Sprintf("InactiveRule(%s)", i.Symbol) }

// FailedParse is an ordinary parse failure: expr could not match at
// Position. Detail, if present, is the nested ErrKind (or a plain string
// message) that explains why, used to build the "deepest subexpression"
// diagnostic in the driver.
type FailedParse struct {
	Expression expr.Expr
	Position   int
	Detail     interface{} // ErrKind, string, or nil
}

func (FailedParse) isErrKind() {}
func (f FailedParse) String() string {
	if f.Detail == nil {
		return fmt.Sprintf("FailedParse{%s@%d}", describeExpr(f.Expression), f.Position)
	}
	return fmt.Sprintf("FailedParse{%s@%d, detail=%v}", describeExpr(f.Expression), f.Position, f.Detail)
}

func describeExpr(e expr.Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// MarkerState is the mutable part of a LeftRecursionMarker. It is held by
// pointer so that the same marker, referenced both from the cache entry and
// from the pending-invocation stack, can be mutated in place when a
// descendant call discovers the left-recursion head it belongs to (spec
// §4.4 step 2: "ensure the marker has a head ... walk the current stack
// ... set its head").
type MarkerState struct {
	Rule string
	Head *Head
}

// LeftRecursionMarker is the transient sentinel recall/withCachedResult
// places in the cache while a rule invocation is still on the stack. It is
// never a terminal cache entry: spec invariant 4 requires it be
// overwritten (or discarded via overwrite) before the enclosing top-level
// evaluator returns.
type LeftRecursionMarker struct {
	State *MarkerState
}

func (LeftRecursionMarker) isErrKind() {}
func (m LeftRecursionMarker) String() string {
	if m.State == nil {
		return "LeftRecursionMarker{<nil>}"
	}
	if m.State.Head == nil {
		return fmt.Sprintf("LeftRecursionMarker{%s, head=<nil>}", m.State.Rule)
	}
	return fmt.Sprintf("LeftRecursionMarker{%s, head=%s}", m.State.Rule, m.State.Head.Rule)
}

// Head is the per-position left-recursion control block of spec §3/§4.4:
// the rule at which a recursive seed started, the set of rules that
// participated (Involved), and the set still allowed to run during the
// current grow iteration (Eval).
type Head struct {
	// Rule is the symbol at which the recursion started.
	Rule string
	// Involved is the set of rules that participated in the
	// left-recursive cycle.
	Involved map[string]bool
	// Eval is the subset of Involved still allowed to evaluate once each
	// during the current grow-seed iteration.
	Eval map[string]bool
}

// NewHead creates a Head rooted at rule, with rule itself already in the
// involved set.
func NewHead(rule string) *Head {
	return &Head{
		Rule:     rule,
		Involved: map[string]bool{rule: true},
		Eval:     map[string]bool{},
	}
}

// AddInvolved marks rule as having participated in the cycle.
func (h *Head) AddInvolved(rule string) {
	h.Involved[rule] = true
}

// ResetEvalSet copies Involved into Eval at the start of each grow
// iteration (spec §4.4 step 5: "head.eval_set := copy of head.involved_set").
func (h *Head) ResetEvalSet() {
	h.Eval = make(map[string]bool, len(h.Involved))
	for k := range h.Involved {
		h.Eval[k] = true
	}
}

// TakeEval removes one occurrence of rule from the eval set and reports
// whether it was present (spec §4.4 recall step 4: "remove one occurrence
// from eval_set").
func (h *Head) TakeEval(rule string) bool {
	if !h.Eval[rule] {
		return false
	}
	delete(h.Eval, rule)
	return true
}
