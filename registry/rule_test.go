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

import (
	"testing"

	"github.com/salikh/pegrat/engine"
	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

func mustAddRule(t *testing.T, r *Registry, symbol string, e expr.Expr, opts ...RuleOption) *Rule {
	t.Helper()
	rule, err := NewRule(e, opts...)
	if err != nil {
		t.Fatalf("NewRule(%s): %v", symbol, err)
	}
	if _, err := r.AddRule(symbol, rule); err != nil {
		t.Fatalf("AddRule(%s): %v", symbol, err)
	}
	return rule
}

func TestAddFindRemoveRule(t *testing.T) {
	r := New()
	mustAddRule(t, r, "digit", expr.NewCharRanges([]expr.RangeItem{{Lo: '0', Hi: '9'}}))

	if got, ok := r.FindRule("digit"); !ok || got == nil {
		t.Fatalf("FindRule(digit) = (%v, %v), want a rule", got, ok)
	}
	if got, ok := r.FindRule("missing"); ok || got != nil {
		t.Errorf("FindRule(missing) = (%v, %v), want (nil, false)", got, ok)
	}

	removed, err := r.RemoveRule("digit", false)
	if err != nil {
		t.Fatalf("RemoveRule: %v", err)
	}
	if removed == nil {
		t.Fatalf("RemoveRule returned nil rule")
	}
	if got, ok := r.FindRule("digit"); ok || got != nil {
		t.Errorf("FindRule(digit) after removal = (%v, %v), want (nil, false)", got, ok)
	}
}

func TestAddRuleRejectsDoubleAttach(t *testing.T) {
	r := New()
	rule := mustAddRule(t, r, "a", expr.Literal{Text: "a", CaseSensitive: true})
	if _, err := r.AddRule("b", rule); err != ErrAlreadyAttached {
		t.Errorf("AddRule(b, already-attached rule) = %v, want ErrAlreadyAttached", err)
	}
	other, _ := NewRule(expr.Literal{Text: "x", CaseSensitive: true})
	if _, err := r.AddRule("a", other); err != ErrAlreadyAttached {
		t.Errorf("AddRule(a, new rule) = %v, want ErrAlreadyAttached (symbol occupied)", err)
	}
}

func TestRemoveRuleRefusesWithReferents(t *testing.T) {
	r := New()
	mustAddRule(t, r, "num", expr.NewCharRanges([]expr.RangeItem{{Lo: '0', Hi: '9'}}))
	mustAddRule(t, r, "expr", expr.And{Subs: []expr.Expr{expr.Nonterminal{Symbol: "num"}}})

	_, err := r.RemoveRule("num", false)
	var refErr *ErrHasReferents
	if err == nil {
		t.Fatalf("RemoveRule(num, force=false) = nil error, want ErrHasReferents")
	}
	if !asErrHasReferents(err, &refErr) {
		t.Fatalf("RemoveRule error = %#v, want *ErrHasReferents", err)
	}
	if len(refErr.Referents) != 1 || refErr.Referents[0] != "expr" {
		t.Errorf("Referents = %v, want [expr]", refErr.Referents)
	}

	if _, err := r.RemoveRule("num", true); err != nil {
		t.Fatalf("RemoveRule(num, force=true) = %v, want success", err)
	}
}

func asErrHasReferents(err error, out **ErrHasReferents) bool {
	e, ok := err.(*ErrHasReferents)
	if ok {
		*out = e
	}
	return ok
}

func TestChangeRulePreservesIdentity(t *testing.T) {
	r := New()
	rule := mustAddRule(t, r, "r", expr.Literal{Text: "a", CaseSensitive: true}, Text())

	if err := r.ChangeRule("r", expr.Literal{Text: "b", CaseSensitive: true}); err != nil {
		t.Fatalf("ChangeRule: %v", err)
	}
	if got, _ := r.FindRule("r"); got != rule {
		t.Errorf("FindRule(r) after ChangeRule returned a different object")
	}

	ctx := engine.NewContext("b", r.Predicates())
	res, err := r.Evaluator().Eval(ctx, expr.Nonterminal{Symbol: "r"}, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsOk() || res.Production() != "b" {
		t.Errorf("parse after ChangeRule = %s production %v, want Ok producing b", res, res.Production())
	}
}

func TestRuleDependencies(t *testing.T) {
	r := New()
	mustAddRule(t, r, "num", expr.NewCharRanges([]expr.RangeItem{{Lo: '0', Hi: '9'}}))
	rule := mustAddRule(t, r, "expr", expr.And{Subs: []expr.Expr{
		expr.Nonterminal{Symbol: "num"},
		expr.Nonterminal{Symbol: "missing"},
	}})

	defined, undefined := r.RuleDependencies(rule)
	if len(defined) != 1 || defined[0] != "num" {
		t.Errorf("defined = %v, want [num]", defined)
	}
	if len(undefined) != 1 || undefined[0] != "missing" {
		t.Errorf("undefined = %v, want [missing]", undefined)
	}
}

func TestUndefinedRuleFailsAtParseTime(t *testing.T) {
	r := New()
	mustAddRule(t, r, "expr", expr.Nonterminal{Symbol: "missing"})
	ctx := engine.NewContext("x", r.Predicates())
	_, err := r.Evaluator().Eval(ctx, expr.Nonterminal{Symbol: "expr"}, 0, 1)
	if err == nil {
		t.Fatalf("expected error for invoking undefined rule")
	}
	if _, ok := err.(*ErrUndefinedRule); !ok {
		t.Errorf("error = %T, want *ErrUndefinedRule", err)
	}
}

func TestGuardOptions(t *testing.T) {
	r := New()
	mustAddRule(t, r, "off", expr.Literal{Text: "a", CaseSensitive: true}, Never())
	ctx := engine.NewContext("a", r.Predicates())
	res, err := r.Evaluator().Eval(ctx, expr.Nonterminal{Symbol: "off"}, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsOk() {
		t.Fatalf("Never-guarded rule matched: %s", res)
	}
	if _, ok := res.ErrKind().(result.InactiveRule); !ok {
		t.Errorf("ErrKind = %T, want result.InactiveRule", res.ErrKind())
	}
}

func TestWhenGuardOnlyOnePermitted(t *testing.T) {
	_, err := NewRule(expr.Literal{Text: "a", CaseSensitive: true}, Never(), When(func() bool { return true }))
	if err == nil {
		t.Fatalf("expected error for two guards on one rule")
	}
}

func TestTransformComposition(t *testing.T) {
	r := New()
	mustAddRule(t, r, "digit", expr.NewCharRanges([]expr.RangeItem{{Lo: '0', Hi: '9'}}),
		Function(func(v interface{}) interface{} { return string(v.(rune)) }),
		Function(func(v interface{}) interface{} { return v.(string) + "!" }),
	)
	ctx := engine.NewContext("7", r.Predicates())
	res, err := r.Evaluator().Eval(ctx, expr.Nonterminal{Symbol: "digit"}, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Production() != "7!" {
		t.Errorf("production = %v, want \"7!\" (later transform wraps earlier)", res.Production())
	}
}

func TestDestructureOption(t *testing.T) {
	r := New()
	mustAddRule(t, r, "pair", expr.And{Subs: []expr.Expr{expr.Literal{Text: "a", CaseSensitive: true}, expr.Literal{Text: "b", CaseSensitive: true}}},
		Destructure(func(a Accessor) interface{} {
			first, _ := a.Child(0).String()
			second, _ := a.Child(1).String()
			return first + second
		}),
	)
	ctx := engine.NewContext("ab", r.Predicates())
	res, err := r.Evaluator().Eval(ctx, expr.Nonterminal{Symbol: "pair"}, 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Production() != "ab" {
		t.Errorf("production = %v, want ab", res.Production())
	}
}

func TestAroundOption(t *testing.T) {
	r := New()
	var order []string
	mustAddRule(t, r, "a", expr.Literal{Text: "a", CaseSensitive: true},
		Identity(),
		Around(func(start, end int, call func() interface{}) interface{} {
			order = append(order, "before")
			v := call()
			order = append(order, "after")
			return v
		}),
	)
	ctx := engine.NewContext("a", r.Predicates())
	res, err := r.Evaluator().Eval(ctx, expr.Nonterminal{Symbol: "a"}, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res.Production() // force the lazy thunk
	if len(order) != 2 || order[0] != "before" || order[1] != "after" {
		t.Errorf("around call order = %v, want [before after]", order)
	}
}
