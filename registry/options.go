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
	"errors"

	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

// Guard selects when a rule is allowed to run.
type Guard int

const (
	// GuardAlways means the rule is always active (the default).
	GuardAlways Guard = iota
	// GuardNever means the rule always fails with InactiveRule.
	GuardNever
	// GuardFunc means a user function decides per invocation.
	GuardFunc
)

// TransformFunc turns a raw production into the application-level value a
// rule yields; start and end are the absolute span the rule matched.
type TransformFunc func(production result.Value, start, end int) result.Value

// AroundFunc wraps a rule's transform invocation; it must call
// callTransform to obtain the ordinary transformed value.
type AroundFunc func(start, end int, callTransform func() result.Value) result.Value

// Rule is a record bound to a nonterminal symbol: its expression, guard,
// transform/around chain, and (once attached) a back-reference to the cell
// holding it. Rules are created detached (NewRule) and attached with
// Registry.AddRule.
type Rule struct {
	Symbol    string
	Expr      expr.Expr
	GuardKind Guard
	GuardFn   func() bool
	Transform TransformFunc
	Around    AroundFunc

	cell     *RuleCell
	guardSet bool
}

// RuleOption configures a Rule at construction time; see NewRule.
type RuleOption func(*Rule) error

// NewRule builds a detached rule over e, applying opts in order. Multiple
// transform-setting options compose in textual order, later wrapping
// earlier (spec §6: "compose(later, earlier)").
func NewRule(e expr.Expr, opts ...RuleOption) (*Rule, error) {
	if err := expr.Validate(e); err != nil {
		return nil, err
	}
	r := &Rule{Expr: e}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func composeTransform(earlier, later TransformFunc) TransformFunc {
	if earlier == nil {
		return later
	}
	return func(production result.Value, start, end int) result.Value {
		return later(earlier(production, start, end), start, end)
	}
}

// When installs a per-invocation guard function. Only one guard is
// permitted per rule (spec §6).
func When(fn func() bool) RuleOption {
	return func(r *Rule) error {
		if r.guardSet {
			return errors.New("registry: only one guard is permitted per rule")
		}
		r.GuardKind = GuardFunc
		r.GuardFn = fn
		r.guardSet = true
		return nil
	}
}

// Always marks the rule as unconditionally active; this is the default and
// rarely needs to be stated explicitly.
func Always() RuleOption {
	return func(r *Rule) error {
		if r.guardSet {
			return errors.New("registry: only one guard is permitted per rule")
		}
		r.GuardKind = GuardAlways
		r.guardSet = true
		return nil
	}
}

// Never marks the rule as permanently inactive (it always fails with
// InactiveRule), useful for temporarily disabling a rule without removing
// it.
func Never() RuleOption {
	return func(r *Rule) error {
		if r.guardSet {
			return errors.New("registry: only one guard is permitted per rule")
		}
		r.GuardKind = GuardNever
		r.guardSet = true
		return nil
	}
}

// Constant sets the rule's production to v regardless of the match.
func Constant(v result.Value) RuleOption {
	return func(r *Rule) error {
		r.Transform = composeTransform(r.Transform, func(result.Value, int, int) result.Value { return v })
		return nil
	}
}

// Function sets the transform to f(production).
func Function(f func(result.Value) result.Value) RuleOption {
	return func(r *Rule) error {
		r.Transform = composeTransform(r.Transform, func(p result.Value, _, _ int) result.Value { return f(p) })
		return nil
	}
}

// Identity sets the transform to the identity function.
func Identity() RuleOption {
	return func(r *Rule) error {
		r.Transform = composeTransform(r.Transform, func(p result.Value, _, _ int) result.Value { return p })
		return nil
	}
}

// Text sets the transform to flatten a tree of runes/strings into a single
// concatenated string, the common "just give me the matched text" case.
func Text() RuleOption {
	return func(r *Rule) error {
		r.Transform = composeTransform(r.Transform, func(p result.Value, _, _ int) result.Value { return flattenText(p) })
		return nil
	}
}

func flattenText(v result.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case rune:
		return string(x)
	case string:
		return x
	case []result.Value:
		var b []byte
		for _, e := range x {
			b = append(b, flattenText(e)...)
		}
		return string(b)
	default:
		return ""
	}
}

// Lambda sets the transform to fn, which may inspect the match's absolute
// start/end span (the "&bounds" pseudo-parameters of the surface syntax).
func Lambda(fn func(production result.Value, start, end int) result.Value) RuleOption {
	return func(r *Rule) error {
		r.Transform = composeTransform(r.Transform, TransformFunc(fn))
		return nil
	}
}

// Destructure is like Lambda but hands the production to fn wrapped in an
// Accessor, for positional field-style access into a sequence production.
func Destructure(fn func(Accessor) result.Value) RuleOption {
	return func(r *Rule) error {
		r.Transform = composeTransform(r.Transform, func(p result.Value, _, _ int) result.Value {
			return fn(Accessor{value: p})
		})
		return nil
	}
}

// Around installs an around-wrapper: it receives the match's span and a
// callTransform thunk that runs the transform chain built so far.
func Around(fn AroundFunc) RuleOption {
	return func(r *Rule) error {
		r.Around = fn
		return nil
	}
}

// Accessor provides read-only positional access into a production built
// from And/Star/Plus (a []result.Value), adapted from the teacher's
// construct.Accessor interface (parser2/construct.go) to this package's
// unlabeled sequence productions.
type Accessor struct {
	value result.Value
}

// Value returns the wrapped production unchanged.
func (a Accessor) Value() result.Value { return a.value }

// Len reports the number of children, or 0 if the production is not a
// sequence.
func (a Accessor) Len() int {
	if items, ok := a.value.([]result.Value); ok {
		return len(items)
	}
	return 0
}

// Child returns the i'th element of a sequence production, or a zero
// Accessor if out of range or the production is not a sequence.
func (a Accessor) Child(i int) Accessor {
	if items, ok := a.value.([]result.Value); ok && i >= 0 && i < len(items) {
		return Accessor{value: items[i]}
	}
	return Accessor{}
}

// String returns the wrapped value as a string, if it is one.
func (a Accessor) String() (string, bool) {
	s, ok := a.value.(string)
	return s, ok
}
