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

package expr

import "fmt"

// InvalidExpressionError is raised by Validate when an expression tree is
// malformed: a CharRanges entry with Hi < Lo, a zero-length LengthString,
// a predicate named after a combinator, or a nil sub-expression where one
// is required.
type InvalidExpressionError struct {
	Expr   Expr
	Reason string
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("invalid expression %s: %s", describe(e.Expr), e.Reason)
}

func describe(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// reservedNames are the combinator names a Predicate may not use: using one
// would make a grammar description ambiguous about whether "and" refers to
// the sequence combinator or a user-defined semantic predicate.
var reservedNames = map[string]bool{
	"character":        true,
	"literal":          true,
	"lengthstring":      true,
	"charranges":        true,
	"predicate":         true,
	"functionterminal":  true,
	"nonterminal":       true,
	"and":               true,
	"or":                true,
	"not":               true,
	"negahead":          true,
	"ahead":             true,
	"star":              true,
	"plus":              true,
	"optional":          true,
}

// Validate type-checks e and all of its sub-expressions, returning the
// first InvalidExpressionError it finds.
func Validate(e Expr) error {
	if e == nil {
		return &InvalidExpressionError{Reason: "expression is nil"}
	}
	switch v := e.(type) {
	case Character:
		return nil
	case Literal:
		return nil
	case LengthString:
		if v.N <= 0 {
			return &InvalidExpressionError{Expr: e, Reason: "LengthString N must be positive"}
		}
		return nil
	case CharRanges:
		if len(v.Items) == 0 {
			return &InvalidExpressionError{Expr: e, Reason: "CharRanges must have at least one item"}
		}
		for _, it := range v.Items {
			if it.Hi < it.Lo {
				return &InvalidExpressionError{Expr: e, Reason: fmt.Sprintf("invalid range %q-%q", it.Lo, it.Hi)}
			}
		}
		if v.Class == nil {
			return &InvalidExpressionError{Expr: e, Reason: "CharRanges built without NewCharRanges has no matcher"}
		}
		return nil
	case Predicate:
		if v.Name == "" {
			return &InvalidExpressionError{Expr: e, Reason: "predicate name must not be empty"}
		}
		if reservedNames[v.Name] {
			return &InvalidExpressionError{Expr: e, Reason: fmt.Sprintf("predicate name %q collides with a combinator", v.Name)}
		}
		return validateSub(e, v.Sub)
	case FunctionTerminal:
		if v.Name == "" {
			return &InvalidExpressionError{Expr: e, Reason: "function-terminal name must not be empty"}
		}
		if v.Func == nil {
			return &InvalidExpressionError{Expr: e, Reason: "function-terminal has no function"}
		}
		return nil
	case Nonterminal:
		if v.Symbol == "" {
			return &InvalidExpressionError{Expr: e, Reason: "nonterminal symbol must not be empty"}
		}
		return nil
	case And:
		return validateAll(e, v.Subs)
	case Or:
		return validateAll(e, v.Subs)
	case Not:
		return validateSub(e, v.Sub)
	case NegAhead:
		return validateSub(e, v.Sub)
	case Ahead:
		return validateSub(e, v.Sub)
	case Star:
		return validateSub(e, v.Sub)
	case Plus:
		return validateSub(e, v.Sub)
	case Optional:
		return validateSub(e, v.Sub)
	default:
		return &InvalidExpressionError{Expr: e, Reason: fmt.Sprintf("unknown expression type %T", e)}
	}
}

func validateSub(parent Expr, sub Expr) error {
	if sub == nil {
		return &InvalidExpressionError{Expr: parent, Reason: "missing sub-expression"}
	}
	return Validate(sub)
}

func validateAll(parent Expr, subs []Expr) error {
	if len(subs) == 0 {
		return &InvalidExpressionError{Expr: parent, Reason: "must have at least one sub-expression"}
	}
	for _, s := range subs {
		if err := validateSub(parent, s); err != nil {
			return err
		}
	}
	return nil
}
