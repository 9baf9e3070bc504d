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

import (
	"strings"
	"testing"
)

func TestValidateGoodExpressions(t *testing.T) {
	good := []Expr{
		Character{},
		Literal{Text: "abc", CaseSensitive: true},
		LengthString{N: 3},
		NewCharRanges([]RangeItem{{Lo: '0', Hi: '9'}, {Lo: '_', Hi: '_'}}),
		Nonterminal{Symbol: "expr"},
		And{Subs: []Expr{Character{}, Literal{Text: "x"}}},
		Or{Subs: []Expr{Literal{Text: "a"}, Literal{Text: "b"}}},
		Not{Sub: Literal{Text: "x"}},
		NegAhead{Sub: Literal{Text: "x"}},
		Ahead{Sub: Literal{Text: "x"}},
		Star{Sub: Character{}},
		Plus{Sub: Character{}},
		Optional{Sub: Character{}},
		Predicate{Name: "isEven", Sub: Nonterminal{Symbol: "num"}},
	}
	for _, e := range good {
		if err := Validate(e); err != nil {
			t.Errorf("Validate(%s) = %v, want nil", e, err)
		}
	}
}

func TestValidateRejectsReservedPredicateName(t *testing.T) {
	e := Predicate{Name: "and", Sub: Character{}}
	err := Validate(e)
	if err == nil {
		t.Fatalf("Validate(%s) = nil, want error", e)
	}
	if !strings.Contains(err.Error(), "collides") {
		t.Errorf("Validate error = %q, want mention of collision", err.Error())
	}
}

func TestValidateRejectsBadCharRange(t *testing.T) {
	e := NewCharRanges([]RangeItem{{Lo: 'z', Hi: 'a'}})
	if err := Validate(e); err == nil {
		t.Fatalf("Validate(%s) = nil, want error", e)
	}
}

func TestValidateRejectsEmptyAnd(t *testing.T) {
	if err := Validate(And{}); err == nil {
		t.Fatalf("Validate(And{}) = nil, want error")
	}
}

func TestValidateRejectsNilSub(t *testing.T) {
	if err := Validate(Star{}); err == nil {
		t.Fatalf("Validate(Star{}) = nil, want error")
	}
}

func TestStringRendersTree(t *testing.T) {
	e := And{Subs: []Expr{Literal{Text: "+", CaseSensitive: true}, Nonterminal{Symbol: "num"}}}
	got := e.String()
	want := `(And (Literal "+") (Nonterminal num))`
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCharRangesContains(t *testing.T) {
	digit := NewCharRanges([]RangeItem{{Lo: '0', Hi: '9'}})
	if !digit.Class.Contains('5') {
		t.Errorf("expected digit class to contain '5'")
	}
	if digit.Class.Contains('a') {
		t.Errorf("expected digit class not to contain 'a'")
	}
}
