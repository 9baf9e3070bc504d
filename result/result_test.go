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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestLazyMemoizesOnce(t *testing.T) {
	calls := 0
	l := NewLazy(func() Value {
		calls++
		return 42
	})
	if v := l.Force(); v != 42 {
		t.Fatalf("Force() = %v, want 42", v)
	}
	if v := l.Force(); v != 42 {
		t.Fatalf("second Force() = %v, want 42", v)
	}
	if calls != 1 {
		t.Errorf("thunk called %d times, want 1", calls)
	}
}

func TestOkValuePosition(t *testing.T) {
	r := OkValue(5, "abc")
	if !r.IsOk() {
		t.Fatalf("expected Ok")
	}
	if r.Position() != 5 {
		t.Errorf("Position() = %d, want 5", r.Position())
	}
	if r.Production() != "abc" {
		t.Errorf("Production() = %v, want abc", r.Production())
	}
}

func TestFailCarriesKind(t *testing.T) {
	r := Fail(InactiveRule{Symbol: "foo"})
	if r.IsOk() {
		t.Fatalf("expected failure")
	}
	kind, ok := r.ErrKind().(InactiveRule)
	if !ok || kind.Symbol != "foo" {
		t.Errorf("ErrKind() = %#v, want InactiveRule{foo}", r.ErrKind())
	}
}

func TestHeadEvalSetLifecycle(t *testing.T) {
	h := NewHead("expr")
	h.AddInvolved("num")
	h.ResetEvalSet()
	if len(h.Eval) != 2 {
		t.Fatalf("Eval = %v, want 2 entries", h.Eval)
	}
	if !h.TakeEval("expr") {
		t.Errorf("TakeEval(expr) = false, want true")
	}
	if h.TakeEval("expr") {
		t.Errorf("second TakeEval(expr) = true, want false (already consumed)")
	}
	if !h.TakeEval("num") {
		t.Errorf("TakeEval(num) = false, want true")
	}
}

func TestHeadDiffIgnoresMapOrder(t *testing.T) {
	a := NewHead("expr")
	a.AddInvolved("num")
	b := NewHead("expr")
	b.AddInvolved("num")
	if diff := cmp.Diff(a, b, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Head mismatch (-want +got):\n%s", diff)
	}
}
