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

// Package result defines the parse result model: the Ok/Err variants a
// parse produces, the lazy production thunk an Ok carries, and the Head
// bookkeeping the left-recursion engine attaches to in-progress positions.
package result

// Value is an application-defined production value: whatever a rule's
// transform (or, absent one, the default And/Or/Star tree builder)
// returns.
type Value = interface{}

// Lazy holds a production thunk, memoized on first Force call. Productions
// are computed on demand so that Ahead, NegAhead and semantic predicates
// don't pay transform cost on matches that are discarded (spec §9).
//
// Parsing is single-threaded and cooperative (spec §5): Lazy carries no
// locking, unlike a sync.Once-based memoizer a concurrent cache would need.
type Lazy struct {
	compute  func() Value
	computed bool
	value    Value
}

// NewLazy wraps compute as a memoized thunk.
func NewLazy(compute func() Value) *Lazy {
	return &Lazy{compute: compute}
}

// Const wraps an already-materialized value as a no-op thunk.
func Const(v Value) *Lazy {
	return &Lazy{computed: true, value: v}
}

// Force returns the production, computing it on the first call and
// caching the result for subsequent calls.
func (l *Lazy) Force() Value {
	if l == nil {
		return nil
	}
	if !l.computed {
		l.value = l.compute()
		l.computed = true
		l.compute = nil
	}
	return l.value
}
