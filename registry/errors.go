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
	"fmt"
)

// ErrAlreadyAttached is returned by AddRule when the rule object is already
// bound to a symbol, or the target symbol already has a rule attached
// (spec invariant 2: a rule is attached to at most one symbol at a time).
var ErrAlreadyAttached = errors.New("registry: rule already attached")

// ErrHasReferents is returned by RemoveRule when other rules still refer to
// symbol and force was not set (spec invariant 5).
type ErrHasReferents struct {
	Symbol    string
	Referents []string
}

func (e *ErrHasReferents) Error() string {
	return fmt.Sprintf("registry: rule %q has %d referent(s): %v", e.Symbol, len(e.Referents), e.Referents)
}

// ErrUndefinedRule is returned by operations that require an existing rule
// (ChangeRule) and by the closure a cell resolves to before any rule is
// attached to its symbol (spec §4.2/§7).
type ErrUndefinedRule struct {
	Symbol string
}

func (e *ErrUndefinedRule) Error() string {
	return fmt.Sprintf("registry: undefined rule: %s", e.Symbol)
}
