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

package engine

import (
	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

// evalFunctionTerminal implements the function-terminal protocol of spec
// §4.5: f is handed (text, position, end) and returns (production,
// endPosition, flag). Match succeeds iff flag is true, or flag is
// absent/false and endPosition is nil or strictly greater than position.
func (ev *Evaluator) evalFunctionTerminal(ctx *Context, f expr.FunctionTerminal, pos, end int) (result.Result, error) {
	production, endPosition, flag := f.Func(ctx.Text, pos, end)

	success := false
	if flag == nil || flag == false {
		success = endPosition == nil || *endPosition > pos
	} else if b, ok := flag.(bool); ok {
		success = b
	}

	if success {
		newPos := pos
		if endPosition != nil {
			newPos = *endPosition
		}
		return result.OkValue(newPos, production), nil
	}

	failPos := pos
	if endPosition != nil {
		failPos = *endPosition
	}
	var detail interface{}
	switch v := flag.(type) {
	case string:
		detail = v
	case error:
		detail = v.Error()
	}
	return result.Fail(result.FailedParse{Expression: f, Position: failPos, Detail: detail}), nil
}
