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

package driver

import (
	"fmt"

	log "github.com/golang/glog"

	"github.com/salikh/pegrat/engine"
	"github.com/salikh/pegrat/expr"
	"github.com/salikh/pegrat/result"
)

// Cells resolves Nonterminal references during a parse; registry.Registry
// implements it.
type Cells = engine.CellLookup

// Options configures a single Parse call.
type Options struct {
	// Start and End bound the slice of Text to parse; End defaults to
	// len(Text) when zero and Start is zero (the common whole-string case).
	// An explicit empty range at position 0 cannot be expressed: Start 0
	// with End 0 always means the whole text.
	Start, End int
	// JunkAllowed relaxes a non-end-of-input match from an error into a
	// successful partial parse, per spec §4.1.
	JunkAllowed bool
	// Predicates supplies the named predicate functions Predicate(name, ...)
	// expressions invoke; pass registry.Registry.Predicates().
	Predicates map[string]func(result.Value) bool
}

// Parse evaluates e against text[opts.Start:end] (end defaults to
// len(text) when opts.End is zero and opts.Start is zero), using cells to
// resolve Nonterminal references, and maps the engine result to the
// driver's surface contract (spec §4.1):
//
//   - Ok at end of input: (production, -1, true, nil).
//   - Ok short of end of input, junkAllowed: (production, restPosition, true, nil).
//   - Ok short of end of input, not junkAllowed: (nil, -1, false, *IncompleteParse).
//   - FailedParse, junkAllowed: (nil, start, false, nil).
//   - FailedParse, not junkAllowed: (nil, -1, false, *SimpleParseError).
//   - InactiveRule, not junkAllowed: (nil, -1, false, *InactiveRuleError).
//
// rest is -1 when there is no meaningful "unconsumed position" to report.
func Parse(cells Cells, e expr.Expr, text string, opts Options) (value result.Value, rest int, ok bool, err error) {
	end := opts.End
	if end == 0 && opts.Start == 0 {
		end = len(text)
	}
	start := opts.Start

	ev := &engine.Evaluator{Cells: cells, Policy: engine.GrowSeed}
	ctx := engine.NewContext(text, opts.Predicates)

	log.V(2).Infof("driver: parsing %q from %d to %d (junkAllowed=%v)", text, start, end, opts.JunkAllowed)

	res, evalErr := ev.Eval(ctx, e, start, end)
	if evalErr != nil {
		if lr, ok := evalErr.(*engine.LeftRecursionDetected); ok {
			return nil, -1, false, &LeftRecursionError{
				ParseError:  ParseError{Text: text, Position: start},
				Nonterminal: lr.Rule,
				Path:        lr.Path,
			}
		}
		return nil, -1, false, fmt.Errorf("driver: %w", evalErr)
	}

	if res.IsOk() {
		if res.Position() == end {
			return res.Production(), -1, true, nil
		}
		if opts.JunkAllowed {
			return res.Production(), res.Position(), true, nil
		}
		return nil, -1, false, &IncompleteParse{ParseError{Text: text, Position: res.Position()}}
	}

	switch kind := res.ErrKind().(type) {
	case result.InactiveRule:
		if opts.JunkAllowed {
			return nil, start, false, nil
		}
		return nil, -1, false, &InactiveRuleError{
			ParseError: ParseError{Text: text, Position: start},
			Symbol:     kind.Symbol,
		}
	case result.FailedParse:
		if opts.JunkAllowed {
			return nil, start, false, nil
		}
		chain, pos := deepestFailure(kind)
		return nil, -1, false, &SimpleParseError{
			ParseError: ParseError{Text: text, Position: pos},
			Message:    fmt.Sprintf("could not parse %s", describeChain(chain)),
			Chain:      chain,
		}
	default:
		if opts.JunkAllowed {
			return nil, start, false, nil
		}
		return nil, -1, false, &SimpleParseError{
			ParseError: ParseError{Text: text, Position: start},
			Message:    "parse failed",
		}
	}
}

func describeChain(chain []expr.Expr) string {
	if len(chain) == 0 {
		return "<empty>"
	}
	return chain[len(chain)-1].String()
}
