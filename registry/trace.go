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

// TraceEntry records one invocation of a traced rule.
type TraceEntry struct {
	Symbol   string
	Position int
}

// EnableTrace turns on invocation recording for symbol. Trace state lives
// on the cell, not the rule, so it survives RemoveRule/AddRule cycles
// (spec §9: "trace info is preserved across re-add").
func (r *Registry) EnableTrace(symbol string) {
	r.cellFor(symbol).traced = true
}

// DisableTrace turns off invocation recording for symbol; already-recorded
// entries are kept until ClearTrace.
func (r *Registry) DisableTrace(symbol string) {
	if cell, ok := r.cells[symbol]; ok {
		cell.traced = false
	}
}

// Trace returns a copy of the recorded invocations for symbol.
func (r *Registry) Trace(symbol string) []TraceEntry {
	cell, ok := r.cells[symbol]
	if !ok {
		return nil
	}
	return append([]TraceEntry(nil), cell.trace...)
}

// ClearTrace discards recorded invocations for symbol without changing
// whether tracing is enabled.
func (r *Registry) ClearTrace(symbol string) {
	if cell, ok := r.cells[symbol]; ok {
		cell.trace = nil
	}
}
