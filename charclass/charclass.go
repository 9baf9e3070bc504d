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

// Package charclass provides the character-class matcher backing the
// engine's CharRanges expression: a set of individual runes plus a table
// of inclusive ranges, with an optional POSIX-style special class and an
// optional negation flag. It is adapted from
// github.com/salikh/peg/parser/charclass, which built the equivalent
// CharClass by parsing a regex-like string; this version keeps the
// matching logic and the field layout but replaces the textual parser
// with FromRanges, the constructor that drives the engine directly from
// an expr.CharRanges item list.
package charclass

import (
	"sort"
	"unicode"
)

// CharClass represents a char class: a set of runes, optionally unioned
// with a table of ranges and/or a named POSIX class, optionally negated.
type CharClass struct {
	// Map represents individual elements.
	Map map[rune]bool
	// RangeTable represents ranges.
	*unicode.RangeTable
	// Negated indicates that the char class expression is negated.
	Negated bool
	// Special is empty or otherwise indicates a special class, with the
	// expectation that method unicode.${Special} exists. The regex
	// notation taken from GNU Grep is translated into unicode package
	// name conventions (e.g. "[:alpha:]" -> "IsLetter").
	// "[:alnum:]" is a special case and is represented by that literal
	// string without translation.
	Special string
}

// FromRanges builds a CharClass directly from a flat list of single runes
// and a list of inclusive [lo,hi] ranges, the constructor the engine uses
// to realize an expr.CharRanges node. Ranges are sorted by Lo so Contains
// can rely on unicode.Is's binary search over the range table.
func FromRanges(singles []rune, ranges [][2]rune) *CharClass {
	cc := &CharClass{}
	if len(singles) > 0 {
		cc.Map = make(map[rune]bool, len(singles))
		for _, r := range singles {
			cc.Map[r] = true
		}
	}
	for _, pair := range ranges {
		lo, hi := pair[0], pair[1]
		if cc.RangeTable == nil {
			cc.RangeTable = &unicode.RangeTable{}
		}
		if lo >= 1<<16 || hi >= 1<<16 {
			cc.RangeTable.R32 = append(cc.RangeTable.R32, unicode.Range32{Lo: uint32(lo), Hi: uint32(hi), Stride: 1})
		} else {
			cc.RangeTable.R16 = append(cc.RangeTable.R16, unicode.Range16{Lo: uint16(lo), Hi: uint16(hi), Stride: 1})
		}
	}
	if cc.RangeTable != nil {
		sort.Slice(cc.RangeTable.R16, func(i, j int) bool { return cc.RangeTable.R16[i].Lo < cc.RangeTable.R16[j].Lo })
		sort.Slice(cc.RangeTable.R32, func(i, j int) bool { return cc.RangeTable.R32[i].Lo < cc.RangeTable.R32[j].Lo })
	}
	return cc
}

// Contains reports whether r is matched by cc, honoring Special and
// Negated. Grounded on the inline matching logic of
// github.com/salikh/peg/parser/parser.go's newCharClassHandler and
// github.com/salikh/peg/generator/gogen/gogen.go's CharClassHandler,
// which build the equivalent condition as generated Go source; here it is
// a plain method instead of codegen, since the engine interprets rather
// than compiles-to-source.
func (cc *CharClass) Contains(r rune) bool {
	if cc == nil {
		return false
	}
	var match bool
	switch {
	case cc.Special == "[:alnum:]":
		match = unicode.IsLetter(r) || unicode.IsNumber(r)
	case cc.Special == "[:any:]":
		match = true
	case cc.Special != "":
		match = specialFuncMatch(cc.Special, r)
	default:
		if cc.Map != nil && cc.Map[r] {
			match = true
		}
		if !match && cc.RangeTable != nil && unicode.Is(cc.RangeTable, r) {
			match = true
		}
	}
	if cc.Negated {
		return !match
	}
	return match
}

// specialFuncMatch dispatches to the unicode.Is* predicate named by
// Special (e.g. "IsLetter", "IsSpace"), mirroring the generator's
// Sel(Ident("unicode"), cc.Special) call construction.
func specialFuncMatch(name string, r rune) bool {
	switch name {
	case "IsLetter":
		return unicode.IsLetter(r)
	case "IsNumber":
		return unicode.IsNumber(r)
	case "IsSpace":
		return unicode.IsSpace(r)
	case "IsLower":
		return unicode.IsLower(r)
	case "IsUpper":
		return unicode.IsUpper(r)
	case "IsPunct":
		return unicode.IsPunct(r)
	case "IsPrint":
		return unicode.IsPrint(r)
	case "IsGraphic":
		return unicode.IsGraphic(r)
	case "IsControl":
		return unicode.IsControl(r)
	}
	return false
}

// IsEmpty reports whether cc matches no characters at all (used by the
// compiler to detect degenerate CharRanges expressions).
func (cc *CharClass) IsEmpty() bool {
	return cc != nil && len(cc.Map) == 0 && cc.RangeTable == nil && cc.Special == "" && !cc.Negated
}
