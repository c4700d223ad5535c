/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fountain parses plain-text Fountain screenplay documents into typed
// screenplay elements. Its core is the resolution of ranged elements — Notes
// ([[ ... ]]) and Boneyards (/* ... */) — which may span lines and sit inline
// with printable text. The package keeps two representations of every
// document: the raw lines and a stripped copy with ranged content and
// emphasis markers removed, joined by an invertible per-line index map.
package fountain

// RangeKind identifies a ranged (invisible) element family.
type RangeKind int

const (
	// Note is annotation text delimited by [[ and ]].
	Note RangeKind = iota
	// Boneyard is commented-out text delimited by /* and */.
	Boneyard
)

// Marker token literals. All are fixed two-byte ASCII sequences, so byte
// offsets never split a UTF-8 rune at a marker boundary.
const (
	noteOpen      = "[["
	noteClose     = "]]"
	boneyardOpen  = "/*"
	boneyardClose = "*/"
)

// kinds lists every ranged element kind in strip-priority order:
// Boneyard wins ties against Note when two ranges start at the same offset.
var kinds = [...]RangeKind{Boneyard, Note}

func (k RangeKind) String() string {
	switch k {
	case Note:
		return "Note"
	case Boneyard:
		return "Boneyard"
	}
	return "RangeKind(?)"
}

// Tokens returns the open and close marker literals for the kind.
func (k RangeKind) Tokens() (open, close string) {
	switch k {
	case Note:
		return noteOpen, noteClose
	case Boneyard:
		return boneyardOpen, boneyardClose
	}
	return "", ""
}

// Role tells whether a marker occurrence opens or closes a range.
type Role int

const (
	RoleOpen Role = iota
	RoleClose
)

func (r Role) String() string {
	if r == RoleOpen {
		return "open"
	}
	return "close"
}

// MarkerOccurrence is a single marker token found in the raw document.
// Line is the 0-based raw line index; Col is the byte offset of the token's
// first byte within that line.
type MarkerOccurrence struct {
	Kind RangeKind
	Role Role
	Line int
	Col  int
}

// ScanMarkers scans raw lines for marker tokens of every ranged element kind.
// Each line is walked once, left to right; a matched token consumes both of
// its bytes, so occurrences never overlap ("*/*" yields only the close at
// offset 0). The result is ordered by (line, column) and no two occurrences
// share coordinates.
func ScanMarkers(lines []string) []MarkerOccurrence {
	var occs []MarkerOccurrence
	for ln, s := range lines {
		for i := 0; i+1 < len(s); {
			kind, role, ok := matchMarker(s[i], s[i+1])
			if !ok {
				i++
				continue
			}
			occs = append(occs, MarkerOccurrence{Kind: kind, Role: role, Line: ln, Col: i})
			i += 2
		}
	}
	return occs
}

func matchMarker(a, b byte) (RangeKind, Role, bool) {
	switch {
	case a == '[' && b == '[':
		return Note, RoleOpen, true
	case a == ']' && b == ']':
		return Note, RoleClose, true
	case a == '/' && b == '*':
		return Boneyard, RoleOpen, true
	case a == '*' && b == '/':
		return Boneyard, RoleClose, true
	}
	return 0, 0, false
}
