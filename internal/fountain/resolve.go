/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Pos is a document position: 0-based line index plus byte column.
type Pos struct {
	Line int
	Col  int
}

// Before reports whether p precedes q in document order.
func (p Pos) Before(q Pos) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// RangeStatus describes how a resolved range was terminated.
type RangeStatus int

const (
	// Closed ranges pair an open marker with a close marker of the same kind.
	Closed RangeStatus = iota
	// OrphanedOpen ranges have an open marker that never closes; they extend
	// to the end of the document.
	OrphanedOpen
	// OrphanedClose ranges have a close marker with no preceding open; they
	// extend back to the start of the close marker's line.
	OrphanedClose
)

func (s RangeStatus) String() string {
	switch s {
	case Closed:
		return "closed"
	case OrphanedOpen:
		return "orphaned-open"
	case OrphanedClose:
		return "orphaned-close"
	}
	return "status(?)"
}

// ResolvedRange is a single ranged element span in the raw document.
// Start is inclusive and points at the first byte of the open marker (or the
// start of the line for an orphaned close); End is exclusive and points just
// past the last byte of the close marker (or past the last byte of the final
// line for an orphaned open). Start <= End in document order.
type ResolvedRange struct {
	ID     uuid.UUID
	Kind   RangeKind
	Start  Pos
	End    Pos
	Status RangeStatus
}

// NestingPolicy selects the behavior when an open marker appears while a
// range of the same kind is already open. Fountain leaves this undefined, so
// it is an explicit configuration choice.
type NestingPolicy int

const (
	// NestLiteral treats the inner open marker as literal text. Default.
	NestLiteral NestingPolicy = iota
	// NestReject fails the parse with a *NestingError.
	NestReject
)

// NestingError reports a same-kind nested open marker under NestReject.
type NestingError struct {
	Kind RangeKind
	Pos  Pos
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("nested %s open marker at %s", e.Kind, e.Pos)
}

// ResolveRanges pairs open markers with their nearest close markers of the
// same kind. At most one range per kind is pending at any scan position;
// ranges of different kinds resolve independently and may overlap.
//
// The raw lines are needed to bound orphan spans: an orphaned open runs to
// the end of the document, an orphaned close back to the start of its line.
// The result is sorted by start position, ties broken by kind priority
// (Boneyard before Note), which is the order the stripper applies removals.
func ResolveRanges(lines []string, occs []MarkerOccurrence, policy NestingPolicy) ([]ResolvedRange, error) {
	var ranges []ResolvedRange
	pending := map[RangeKind]*MarkerOccurrence{}

	for i := range occs {
		occ := occs[i]
		switch occ.Role {
		case RoleOpen:
			if open := pending[occ.Kind]; open != nil {
				if policy == NestReject {
					return nil, &NestingError{Kind: occ.Kind, Pos: Pos{Line: occ.Line, Col: occ.Col}}
				}
				// NestLiteral: the inner open marker is plain text.
				continue
			}
			pending[occ.Kind] = &occs[i]
		case RoleClose:
			open := pending[occ.Kind]
			if open == nil {
				ranges = append(ranges, ResolvedRange{
					ID:     uuid.New(),
					Kind:   occ.Kind,
					Start:  Pos{Line: occ.Line, Col: 0},
					End:    Pos{Line: occ.Line, Col: occ.Col + 2},
					Status: OrphanedClose,
				})
				continue
			}
			ranges = append(ranges, ResolvedRange{
				ID:     uuid.New(),
				Kind:   occ.Kind,
				Start:  Pos{Line: open.Line, Col: open.Col},
				End:    Pos{Line: occ.Line, Col: occ.Col + 2},
				Status: Closed,
			})
			pending[occ.Kind] = nil
		}
	}

	// Unclosed opens extend to the end of the document.
	for _, kind := range kinds {
		open := pending[kind]
		if open == nil {
			continue
		}
		last := len(lines) - 1
		ranges = append(ranges, ResolvedRange{
			ID:     uuid.New(),
			Kind:   kind,
			Start:  Pos{Line: open.Line, Col: open.Col},
			End:    Pos{Line: last, Col: len(lines[last])},
			Status: OrphanedOpen,
		})
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		a, b := ranges[i], ranges[j]
		if a.Start != b.Start {
			return a.Start.Before(b.Start)
		}
		return kindPriority(a.Kind) < kindPriority(b.Kind)
	})
	return ranges, nil
}

func kindPriority(k RangeKind) int {
	for i, kk := range kinds {
		if kk == k {
			return i
		}
	}
	return len(kinds)
}
