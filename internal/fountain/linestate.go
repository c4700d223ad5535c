/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "strings"

// LineState describes how a raw line relates to ranged content. Every line
// gets exactly one state; the projection of the resolved ranges onto lines
// determines it deterministically.
type LineState int

const (
	// Plain lines have no markers and no ranged content.
	Plain LineState = iota
	// RangeOnly lines are entirely inside ranges; no printable text survives.
	RangeOnly
	// PartialSelfContained lines contain fully closed ranges plus printable
	// text; every open and close sits on this line.
	PartialSelfContained
	// PartialOrphanedOpen lines open a range that closes on a later line
	// (or never closes).
	PartialOrphanedOpen
	// PartialOrphanedClose lines close a range opened on an earlier line
	// (or never opened).
	PartialOrphanedClose
	// PartialOrphanedOpenAndClose lines both close an earlier range and open
	// a later one, e.g. "]]text[[".
	PartialOrphanedOpenAndClose
)

func (s LineState) String() string {
	switch s {
	case Plain:
		return "plain"
	case RangeOnly:
		return "range-only"
	case PartialSelfContained:
		return "self-contained"
	case PartialOrphanedOpen:
		return "orphaned-open"
	case PartialOrphanedClose:
		return "orphaned-close"
	case PartialOrphanedOpenAndClose:
		return "orphaned-open-and-close"
	}
	return "state(?)"
}

// ClassifyLines assigns a LineState to every raw line given the resolved
// ranges. Contributions combine with precedence
// OpenAndClose > Open/Close > SelfContained > RangeOnly > Plain.
func ClassifyLines(lines []string, ranges []ResolvedRange) []LineState {
	states := make([]LineState, len(lines))
	for i, text := range lines {
		states[i] = classifyLine(i, text, ranges)
	}
	return states
}

func classifyLine(line int, text string, ranges []ResolvedRange) LineState {
	var (
		intersects  bool
		opensLater  bool // a range starts here and closes beyond this line
		closesEarly bool // a range closes here and started before this line
	)
	for _, r := range ranges {
		if r.Start.Line > line || r.End.Line < line {
			continue
		}
		intersects = true
		if r.Start.Line == line && (r.End.Line > line || r.Status == OrphanedOpen) {
			opensLater = true
		}
		if r.Status != OrphanedOpen && r.End.Line == line && (r.Start.Line < line || r.Status == OrphanedClose) {
			closesEarly = true
		}
	}
	switch {
	case !intersects:
		return Plain
	case opensLater && closesEarly:
		return PartialOrphanedOpenAndClose
	case opensLater:
		return PartialOrphanedOpen
	case closesEarly:
		return PartialOrphanedClose
	}
	// Only self-contained closed ranges (or full interior coverage) remain.
	if printableText(survivingText(line, text, ranges)) {
		return PartialSelfContained
	}
	return RangeOnly
}

// survivingText returns the bytes of the line not covered by any range.
func survivingText(line int, text string, ranges []ResolvedRange) string {
	spans := rangeSpansOnLine(line, text, ranges)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	prev := 0
	for _, sp := range mergeSpans(spans) {
		if sp.Start > prev {
			b.WriteString(text[prev:sp.Start])
		}
		if sp.End > prev {
			prev = sp.End
		}
	}
	if prev < len(text) {
		b.WriteString(text[prev:])
	}
	return b.String()
}

// printableText reports whether s counts as visible screenplay text.
// Whitespace-only text is not printable unless it is an intentional blank of
// two or more spaces, which Fountain treats as meaningful.
func printableText(s string) bool {
	if strings.TrimSpace(s) != "" {
		return true
	}
	return len(s) > 1 && strings.Count(s, " ") == len(s)
}

// rangeSpansOnLine projects every intersecting range onto the given line as
// [start, end) byte spans clipped to the line's bounds, in the order the
// ranges were resolved (increasing start, Boneyard before Note on ties).
func rangeSpansOnLine(line int, text string, ranges []ResolvedRange) []Span {
	var spans []Span
	for _, r := range ranges {
		if r.Start.Line > line || r.End.Line < line {
			continue
		}
		sp := Span{Start: 0, End: len(text)}
		if r.Start.Line == line {
			sp.Start = r.Start.Col
		}
		if r.End.Line == line {
			sp.End = r.End.Col
		}
		if sp.Start > len(text) {
			sp.Start = len(text)
		}
		if sp.End > len(text) {
			sp.End = len(text)
		}
		if sp.Start < sp.End {
			spans = append(spans, sp)
		}
	}
	return spans
}
