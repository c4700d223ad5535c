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
	"strings"
)

// Span is a half-open [Start, End) byte range within a single raw line.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// segment maps one contiguous run of kept raw bytes onto the stripped text.
type segment struct {
	raw      int // raw byte offset of the run's first byte
	stripped int // stripped byte offset of the same byte
	n        int // run length in bytes
}

// IndexMap is the bidirectional column mapping between one raw line and its
// stripped form. It stores the kept runs as breakpoints, monotonic in both
// coordinates; lookups are O(log n) via binary search. The zero value is the
// identity map for an empty line.
type IndexMap struct {
	seg         []segment
	rawLen      int
	strippedLen int
}

// RawIndex returns the raw byte offset for a stripped offset. Offsets in
// [0, StrippedLen()) address kept bytes; StrippedLen() maps to RawLen().
func (m *IndexMap) RawIndex(stripped int) int {
	if stripped >= m.strippedLen {
		return m.rawLen
	}
	i := sort.Search(len(m.seg), func(i int) bool {
		return m.seg[i].stripped > stripped
	})
	s := m.seg[i-1]
	return s.raw + (stripped - s.stripped)
}

// StrippedIndex returns the stripped byte offset for a raw offset. When the
// raw byte was removed, ok is false and the returned offset is the stripped
// boundary the removed span collapsed onto.
func (m *IndexMap) StrippedIndex(raw int) (idx int, ok bool) {
	i := sort.Search(len(m.seg), func(i int) bool {
		return m.seg[i].raw > raw
	})
	if i == 0 {
		return 0, false
	}
	s := m.seg[i-1]
	if raw < s.raw+s.n {
		return s.stripped + (raw - s.raw), true
	}
	return s.stripped + s.n, false
}

// RemovedSpans returns the raw byte spans with no stripped counterpart, in
// increasing order. Querying StrippedIndex with any byte of such a span
// yields the adjacent stripped boundary.
func (m *IndexMap) RemovedSpans() []Span {
	var spans []Span
	prev := 0
	for _, s := range m.seg {
		if s.raw > prev {
			spans = append(spans, Span{Start: prev, End: s.raw})
		}
		prev = s.raw + s.n
	}
	if prev < m.rawLen {
		spans = append(spans, Span{Start: prev, End: m.rawLen})
	}
	return spans
}

// Identity reports whether the map is the identity (nothing removed).
func (m *IndexMap) Identity() bool {
	return m.rawLen == m.strippedLen
}

// RawLen returns the raw line length in bytes.
func (m *IndexMap) RawLen() int { return m.rawLen }

// StrippedLen returns the stripped line length in bytes.
func (m *IndexMap) StrippedLen() int { return m.strippedLen }

// StrippedLine is one line of the stripped document. Immutable once built.
type StrippedLine struct {
	RawLine  int    // index of the originating raw line
	Text     string // raw text with ranged content and emphasis markers removed
	Map      IndexMap
	State    LineState
	Ranged   []Span // raw spans removed as ranged content (markers included)
	Emphasis []Span // raw spans of stripped emphasis marker bytes
}

// StripOptions are the stripper policy hooks.
type StripOptions struct {
	// KeepEmphasis leaves * and _ marker bytes in place.
	KeepEmphasis bool
}

// StripLines produces the stripped counterpart of every raw line. Removal
// spans are applied in increasing start order (ranges of different kinds may
// overlap; overlapping spans are merged first). Emphasis marker bytes
// (* and _) outside ranged spans are stripped as well unless disabled —
// emphasis span resolution is out of scope here, only the marker bytes go.
func StripLines(lines []string, ranges []ResolvedRange, states []LineState, opts StripOptions) []StrippedLine {
	out := make([]StrippedLine, len(lines))
	for i, text := range lines {
		ranged := mergeSpans(rangeSpansOnLine(i, text, ranges))
		var emphasis []Span
		if !opts.KeepEmphasis {
			emphasis = emphasisSpans(text, ranged)
		}
		removals := mergeSpans(append(append([]Span(nil), ranged...), emphasis...))
		stripped, m := stripLine(text, removals)
		out[i] = StrippedLine{
			RawLine:  i,
			Text:     stripped,
			Map:      m,
			State:    states[i],
			Ranged:   ranged,
			Emphasis: emphasis,
		}
	}
	return out
}

// stripLine removes the given spans (sorted, non-overlapping) from text and
// builds the index map over the kept runs.
func stripLine(text string, removals []Span) (string, IndexMap) {
	m := IndexMap{rawLen: len(text)}
	if len(removals) == 0 {
		m.strippedLen = len(text)
		if len(text) > 0 {
			m.seg = []segment{{raw: 0, stripped: 0, n: len(text)}}
		}
		return text, m
	}
	var b strings.Builder
	raw := 0
	for _, sp := range removals {
		if sp.Start > raw {
			m.seg = append(m.seg, segment{raw: raw, stripped: b.Len(), n: sp.Start - raw})
			b.WriteString(text[raw:sp.Start])
		}
		raw = sp.End
	}
	if raw < len(text) {
		m.seg = append(m.seg, segment{raw: raw, stripped: b.Len(), n: len(text) - raw})
		b.WriteString(text[raw:])
	}
	m.strippedLen = b.Len()

	// The stripped and raw representations must never desynchronize; a
	// mismatch here is a stripper defect, not a recoverable condition.
	removed := 0
	for _, sp := range removals {
		removed += sp.Len()
	}
	if m.strippedLen+removed != m.rawLen {
		panic(fmt.Sprintf("fountain: index map inconsistency: raw=%d stripped=%d removed=%d", m.rawLen, m.strippedLen, removed))
	}
	return b.String(), m
}

// emphasisSpans finds * and _ bytes outside the ranged spans. Each marker
// byte becomes its own span; adjacent markers merge later.
func emphasisSpans(text string, ranged []Span) []Span {
	var spans []Span
	for i := 0; i < len(text); i++ {
		if text[i] != '*' && text[i] != '_' {
			continue
		}
		if insideAny(i, ranged) {
			continue
		}
		spans = append(spans, Span{Start: i, End: i + 1})
	}
	return spans
}

func insideAny(i int, spans []Span) bool {
	for _, sp := range spans {
		if i >= sp.Start && i < sp.End {
			return true
		}
	}
	return false
}

// mergeSpans sorts spans by start and merges overlapping or touching ones.
func mergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := append([]Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	merged := sorted[:1]
	for _, sp := range sorted[1:] {
		last := &merged[len(merged)-1]
		if sp.Start <= last.End {
			if sp.End > last.End {
				last.End = sp.End
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}
