/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func stripAll(t *testing.T, lines []string, opts StripOptions) []StrippedLine {
	t.Helper()
	ranges := resolve(t, lines, NestLiteral)
	states := ClassifyLines(lines, ranges)
	return StripLines(lines, ranges, states, opts)
}

func TestStripLeadingRangeKeepsTail(t *testing.T) {
	got := stripAll(t, []string{"[[Line with]] printable text"}, StripOptions{})
	if got[0].Text != " printable text" {
		t.Fatalf("got %q, want %q", got[0].Text, " printable text")
	}
	if got[0].State != PartialSelfContained {
		t.Fatalf("got state %s, want self-contained", got[0].State)
	}
}

func TestStripIdentityWhenNothingRemoved(t *testing.T) {
	lines := []string{"Plain action line.", ""}
	got := stripAll(t, lines, StripOptions{})
	for i, sl := range got {
		if sl.Text != lines[i] {
			t.Fatalf("line %d: got %q, want %q", i, sl.Text, lines[i])
		}
		if !sl.Map.Identity() {
			t.Fatalf("line %d: map not identity", i)
		}
		if spans := sl.Map.RemovedSpans(); spans != nil {
			t.Fatalf("line %d: removed spans %v, want none", i, spans)
		}
	}
}

func TestStripEmphasisMarkers(t *testing.T) {
	got := stripAll(t, []string{"He is *very* _happy_"}, StripOptions{})
	if got[0].Text != "He is very happy" {
		t.Fatalf("got %q, want %q", got[0].Text, "He is very happy")
	}
	want := []Span{{6, 7}, {11, 12}, {13, 14}, {19, 20}}
	if len(got[0].Emphasis) != len(want) {
		t.Fatalf("got emphasis %v, want %v", got[0].Emphasis, want)
	}
	for i, sp := range want {
		if got[0].Emphasis[i] != sp {
			t.Fatalf("emphasis %d: got %v, want %v", i, got[0].Emphasis[i], sp)
		}
	}

	kept := stripAll(t, []string{"He is *very* _happy_"}, StripOptions{KeepEmphasis: true})
	if kept[0].Text != "He is *very* _happy_" {
		t.Fatalf("got %q, want markers kept", kept[0].Text)
	}
}

func TestStripOverlappingKinds(t *testing.T) {
	got := stripAll(t, []string{"a /* b [[ c */ d ]] e"}, StripOptions{})
	if got[0].Text != "a  e" {
		t.Fatalf("got %q, want %q", got[0].Text, "a  e")
	}
	// Overlapping removal spans merge into one.
	if len(got[0].Ranged) != 1 || got[0].Ranged[0] != (Span{2, 19}) {
		t.Fatalf("got ranged %v, want [{2 19}]", got[0].Ranged)
	}
}

func TestIndexMapRoundTrip(t *testing.T) {
	lines := []string{
		"Action [[note]] here",
		"Before [[open",
		"interior",
		"close]] after *bold*",
		"stray ]] tail",
		"plain",
	}
	stripped := stripAll(t, lines, StripOptions{})
	for i, sl := range stripped {
		raw := lines[i]
		if sl.Map.RawLen() != len(raw) || sl.Map.StrippedLen() != len(sl.Text) {
			t.Fatalf("line %d: map lengths %d/%d, text lengths %d/%d",
				i, sl.Map.RawLen(), sl.Map.StrippedLen(), len(raw), len(sl.Text))
		}

		// Rebuild the raw line byte by byte through the map.
		rebuilt := make([]byte, 0, len(raw))
		for j := 0; j < len(raw); j++ {
			if idx, ok := sl.Map.StrippedIndex(j); ok {
				rebuilt = append(rebuilt, sl.Text[idx])
			} else {
				rebuilt = append(rebuilt, raw[j])
			}
		}
		if string(rebuilt) != raw {
			dmp := diffmatchpatch.New()
			diffs := dmp.DiffMain(raw, string(rebuilt), false)
			t.Fatalf("line %d rebuild mismatch:\n%s", i, dmp.DiffPrettyText(diffs))
		}

		// Every stripped offset maps to a raw byte with the same value, and
		// mapping it back is the identity.
		for j := 0; j < len(sl.Text); j++ {
			rj := sl.Map.RawIndex(j)
			if raw[rj] != sl.Text[j] {
				t.Fatalf("line %d: stripped byte %d maps to raw %d with different value", i, j, rj)
			}
			back, ok := sl.Map.StrippedIndex(rj)
			if !ok || back != j {
				t.Fatalf("line %d: stripped %d -> raw %d -> stripped %d ok=%v", i, j, rj, back, ok)
			}
		}

		// End offsets map to end offsets.
		if got := sl.Map.RawIndex(len(sl.Text)); got != len(raw) {
			t.Fatalf("line %d: RawIndex(end) = %d, want %d", i, got, len(raw))
		}
	}
}

func TestRemovedSpansCoverStrippedBytes(t *testing.T) {
	lines := []string{"Action [[note]] *here*"}
	stripped := stripAll(t, lines, StripOptions{})
	sl := stripped[0]

	removed := 0
	for _, sp := range sl.Map.RemovedSpans() {
		removed += sp.Len()
		for j := sp.Start; j < sp.End; j++ {
			if _, ok := sl.Map.StrippedIndex(j); ok {
				t.Fatalf("raw byte %d inside removed span %v still mapped", j, sp)
			}
		}
	}
	if removed != len(lines[0])-len(sl.Text) {
		t.Fatalf("removed %d bytes, want %d", removed, len(lines[0])-len(sl.Text))
	}
}

func TestMergeSpans(t *testing.T) {
	got := mergeSpans([]Span{{5, 7}, {0, 2}, {6, 9}, {9, 10}, {12, 13}})
	want := []Span{{0, 2}, {5, 10}, {12, 13}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("span %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
