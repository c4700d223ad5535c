/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "testing"

func TestScanMarkersFindsAllKinds(t *testing.T) {
	lines := []string{
		"Action [[note]] here",
		"and /* boneyard */ there",
	}
	got := ScanMarkers(lines)
	want := []MarkerOccurrence{
		{Kind: Note, Role: RoleOpen, Line: 0, Col: 7},
		{Kind: Note, Role: RoleClose, Line: 0, Col: 13},
		{Kind: Boneyard, Role: RoleOpen, Line: 1, Col: 4},
		{Kind: Boneyard, Role: RoleClose, Line: 1, Col: 16},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("occurrence %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScanMarkersConsumesMatchedBytes(t *testing.T) {
	// The close at offset 0 consumes the '*', so no open starts at offset 1.
	got := ScanMarkers([]string{"*/*"})
	if len(got) != 1 {
		t.Fatalf("got %d occurrences, want 1: %v", len(got), got)
	}
	occ := got[0]
	if occ.Kind != Boneyard || occ.Role != RoleClose || occ.Col != 0 {
		t.Fatalf("got %+v, want boneyard close at col 0", occ)
	}
}

func TestScanMarkersEmpty(t *testing.T) {
	if got := ScanMarkers(nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
	if got := ScanMarkers([]string{"no markers here", ""}); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestScanMarkersAdjacent(t *testing.T) {
	// "[[[[" is two opens, "]]]]" two closes.
	got := ScanMarkers([]string{"[[[[x]]]]"})
	if len(got) != 4 {
		t.Fatalf("got %d occurrences, want 4: %v", len(got), got)
	}
	cols := []int{0, 2, 5, 7}
	for i, occ := range got {
		if occ.Col != cols[i] {
			t.Fatalf("occurrence %d at col %d, want %d", i, occ.Col, cols[i])
		}
	}
}
