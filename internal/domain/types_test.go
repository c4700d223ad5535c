/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestScreenplayJSONFieldNames(t *testing.T) {
	s := Screenplay{
		Name:   "Pilot",
		Drafts: []Draft{{File: "screenplay.fountain", Revision: "first"}},
		Settings: Settings{
			Nesting:      "reject",
			KeepEmphasis: true,
		},
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"name"`, `"drafts"`, `"file"`, `"revision"`, `"nesting"`, `"keepEmphasis"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("marshaled manifest missing %s: %s", want, out)
		}
	}
	// Empty optional fields stay out of the manifest
	if strings.Contains(out, `"locked"`) || strings.Contains(out, `"series"`) {
		t.Fatalf("omitempty fields leaked into manifest: %s", out)
	}

	var back Screenplay
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Name != s.Name || len(back.Drafts) != 1 || back.Settings.Nesting != "reject" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}
