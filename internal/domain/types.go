/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Screenplay represents a screenplay project and its metadata.
// It is intended to serialize to a human-readable JSON manifest; the
// screenplay text itself lives in .fountain files under drafts/.
type Screenplay struct {
	Name     string   `json:"name"`
	Metadata Metadata `json:"metadata,omitempty"`
	Drafts   []Draft  `json:"drafts"`
	Settings Settings `json:"settings,omitempty"`
}

// Metadata contains optional descriptive metadata for a project. The title
// page of the screenplay itself is authoritative for title and author; these
// fields carry what the title page cannot.
type Metadata struct {
	Series  string `json:"series,omitempty"`
	Season  int    `json:"season,omitempty"`
	Episode int    `json:"episode,omitempty"`
	Contact string `json:"contact,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Draft points at one revision of the screenplay text.
type Draft struct {
	File     string `json:"file"`
	Revision string `json:"revision,omitempty"` // e.g. "first", "blue", "pink"
	Locked   bool   `json:"locked,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Settings holds per-project parser configuration stored with the manifest,
// so a project parses the same way on every machine.
type Settings struct {
	// Nesting is "literal" (default) or "reject".
	Nesting string `json:"nesting,omitempty"`
	// KeepEmphasis leaves * and _ marker bytes in stripped text.
	KeepEmphasis bool `json:"keepEmphasis,omitempty"`
}
