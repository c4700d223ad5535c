/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"testing"

	"gofountainwriter/internal/fountain"
)

func TestInitOrOpenIndexCreatesDatabase(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(IndexPath(root)); err != nil {
		t.Fatalf("index file missing: %v", err)
	}

	// Version row must exist with the current schema
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read version row: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}

	// Core tables must be queryable
	for _, table := range []string{"elements", "scenes", "characters", "annotations", "draft_snapshots"} {
		if _, err := db.Exec(`SELECT 1 FROM ` + table + ` LIMIT 1`); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func parseTestDoc(t *testing.T) *fountain.Document {
	t.Helper()
	doc, err := fountain.Parse("INT. HOUSE - DAY\n\nBob waits. [[prop: box]]\n\nBOB\nWhere is it?\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestUpdateIndexPopulatesTables(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	doc := parseTestDoc(t)

	if err := UpdateIndex(ctx, root, doc); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}

	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex error: %v", err)
	}
	defer db.Close()

	var elements, scenes, chars, anns int
	if err := db.QueryRow(`SELECT COUNT(*) FROM elements`).Scan(&elements); err != nil {
		t.Fatalf("count elements: %v", err)
	}
	if elements == 0 {
		t.Fatalf("expected indexed elements")
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM scenes`).Scan(&scenes); err != nil {
		t.Fatalf("count scenes: %v", err)
	}
	if scenes != 1 {
		t.Fatalf("scenes = %d, want 1", scenes)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM characters`).Scan(&chars); err != nil {
		t.Fatalf("count characters: %v", err)
	}
	if chars != 1 {
		t.Fatalf("characters = %d, want 1", chars)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM annotations`).Scan(&anns); err != nil {
		t.Fatalf("count annotations: %v", err)
	}
	if anns != 1 {
		t.Fatalf("annotations = %d, want 1", anns)
	}

	// Dialogue rows carry the speaking character
	var speaker string
	if err := db.QueryRow(`SELECT character FROM elements WHERE type='Dialogue'`).Scan(&speaker); err != nil {
		t.Fatalf("read dialogue speaker: %v", err)
	}
	if speaker != "BOB" {
		t.Fatalf("speaker = %q, want BOB", speaker)
	}
}

func TestBuildIndexIfEmptySkipsPopulatedIndex(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	doc := parseTestDoc(t)

	if err := UpdateIndex(ctx, root, doc); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	// A second build with an empty document must not clobber existing rows.
	empty, err := fountain.Parse("")
	if err != nil {
		t.Fatalf("Parse empty: %v", err)
	}
	if err := BuildIndexIfEmpty(ctx, root, empty); err != nil {
		t.Fatalf("BuildIndexIfEmpty error: %v", err)
	}

	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex error: %v", err)
	}
	defer db.Close()
	var elements int
	if err := db.QueryRow(`SELECT COUNT(*) FROM elements`).Scan(&elements); err != nil {
		t.Fatalf("count elements: %v", err)
	}
	if elements == 0 {
		t.Fatalf("existing index rows were lost")
	}
}

func TestDetectAndRebuildIndexOnCorruption(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	doc := parseTestDoc(t)

	if err := UpdateIndex(ctx, root, doc); err != nil {
		t.Fatalf("UpdateIndex error: %v", err)
	}
	// Clobber the database file
	if err := os.WriteFile(IndexPath(root), []byte("not a database"), 0o644); err != nil {
		t.Fatalf("corrupt index: %v", err)
	}

	rebuilt, err := DetectAndRebuildIndex(ctx, root, doc)
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex error: %v", err)
	}
	if !rebuilt {
		t.Fatalf("expected a rebuild")
	}

	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex after rebuild: %v", err)
	}
	defer db.Close()
	var elements int
	if err := db.QueryRow(`SELECT COUNT(*) FROM elements`).Scan(&elements); err != nil {
		t.Fatalf("count elements: %v", err)
	}
	if elements == 0 {
		t.Fatalf("rebuild produced no elements")
	}
}
