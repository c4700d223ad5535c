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
	"database/sql"
	"fmt"
	"strings"

	"gofountainwriter/internal/fountain"
)

// BuildIndexIfEmpty populates the index from the parsed document when the
// elements table has no rows yet. Useful for background builds on open.
func BuildIndexIfEmpty(ctx context.Context, projectRoot string, doc *fountain.Document) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM elements;").Scan(&cnt); err != nil {
		return fmt.Errorf("check elements count: %w", err)
	}
	if cnt > 0 {
		return nil // already built
	}
	return rebuildFromDocument(ctx, db, doc)
}

// UpdateIndex replaces the indexed content with the given parsed document.
func UpdateIndex(ctx context.Context, projectRoot string, doc *fountain.Document) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	return rebuildFromDocument(ctx, db, doc)
}

// RebuildIndex drops and recreates core index tables and rebuilds content
// from the parsed document. It preserves meta/version tables and draft
// snapshots; the rest of the index is derived from the draft text.
func RebuildIndex(ctx context.Context, projectRoot string, doc *fountain.Document) error {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS scenes;",
		"DROP TABLE IF EXISTS characters;",
		"DROP TABLE IF EXISTS annotations;",
		"DROP TRIGGER IF EXISTS elements_ai;",
		"DROP TRIGGER IF EXISTS elements_ad;",
		"DROP TRIGGER IF EXISTS elements_au;",
		"DROP TABLE IF EXISTS elements;",
		"DROP TABLE IF EXISTS fts_elements;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		return err
	}
	return rebuildFromDocument(ctx, db, doc)
}

// rebuildFromDocument replaces elements, scenes, characters and annotations
// from the parsed document, in one transaction.
func rebuildFromDocument(ctx context.Context, db *sql.DB, doc *fountain.Document) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	clears := []string{
		"DELETE FROM elements;",
		"DELETE FROM scenes;",
		"DELETE FROM characters;",
		"DELETE FROM annotations;",
	}
	for _, q := range clears {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear index: %w", err)
		}
	}

	insEl, err := tx.PrepareContext(ctx, "INSERT INTO elements(line, type, character, text) VALUES(?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare element insert: %w", err)
	}
	defer insEl.Close()

	if doc != nil {
		// Track the speaking character so dialogue rows can be attributed.
		speaking := sql.NullString{}
		for _, el := range doc.Elements {
			switch el.Type {
			case fountain.Empty:
				speaking = sql.NullString{}
				continue
			case fountain.NoteElement, fountain.BoneyardElement:
				continue // indexed separately below
			case fountain.Character, fountain.DualDialogueCharacter:
				speaking = sql.NullString{String: characterKey(el.Text), Valid: true}
			}
			ch := sql.NullString{}
			switch el.Type {
			case fountain.Character, fountain.DualDialogueCharacter,
				fountain.Dialogue, fountain.DualDialogue,
				fountain.Parenthetical, fountain.DualDialogueParenthetical:
				ch = speaking
			}
			if _, err := insEl.ExecContext(ctx, el.Line, el.Type.String(), ch, el.Text); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert element: %w", err)
			}
		}

		insScene, err := tx.PrepareContext(ctx, "INSERT INTO scenes(line, heading) VALUES(?,?);")
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("prepare scene insert: %w", err)
		}
		defer insScene.Close()
		for _, sc := range doc.Scenes() {
			if _, err := insScene.ExecContext(ctx, sc.Index, sc.Text); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert scene: %w", err)
			}
		}

		insChar, err := tx.PrepareContext(ctx, "INSERT INTO characters(name, cue_count) VALUES(?,?);")
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("prepare character insert: %w", err)
		}
		defer insChar.Close()
		for name, n := range cueCounts(doc) {
			if _, err := insChar.ExecContext(ctx, name, n); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert character: %w", err)
			}
		}

		insAnn, err := tx.PrepareContext(ctx, "INSERT INTO annotations(kind, status, start_line, start_col, end_line, end_col, text) VALUES(?,?,?,?,?,?,?);")
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("prepare annotation insert: %w", err)
		}
		defer insAnn.Close()
		for _, r := range doc.Ranges {
			if _, err := insAnn.ExecContext(ctx,
				strings.ToLower(r.Kind.String()), r.Status.String(),
				r.Start.Line, r.Start.Col, r.End.Line, r.End.Col,
				annotationText(doc, r),
			); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert annotation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// cueCounts tallies how often each character gets a cue.
func cueCounts(doc *fountain.Document) map[string]int {
	counts := map[string]int{}
	for _, l := range doc.Lines {
		if !l.IsAnyCharacter() {
			continue
		}
		if name := characterKey(l.Text); name != "" {
			counts[name]++
		}
	}
	return counts
}

// characterKey normalizes a cue to a stable character name.
func characterKey(text string) string {
	name := strings.TrimSpace(text)
	name = strings.TrimPrefix(name, "@")
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(strings.TrimSpace(name), "^")
	return strings.TrimSpace(name)
}

// annotationText finds the annotation element text for a resolved range, so
// the index stores content without marker tokens.
func annotationText(doc *fountain.Document, r fountain.ResolvedRange) string {
	for _, el := range doc.Annotations() {
		if el.Span != nil && el.Span.Start == r.Start && el.Span.End == r.End {
			return el.Text
		}
	}
	return ""
}
