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
	"errors"
	"fmt"
	"strings"
)

// SearchQuery describes the in-app search request.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Filters are optional. Types can restrict to element kinds like Dialogue,
// Action, Heading. Character restricts to lines spoken by (or cueing) the
// named character. LineFrom/To are inclusive raw line bounds; 0 means unset.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text      string
	Character string
	Types     []string
	LineFrom  int
	LineTo    int
	Limit     int
	Offset    int
}

// SearchResult represents a single match row.
// Snippet is an optional highlighted excerpt using [ ] markers when FTS text
// is used.
type SearchResult struct {
	ElementID int64
	Type      string
	Line      int
	Character string
	Snippet   string
	Text      string
}

// Search performs full-text search with optional filters over the embedded index.
// When q.Text is empty, it falls back to a non-FTS scan over elements with filters applied.
func Search(ctx context.Context, projectRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		// fts_elements is contentless, so snippet() may yield NULL.
		sb.WriteString("SELECT e.el_id, e.type, e.line, COALESCE(e.character,''), COALESCE(snippet(fts_elements, 0, '[', ']', '…', 10),''), COALESCE(e.text,'')\n")
		sb.WriteString("FROM fts_elements JOIN elements e ON fts_elements.rowid = e.el_id\n")
		sb.WriteString("WHERE fts_elements MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT e.el_id, e.type, e.line, COALESCE(e.character,''), '', COALESCE(e.text,'')\n")
		sb.WriteString("FROM elements e\nWHERE 1=1\n")
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND e.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if q.LineFrom > 0 && q.LineTo > 0 && q.LineTo >= q.LineFrom {
		sb.WriteString(" AND e.line BETWEEN ? AND ?\n")
		args = append(args, q.LineFrom, q.LineTo)
	} else if q.LineFrom > 0 {
		sb.WriteString(" AND e.line >= ?\n")
		args = append(args, q.LineFrom)
	} else if q.LineTo > 0 {
		sb.WriteString(" AND e.line <= ?\n")
		args = append(args, q.LineTo)
	}
	if s := strings.TrimSpace(q.Character); s != "" {
		sb.WriteString(" AND e.character IS NOT NULL AND lower(e.character)=?\n")
		args = append(args, strings.ToLower(s))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY e.line, e.el_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ElementID, &r.Type, &r.Line, &r.Character, &r.Snippet, &r.Text); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SceneList returns the indexed scene headings in document order.
func SceneList(ctx context.Context, projectRoot string) ([]SearchResult, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, `SELECT scene_id, line, heading FROM scenes ORDER BY line`)
	if err != nil {
		return nil, fmt.Errorf("scene query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		r := SearchResult{Type: "Heading"}
		if err := rows.Scan(&r.ElementID, &r.Line, &r.Text); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CharacterCounts returns the indexed characters with cue counts, most
// frequent first.
func CharacterCounts(ctx context.Context, projectRoot string) (map[string]int, error) {
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, `SELECT name, cue_count FROM characters ORDER BY cue_count DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("character query: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		out[name] = n
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
