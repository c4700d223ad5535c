/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gofountainwriter/internal/config"
	"gofountainwriter/internal/crash"
	"gofountainwriter/internal/domain"
	"gofountainwriter/internal/fountain"
	applog "gofountainwriter/internal/log"
	"gofountainwriter/internal/storage"
	"gofountainwriter/internal/telemetry"
	"gofountainwriter/internal/version"
)

func usage() {
	fmt.Println("Go Fountain Writer — screenplay toolkit")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gofountainwriter version|-v|--version       Show version")
	fmt.Println("  gofountainwriter init <dir> <name>          Create a new project at <dir> with name <name>")
	fmt.Println("  gofountainwriter open <dir>                 Open project at <dir> and print summary")
	fmt.Println("  gofountainwriter parse <file>               Parse a .fountain file and print line types")
	fmt.Println("  gofountainwriter elements <file>            Parse a .fountain file and print elements")
	fmt.Println("  gofountainwriter notes <file>               Print notes and boneyards with their spans")
	fmt.Println("  gofountainwriter index <dir>                Rebuild the project search index from the default draft")
	fmt.Println("  gofountainwriter search <dir> <query>       Full-text search over the indexed draft")
	fmt.Println("  gofountainwriter scenes <dir>               List indexed scene headings")
	fmt.Println("  gofountainwriter characters <dir>           List indexed characters with cue counts")
	fmt.Println("  gofountainwriter snapshot <dir>             Store a snapshot of the default draft text")
	fmt.Println("  gofountainwriter snapshots <dir>            List stored draft snapshots")
}

// parserOptions maps config and per-project settings onto parse options.
// Manifest settings win over the user config.
func parserOptions(cfg config.AppConfig, s *domain.Settings) []fountain.Option {
	nesting := cfg.Parser.Nesting
	keep := cfg.Parser.KeepEmphasis
	if s != nil {
		if s.Nesting != "" {
			nesting = s.Nesting
		}
		if s.KeepEmphasis {
			keep = true
		}
	}
	opts := []fountain.Option{fountain.WithKeepEmphasis(keep)}
	if strings.EqualFold(nesting, "reject") {
		opts = append(opts, fountain.WithNestingPolicy(fountain.NestReject))
	}
	return opts
}

func parseFile(path string, opts []fountain.Option) (*fountain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fountain.Parse(string(data), opts...)
}

func openProject(l *slog.Logger, dir string) *storage.ProjectHandle {
	abs, _ := filepath.Abs(dir)
	h, err := storage.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return h
}

func parseDefaultDraft(l *slog.Logger, cfg config.AppConfig, ph *storage.ProjectHandle) (string, *fountain.Document) {
	file := storage.DefaultDraftFile
	if len(ph.Screenplay.Drafts) > 0 {
		file = ph.Screenplay.Drafts[0].File
	}
	text, err := storage.ReadDraft(ph, file)
	if err != nil {
		l.Error("read draft failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	doc, err := fountain.Parse(text, parserOptions(cfg, &ph.Screenplay.Settings)...)
	if err != nil {
		l.Error("parse draft failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return text, doc
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	ctx := context.Background()
	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Go Fountain Writer — screenplay toolkit")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			name := args[3]
			l.Info("init project", slog.String("root", abs), slog.String("name", name))
			s := domain.Screenplay{Name: name, Settings: domain.Settings{Nesting: cfg.Parser.Nesting, KeepEmphasis: cfg.Parser.KeepEmphasis}}
			h, err := storage.InitProject(abs, s)
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			telemetry.Event("project_init", nil)
			fmt.Println("Created project at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			h := openProject(l, args[2])
			ph = h
			fmt.Printf("Opened project: %s\n", h.Screenplay.Name)
			fmt.Printf("Drafts: %d\n", len(h.Screenplay.Drafts))
			fmt.Println("Root:", h.Root)
			return
		case "parse":
			if len(args) < 3 {
				fmt.Println("parse requires <file>")
				usage()
				os.Exit(2)
			}
			doc, err := parseFile(args[2], parserOptions(cfg, nil))
			if err != nil {
				l.Error("parse failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, ln := range doc.Lines {
				fmt.Printf("%4d  %-26s %s\n", ln.Index, ln.Type, ln.Text)
			}
			return
		case "elements":
			if len(args) < 3 {
				fmt.Println("elements requires <file>")
				usage()
				os.Exit(2)
			}
			doc, err := parseFile(args[2], parserOptions(cfg, nil))
			if err != nil {
				l.Error("parse failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, el := range doc.Elements {
				if el.Type == fountain.Empty {
					continue
				}
				fmt.Printf("%4d  %-26s %s\n", el.Line, el.Type, el.Text)
			}
			return
		case "notes":
			if len(args) < 3 {
				fmt.Println("notes requires <file>")
				usage()
				os.Exit(2)
			}
			doc, err := parseFile(args[2], parserOptions(cfg, nil))
			if err != nil {
				l.Error("parse failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, el := range doc.Annotations() {
				kind := "note"
				if el.Type == fountain.BoneyardElement {
					kind = "boneyard"
				}
				span := ""
				if el.Span != nil {
					span = fmt.Sprintf("%s..%s", el.Span.Start, el.Span.End)
				}
				fmt.Printf("%-8s %-16s %s\n", kind, span, el.Text)
			}
			return
		case "index":
			if len(args) < 3 {
				fmt.Println("index requires <dir>")
				usage()
				os.Exit(2)
			}
			h := openProject(l, args[2])
			ph = h
			_, doc := parseDefaultDraft(l, cfg, h)
			if err := storage.UpdateIndex(ctx, h.Root, doc); err != nil {
				l.Error("index failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			telemetry.Event("index_rebuilt", nil)
			fmt.Println("Index updated at", storage.IndexPath(h.Root))
			return
		case "search":
			if len(args) < 4 {
				fmt.Println("search requires <dir> and <query>")
				usage()
				os.Exit(2)
			}
			h := openProject(l, args[2])
			ph = h
			q := storage.SearchQuery{Text: strings.Join(args[3:], " ")}
			res, err := storage.Search(ctx, h.Root, q)
			if err != nil {
				l.Error("search failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, r := range res {
				fmt.Printf("%4d  %-26s %s\n", r.Line, r.Type, r.Text)
			}
			fmt.Printf("%d result(s)\n", len(res))
			return
		case "scenes":
			if len(args) < 3 {
				fmt.Println("scenes requires <dir>")
				usage()
				os.Exit(2)
			}
			h := openProject(l, args[2])
			ph = h
			scenes, err := storage.SceneList(ctx, h.Root)
			if err != nil {
				l.Error("scene list failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for i, sc := range scenes {
				fmt.Printf("%3d  line %4d  %s\n", i+1, sc.Line, sc.Text)
			}
			return
		case "characters":
			if len(args) < 3 {
				fmt.Println("characters requires <dir>")
				usage()
				os.Exit(2)
			}
			h := openProject(l, args[2])
			ph = h
			counts, err := storage.CharacterCounts(ctx, h.Root)
			if err != nil {
				l.Error("character counts failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for name, n := range counts {
				fmt.Printf("%-24s %d cue(s)\n", name, n)
			}
			return
		case "snapshot":
			if len(args) < 3 {
				fmt.Println("snapshot requires <dir>")
				usage()
				os.Exit(2)
			}
			h := openProject(l, args[2])
			ph = h
			text, _ := parseDefaultDraft(l, cfg, h)
			if err := storage.SaveDraftSnapshot(ctx, h, text, time.Now()); err != nil {
				l.Error("snapshot failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Draft snapshot stored.")
			return
		case "snapshots":
			if len(args) < 3 {
				fmt.Println("snapshots requires <dir>")
				usage()
				os.Exit(2)
			}
			h := openProject(l, args[2])
			ph = h
			list, err := storage.ListDraftSnapshots(ctx, h, 0)
			if err != nil {
				l.Error("list snapshots failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, s := range list {
				fmt.Printf("%s  %d byte(s)\n", s.TS.Format(time.RFC3339), len(s.Text))
			}
			fmt.Printf("%d snapshot(s)\n", len(list))
			return
		}
	}

	usage()
}
