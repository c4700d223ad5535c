package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gofountainwriter/internal/domain"
)

func TestInitProjectCreatesStructureAndManifest(t *testing.T) {
	root := t.TempDir()
	scr := domain.Screenplay{Name: "Test Screenplay"}

	ph, err := InitProject(root, scr)
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	if ph == nil {
		t.Fatalf("InitProject returned nil handle")
	}

	// Check manifest exists
	if ph.ManifestPath == "" {
		t.Fatalf("ManifestPath not set")
	}
	// Load manifest and compare
	b, err := os.ReadFile(ph.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var got domain.Screenplay
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if got.Name != scr.Name {
		t.Fatalf("manifest name mismatch: got %q want %q", got.Name, scr.Name)
	}

	// Standard subdirs should exist
	wantDirs := []string{DraftsDirName, "notes", "exports", BackupsDirName}
	for _, d := range wantDirs {
		p := filepath.Join(root, d)
		if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist", p)
		}
	}

	// The default draft should be seeded and registered
	if len(got.Drafts) != 1 || got.Drafts[0].File != DefaultDraftFile {
		t.Fatalf("expected seeded default draft, got %v", got.Drafts)
	}
	if _, err := os.Stat(DraftPath(ph, DefaultDraftFile)); err != nil {
		t.Fatalf("expected default draft file: %v", err)
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, domain.Screenplay{Name: "Backup Test"})
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}

	// Change something and save again to force a backup
	ph.Screenplay.Metadata.Notes = "changed"
	if err := Save(ph); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// Expect at least one .bak file under backups
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	var bakCount int
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			bakCount++
		}
	}
	if bakCount == 0 {
		t.Fatalf("expected at least one backup file, found 0")
	}
}

func TestOpenFallsBackToLatestBackupOnCorruption(t *testing.T) {
	root := t.TempDir()
	scr := domain.Screenplay{Name: "Open From Backup"}
	ph, err := InitProject(root, scr)
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}

	// Force a backup to exist by saving
	ph.Screenplay.Metadata.Notes = "touch"
	if err := Save(ph); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// Corrupt the manifest
	if err := os.WriteFile(ph.ManifestPath, []byte("{ this is not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}

	// Now opening should succeed via latest backup
	opened, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if opened.Screenplay.Name != scr.Name {
		t.Fatalf("opened project name mismatch: got %q want %q", opened.Screenplay.Name, scr.Name)
	}
}

func TestDraftRoundTripWithBackup(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, domain.Screenplay{Name: "Draft Test"})
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}

	text := "INT. HOUSE - DAY\n\nAction line.\n"
	if err := WriteDraft(ph, DefaultDraftFile, text); err != nil {
		t.Fatalf("WriteDraft error: %v", err)
	}
	got, err := ReadDraft(ph, DefaultDraftFile)
	if err != nil {
		t.Fatalf("ReadDraft error: %v", err)
	}
	if got != text {
		t.Fatalf("draft mismatch: got %q want %q", got, text)
	}

	// Overwriting should leave a backup of the previous content
	if err := WriteDraft(ph, DefaultDraftFile, text+"\nMore.\n"); err != nil {
		t.Fatalf("WriteDraft second error: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	found := false
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), DefaultDraftFile+".") && strings.HasSuffix(e.Name(), ".bak") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a draft backup file")
	}
}

func TestAutosaveCrashSnapshotWritesFile(t *testing.T) {
	root := t.TempDir()
	scr := domain.Screenplay{Name: "Crash Snapshot"}
	ph, err := InitProject(root, scr)
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}

	path, err := AutosaveCrashSnapshot(ph)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file does not exist: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var got domain.Screenplay
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if got.Name != scr.Name {
		t.Fatalf("snapshot content mismatch: got %q want %q", got.Name, scr.Name)
	}
}
