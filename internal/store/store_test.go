package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jobassist/internal/model"
)

func TestWriteJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.json")
	in := map[string]int{"a": 1}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var out map[string]int
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out["a"] != 1 {
		t.Fatalf("expected a=1, got %v", out)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func TestSaveDraftWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	d, err := SaveDraft(dir, model.Proposal{ID: 7, ProposalText: "Hello client\n"}, "Senior React/Node Dev!", now)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if filepath.Base(d.Path) != "proposal-7-senior-react-node-dev.md" {
		t.Fatalf("unexpected draft name %q", d.Path)
	}
	data, err := os.ReadFile(d.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Senior React/Node Dev!\n\nHello client\n") {
		t.Fatalf("unexpected draft contents %q", data)
	}
	if d.SavedAt != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected saved_at %q", d.SavedAt)
	}

	paths, err := ListDrafts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != d.Path {
		t.Fatalf("expected one listed draft, got %v", paths)
	}
}

func TestSaveDraftRejectsEmptyText(t *testing.T) {
	if _, err := SaveDraft(t.TempDir(), model.Proposal{ID: 1, ProposalText: "  "}, "x", time.Now()); err == nil {
		t.Fatal("expected error for empty proposal text")
	}
}

func TestListDraftsMissingDir(t *testing.T) {
	paths, err := ListDrafts(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(paths) != 0 {
		t.Fatalf("expected empty list, got %v err=%v", paths, err)
	}
}
