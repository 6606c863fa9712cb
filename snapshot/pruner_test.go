package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const day = 24 * time.Hour

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	old := time.Now().Add(-age)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestPruneRemovesOnlyExpiredArchives(t *testing.T) {
	root := t.TempDir()
	oldArchive := filepath.Join(root, "2025", "05", "2025-05-17.json.gz")
	newArchive := filepath.Join(root, "2025", "08", "2025-08-15.json.gz")
	latest := filepath.Join(root, "latest.json")
	stray := filepath.Join(root, "2025", "05", "notes.txt")

	writeAged(t, oldArchive, 100*day)
	writeAged(t, newArchive, 10*day)
	writeAged(t, latest, 365*day)
	writeAged(t, stray, 365*day)

	removed := NewPruner().Prune(root, 90)

	if len(removed) != 1 || removed[0] != oldArchive {
		t.Fatalf("removed = %v, want only %s", removed, oldArchive)
	}
	if _, err := os.Stat(oldArchive); !os.IsNotExist(err) {
		t.Error("expired archive should be gone")
	}
	for _, p := range []string{newArchive, latest, stray} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should survive pruning: %v", p, err)
		}
	}
}

func TestPruneIdempotent(t *testing.T) {
	root := t.TempDir()
	writeAged(t, filepath.Join(root, "2025", "05", "2025-05-17.json.gz"), 100*day)

	p := NewPruner()
	if removed := p.Prune(root, 90); len(removed) != 1 {
		t.Fatalf("first run removed %v, want 1 path", removed)
	}
	if removed := p.Prune(root, 90); len(removed) != 0 {
		t.Errorf("second run removed %v, want nothing", removed)
	}
}

func TestPruneDisabled(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "2020", "01", "2020-01-01.json.gz")
	writeAged(t, archive, 2000*day)

	for _, retention := range []int{0, -1} {
		if removed := NewPruner().Prune(root, retention); removed != nil {
			t.Errorf("retention %d should disable pruning, removed %v", retention, removed)
		}
	}
	if _, err := os.Stat(archive); err != nil {
		t.Errorf("archive should survive: %v", err)
	}
}

func TestPruneMissingRoot(t *testing.T) {
	if removed := NewPruner().Prune(filepath.Join(t.TempDir(), "absent"), 90); removed != nil {
		t.Errorf("missing root should prune nothing, got %v", removed)
	}
}
