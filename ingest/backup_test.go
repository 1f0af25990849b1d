package ingest

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestBackupDatedNames(t *testing.T) {
	dir := t.TempDir()
	b := NewBackupManager(dir, 3, nil)
	b.now = fixedClock(time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC))

	path, err := b.Backup("profile", []byte(`{"key":"profile"}`))
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if filepath.Base(path) != "profile-2026-02-14.json" {
		t.Errorf("backup name = %s", filepath.Base(path))
	}

	// Same-day collisions get numeric suffixes.
	path2, err := b.Backup("profile", []byte(`{"key":"profile","v":2}`))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path2) != "profile-2026-02-14-1.json" {
		t.Errorf("second backup name = %s", filepath.Base(path2))
	}

	path3, err := b.Backup("profile", []byte(`{"key":"profile","v":3}`))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path3) != "profile-2026-02-14-2.json" {
		t.Errorf("third backup name = %s", filepath.Base(path3))
	}

	// Content survives intact.
	data, err := os.ReadFile(path2)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"key":"profile","v":2}` {
		t.Errorf("backup content = %s", data)
	}
}

func TestBackupSoftLimitWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	b := NewBackupManager(t.TempDir(), 3, logger)
	b.now = fixedClock(time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC))

	for i := 0; i < 4; i++ {
		if _, err := b.Backup("profile", []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}

	// The limit is soft: all four backups exist, but the last write warned.
	if got := b.Count("profile"); got != 4 {
		t.Errorf("Count = %d, want 4 (soft limit must not delete)", got)
	}
	if !strings.Contains(buf.String(), "Backups accumulating") {
		t.Error("expected accumulation warning above the soft limit")
	}
}

func TestBackupCountPerKey(t *testing.T) {
	b := NewBackupManager(t.TempDir(), 3, nil)
	b.now = fixedClock(time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC))

	if _, err := b.Backup("profile", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Backup("profile_links", []byte("{}")); err != nil {
		t.Fatal(err)
	}

	// Counting must not confuse sections whose keys share a prefix.
	if got := b.Count("profile"); got != 1 {
		t.Errorf("Count(profile) = %d, want 1", got)
	}
	if got := b.Count("profile_links"); got != 1 {
		t.Errorf("Count(profile_links) = %d, want 1", got)
	}
}
