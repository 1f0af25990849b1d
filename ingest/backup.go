package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BackupManager writes a dated copy of a section document before any
// overwrite or delete touches it. Backups are named {key}-{date}.json; a
// same-day collision appends a numeric suffix. The soft limit is a rolling
// warning, not enforcement: old backups are never removed automatically.
type BackupManager struct {
	dir       string
	softLimit int
	logger    *slog.Logger
	now       func() time.Time
}

// NewBackupManager creates a BackupManager writing under dir.
func NewBackupManager(dir string, softLimit int, logger *slog.Logger) *BackupManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupManager{
		dir:       dir,
		softLimit: softLimit,
		logger:    logger,
		now:       time.Now,
	}
}

// Backup writes data as a dated backup for the section identified by key
// and returns the backup file path.
func (b *BackupManager) Backup(key string, data []byte) (string, error) {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	base := fmt.Sprintf("%s-%s", key, b.now().Format("2006-01-02"))
	name := base + ".json"
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(b.dir, name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s-%d.json", base, i)
	}

	path := filepath.Join(b.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	if count := b.count(key); b.softLimit > 0 && count > b.softLimit {
		b.logger.Warn("Backups accumulating for section",
			slog.String("section", key),
			slog.Int("count", count),
			slog.Int("soft_limit", b.softLimit))
	}

	return path, nil
}

// Count returns the number of backups currently held for key.
func (b *BackupManager) Count(key string) int {
	return b.count(key)
}

func (b *BackupManager) count(key string) int {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return 0
	}
	count := 0
	prefix := key + "-"
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".json") {
			count++
		}
	}
	return count
}
