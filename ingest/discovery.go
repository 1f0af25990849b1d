package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover expands the configured glob patterns under dir and reads every
// matching document. Unreadable files do not abort discovery; they come
// back in the skipped map so the sync result can report them alongside
// validation failures. Document IDs are paths relative to dir.
func Discover(dir string, patterns []string) ([]RawDoc, map[string]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve documents dir: %w", err)
	}

	seen := make(map[string]bool)
	var matches []string
	for _, pattern := range patterns {
		found, err := doublestar.FilepathGlob(filepath.Join(absDir, pattern))
		if err != nil {
			return nil, nil, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}
		for _, m := range found {
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}
	sort.Strings(matches)

	docs := make([]RawDoc, 0, len(matches))
	skipped := make(map[string]string)
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}

		id, err := filepath.Rel(absDir, match)
		if err != nil {
			id = filepath.Base(match)
		}

		data, err := os.ReadFile(match)
		if err != nil {
			skipped[id] = fmt.Sprintf("read document: %v", err)
			continue
		}
		docs = append(docs, RawDoc{ID: id, Data: data})
	}

	return docs, skipped, nil
}
