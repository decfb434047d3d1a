package mdscan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns is the corpus glob used when the caller names none.
var DefaultPatterns = []string{"**/*.md", "**/*.mdx"}

// Load reads the markdown corpus under root. Patterns are doublestar
// globs matched against slash-separated paths relative to root; nil or
// empty means DefaultPatterns. Documents come back sorted by path.
// Load is the only filesystem access in this package.
func Load(root string, patterns []string) ([]Document, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	var docs []Document
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !matchesAny(patterns, rel) {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		docs = append(docs, Document{Path: rel, Source: src})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("mdscan: load %s: %w", root, walkErr)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func matchesAny(patterns []string, relPath string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
