package diffcache

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSCache is a filesystem-backed Cache rooted at a single directory. Entries live at <root>/<key[:2]>/<key[2:]>; sharding on the first two key characters
// keeps directory fanout flat for hex keys. Writes go through a temp file and rename, so readers never observe a partial entry.
type FSCache struct {
	root string
}

// NewFSCache creates the root directory if needed and returns a cache rooted there.
func NewFSCache(root string) (*FSCache, error) {
	if root == "" {
		return nil, errors.New("diffcache: root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("diffcache: create root: %w", err)
	}
	return &FSCache{root: root}, nil
}

func (c *FSCache) Get(key string) ([]byte, bool, error) {
	p, err := c.entryPath(key)
	if err != nil {
		return nil, false, err
	}
	val, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("diffcache: read entry: %w", err)
	}
	return val, true, nil
}

func (c *FSCache) Put(key string, val []byte) error {
	p, err := c.entryPath(key)
	if err != nil {
		return err
	}
	if existing, err := os.ReadFile(p); err == nil && bytes.Equal(existing, val) {
		return nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("diffcache: read existing entry: %w", err)
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("diffcache: create shard dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "diffcache-tmp-*")
	if err != nil {
		return fmt.Errorf("diffcache: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("diffcache: chmod temp file: %w", err)
	}
	if _, err := tmp.Write(val); err != nil {
		return fmt.Errorf("diffcache: write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("diffcache: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("diffcache: rename entry: %w", err)
	}
	return nil
}

func (c *FSCache) entryPath(key string) (string, error) {
	if len(key) < 3 {
		return "", fmt.Errorf("diffcache: key %q is too short", key)
	}
	// Disallow both separators so validation is stable across GOOS.
	if strings.Contains(key, "/") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("diffcache: key %q must not contain path separators", key)
	}
	return filepath.Join(c.root, key[:2], key[2:]), nil
}
