package diffcache

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

//go:embed pragmas.sql
var pragmasSQL string

// SQLiteCache is a Cache backed by a single-file SQLite database, for persistent sharing across runs and processes where a sharded directory tree is
// unwanted. The driver is CGO-free.
type SQLiteCache struct {
	conn *sql.DB
}

// OpenSQLiteCache opens or creates the database at dbPath and applies the embedded pragmas and schema.
func OpenSQLiteCache(dbPath string) (*SQLiteCache, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("diffcache: open sqlite: %w", err)
	}
	for _, pragma := range strings.Split(pragmasSQL, "\n") {
		pragma = strings.TrimSpace(pragma)
		if pragma == "" || strings.HasPrefix(pragma, "--") {
			continue
		}
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("diffcache: apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("diffcache: apply schema: %w", err)
	}
	return &SQLiteCache{conn: conn}, nil
}

func (c *SQLiteCache) Get(key string) ([]byte, bool, error) {
	var val []byte
	err := c.conn.QueryRow("SELECT val FROM diff_cache WHERE key = ?", key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("diffcache: get entry: %w", err)
	}
	return val, true, nil
}

func (c *SQLiteCache) Put(key string, val []byte) error {
	_, err := c.conn.Exec(
		`INSERT INTO diff_cache (key, val, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET val=excluded.val, created_at=excluded.created_at`,
		key, val, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("diffcache: put entry: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Close() error {
	return c.conn.Close()
}
