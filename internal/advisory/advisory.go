// Package advisory provides a minimal opt-in logger for non-fatal conditions: malformed spec data the analysis degraded around, skipped edits, cache
// fallbacks. Analysis results never depend on it.
package advisory

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

var mu sync.Mutex

// Logf is a minimal printf-style logger. It appends formatted output to the file
// specified by the DOCDRIFT_LOG environment variable.
//
// If DOCDRIFT_LOG is unset/empty or the path can't be opened as a file, Logf is
// a no-op.
func Logf(format string, args ...any) {
	path := os.Getenv("DOCDRIFT_LOG")
	if path == "" {
		return
	}

	// Serialize open/write/close to reduce interleaving within a single process.
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Len() == 0 || b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}
