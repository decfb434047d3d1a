package editapply

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/docdrift/docdrift/textdiff"
)

type fileOutcome struct {
	applied  int
	modified bool
	errs     []error
}

// applyFile applies one file's edits bottom-up against an in-memory copy and writes the file back once, only if something changed. File-level problems
// (declaration file, unreadable) fail the whole file; a single unlocatable edit is skipped and recorded while the rest proceed.
func applyFile(path string, edits []JSDocEdit) fileOutcome {
	var out fileOutcome

	if isDeclarationPath(path) {
		out.errs = append(out.errs, fmt.Errorf("%s: %w", path, errDeclarationFile))
		return out
	}

	content, err := os.ReadFile(path)
	if err != nil {
		out.errs = append(out.errs, fmt.Errorf("read %s: %w", path, err))
		return out
	}
	mode := fileMode(path)

	lines := strings.Split(string(content), "\n")
	changed := false

	sorted := append([]JSDocEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartLine > sorted[j].StartLine })

	for _, edit := range sorted {
		newLines, spliced, err := applyEdit(lines, edit)
		if err != nil {
			out.errs = append(out.errs, err)
			continue
		}
		out.applied++
		if spliced {
			lines = newLines
			changed = true
		}
	}

	if changed {
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), mode); err != nil {
			out.errs = append(out.errs, fmt.Errorf("write %s: %w", path, err))
			out.modified = false
			return out
		}
		out.modified = true
	}
	return out
}

func fileMode(path string) fs.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

// applyEdit applies one edit to the file's lines. It returns the new lines and whether the file content changed; an already-applied edit returns
// (lines, false, nil). The error, when non-nil, wraps errLocationNotFound.
func applyEdit(lines []string, edit JSDocEdit) ([]string, bool, error) {
	if edit.HasExisting {
		return replaceComment(lines, edit)
	}
	return insertComment(lines, edit)
}

func replaceComment(lines []string, edit JSDocEdit) ([]string, bool, error) {
	newBlock := blockLines(edit.NewCommentText)

	start, end := edit.StartLine, edit.EndLine
	if rangeValid(lines, start, end) {
		window := lines[start-1 : end]
		if blocksEqual(window, newBlock) {
			return lines, false, nil // already applied
		}
		if matchesExisting(window, edit) {
			return splice(lines, start, end, newBlock), true, nil
		}
	}

	// The recorded range is stale. Look for the new text first (an earlier run may have applied it elsewhere), then for the old comment.
	content := strings.Join(lines, "\n")
	wantOffset := lineOffset(lines, start-1)

	if at := textdiff.Locate(content, edit.NewCommentText, wantOffset); at >= 0 {
		relStart := lineOfOffset(content, at) + 1
		relEnd := relStart + len(newBlock) - 1
		if rangeValid(lines, relStart, relEnd) && blocksEqual(lines[relStart-1:relEnd], newBlock) {
			return lines, false, nil
		}
	}

	if edit.ExistingCommentText != "" {
		if at := textdiff.Locate(content, edit.ExistingCommentText, wantOffset); at >= 0 {
			existing := blockLines(edit.ExistingCommentText)
			relStart := lineOfOffset(content, at) + 1
			relEnd := relStart + len(existing) - 1
			if rangeValid(lines, relStart, relEnd) && blocksEqual(lines[relStart-1:relEnd], existing) {
				return splice(lines, relStart, relEnd, newBlock), true, nil
			}
		}
	}

	return lines, false, locationNotFound(edit, "existing comment not found")
}

func insertComment(lines []string, edit JSDocEdit) ([]string, bool, error) {
	newBlock := blockLines(edit.NewCommentText)

	declLine := edit.StartLine
	if !lineMentionsSymbol(lines, declLine, edit.SymbolName) {
		declLine = nearestSymbolLine(lines, edit.StartLine, edit.SymbolName)
		if declLine == 0 {
			return lines, false, locationNotFound(edit, "declaration not found")
		}
	}

	// Already carrying the comment?
	above := declLine - len(newBlock)
	if above >= 1 && blocksEqual(lines[above-1:declLine-1], newBlock) {
		return lines, false, nil
	}

	out := make([]string, 0, len(lines)+len(newBlock))
	out = append(out, lines[:declLine-1]...)
	out = append(out, newBlock...)
	out = append(out, lines[declLine-1:]...)
	return out, true, nil
}

// matchesExisting checks the target window against the recorded comment text. Without recorded text the window must at least look like a comment block, so
// a stale line range cannot silently destroy code.
func matchesExisting(window []string, edit JSDocEdit) bool {
	if edit.ExistingCommentText != "" {
		return blocksEqual(window, blockLines(edit.ExistingCommentText))
	}
	return looksLikeComment(window)
}

func looksLikeComment(window []string) bool {
	if len(window) == 0 {
		return false
	}
	first := strings.TrimSpace(window[0])
	last := strings.TrimSpace(window[len(window)-1])
	if strings.HasPrefix(first, "//") {
		return true
	}
	return strings.HasPrefix(first, "/*") && strings.HasSuffix(last, "*/")
}

func rangeValid(lines []string, start, end int) bool {
	return start >= 1 && end >= start && end <= len(lines)
}

func splice(lines []string, start, end int, block []string) []string {
	out := make([]string, 0, len(lines)-(end-start+1)+len(block))
	out = append(out, lines[:start-1]...)
	out = append(out, block...)
	out = append(out, lines[end:]...)
	return out
}

// blockLines splits a comment block into lines, dropping a trailing newline.
func blockLines(text string) []string {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

// blocksEqual compares two line blocks ignoring leading/trailing whitespace per line, so indentation changes do not defeat verification.
func blocksEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}

func lineMentionsSymbol(lines []string, line int, symbol string) bool {
	if line < 1 || line > len(lines) || symbol == "" {
		return false
	}
	return containsWord(lines[line-1], symbol)
}

// nearestSymbolLine returns the 1-based line closest to want whose text mentions symbol as a word, or 0.
func nearestSymbolLine(lines []string, want int, symbol string) int {
	best := 0
	for i := range lines {
		if !containsWord(lines[i], symbol) {
			continue
		}
		line := i + 1
		if best == 0 || absInt(line-want) < absInt(best-want) {
			best = line
		}
	}
	return best
}

// containsWord reports whether s contains name bounded by non-identifier characters.
func containsWord(s, name string) bool {
	if name == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(s[from:], name)
		if i < 0 {
			return false
		}
		at := from + i
		beforeOK := at == 0 || !isIdentChar(s[at-1])
		afterOK := at+len(name) >= len(s) || !isIdentChar(s[at+len(name)])
		if beforeOK && afterOK {
			return true
		}
		from = at + 1
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// lineOffset returns the byte offset of the start of the 0-based line index within the joined content.
func lineOffset(lines []string, idx int) int {
	if idx < 0 {
		return 0
	}
	off := 0
	for i := 0; i < idx && i < len(lines); i++ {
		off += len(lines[i]) + 1
	}
	return off
}

// lineOfOffset returns the 0-based line index containing the byte offset.
func lineOfOffset(content string, off int) int {
	if off > len(content) {
		off = len(content)
	}
	return strings.Count(content[:off], "\n")
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
