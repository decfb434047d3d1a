package textdiff

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxAnchorBytes is the longest needle the bitap matcher accepts (diffmatchpatch's MatchMaxBits window).
const maxAnchorBytes = 32

// locateThreshold is deliberately stricter than the library default of 0.5: relocating a doc comment onto the wrong declaration is much worse than
// reporting the comment as not found.
const locateThreshold = 0.25

// Locate finds where pattern most plausibly occurs in content, preferring the occurrence nearest expectedOffset (a byte offset). Exact occurrences always
// win; failing that, a fuzzy bitap match runs on the pattern's most distinctive line, so small edits to the surrounding text still resolve. Returns -1 when
// nothing plausible is found.
func Locate(content, pattern string, expectedOffset int) int {
	if content == "" || pattern == "" {
		return -1
	}
	if best := nearestExact(content, pattern, expectedOffset); best >= 0 {
		return best
	}

	anchor, anchorOff := anchorOf(pattern)
	if anchor == "" {
		return -1
	}

	dmp := diffmatchpatch.New()
	dmp.MatchThreshold = locateThreshold

	want := expectedOffset + anchorOff
	if want < 0 {
		want = 0
	}
	if want > len(content) {
		want = len(content)
	}

	loc := dmp.MatchMain(content, anchor, want)
	if loc < 0 {
		return -1
	}
	start := loc - anchorOff
	if start < 0 {
		start = 0
	}
	return start
}

// nearestExact returns the exact occurrence of pattern closest to want, or -1.
func nearestExact(content, pattern string, want int) int {
	best := -1
	from := 0
	for {
		i := strings.Index(content[from:], pattern)
		if i < 0 {
			break
		}
		at := from + i
		if best < 0 || absInt(at-want) < absInt(best-want) {
			best = at
		}
		from = at + 1
		if from >= len(content) {
			break
		}
	}
	return best
}

// anchorOf picks the pattern's longest line, capped to the bitap limit at a rune boundary, and returns it with its byte offset within the pattern.
func anchorOf(pattern string) (string, int) {
	bestStart, bestLen := -1, 0
	off := 0
	for _, line := range strings.SplitAfter(pattern, "\n") {
		trimmed := strings.TrimRight(line, "\n")
		if len(trimmed) > bestLen {
			bestStart, bestLen = off, len(trimmed)
		}
		off += len(line)
	}
	if bestStart < 0 {
		return "", 0
	}
	if bestLen > maxAnchorBytes {
		bestLen = maxAnchorBytes
		for bestLen > 0 && !utf8.RuneStart(pattern[bestStart+bestLen]) {
			bestLen--
		}
	}
	return pattern[bestStart : bestStart+bestLen], bestStart
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
