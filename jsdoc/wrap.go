package jsdoc

import (
	"strings"

	"github.com/docdrift/docdrift/internal/uni"
)

// tokenizeInline splits text into wrap tokens. Inline `code` spans are kept as single tokens (whitespace inside backticks is preserved), so wrapping never
// breaks a code span across lines.
func tokenizeInline(text string) []string {
	// If there are no backticks, just return individual words.
	if !strings.Contains(text, "`") {
		return strings.Fields(text)
	}

	hasClosingBacktick := func(runes []rune, start int) bool {
		for i := start; i < len(runes); i++ {
			if runes[i] == '`' {
				return true
			}
		}
		return false
	}

	var tokens []string
	var current strings.Builder
	inCode := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if inCode {
			current.WriteRune(r)
			if r == '`' {
				inCode = false
			}
			continue
		}

		switch {
		case r == '`' && hasClosingBacktick(runes, i+1):
			current.WriteRune(r)
			inCode = true
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// wrapWords greedily packs tokens into lines of roughly the given display width. A line that is already nearly full (75% of width) is not extended with a
// word that would push it way past the limit (150% of width); an overlong single token gets a line of its own rather than being split.
func wrapWords(words []string, width int) []string {
	if len(words) == 0 {
		return nil
	}
	if width < 16 {
		width = 16
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		lineWidth := uni.TextWidth(line, nil)
		if lineWidth >= width {
			lines = append(lines, line)
			line = w
			continue
		}

		nearlyFull := lineWidth >= (width*3)/4
		wouldBeTooLong := lineWidth+1+uni.TextWidth(w, nil) > (width*3)/2
		if nearlyFull && wouldBeTooLong {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)

	return lines
}

// wrapText wraps already-normalized text, giving the first line firstWidth columns and continuation lines restWidth columns.
func wrapText(text string, firstWidth, restWidth int) []string {
	words := tokenizeInline(text)
	if len(words) == 0 {
		return nil
	}
	if firstWidth == restWidth {
		return wrapWords(words, restWidth)
	}

	// Fill the first line to its own budget, then wrap the remainder.
	first := words[0]
	i := 1
	for i < len(words) {
		if uni.TextWidth(first, nil)+1+uni.TextWidth(words[i], nil) > firstWidth {
			break
		}
		first += " " + words[i]
		i++
	}
	lines := []string{first}
	lines = append(lines, wrapWords(words[i:], restWidth)...)
	return lines
}
