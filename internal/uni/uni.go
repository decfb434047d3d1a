// Package uni measures and truncates text by terminal display width, using grapheme clusters rather than runes so combining sequences and emoji are never
// split.
package uni

import (
	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// Options control width calculation. Currently only relevant for East Asian code points and their locale.
type Options struct {
	EastAsianWidth   bool // if true, treats certain East Asian code points as 2 wide (e.g., Chinese, Japanese, Korean). Use if the locale is one of CJK.
	TreatEmojiAsWide bool // Only considered if EastAsianWidth. If true, treats emoji as wide (2 columns).
}

// TextWidth returns the text width of str for monospace fonts in terminals. If opts is nil, locale is assumed to be non-East Asian.
func TextWidth[T string | []byte](str T, opts *Options) int {
	cond := conditionFromOptions(opts)
	return textWidth(str, cond)
}

// Truncate returns s cut down to at most maxWidth columns, appending ellipsis if anything was removed. The cut always falls on a grapheme cluster boundary.
// If opts is nil, locale is assumed to be non-East Asian.
func Truncate(s string, maxWidth int, ellipsis string, opts *Options) string {
	cond := conditionFromOptions(opts)
	if textWidth(s, cond) <= maxWidth {
		return s
	}

	budget := maxWidth - textWidth(ellipsis, cond)
	if budget < 0 {
		budget = 0
	}

	width := 0
	end := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		w := textWidth(iter.Value(), cond)
		if width+w > budget {
			break
		}
		width += w
		end = iter.End()
	}
	return s[:end] + ellipsis
}

func conditionFromOptions(opts *Options) *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true

	if opts == nil {
		return cond
	}

	cond.EastAsianWidth = opts.EastAsianWidth
	if opts.EastAsianWidth && opts.TreatEmojiAsWide {
		cond.StrictEmojiNeutral = false
	}

	return cond
}

func textWidth[T string | []byte](text T, cond *runewidth.Condition) int {
	switch v := any(text).(type) {
	case string:
		return cond.StringWidth(v)
	case []byte:
		return cond.StringWidth(string(v))
	default:
		panic("unsupported type")
	}
}
