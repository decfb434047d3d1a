// Package textdiff computes line-level diffs of documentation text and renders them in unified form. It also hosts the fuzzy matcher the patch applier uses
// to relocate a comment block whose recorded line numbers have gone stale.
//
// The diff is line-based on purpose: doc comments and markdown are edited by line, and per-character hunks make previews unreadable.
package textdiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op classifies how a hunk transforms old text into new text.
type Op int

const (
	OpEqual Op = iota
	OpInsert
	OpDelete
	OpReplace
)

// Diff is a line diff from old text to new text.
//
// Invariants:
//   - concat(Hunks.OldText) == OldText
//   - concat(Hunks.NewText) == NewText
type Diff struct {
	OldText string
	NewText string
	Hunks   []Hunk
}

// Hunk is a contiguous run of lines with the same treatment. Line terminators are part of the hunk text.
//
// Operations:
//   - OpEqual: OldText == NewText
//   - OpInsert: OldText == "" and NewText != ""
//   - OpDelete: OldText != "" and NewText == ""
//   - OpReplace: both non-empty
type Hunk struct {
	Op      Op
	OldText string
	NewText string
}

// Changed reports whether the diff contains any non-equal hunk.
func (d Diff) Changed() bool {
	for _, h := range d.Hunks {
		if h.Op != OpEqual {
			return true
		}
	}
	return false
}

// DiffText diffs oldText to newText line by line. Runs of changed lines collapse into one hunk per run, separated by equal hunks, so the result reads the
// way a reviewer groups changes.
func DiffText(oldText, newText string) Diff {
	dmp := diffmatchpatch.New()

	rOld, rNew, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	lineDiffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(rOld, rNew, false))

	// Decode the rune-string back to original lines via the lineArray mapping.
	decode := func(s string) []string {
		if s == "" {
			return nil
		}
		out := make([]string, 0, len(s))
		for _, r := range s {
			idx := int(r)
			if idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var hunks []Hunk
	var dels, ins []string

	flush := func() {
		if len(dels) == 0 && len(ins) == 0 {
			return
		}
		h := Hunk{OldText: strings.Join(dels, ""), NewText: strings.Join(ins, "")}
		switch {
		case len(dels) > 0 && len(ins) > 0:
			h.Op = OpReplace
		case len(dels) > 0:
			h.Op = OpDelete
		default:
			h.Op = OpInsert
		}
		hunks = append(hunks, h)
		dels, ins = nil, nil
	}

	for _, d := range lineDiffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			lines := decode(d.Text)
			if len(lines) == 0 {
				continue
			}
			text := strings.Join(lines, "")
			hunks = append(hunks, Hunk{Op: OpEqual, OldText: text, NewText: text})
		case diffmatchpatch.DiffDelete:
			dels = append(dels, decode(d.Text)...)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, decode(d.Text)...)
		}
	}
	flush()

	d := Diff{OldText: oldText, NewText: newText, Hunks: hunks}
	if err := d.validate(); err != nil {
		panic(fmt.Errorf("textdiff: DiffText produced an inconsistent diff: %v", err))
	}
	return d
}

// validate checks the Diff invariants and returns an error on the first violation.
func (d Diff) validate() error {
	var oldAll, newAll strings.Builder
	for i, h := range d.Hunks {
		switch h.Op {
		case OpEqual:
			if h.OldText != h.NewText {
				return fmt.Errorf("hunk[%d]: OpEqual requires OldText==NewText", i)
			}
		case OpInsert:
			if h.OldText != "" || h.NewText == "" {
				return fmt.Errorf("hunk[%d]: OpInsert requires OldText==\"\" and NewText!=\"\"", i)
			}
		case OpDelete:
			if h.OldText == "" || h.NewText != "" {
				return fmt.Errorf("hunk[%d]: OpDelete requires OldText!=\"\" and NewText==\"\"", i)
			}
		case OpReplace:
			if h.OldText == "" || h.NewText == "" {
				return fmt.Errorf("hunk[%d]: OpReplace requires both texts", i)
			}
		}
		oldAll.WriteString(h.OldText)
		newAll.WriteString(h.NewText)
	}
	if oldAll.String() != d.OldText {
		return fmt.Errorf("hunks do not reconstruct OldText")
	}
	if newAll.String() != d.NewText {
		return fmt.Errorf("hunks do not reconstruct NewText")
	}
	return nil
}

// splitPreserveEOL splits text into lines, keeping the newline on each line except possibly the last.
func splitPreserveEOL(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for {
		idx := strings.Index(text, "\n")
		if idx == -1 {
			if text != "" {
				lines = append(lines, text)
			}
			break
		}
		lines = append(lines, text[:idx+1])
		text = text[idx+1:]
		if text == "" {
			break
		}
	}
	return lines
}
