package textdiff

import (
	"fmt"
	"strings"
)

// UnifiedOptions configures RenderUnified. The zero value renders three lines of context and no file header.
type UnifiedOptions struct {
	Context   int    // unchanged lines shown around each change group; 3 when zero
	FromLabel string // "--- label" header line; omitted when both labels are empty
	ToLabel   string // "+++ label" header line
}

// row is one output line of a unified rendering, tagged with the line numbers it would occupy on each side. Rows that exist on only one side still record
// the position the other side had reached, which is what the @@ header needs when a side contributes zero lines.
type row struct {
	kind   byte // ' ', '-', '+'
	text   string
	oldPos int
	newPos int
}

// RenderUnified renders the diff in unified format: @@ headers, "-"/"+" change lines, and surrounding context. Returns "" for a diff with no changes.
func RenderUnified(d Diff, opts *UnifiedOptions) string {
	context := 3
	fromLabel, toLabel := "", ""
	if opts != nil {
		if opts.Context > 0 {
			context = opts.Context
		}
		fromLabel, toLabel = opts.FromLabel, opts.ToLabel
	}

	rows := flattenRows(d)
	groups := groupChanges(rows, context)
	if len(groups) == 0 {
		return ""
	}

	var b strings.Builder
	if fromLabel != "" || toLabel != "" {
		fmt.Fprintf(&b, "--- %s\n+++ %s\n", fromLabel, toLabel)
	}
	for _, g := range groups {
		oldStart, oldCount, newStart, newCount := headerCounts(rows[g[0]:g[1]])
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
		for _, r := range rows[g[0]:g[1]] {
			b.WriteByte(r.kind)
			b.WriteString(strings.TrimSuffix(r.text, "\n"))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func flattenRows(d Diff) []row {
	var rows []row
	oldPos, newPos := 1, 1
	for _, h := range d.Hunks {
		if h.Op == OpEqual {
			for _, line := range splitPreserveEOL(h.OldText) {
				rows = append(rows, row{kind: ' ', text: line, oldPos: oldPos, newPos: newPos})
				oldPos++
				newPos++
			}
			continue
		}
		for _, line := range splitPreserveEOL(h.OldText) {
			rows = append(rows, row{kind: '-', text: line, oldPos: oldPos, newPos: newPos})
			oldPos++
		}
		for _, line := range splitPreserveEOL(h.NewText) {
			rows = append(rows, row{kind: '+', text: line, oldPos: oldPos, newPos: newPos})
			newPos++
		}
	}
	return rows
}

// groupChanges returns [start, end) row ranges, one per change group: each group covers a run of changed rows plus context, and runs whose gap fits inside
// 2*context merge into one group.
func groupChanges(rows []row, context int) [][2]int {
	var groups [][2]int
	first, last := -1, -1
	for i := range rows {
		if rows[i].kind == ' ' {
			continue
		}
		if last >= 0 && i-last-1 <= 2*context {
			last = i
			continue
		}
		if last >= 0 {
			groups = append(groups, clampGroup(first, last, context, len(rows)))
		}
		first, last = i, i
	}
	if last >= 0 {
		groups = append(groups, clampGroup(first, last, context, len(rows)))
	}
	return groups
}

func clampGroup(first, last, context, n int) [2]int {
	start := first - context
	if start < 0 {
		start = 0
	}
	end := last + context + 1
	if end > n {
		end = n
	}
	return [2]int{start, end}
}

func headerCounts(group []row) (oldStart, oldCount, newStart, newCount int) {
	for _, r := range group {
		if r.kind != '+' {
			if oldCount == 0 {
				oldStart = r.oldPos
			}
			oldCount++
		}
		if r.kind != '-' {
			if newCount == 0 {
				newStart = r.newPos
			}
			newCount++
		}
	}
	// A side with no lines is positioned after the line the change follows.
	if oldCount == 0 {
		oldStart = group[0].oldPos - 1
	}
	if newCount == 0 {
		newStart = group[0].newPos - 1
	}
	return oldStart, oldCount, newStart, newCount
}
