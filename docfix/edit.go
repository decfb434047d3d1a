package docfix

import (
	"fmt"
	"strings"

	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/editapply"
	"github.com/docdrift/docdrift/jsdoc"
	"github.com/docdrift/docdrift/textdiff"
)

// BuildEdit assembles the file edit that installs patch as e's documentation comment. existingText is the current raw comment as read from the file and may
// be empty for an undocumented export; indent is the declaration's indentation, applied to every rendered line.
func BuildEdit(e *apispec.Export, patch *jsdoc.Patch, existingText, indent string) (editapply.JSDocEdit, error) {
	if e.Source == nil || e.Source.File == "" {
		return editapply.JSDocEdit{}, fmt.Errorf("docfix: export %q has no source location", e.ID)
	}

	edit := editapply.JSDocEdit{
		FilePath:       e.Source.File,
		SymbolName:     e.Name,
		Indent:         indent,
		NewCommentText: patch.Serialize(&jsdoc.SerializeOptions{Indent: indent}),
	}
	if e.Source.DocStartLine > 0 && e.Source.DocEndLine >= e.Source.DocStartLine {
		edit.HasExisting = true
		edit.StartLine = e.Source.DocStartLine
		edit.EndLine = e.Source.DocEndLine
		edit.ExistingCommentText = existingText
	} else {
		edit.StartLine = e.Source.Line
	}
	return edit, nil
}

// PreviewEdit renders the edit as a unified diff of the old and new comment text, for review surfaces (CI annotations, bot comments). Returns "" when the
// edit would change nothing.
func PreviewEdit(edit editapply.JSDocEdit) string {
	oldText := edit.ExistingCommentText
	if oldText != "" && !strings.HasSuffix(oldText, "\n") {
		oldText += "\n"
	}
	newText := edit.NewCommentText
	if newText != "" && !strings.HasSuffix(newText, "\n") {
		newText += "\n"
	}

	d := textdiff.DiffText(oldText, newText)
	if !d.Changed() {
		return ""
	}
	return textdiff.RenderUnified(d, &textdiff.UnifiedOptions{FromLabel: edit.FilePath, ToLabel: edit.FilePath})
}
