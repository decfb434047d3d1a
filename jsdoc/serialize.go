package jsdoc

import (
	"strings"

	"github.com/docdrift/docdrift/internal/uni"
)

// SerializeOptions control comment rendering.
type SerializeOptions struct {
	Indent string // prepended to every line; preserves the declaration's indentation style
	Width  int    // target display width of the whole line, 0 means 100
}

const defaultWidth = 100

// Serialize renders p as a JSDoc block. Output is deterministic: canonical tag order (description, @template, @param, @returns, @deprecated, visibility,
// other tags, @example blocks), normalized spacing, and stable width-aware wrapping. The result carries no trailing newline.
func (p *Patch) Serialize(opts *SerializeOptions) string {
	indent := ""
	width := defaultWidth
	if opts != nil {
		indent = opts.Indent
		if opts.Width > 0 {
			width = opts.Width
		}
	}
	contentWidth := width - uni.TextWidth(indent, nil) - len(" * ")
	if contentWidth < 16 {
		contentWidth = 16
	}

	var content []string // comment body lines, without the " * " prefix
	blankBefore := func() {
		if len(content) > 0 && content[len(content)-1] != "" {
			content = append(content, "")
		}
	}

	if p.Description != "" {
		for pi, para := range strings.Split(p.Description, "\n\n") {
			if pi > 0 {
				content = append(content, "")
			}
			content = append(content, wrapText(para, contentWidth, contentWidth)...)
		}
	}

	var tagLines []string
	appendTag := func(head, text string) {
		full := head
		if text != "" {
			full += " " + text
		}
		lines := wrapText(full, contentWidth, contentWidth-2)
		for i, line := range lines {
			if i > 0 {
				line = "  " + line
			}
			tagLines = append(tagLines, line)
		}
	}

	for _, t := range p.Templates {
		head := "@template " + t.Name
		if t.Constraint != "" {
			head += " extends " + t.Constraint
		}
		appendTag(head, "")
	}
	for _, param := range p.Params {
		head := "@param"
		if param.Type != "" {
			head += " {" + param.Type + "}"
		}
		head += " " + param.nameToken()
		if param.Text != "" {
			head += " -"
		}
		appendTag(head, param.Text)
	}
	if p.Returns != nil {
		head := "@returns"
		if p.Returns.Type != "" {
			head += " {" + p.Returns.Type + "}"
		}
		appendTag(head, p.Returns.Text)
	}
	if p.Deprecated != nil {
		appendTag("@deprecated", *p.Deprecated)
	}
	if p.Visibility != "" {
		appendTag("@"+p.Visibility, "")
	}
	for _, tag := range p.ExtraTags {
		appendTag("@"+tag.Name, tag.Text)
	}

	if len(tagLines) > 0 {
		blankBefore()
		content = append(content, tagLines...)
	}

	for _, example := range p.Examples {
		blankBefore()
		content = append(content, "@example")
		// Body lines carry a one-space indent so a column-0 "@" in example
		// code (decorators, nested doc blocks) never re-parses as a tag.
		for _, line := range strings.Split(example, "\n") {
			if line != "" {
				line = " " + line
			}
			content = append(content, line)
		}
	}

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString("/**")
	for _, line := range content {
		b.WriteString("\n")
		b.WriteString(indent)
		if line == "" {
			b.WriteString(" *")
		} else {
			b.WriteString(" * ")
			b.WriteString(line)
		}
	}
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString(" */")
	return b.String()
}

// nameToken renders the parameter's name including optionality brackets and default.
func (p Param) nameToken() string {
	if !p.Optional {
		return p.Name
	}
	if p.Default != "" {
		return "[" + p.Name + "=" + p.Default + "]"
	}
	return "[" + p.Name + "]"
}
