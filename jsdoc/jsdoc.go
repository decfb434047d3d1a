// Package jsdoc parses JSDoc-style documentation comments into a structured, order-independent Patch and serializes a Patch back into comment text.
//
// The Patch is the unit the drift detector compares against declared signatures and the unit fix generation edits. Parsing is total: any input yields a best-effort
// Patch, never an error. Serialization is deterministic, and the pair is idempotent in the sense that serialize(parse(serialize(p))) == serialize(p) for any p —
// the first serialization canonicalizes tag order, spacing, and wrapping, after which the text is a fixed point.
//
// Unknown tags are preserved verbatim (name + text) so round-tripping a comment never discards information the model doesn't understand.
package jsdoc

import (
	"strings"
)

// Patch is the structured content of one documentation comment.
type Patch struct {
	Description string     // paragraphs separated by "\n\n"
	Params      []Param    // in documented order
	Returns     *Returns   // nil when the comment makes no return claim
	Deprecated  *string    // nil when there is no @deprecated tag; points at "" for a bare tag
	Examples    []string   // verbatim bodies of @example blocks
	Templates   []Template // @template declarations
	Visibility  string     // "", "public", "private", or "protected"
	ExtraTags   []Tag      // unrecognized tags, in order
}

// Param is one @param claim.
type Param struct {
	Name     string
	Type     string // "" when the tag has no {type} annotation
	Optional bool   // true for [name] and name? forms
	Default  string // default value from [name=default], "" otherwise
	Text     string
}

// Returns is the @returns claim.
type Returns struct {
	Type string
	Text string
}

// Template is one @template (generic parameter) claim.
type Template struct {
	Name       string
	Constraint string // "" when unconstrained
}

// Tag is an unrecognized tag preserved for round-tripping.
type Tag struct {
	Name string // without the leading '@'
	Text string
}

// IsEmpty reports whether p carries no content at all.
func (p *Patch) IsEmpty() bool {
	return p.Description == "" && len(p.Params) == 0 && p.Returns == nil && p.Deprecated == nil &&
		len(p.Examples) == 0 && len(p.Templates) == 0 && p.Visibility == "" && len(p.ExtraTags) == 0
}

// ParamByName returns a pointer to the documented parameter with the given name, or nil.
func (p *Patch) ParamByName(name string) *Param {
	for i := range p.Params {
		if p.Params[i].Name == name {
			return &p.Params[i]
		}
	}
	return nil
}

// Clone returns a deep copy of p.
func (p *Patch) Clone() *Patch {
	if p == nil {
		return nil
	}
	out := *p
	if p.Params != nil {
		out.Params = append([]Param(nil), p.Params...)
	}
	if p.Returns != nil {
		ret := *p.Returns
		out.Returns = &ret
	}
	if p.Deprecated != nil {
		dep := *p.Deprecated
		out.Deprecated = &dep
	}
	if p.Examples != nil {
		out.Examples = append([]string(nil), p.Examples...)
	}
	if p.Templates != nil {
		out.Templates = append([]Template(nil), p.Templates...)
	}
	if p.ExtraTags != nil {
		out.ExtraTags = append([]Tag(nil), p.ExtraTags...)
	}
	return &out
}

// Parse builds a Patch from raw documentation-comment text. It accepts a full block ("/** ... */"), a block body with leading asterisks, or bare text, and never
// fails: malformed input yields whatever structure could be recovered.
func Parse(text string) *Patch {
	lines := stripCommentMarkers(text)
	p := &Patch{}

	// Split into the leading description and tag sections:
	type section struct {
		tag   string   // "" for the description
		first string   // remainder of the tag line
		rest  []string // continuation lines, verbatim
	}
	var sections []section
	cur := &section{}
	for _, line := range lines {
		if name, remainder, ok := tagLine(line); ok {
			sections = append(sections, *cur)
			cur = &section{tag: name, first: remainder}
			continue
		}
		cur.rest = append(cur.rest, line)
	}
	sections = append(sections, *cur)

	for i, sec := range sections {
		switch sec.tag {
		case "":
			if i == 0 {
				p.Description = joinParagraphs(sec.rest)
			}
		case "param", "arg", "argument":
			p.Params = append(p.Params, parseParamTag(joinTagText(sec.first, sec.rest)))
		case "returns", "return":
			typ, text := splitTypeAnnotation(joinTagText(sec.first, sec.rest))
			p.Returns = &Returns{Type: typ, Text: normalizeText(text)}
		case "deprecated":
			text := normalizeText(joinTagText(sec.first, sec.rest))
			p.Deprecated = &text
		case "example":
			p.Examples = append(p.Examples, exampleBody(sec.first, sec.rest))
		case "template", "typeparam", "typeParam":
			p.Templates = append(p.Templates, parseTemplateTag(joinTagText(sec.first, sec.rest))...)
		case "public", "private", "protected":
			p.Visibility = sec.tag
		case "access":
			p.Visibility = strings.TrimSpace(joinTagText(sec.first, sec.rest))
		default:
			p.ExtraTags = append(p.ExtraTags, Tag{Name: sec.tag, Text: normalizeText(joinTagText(sec.first, sec.rest))})
		}
	}
	return p
}

// stripCommentMarkers turns raw comment text into content lines: the "/**" opener, "*/" closer, and per-line " * " prefixes are removed; everything after the
// prefix is kept verbatim (example bodies may carry meaningful indentation).
func stripCommentMarkers(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/**") {
		text = text[len("/**"):]
	} else if strings.HasPrefix(text, "/*") {
		text = text[len("/*"):]
	}
	if strings.HasSuffix(text, "*/") {
		text = text[:len(text)-len("*/")]
	}

	rawLines := strings.Split(text, "\n")
	lines := make([]string, 0, len(rawLines))
	for i, line := range rawLines {
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, "* "):
			line = trimmed[2:]
		case trimmed == "*":
			line = ""
		case strings.HasPrefix(trimmed, "*"):
			line = trimmed[1:]
		case i == 0:
			// Text on the opener line ("/** Foo").
			line = strings.TrimSpace(line)
		default:
			line = strings.TrimRight(trimmed, " \t")
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}

	// Drop leading/trailing blank lines:
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return lines[start:end]
}

// tagLine reports whether line starts a new tag, returning the tag name (without '@') and the remainder of the line. Only a column-0 '@' starts a tag:
// serialized continuation lines are indented two spaces and example body lines one space, so neither can be misread as a new tag.
func tagLine(line string) (name, remainder string, ok bool) {
	if !strings.HasPrefix(line, "@") || len(line) < 2 {
		return "", "", false
	}
	body := line[1:]
	if !isTagNameStart(body[0]) {
		return "", "", false
	}
	end := len(body)
	for i := 0; i < len(body); i++ {
		if !isTagNameChar(body[i]) {
			end = i
			break
		}
	}
	return body[:end], strings.TrimSpace(body[end:]), true
}

func isTagNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isTagNameChar(c byte) bool {
	return isTagNameStart(c) || c >= '0' && c <= '9'
}

// joinTagText merges a tag's first-line remainder with its continuation lines.
func joinTagText(first string, rest []string) string {
	parts := make([]string, 0, len(rest)+1)
	if strings.TrimSpace(first) != "" {
		parts = append(parts, strings.TrimSpace(first))
	}
	for _, line := range rest {
		if strings.TrimSpace(line) != "" {
			parts = append(parts, strings.TrimSpace(line))
		}
	}
	return strings.Join(parts, " ")
}

// joinParagraphs joins description lines into "\n\n"-separated paragraphs with normalized inner whitespace.
func joinParagraphs(lines []string) string {
	var paragraphs []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paragraphs = append(paragraphs, normalizeText(strings.Join(cur, " ")))
			cur = nil
		}
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, strings.TrimSpace(line))
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}

// exampleBody assembles an @example body, preserving line structure and indentation. Serialized bodies indent every non-blank line by one space; that
// uniform indent is removed here, so serialize/parse round-trips the body byte for byte.
func exampleBody(first string, rest []string) string {
	var lines []string
	if strings.TrimSpace(first) != "" {
		lines = append(lines, first)
	}
	lines = append(lines, rest...)

	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	lines = lines[start:end]

	uniform := len(lines) > 0
	for _, line := range lines {
		if line != "" && !strings.HasPrefix(line, " ") {
			uniform = false
			break
		}
	}
	if uniform {
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(line, " ")
		}
	}
	return strings.Join(lines, "\n")
}

// parseParamTag parses the text of one @param tag: an optional {type}, a name ("name", "[name]", "[name=default]", "name?"), then optional "- text".
func parseParamTag(s string) Param {
	var p Param
	p.Type, s = splitTypeAnnotation(s)

	s = strings.TrimSpace(s)
	nameTok := s
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		nameTok, s = s[:i], s[i:]
	} else {
		s = ""
	}

	switch {
	case strings.HasPrefix(nameTok, "[") && strings.HasSuffix(nameTok, "]"):
		p.Optional = true
		inner := nameTok[1 : len(nameTok)-1]
		if eq := strings.Index(inner, "="); eq >= 0 {
			p.Name, p.Default = inner[:eq], inner[eq+1:]
		} else {
			p.Name = inner
		}
	case strings.HasSuffix(nameTok, "?"):
		p.Optional = true
		p.Name = strings.TrimSuffix(nameTok, "?")
	default:
		p.Name = nameTok
	}

	p.Text = normalizeText(trimDescDash(s))
	return p
}

// parseTemplateTag parses "@template {C} T", "@template T extends C", and comma lists ("@template T, U").
func parseTemplateTag(s string) []Template {
	constraint, rest := splitTypeAnnotation(s)
	rest = strings.TrimSpace(rest)

	if constraint == "" {
		if i := strings.Index(rest, " extends "); i >= 0 {
			names, c := rest[:i], strings.TrimSpace(rest[i+len(" extends "):])
			// A trailing "- description" is display text, not part of the constraint.
			if j := strings.Index(c, " - "); j >= 0 {
				c = strings.TrimSpace(c[:j])
			}
			return templatesFor(names, c)
		}
		// Trailing description after the names, if any, is dropped.
		if i := strings.Index(rest, " - "); i >= 0 {
			rest = rest[:i]
		}
		return templatesFor(rest, "")
	}
	if i := strings.Index(rest, " - "); i >= 0 {
		rest = rest[:i]
	}
	return templatesFor(rest, constraint)
}

func templatesFor(names, constraint string) []Template {
	var out []Template
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, Template{Name: name, Constraint: constraint})
	}
	return out
}

// splitTypeAnnotation extracts a leading balanced "{type}" annotation, returning the inner type and the remaining text.
func splitTypeAnnotation(s string) (typ, rest string) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return "", s
	}
	depth := 0
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(trimmed[1:i]), trimmed[i+1:]
			}
		}
	}
	// Unbalanced braces: treat the whole thing as text.
	return "", s
}

// trimDescDash removes the conventional " - " separator before a tag's description text.
func trimDescDash(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "- ") {
		return strings.TrimSpace(s[2:])
	}
	if s == "-" {
		return ""
	}
	return s
}

// normalizeText collapses runs of whitespace to single spaces while keeping inline `code` spans intact.
func normalizeText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return strings.Join(tokenizeInline(s), " ")
}
