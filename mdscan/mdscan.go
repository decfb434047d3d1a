// Package mdscan extracts API references from JS/TS code blocks in
// markdown documentation.
//
// Scanning is lexical. Example code is never executed, and malformed
// markdown never fails a scan: goldmark parses what it can and the walk
// visits whatever fenced blocks survive. Each reference carries the
// 1-based line of the markdown document, so callers can point at the
// exact example line that mentions a changed export.
package mdscan

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Document is one markdown file of a documentation corpus.
type Document struct {
	Path   string // slash-separated, relative to the corpus root
	Source []byte
}

// Reference is a single mention of an API name inside a fenced JS/TS
// code block.
type Reference struct {
	// Line is the 1-based line in the markdown document, not within
	// the code block.
	Line int
	// Name is the export the reference resolves to: an imported
	// binding, an instantiated class, or the receiver of a member
	// access.
	Name string
	// Member is set for name.member accesses.
	Member string
	// IsInstantiation marks `new Name(...)` references.
	IsInstantiation bool
}

// Scan is the result of scanning one document.
type Scan struct {
	Path       string
	CodeBlocks int
	References []Reference
}

// Mentions reports whether any reference in the scan resolves to the
// named export, either directly or as an accessed member.
func (s Scan) Mentions(name string) bool {
	for _, r := range s.References {
		if r.Name == name || r.Member == name {
			return true
		}
	}
	return false
}

// ScanDocument parses doc and extracts references from fenced code
// blocks whose info string names a JS/TS language. Bindings introduced
// by import and require statements and by constructor assignments are
// tracked across blocks of the same document, so an example split into
// consecutive blocks still resolves client.connect() back to the class
// imported earlier.
func ScanDocument(doc Document) Scan {
	out := Scan{Path: doc.Path}
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(doc.Source))
	if root == nil {
		return out
	}
	sc := newDocScope()
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		info := ""
		if fcb.Info != nil {
			info = string(fcb.Info.Value(doc.Source))
		}
		if !isScriptInfo(info) {
			return ast.WalkContinue, nil
		}
		code, startLine := fencedContent(doc.Source, fcb)
		out.CodeBlocks++
		out.References = append(out.References, sc.scanCode(code, startLine)...)
		return ast.WalkContinue, nil
	})
	return out
}

// ScanAll scans every document of a corpus in order.
func ScanAll(docs []Document) []Scan {
	scans := make([]Scan, 0, len(docs))
	for _, d := range docs {
		scans = append(scans, ScanDocument(d))
	}
	return scans
}

// scriptLangs are the fence info tags treated as JS/TS example code.
var scriptLangs = map[string]bool{
	"js":         true,
	"jsx":        true,
	"mjs":        true,
	"cjs":        true,
	"javascript": true,
	"ts":         true,
	"tsx":        true,
	"mts":        true,
	"cts":        true,
	"typescript": true,
}

// isScriptInfo reports whether a fence info string names a JS/TS
// language. Trailing attributes such as ```ts {2,4} or ```js title=x
// are ignored.
func isScriptInfo(info string) bool {
	info = strings.TrimSpace(info)
	if info == "" {
		return false
	}
	if i := strings.IndexAny(info, " \t{"); i >= 0 {
		info = info[:i]
	}
	return scriptLangs[strings.ToLower(info)]
}

// fencedContent assembles the code of a fenced block and returns the
// 1-based document line its first content line sits on.
func fencedContent(src []byte, fcb *ast.FencedCodeBlock) (code string, startLine int) {
	lines := fcb.Lines()
	if lines == nil || lines.Len() == 0 {
		return "", 0
	}
	start := -1
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if seg.Start < 0 || seg.Stop < seg.Start || seg.Stop > len(src) {
			continue
		}
		if start == -1 || seg.Start < start {
			start = seg.Start
		}
		buf.Write(src[seg.Start:seg.Stop])
	}
	if start < 0 {
		return buf.String(), 0
	}
	return buf.String(), 1 + bytes.Count(src[:start], []byte("\n"))
}
