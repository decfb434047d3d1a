package mdscan

import (
	"regexp"
	"strings"
)

// docScope tracks the names bound by import and require statements and
// by constructor assignments while scanning a document, so member
// accesses later in an example resolve to the export they act on.
type docScope struct {
	bindings   map[string]string // local binding -> exported name
	namespaces map[string]bool   // local binding -> whole-module import
	instances  map[string]string // local variable -> instantiated class
}

func newDocScope() *docScope {
	return &docScope{
		bindings:   map[string]string{},
		namespaces: map[string]bool{},
		instances:  map[string]string{},
	}
}

var (
	importRE    = regexp.MustCompile(`\bimport\s+(.+?)\s+from\s*['"]`)
	requireRE   = regexp.MustCompile(`\b(?:const|let|var)\s+(.+?)\s*=\s*require\s*\(\s*['"]`)
	assignNewRE = regexp.MustCompile(`\b(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*(?::[^=]*)?=\s*new\s+([A-Za-z_$][A-Za-z0-9_$.]*)`)
	newRE       = regexp.MustCompile(`\bnew\s+([A-Za-z_$][A-Za-z0-9_$]*)(?:\s*\.\s*([A-Za-z_$][A-Za-z0-9_$]*))?\s*[(<]`)
	memberRE    = regexp.MustCompile(`\b([A-Za-z_$][A-Za-z0-9_$]*)\s*\.\s*([A-Za-z_$][A-Za-z0-9_$]*)`)
)

// scanCode extracts references from one code block. startLine is the
// 1-based document line of the block's first code line.
func (sc *docScope) scanCode(code string, startLine int) []Reference {
	var refs []Reference
	for i, raw := range strings.Split(code, "\n") {
		line := stripStrings(raw)
		if j := strings.Index(line, "//"); j >= 0 {
			line = line[:j]
		}
		docLine := startLine + i
		if m := importRE.FindStringSubmatch(line); m != nil {
			refs = append(refs, sc.bindImportClause(m[1], docLine)...)
			continue
		}
		if m := requireRE.FindStringSubmatch(line); m != nil {
			refs = append(refs, sc.bindRequireClause(m[1], docLine)...)
			continue
		}
		for _, m := range assignNewRE.FindAllStringSubmatch(line, -1) {
			sc.instances[m[1]] = sc.resolveClass(m[2])
		}
		for _, m := range newRE.FindAllStringSubmatch(line, -1) {
			name := m[1]
			if m[2] != "" {
				name = m[2]
			}
			refs = append(refs, Reference{Line: docLine, Name: sc.resolve(name), IsInstantiation: true})
		}
		// Blank out constructor expressions so `new ns.Client(` does
		// not also surface as a member access.
		blanked := line
		for _, loc := range newRE.FindAllStringIndex(line, -1) {
			blanked = blanked[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + blanked[loc[1]:]
		}
		for _, m := range memberRE.FindAllStringSubmatch(blanked, -1) {
			refs = append(refs, sc.memberRef(m[1], m[2], docLine))
		}
	}
	return refs
}

// bindImportClause parses the clause between `import` and `from`,
// records the bindings it introduces, and returns one reference per
// named export.
func (sc *docScope) bindImportClause(clause string, line int) []Reference {
	clause = strings.TrimSpace(clause)
	clause = strings.TrimPrefix(clause, "type ")
	var refs []Reference
	if open := strings.IndexByte(clause, '{'); open >= 0 {
		inner := clause[open+1:]
		if end := strings.IndexByte(inner, '}'); end >= 0 {
			inner = inner[:end]
		}
		refs = append(refs, sc.bindNamed(inner, "as", line)...)
		clause = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(clause[:open]), ","))
	}
	switch {
	case clause == "":
	case strings.HasPrefix(clause, "*"):
		// import * as ns from 'pkg' binds the whole module; later
		// ns.Export accesses reach top-level exports directly.
		rest := strings.TrimSpace(strings.TrimPrefix(clause, "*"))
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "as"))
		if isIdent(rest) {
			sc.namespaces[rest] = true
		}
	case isIdent(clause):
		// Default import. The local name is the best handle we have
		// on the export.
		sc.bindings[clause] = clause
		refs = append(refs, Reference{Line: line, Name: clause})
	}
	return refs
}

// bindRequireClause records bindings from a
// `const x = require('pkg')` declaration. A destructured clause
// references its named exports; a plain binding acts as a namespace
// for later member accesses.
func (sc *docScope) bindRequireClause(clause string, line int) []Reference {
	clause = strings.TrimSpace(clause)
	if open := strings.IndexByte(clause, '{'); open >= 0 {
		inner := clause[open+1:]
		if end := strings.IndexByte(inner, '}'); end >= 0 {
			inner = inner[:end]
		}
		return sc.bindNamed(inner, ":", line)
	}
	if isIdent(clause) {
		sc.namespaces[clause] = true
	}
	return nil
}

// bindNamed parses a brace list of named bindings. sep is the alias
// separator: "as" inside import clauses, ":" inside require
// destructuring.
func (sc *docScope) bindNamed(list, sep string, line int) []Reference {
	var refs []Reference
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "type ")
		if part == "" {
			continue
		}
		exported, local := part, part
		if sep == "as" {
			if f := strings.Fields(part); len(f) == 3 && f[1] == "as" {
				exported, local = f[0], f[2]
			}
		} else if i := strings.IndexByte(part, ':'); i >= 0 {
			exported, local = strings.TrimSpace(part[:i]), strings.TrimSpace(part[i+1:])
		}
		if !isIdent(exported) || !isIdent(local) {
			continue
		}
		sc.bindings[local] = exported
		refs = append(refs, Reference{Line: line, Name: exported})
	}
	return refs
}

// memberRef resolves a receiver.member access to the export it refers
// to. Accesses on unknown receivers are kept as-is: a static call like
// Widget.create() names Widget even without an import in scope.
func (sc *docScope) memberRef(recv, member string, line int) Reference {
	switch {
	case sc.namespaces[recv]:
		return Reference{Line: line, Name: member}
	case sc.bindings[recv] != "":
		return Reference{Line: line, Name: sc.bindings[recv], Member: member}
	case sc.instances[recv] != "":
		return Reference{Line: line, Name: sc.instances[recv], Member: member}
	default:
		return Reference{Line: line, Name: recv, Member: member}
	}
}

// resolve maps a local binding back to the exported name it aliases.
func (sc *docScope) resolve(name string) string {
	if exported, ok := sc.bindings[name]; ok {
		return exported
	}
	return name
}

// resolveClass resolves the class path of a constructor expression,
// keeping only the final segment of a namespaced path.
func (sc *docScope) resolveClass(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	return sc.resolve(path)
}

// stripStrings blanks out string and template literal contents so the
// reference patterns cannot match inside quoted text. Quote characters
// and line length are preserved.
func stripStrings(line string) string {
	b := []byte(line)
	var quote byte
	escaped := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if quote == 0 {
			if c == '\'' || c == '"' || c == '`' {
				quote = c
			}
			continue
		}
		switch {
		case escaped:
			escaped = false
			b[i] = ' '
		case c == '\\':
			escaped = true
			b[i] = ' '
		case c == quote:
			quote = 0
		default:
			b[i] = ' '
		}
	}
	return string(b)
}

// isIdent reports whether s is a plausible JS identifier.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c == '$':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
