package apispec

import (
	"fmt"
	"strings"
)

// ExportKind classifies an Export.
type ExportKind string

const (
	KindFunction  ExportKind = "function"
	KindClass     ExportKind = "class"
	KindVariable  ExportKind = "variable"
	KindInterface ExportKind = "interface"
	KindType      ExportKind = "type"
	KindEnum      ExportKind = "enum"
	KindModule    ExportKind = "module"
	KindNamespace ExportKind = "namespace"
)

// Valid reports whether k is one of the known export kinds.
func (k ExportKind) Valid() bool {
	switch k {
	case KindFunction, KindClass, KindVariable, KindInterface, KindType, KindEnum, KindModule, KindNamespace:
		return true
	}
	return false
}

// MemberKind classifies a class or enum Member.
type MemberKind string

const (
	MemberMethod      MemberKind = "method"
	MemberProperty    MemberKind = "property"
	MemberConstructor MemberKind = "constructor"
	MemberAccessor    MemberKind = "accessor"
)

// SignalName identifies one of the documentation signals the coverage score is computed from.
type SignalName string

const (
	SignalDescription SignalName = "description"
	SignalParams      SignalName = "params"
	SignalReturns     SignalName = "returns"
	SignalExamples    SignalName = "examples"
)

// Spec is the root snapshot of a package's public API.
type Spec struct {
	Meta    Meta          `json:"meta"`
	Exports []Export      `json:"exports"`
	Types   []TypeDecl    `json:"types,omitempty"`
	Docs    *DocsMetadata `json:"docs,omitempty"`
}

// Meta identifies the package a Spec was extracted from.
type Meta struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Export is one exported symbol of the package.
//
// Deprecated reflects the extractor's view of the code (annotations, declaration modifiers), not the documentation comment; the drift detector compares the
// two.
type Export struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Kind        ExportKind    `json:"kind"`
	Signatures  []Signature   `json:"signatures"`
	Members     []Member      `json:"members,omitempty"`
	Description string        `json:"description,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
	Source      *Source       `json:"source,omitempty"`
	Deprecated  bool          `json:"deprecated,omitempty"`
	Docs        *DocsMetadata `json:"docs,omitempty"`
}

// Signature is one callable shape of an export or member. Exports with overloads carry several; the first is the primary one used for documentation
// comparison.
type Signature struct {
	Parameters     []Parameter     `json:"parameters"`
	Returns        *Return         `json:"returns,omitempty"`
	Description    string          `json:"description,omitempty"`
	TypeParameters []TypeParameter `json:"typeParameters,omitempty"`
}

// Parameter is a declared parameter of a Signature.
type Parameter struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declaredType"`
	Required     bool   `json:"required"`
	Description  string `json:"description,omitempty"`
}

// Return is the declared return of a Signature.
type Return struct {
	DeclaredType string `json:"declaredType"`
	Description  string `json:"description,omitempty"`
}

// TypeParameter is a declared generic parameter of a Signature.
type TypeParameter struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`
}

// Member is a named member of a class- or enum-kind export.
type Member struct {
	Name        string      `json:"name"`
	Kind        MemberKind  `json:"kind"`
	Signatures  []Signature `json:"signatures,omitempty"`
	Description string      `json:"description,omitempty"`
	Visibility  string      `json:"visibility,omitempty"`
}

// Source locates an export's declaration. Line is the 1-based declaration line. DocStartLine/DocEndLine bound the existing documentation comment when the
// extractor found one; both are 0 when there is none.
type Source struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	DocStartLine int    `json:"docStartLine,omitempty"`
	DocEndLine   int    `json:"docEndLine,omitempty"`
}

// TypeDecl is a named type declaration carried alongside exports. It is preserved through the codec but not analyzed.
type TypeDecl struct {
	Name        string `json:"name"`
	Kind        string `json:"kind,omitempty"`
	Definition  string `json:"definition,omitempty"`
	Description string `json:"description,omitempty"`
}

// DocsMetadata is the derived documentation state of an export, or (on the Spec root) the aggregate. On the root only CoverageScore is populated.
type DocsMetadata struct {
	CoverageScore int           `json:"coverageScore"`
	Missing       []SignalName  `json:"missing,omitempty"`
	Drift         []DriftRecord `json:"drift,omitempty"`
}

// PrimarySignature returns the first signature, or nil if the export declares none.
func (e *Export) PrimarySignature() *Signature {
	if len(e.Signatures) == 0 {
		return nil
	}
	return &e.Signatures[0]
}

// Undocumented reports whether the export has no description. This is the notion of "undocumented" the differ uses for newUndocumented and allUndocumented.
func (e *Export) Undocumented() bool {
	return strings.TrimSpace(e.Description) == ""
}

// ExportByID returns a pointer to the export with the given id, or nil. The returned Export must not be modified.
func (s *Spec) ExportByID(id string) *Export {
	for i := range s.Exports {
		if s.Exports[i].ID == id {
			return &s.Exports[i]
		}
	}
	return nil
}

// Enriched reports whether s carries derived documentation metadata on its root.
func (s *Spec) Enriched() bool {
	return s.Docs != nil
}

// Clone returns a deep copy of s. Enrichment operates on clones so the input Spec stays immutable.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	out := &Spec{Meta: s.Meta}
	if s.Docs != nil {
		out.Docs = s.Docs.clone()
	}
	if s.Types != nil {
		out.Types = append([]TypeDecl(nil), s.Types...)
	}
	if s.Exports != nil {
		out.Exports = make([]Export, len(s.Exports))
		for i := range s.Exports {
			out.Exports[i] = s.Exports[i].clone()
		}
	}
	return out
}

func (e Export) clone() Export {
	out := e
	out.Signatures = cloneSignatures(e.Signatures)
	if e.Members != nil {
		out.Members = make([]Member, len(e.Members))
		for i, m := range e.Members {
			cm := m
			cm.Signatures = cloneSignatures(m.Signatures)
			out.Members[i] = cm
		}
	}
	if e.Examples != nil {
		out.Examples = append([]string(nil), e.Examples...)
	}
	if e.Source != nil {
		src := *e.Source
		out.Source = &src
	}
	if e.Docs != nil {
		out.Docs = e.Docs.clone()
	}
	return out
}

func cloneSignatures(sigs []Signature) []Signature {
	if sigs == nil {
		return nil
	}
	out := make([]Signature, len(sigs))
	for i, sig := range sigs {
		cs := sig
		if sig.Parameters != nil {
			cs.Parameters = append([]Parameter(nil), sig.Parameters...)
		}
		if sig.Returns != nil {
			ret := *sig.Returns
			cs.Returns = &ret
		}
		if sig.TypeParameters != nil {
			cs.TypeParameters = append([]TypeParameter(nil), sig.TypeParameters...)
		}
		out[i] = cs
	}
	return out
}

func (d *DocsMetadata) clone() *DocsMetadata {
	out := &DocsMetadata{CoverageScore: d.CoverageScore}
	if d.Missing != nil {
		out.Missing = append([]SignalName(nil), d.Missing...)
	}
	if d.Drift != nil {
		out.Drift = append([]DriftRecord(nil), d.Drift...)
	}
	return out
}

// VoidType reports whether a declared type string means "no value to document": empty, void, undefined, or never.
func VoidType(declared string) bool {
	switch strings.TrimSpace(declared) {
	case "", "void", "undefined", "never":
		return true
	}
	return false
}

// FormatSignature renders a display string like "add(a: number, b?: string): number" for diffs and impact reports. sig may be nil (bare name).
func FormatSignature(name string, sig *Signature) string {
	if sig == nil {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	if len(sig.TypeParameters) > 0 {
		b.WriteString("<")
		for i, tp := range sig.TypeParameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(tp.Name)
			if tp.Constraint != "" {
				b.WriteString(" extends ")
				b.WriteString(tp.Constraint)
			}
		}
		b.WriteString(">")
	}
	b.WriteString("(")
	for i, p := range sig.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if !p.Required {
			b.WriteString("?")
		}
		if p.DeclaredType != "" {
			b.WriteString(": ")
			b.WriteString(p.DeclaredType)
		}
	}
	b.WriteString(")")
	if sig.Returns != nil && sig.Returns.DeclaredType != "" {
		b.WriteString(": ")
		b.WriteString(sig.Returns.DeclaredType)
	}
	return b.String()
}

// DisplaySignature renders a member for change reports: methods as call signatures, properties as "name: type".
func (m *Member) DisplaySignature() string {
	switch m.Kind {
	case MemberProperty:
		if len(m.Signatures) > 0 && m.Signatures[0].Returns != nil && m.Signatures[0].Returns.DeclaredType != "" {
			return fmt.Sprintf("%s: %s", m.Name, m.Signatures[0].Returns.DeclaredType)
		}
		return m.Name
	default:
		if len(m.Signatures) == 0 {
			return m.Name
		}
		return FormatSignature(m.Name, &m.Signatures[0])
	}
}
