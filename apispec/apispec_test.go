package apispec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSpec() *Spec {
	return &Spec{
		Meta: Meta{Name: "widgets", Version: "1.2.3"},
		Exports: []Export{
			{
				ID:   "createWidget",
				Name: "createWidget",
				Kind: KindFunction,
				Signatures: []Signature{{
					Parameters: []Parameter{
						{Name: "name", DeclaredType: "string", Required: true},
						{Name: "opts", DeclaredType: "WidgetOptions"},
					},
					Returns:        &Return{DeclaredType: "Widget"},
					TypeParameters: []TypeParameter{{Name: "T", Constraint: "object"}},
				}},
				Description: "Creates a widget.",
				Examples:    []string{"createWidget('w')"},
				Source:      &Source{File: "src/index.ts", Line: 10, DocStartLine: 5, DocEndLine: 9},
			},
			{
				ID:   "Widget",
				Name: "Widget",
				Kind: KindClass,
				Members: []Member{
					{Name: "render", Kind: MemberMethod, Signatures: []Signature{{Returns: &Return{DeclaredType: "void"}}}},
					{Name: "id", Kind: MemberProperty, Signatures: []Signature{{Returns: &Return{DeclaredType: "string"}}}},
				},
			},
		},
		Types: []TypeDecl{{Name: "WidgetOptions", Kind: "interface"}},
	}
}

func TestExportKindValid(t *testing.T) {
	for _, k := range []ExportKind{KindFunction, KindClass, KindVariable, KindInterface, KindType, KindEnum, KindModule, KindNamespace} {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, ExportKind("").Valid())
	assert.False(t, ExportKind("gizmo").Valid())
}

func TestPrimarySignature(t *testing.T) {
	spec := sampleSpec()
	sig := spec.Exports[0].PrimarySignature()
	require.NotNil(t, sig)
	assert.Equal(t, "name", sig.Parameters[0].Name)

	assert.Nil(t, spec.Exports[1].PrimarySignature())
}

func TestUndocumented(t *testing.T) {
	assert.True(t, (&Export{}).Undocumented())
	assert.True(t, (&Export{Description: " \n\t"}).Undocumented())
	assert.False(t, (&Export{Description: "Documented."}).Undocumented())
}

func TestExportByID(t *testing.T) {
	spec := sampleSpec()
	e := spec.ExportByID("Widget")
	require.NotNil(t, e)
	assert.Equal(t, KindClass, e.Kind)
	assert.Nil(t, spec.ExportByID("nope"))
}

func TestEnriched(t *testing.T) {
	spec := sampleSpec()
	assert.False(t, spec.Enriched())
	spec.Docs = &DocsMetadata{CoverageScore: 50}
	assert.True(t, spec.Enriched())
}

func TestCloneIndependence(t *testing.T) {
	orig := sampleSpec()
	orig.Docs = &DocsMetadata{
		CoverageScore: 80,
		Missing:       []SignalName{SignalExamples},
		Drift:         []DriftRecord{{Type: DriftParamMismatch, Issue: "undocumented parameter opts", Category: CategoryBreaking}},
	}
	orig.Exports[0].Docs = &DocsMetadata{CoverageScore: 75}

	c := orig.Clone()
	require.Equal(t, orig, c)

	c.Exports[0].Signatures[0].Parameters[0].Name = "mutated"
	c.Exports[0].Signatures[0].Returns.DeclaredType = "mutated"
	c.Exports[0].Examples[0] = "mutated"
	c.Exports[0].Source.Line = 99
	c.Exports[0].Docs.CoverageScore = 1
	c.Exports[1].Members[0].Signatures[0].Returns.DeclaredType = "mutated"
	c.Types[0].Name = "mutated"
	c.Docs.Drift[0].Issue = "mutated"
	c.Docs.Missing[0] = SignalParams

	assert.Equal(t, "name", orig.Exports[0].Signatures[0].Parameters[0].Name)
	assert.Equal(t, "Widget", orig.Exports[0].Signatures[0].Returns.DeclaredType)
	assert.Equal(t, "createWidget('w')", orig.Exports[0].Examples[0])
	assert.Equal(t, 10, orig.Exports[0].Source.Line)
	assert.Equal(t, 75, orig.Exports[0].Docs.CoverageScore)
	assert.Equal(t, "void", orig.Exports[1].Members[0].Signatures[0].Returns.DeclaredType)
	assert.Equal(t, "WidgetOptions", orig.Types[0].Name)
	assert.Equal(t, "undocumented parameter opts", orig.Docs.Drift[0].Issue)
	assert.Equal(t, SignalExamples, orig.Docs.Missing[0])
}

func TestCloneNil(t *testing.T) {
	var spec *Spec
	assert.Nil(t, spec.Clone())
}

func TestVoidType(t *testing.T) {
	for _, declared := range []string{"", "void", "undefined", "never", " void "} {
		assert.True(t, VoidType(declared), declared)
	}
	for _, declared := range []string{"number", "Widget", "null"} {
		assert.False(t, VoidType(declared), declared)
	}
}

func TestFormatSignature(t *testing.T) {
	assert.Equal(t, "bare", FormatSignature("bare", nil))

	add := &Signature{
		Parameters: []Parameter{
			{Name: "a", DeclaredType: "number", Required: true},
			{Name: "b", DeclaredType: "string"},
		},
		Returns: &Return{DeclaredType: "number"},
	}
	assert.Equal(t, "add(a: number, b?: string): number", FormatSignature("add", add))

	generic := &Signature{
		TypeParameters: []TypeParameter{{Name: "T", Constraint: "Lengthwise"}, {Name: "U"}},
		Parameters:     []Parameter{{Name: "x", DeclaredType: "T", Required: true}},
		Returns:        &Return{DeclaredType: "U"},
	}
	assert.Equal(t, "map<T extends Lengthwise, U>(x: T): U", FormatSignature("map", generic))

	untyped := &Signature{Parameters: []Parameter{{Name: "x", Required: true}}}
	assert.Equal(t, "f(x)", FormatSignature("f", untyped))
}

func TestDisplaySignature(t *testing.T) {
	method := Member{Name: "render", Kind: MemberMethod, Signatures: []Signature{{Returns: &Return{DeclaredType: "void"}}}}
	assert.Equal(t, "render(): void", method.DisplaySignature())

	bareMethod := Member{Name: "connect", Kind: MemberMethod}
	assert.Equal(t, "connect", bareMethod.DisplaySignature())

	property := Member{Name: "id", Kind: MemberProperty, Signatures: []Signature{{Returns: &Return{DeclaredType: "string"}}}}
	assert.Equal(t, "id: string", property.DisplaySignature())

	bareProperty := Member{Name: "flag", Kind: MemberProperty}
	assert.Equal(t, "flag", bareProperty.DisplaySignature())

	ctor := Member{Name: "constructor", Kind: MemberConstructor, Signatures: []Signature{{
		Parameters: []Parameter{{Name: "url", DeclaredType: "string", Required: true}},
	}}}
	assert.Equal(t, "constructor(url: string)", ctor.DisplaySignature())
}
