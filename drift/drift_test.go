package drift

import (
	"testing"

	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/internal/spectest"
	"github.com/docdrift/docdrift/jsdoc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docParam(name, typ, text string) jsdoc.Param {
	return jsdoc.Param{Name: name, Type: typ, Text: text}
}

func types(records []apispec.DriftRecord) []apispec.DriftType {
	out := make([]apispec.DriftType, 0, len(records))
	for _, r := range records {
		out = append(out, r.Type)
	}
	return out
}

func TestDetectTableDriven(t *testing.T) {
	type testCase struct {
		name      string
		export    apispec.Export
		patch     *jsdoc.Patch
		wantTypes []apispec.DriftType
		check     func(t *testing.T, records []apispec.DriftRecord)
	}

	testCases := []testCase{
		{
			name:   "no doc comment yields no drift",
			export: spectest.Func("add", spectest.Sig("number", spectest.Param("a", "number"))),
			patch:  nil,
		},
		{
			name:   "empty doc comment yields no drift",
			export: spectest.Func("add", spectest.Sig("number", spectest.Param("a", "number"))),
			patch:  &jsdoc.Patch{},
		},
		{
			name:   "agreeing docs yield no drift",
			export: spectest.Func("add", spectest.Sig("number", spectest.Param("a", "number"), spectest.Param("b", "number"))),
			patch: &jsdoc.Patch{
				Description: "Adds numbers.",
				Params:      []jsdoc.Param{docParam("a", "number", "left"), docParam("b", "number", "right")},
				Returns:     &jsdoc.Returns{Type: "number"},
			},
		},
		{
			name:   "param type mismatch carries declared type as suggestion",
			export: spectest.Func("charge", spectest.Sig("void", spectest.Param("amount", "number"))),
			patch: &jsdoc.Patch{
				Params: []jsdoc.Param{docParam("amount", "string", "how much")},
			},
			wantTypes: []apispec.DriftType{apispec.DriftParamTypeMismatch},
			check: func(t *testing.T, records []apispec.DriftRecord) {
				assert.Contains(t, records[0].Suggestion, "number")
				assert.Equal(t, "amount", records[0].Param)
				assert.Equal(t, apispec.CategoryBreaking, records[0].Category)
			},
		},
		{
			name:   "reordered documentation is tolerated",
			export: spectest.Func("add", spectest.Sig("number", spectest.Param("a", "number"), spectest.Param("b", "number"))),
			patch: &jsdoc.Patch{
				Params: []jsdoc.Param{docParam("b", "number", "right"), docParam("a", "number", "left")},
			},
		},
		{
			name:   "rename is one did-you-mean record",
			export: spectest.Func("greet", spectest.Sig("string", spectest.Param("name", "string"))),
			patch: &jsdoc.Patch{
				Params: []jsdoc.Param{docParam("who", "string", "target")},
			},
			wantTypes: []apispec.DriftType{apispec.DriftParamMismatch},
			check: func(t *testing.T, records []apispec.DriftRecord) {
				assert.Contains(t, records[0].Issue, `did you mean "name"`)
				assert.Equal(t, "name", records[0].Suggestion)
				assert.Equal(t, "who", records[0].Param)
			},
		},
		{
			name:   "positional pair with different type is stale plus undocumented",
			export: spectest.Func("greet", spectest.Sig("string", spectest.Param("name", "string"))),
			patch: &jsdoc.Patch{
				Params: []jsdoc.Param{docParam("count", "number", "")},
			},
			wantTypes: []apispec.DriftType{apispec.DriftParamMismatch, apispec.DriftParamMismatch},
			check: func(t *testing.T, records []apispec.DriftRecord) {
				assert.Contains(t, records[0].Issue, `"count"`)
				assert.Empty(t, records[0].Suggestion)
				assert.Contains(t, records[1].Issue, `"name"`)
				assert.Equal(t, "name", records[1].Suggestion)
			},
		},
		{
			name:   "partially documented params drift on the undocumented one",
			export: spectest.Func("add", spectest.Sig("number", spectest.Param("a", "number"), spectest.Param("b", "number"))),
			patch: &jsdoc.Patch{
				Params: []jsdoc.Param{docParam("a", "number", "left")},
			},
			wantTypes: []apispec.DriftType{apispec.DriftParamMismatch},
			check: func(t *testing.T, records []apispec.DriftRecord) {
				assert.Equal(t, "b", records[0].Param)
			},
		},
		{
			name:   "doc optional but signature requires",
			export: spectest.Func("greet", spectest.Sig("string", spectest.Param("name", "string"))),
			patch: &jsdoc.Patch{
				Params: []jsdoc.Param{{Name: "name", Type: "string", Optional: true}},
			},
			wantTypes: []apispec.DriftType{apispec.DriftOptionalityMismatch},
			check: func(t *testing.T, records []apispec.DriftRecord) {
				assert.Equal(t, "required", records[0].Suggestion)
			},
		},
		{
			name: "signature optional documented as required under bracket convention",
			export: spectest.Func("greet", spectest.Sig("string",
				spectest.Param("name", "string"), spectest.OptParam("greeting", "string"))),
			patch: &jsdoc.Patch{
				Params: []jsdoc.Param{
					{Name: "name", Type: "string", Optional: false},
					{Name: "greeting", Type: "string", Optional: false},
					{Name: "extra", Type: "string", Optional: true},
				},
			},
			wantTypes: []apispec.DriftType{apispec.DriftParamMismatch, apispec.DriftOptionalityMismatch},
			check: func(t *testing.T, records []apispec.DriftRecord) {
				assert.Equal(t, "extra", records[0].Param)
				assert.Equal(t, "greeting", records[1].Param)
				assert.Equal(t, "optional", records[1].Suggestion)
			},
		},
		{
			name: "bare names make no optionality claim without brackets",
			export: spectest.Func("greet", spectest.Sig("string",
				spectest.Param("name", "string"), spectest.OptParam("greeting", "string"))),
			patch: &jsdoc.Patch{
				Params: []jsdoc.Param{
					{Name: "name", Type: "string"},
					{Name: "greeting", Type: "string"},
				},
			},
		},
		{
			name:   "return type mismatch",
			export: spectest.Func("add", spectest.Sig("number", spectest.Param("a", "number"))),
			patch: &jsdoc.Patch{
				Params:  []jsdoc.Param{docParam("a", "number", "")},
				Returns: &jsdoc.Returns{Type: "string"},
			},
			wantTypes: []apispec.DriftType{apispec.DriftReturnTypeMismatch},
			check: func(t *testing.T, records []apispec.DriftRecord) {
				assert.Equal(t, "number", records[0].Suggestion)
			},
		},
		{
			name:   "documented return on void declaration",
			export: spectest.Func("log", spectest.Sig("void", spectest.Param("msg", "string"))),
			patch: &jsdoc.Patch{
				Params:  []jsdoc.Param{docParam("msg", "string", "")},
				Returns: &jsdoc.Returns{Type: "boolean"},
			},
			wantTypes: []apispec.DriftType{apispec.DriftReturnTypeMismatch},
		},
		{
			name:   "untyped returns text is not a claim",
			export: spectest.Func("log", spectest.Sig("void", spectest.Param("msg", "string"))),
			patch: &jsdoc.Patch{
				Params:  []jsdoc.Param{docParam("msg", "string", "")},
				Returns: &jsdoc.Returns{Text: "nothing"},
			},
		},
		{
			name: "generic constraint mismatch",
			export: func() apispec.Export {
				e := spectest.Func("longest", spectest.Sig("T", spectest.Param("a", "T")))
				e.Signatures[0].TypeParameters = []apispec.TypeParameter{{Name: "T", Constraint: "Lengthwise"}}
				return e
			}(),
			patch: &jsdoc.Patch{
				Params:    []jsdoc.Param{docParam("a", "T", "")},
				Templates: []jsdoc.Template{{Name: "T", Constraint: "Sized"}},
			},
			wantTypes: []apispec.DriftType{apispec.DriftGenericConstraint},
			check: func(t *testing.T, records []apispec.DriftRecord) {
				assert.Equal(t, "Lengthwise", records[0].Suggestion)
			},
		},
		{
			name: "bare template makes no constraint claim",
			export: func() apispec.Export {
				e := spectest.Func("longest", spectest.Sig("T", spectest.Param("a", "T")))
				e.Signatures[0].TypeParameters = []apispec.TypeParameter{{Name: "T", Constraint: "Lengthwise"}}
				return e
			}(),
			patch: &jsdoc.Patch{
				Params:    []jsdoc.Param{docParam("a", "T", "")},
				Templates: []jsdoc.Template{{Name: "T"}},
			},
		},
		{
			name: "code deprecated but docs silent",
			export: func() apispec.Export {
				e := spectest.Func("old", spectest.Sig("void"))
				e.Deprecated = true
				return e
			}(),
			patch:     &jsdoc.Patch{Description: "Old entry point."},
			wantTypes: []apispec.DriftType{apispec.DriftDeprecatedMismatch},
			check: func(t *testing.T, records []apispec.DriftRecord) {
				assert.Equal(t, apispec.CategoryDrift, records[0].Category)
			},
		},
		{
			name:   "docs deprecated but code is not",
			export: spectest.Func("fresh", spectest.Sig("void")),
			patch: &jsdoc.Patch{
				Description: "Fresh entry point.",
				Deprecated:  func() *string { s := "use other"; return &s }(),
			},
			wantTypes: []apispec.DriftType{apispec.DriftDeprecatedMismatch},
		},
		{
			name:      "private visibility claim on a public export",
			export:    spectest.Func("handler", spectest.Sig("void")),
			patch:     &jsdoc.Patch{Description: "Internal handler.", Visibility: "private"},
			wantTypes: []apispec.DriftType{apispec.DriftVisibilityMismatch},
		},
		{
			name:   "whitespace differences in types are not drift",
			export: spectest.Func("get", spectest.Sig("Map<string, number>", spectest.Param("key", "string"))),
			patch: &jsdoc.Patch{
				Params:  []jsdoc.Param{docParam("key", "string", "")},
				Returns: &jsdoc.Returns{Type: "Map<string,  number>"},
			},
		},
		{
			name:   "multiple mismatches are all reported",
			export: spectest.Func("calc", spectest.Sig("number", spectest.Param("x", "number"), spectest.Param("y", "number"))),
			patch: &jsdoc.Patch{
				Params:  []jsdoc.Param{docParam("x", "string", ""), docParam("y", "boolean", "")},
				Returns: &jsdoc.Returns{Type: "string"},
			},
			wantTypes: []apispec.DriftType{
				apispec.DriftParamTypeMismatch,
				apispec.DriftParamTypeMismatch,
				apispec.DriftReturnTypeMismatch,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records := Detect(&tc.export, tc.patch)
			require.Equal(t, tc.wantTypes, types(records))
			for _, r := range records {
				assert.NotEmpty(t, r.Issue)
				assert.Equal(t, r.Type.Category(), r.Category)
			}
			if tc.check != nil {
				tc.check(t, records)
			}
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	export := spectest.Func("calc", spectest.Sig("number",
		spectest.Param("x", "number"), spectest.Param("y", "number"), spectest.Param("z", "number")))
	patch := &jsdoc.Patch{
		Params: []jsdoc.Param{
			docParam("z", "string", ""),
			docParam("ghost", "number", ""),
			docParam("x", "boolean", ""),
		},
		Returns: &jsdoc.Returns{Type: "string"},
	}

	first := Detect(&export, patch)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Detect(&export, patch))
	}
}

type prefixParser struct{ prefix string }

func (p *prefixParser) Available() bool { return true }
func (p *prefixParser) ParseAssertion(line string) (string, bool) {
	trimmed := ""
	if i := len(p.prefix); len(line) >= i && line[:i] == p.prefix {
		trimmed = line[i:]
		return trimmed, true
	}
	return "", false
}

func TestFromExampleResults(t *testing.T) {
	e := spectest.Func("add", spectest.Sig("number", spectest.Param("a", "number")))
	e.Examples = []string{
		"add(1, 2)\n// => 3",
		"add(2, 2)\n// => 4",
	}

	t.Run("runtime error", func(t *testing.T) {
		records := FromExampleResults(&e, []ExampleResult{
			{ExportID: "add", Index: 0, Error: "TypeError: boom"},
		}, nil)
		require.Len(t, records, 1)
		assert.Equal(t, apispec.DriftExampleRuntimeError, records[0].Type)
		assert.Contains(t, records[0].Issue, "TypeError: boom")
		assert.Equal(t, apispec.CategoryExample, records[0].Category)
	})

	t.Run("assertion failure carries expected value", func(t *testing.T) {
		records := FromExampleResults(&e, []ExampleResult{
			{ExportID: "add", Index: 0, Passed: true, Stdout: "4"},
		}, nil)
		require.Len(t, records, 1)
		assert.Equal(t, apispec.DriftExampleAssertionError, records[0].Type)
		assert.Equal(t, "3", records[0].Suggestion)
	})

	t.Run("matching output yields no drift", func(t *testing.T) {
		records := FromExampleResults(&e, []ExampleResult{
			{ExportID: "add", Index: 0, Passed: true, Stdout: "3\n"},
		}, nil)
		assert.Empty(t, records)
	})

	t.Run("results for other exports are ignored", func(t *testing.T) {
		records := FromExampleResults(&e, []ExampleResult{
			{ExportID: "sub", Index: 0, Error: "boom"},
		}, nil)
		assert.Empty(t, records)
	})

	t.Run("results are ordered by example index", func(t *testing.T) {
		records := FromExampleResults(&e, []ExampleResult{
			{ExportID: "add", Index: 1, Passed: true, Stdout: "5"},
			{ExportID: "add", Index: 0, Passed: true, Stdout: "9"},
		}, nil)
		require.Len(t, records, 2)
		assert.Contains(t, records[0].Issue, "example 1")
		assert.Contains(t, records[1].Issue, "example 2")
	})

	t.Run("parser widens assertion recall", func(t *testing.T) {
		custom := spectest.Func("mul", spectest.Sig("number", spectest.Param("a", "number")))
		custom.Examples = []string{"mul(2, 3)\n// prints: 6"}

		records := FromExampleResults(&custom, []ExampleResult{
			{ExportID: "mul", Index: 0, Passed: true, Stdout: "7"},
		}, &prefixParser{prefix: "// prints: "})
		require.Len(t, records, 1)
		assert.Equal(t, "6", records[0].Suggestion)

		// Without the capability, the same input simply has reduced recall.
		assert.Empty(t, FromExampleResults(&custom, []ExampleResult{
			{ExportID: "mul", Index: 0, Passed: true, Stdout: "7"},
		}, nil))
	})
}

func TestGroupByExport(t *testing.T) {
	withDrift := spectest.Func("b", spectest.Sig("number", spectest.Param("a", "number")))
	withDrift.Docs = &apispec.DocsMetadata{
		CoverageScore: 50,
		Drift: []apispec.DriftRecord{
			{Type: apispec.DriftParamTypeMismatch, Issue: "x", Category: apispec.CategoryBreaking},
		},
	}
	clean := spectest.Func("a", spectest.Sig("void"))
	clean.Docs = &apispec.DocsMetadata{CoverageScore: 100}
	alsoDrift := spectest.Func("A", spectest.Sig("void"))
	alsoDrift.Docs = &apispec.DocsMetadata{
		Drift: []apispec.DriftRecord{
			{Type: apispec.DriftDeprecatedMismatch, Issue: "y", Category: apispec.CategoryDrift},
			{Type: apispec.DriftExampleRuntimeError, Issue: "z", Category: apispec.CategoryExample},
		},
	}

	spec := spectest.SpecOf("1.0.0", withDrift, clean, alsoDrift)
	groups := GroupByExport(spec)

	require.Len(t, groups, 2)
	assert.Equal(t, "A", groups[0].ExportID)
	assert.Equal(t, "b", groups[1].ExportID)
	assert.Len(t, groups[0].Records, 2)

	counts := CountByCategory(spec)
	assert.Equal(t, []CategoryCount{
		{Category: apispec.CategoryBreaking, Count: 1},
		{Category: apispec.CategoryDrift, Count: 1},
		{Category: apispec.CategoryExample, Count: 1},
	}, counts)
}
