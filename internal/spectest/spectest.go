// Package spectest carries shared test fixtures: dedenting for inline literals, temp source trees for applier tests, and builders for common export shapes.
package spectest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docdrift/docdrift/apispec"

	"github.com/stretchr/testify/require"
)

// Dedent removes the common leading indentation from each non-blank line in s. Spaces and tabs both count as indentation; the smallest indent among non-blank lines
// is removed from all non-blank lines. Blank-only lines do not affect the indent; interior blank lines are preserved, and leading/trailing blank lines are trimmed.
// The result has no trailing spaces or tabs and always ends with a single '\n'. Dedent is useful for inline multi-line test fixtures that are indented along with
// surrounding code.
func Dedent(s string) string {
	s = strings.Trim(s, "\n") // drop leading/trailing blank lines
	lines := strings.Split(s, "\n")

	min := -1 // smallest indent seen so far
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" { // If the line is only whitespace, consider it fully blank
			lines[i] = ""
			continue
		}
		indent := len(line) - len(trimmed)
		if min == -1 || indent < min {
			min = indent
		}
	}

	if min > 0 { // nothing to do if min == 0 or no non-blank lines
		for i, line := range lines {
			if len(line) >= min {
				lines[i] = line[min:]
			}
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n") + "\n"
}

// WithSourceFiles writes the given files (name -> contents) into a fresh temp directory and calls f with its path. Contents are dedented. The directory is
// removed when the test finishes.
func WithSourceFiles(t *testing.T, files map[string]string, f func(dir string)) {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(Dedent(contents)), 0o644))
	}
	f(dir)
}

// Param builds a required parameter.
func Param(name, declaredType string) apispec.Parameter {
	return apispec.Parameter{Name: name, DeclaredType: declaredType, Required: true}
}

// OptParam builds an optional parameter.
func OptParam(name, declaredType string) apispec.Parameter {
	return apispec.Parameter{Name: name, DeclaredType: declaredType, Required: false}
}

// Sig builds a signature with the given parameters and return type. An empty returnType means no declared return.
func Sig(returnType string, params ...apispec.Parameter) apispec.Signature {
	sig := apispec.Signature{Parameters: params}
	if returnType != "" {
		sig.Returns = &apispec.Return{DeclaredType: returnType}
	}
	return sig
}

// Func builds a function export whose id equals its name.
func Func(name string, sigs ...apispec.Signature) apispec.Export {
	return apispec.Export{ID: name, Name: name, Kind: apispec.KindFunction, Signatures: sigs}
}

// Class builds a class export whose id equals its name.
func Class(name string, members ...apispec.Member) apispec.Export {
	return apispec.Export{ID: name, Name: name, Kind: apispec.KindClass, Members: members}
}

// Method builds a method member.
func Method(name string, sig apispec.Signature) apispec.Member {
	return apispec.Member{Name: name, Kind: apispec.MemberMethod, Signatures: []apispec.Signature{sig}}
}

// SpecOf builds a spec named "pkg" at version with the given exports.
func SpecOf(version string, exports ...apispec.Export) *apispec.Spec {
	return &apispec.Spec{
		Meta:    apispec.Meta{Name: "pkg", Version: version},
		Exports: exports,
	}
}
