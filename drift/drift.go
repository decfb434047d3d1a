// Package drift compares what a documentation comment claims against what the declared signature actually says, and emits one typed record per disagreement.
//
// Detection is purely comparative: identical (signature, doc comment) inputs always produce the identical, order-stable record list. There is no hidden state
// and no I/O. Records are grouped by axis in a fixed order: parameter naming, stale documented parameters, undocumented parameters, parameter types,
// optionality, then return type, generic constraints, deprecation, and visibility.
//
// A nil or empty doc comment yields no drift: with no claims there is nothing to disagree with (absent documentation is the coverage package's concern).
package drift

import (
	"fmt"
	"strings"

	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/jsdoc"
)

// Detect compares an export's primary signature against its parsed documentation comment.
//
// Parameter matching pairs documented and declared parameters by name first, then positionally among the leftovers. The name pass deliberately runs before
// the positional one, even where position alone would pair differently: an exact name match is never broken up to satisfy positions, so reordered
// documentation is tolerated. A positional leftover pair with a compatible type is treated as a rename and reported as a single param-mismatch with a
// "did you mean" suggestion; with incompatible types the two sides are reported separately as stale/undocumented.
func Detect(e *apispec.Export, patch *jsdoc.Patch) []apispec.DriftRecord {
	if patch == nil || patch.IsEmpty() {
		return nil
	}

	var records []apispec.DriftRecord
	sig := e.PrimarySignature()

	if sig != nil && len(patch.Params) > 0 {
		records = append(records, paramDrift(sig, patch)...)
	}
	if sig != nil {
		records = append(records, returnDrift(sig, patch)...)
		records = append(records, genericDrift(sig, patch)...)
	}
	records = append(records, deprecatedDrift(e, patch)...)
	records = append(records, visibilityDrift(patch)...)

	return records
}

func record(t apispec.DriftType, param, suggestion, format string, args ...any) apispec.DriftRecord {
	return apispec.DriftRecord{
		Type:       t,
		Issue:      fmt.Sprintf(format, args...),
		Suggestion: suggestion,
		Category:   t.Category(),
		Param:      param,
	}
}

func paramDrift(sig *apispec.Signature, patch *jsdoc.Patch) []apispec.DriftRecord {
	type pair struct {
		sigIdx int
		docIdx int
		rename bool
	}

	docUsed := make([]bool, len(patch.Params))
	sigUsed := make([]bool, len(sig.Parameters))
	var pairs []pair

	// Pass 1: by name.
	for si := range sig.Parameters {
		for di := range patch.Params {
			if docUsed[di] || patch.Params[di].Name != sig.Parameters[si].Name {
				continue
			}
			docUsed[di] = true
			sigUsed[si] = true
			pairs = append(pairs, pair{sigIdx: si, docIdx: di})
			break
		}
	}

	// Pass 2: positional leftovers with a compatible type are renames.
	for si := range sig.Parameters {
		if sigUsed[si] || si >= len(patch.Params) || docUsed[si] {
			continue
		}
		doc := &patch.Params[si]
		if doc.Type == "" || typesEqual(doc.Type, sig.Parameters[si].DeclaredType) {
			docUsed[si] = true
			sigUsed[si] = true
			pairs = append(pairs, pair{sigIdx: si, docIdx: si, rename: true})
		}
	}

	var records []apispec.DriftRecord

	// Renames, in signature order:
	for _, p := range pairs {
		if !p.rename {
			continue
		}
		records = append(records, record(apispec.DriftParamMismatch,
			patch.Params[p.docIdx].Name, sig.Parameters[p.sigIdx].Name,
			"documented parameter %q is not in the signature; did you mean %q?",
			patch.Params[p.docIdx].Name, sig.Parameters[p.sigIdx].Name))
	}

	// Stale documented parameters, in documented order:
	for di := range patch.Params {
		if docUsed[di] {
			continue
		}
		records = append(records, record(apispec.DriftParamMismatch,
			patch.Params[di].Name, "",
			"documented parameter %q is not in the signature", patch.Params[di].Name))
	}

	// Declared-but-undocumented parameters, in signature order. These only count as drift because the comment documents other parameters; a comment with
	// no @param tags at all is a missing signal, not drift.
	for si := range sig.Parameters {
		if sigUsed[si] {
			continue
		}
		records = append(records, record(apispec.DriftParamMismatch,
			sig.Parameters[si].Name, sig.Parameters[si].Name,
			"parameter %q is declared but not documented", sig.Parameters[si].Name))
	}

	// Type mismatches on pairs, in signature order:
	for _, p := range pairs {
		doc := &patch.Params[p.docIdx]
		declared := sig.Parameters[p.sigIdx]
		if p.rename || doc.Type == "" || typesEqual(doc.Type, declared.DeclaredType) {
			continue
		}
		records = append(records, record(apispec.DriftParamTypeMismatch,
			declared.Name, declared.DeclaredType,
			"parameter %q is documented as {%s} but declared as {%s}", declared.Name, doc.Type, declared.DeclaredType))
	}

	// Optionality mismatches on pairs, in signature order. A bare documented name only claims "required" when the comment uses the bracket convention for
	// some other parameter; otherwise bare names make no optionality claim.
	bracketsInUse := false
	for _, doc := range patch.Params {
		if doc.Optional {
			bracketsInUse = true
			break
		}
	}
	for _, p := range pairs {
		doc := patch.Params[p.docIdx]
		declared := sig.Parameters[p.sigIdx]
		switch {
		case doc.Optional && declared.Required:
			records = append(records, record(apispec.DriftOptionalityMismatch,
				declared.Name, "required",
				"parameter %q is documented as optional but the signature requires it", declared.Name))
		case !doc.Optional && !declared.Required && bracketsInUse:
			records = append(records, record(apispec.DriftOptionalityMismatch,
				declared.Name, "optional",
				"parameter %q is optional in the signature but documented as required", declared.Name))
		}
	}

	return records
}

func returnDrift(sig *apispec.Signature, patch *jsdoc.Patch) []apispec.DriftRecord {
	if patch.Returns == nil || patch.Returns.Type == "" {
		return nil
	}
	docType := patch.Returns.Type

	declaredVoid := sig.Returns == nil || apispec.VoidType(sig.Returns.DeclaredType)
	if declaredVoid {
		if apispec.VoidType(docType) {
			return nil
		}
		return []apispec.DriftRecord{record(apispec.DriftReturnTypeMismatch, "", "",
			"documentation claims a return type {%s} but the declaration returns nothing", docType)}
	}

	declared := sig.Returns.DeclaredType
	if typesEqual(docType, declared) {
		return nil
	}
	return []apispec.DriftRecord{record(apispec.DriftReturnTypeMismatch, "", declared,
		"documented return type {%s} does not match the declared return type {%s}", docType, declared)}
}

func genericDrift(sig *apispec.Signature, patch *jsdoc.Patch) []apispec.DriftRecord {
	if len(patch.Templates) == 0 || len(sig.TypeParameters) == 0 {
		return nil
	}

	declaredByName := make(map[string]apispec.TypeParameter, len(sig.TypeParameters))
	for _, tp := range sig.TypeParameters {
		declaredByName[tp.Name] = tp
	}

	var records []apispec.DriftRecord
	for _, tmpl := range patch.Templates {
		declared, ok := declaredByName[tmpl.Name]
		if !ok || tmpl.Constraint == "" {
			// A bare @template makes no constraint claim, and unknown names are left to parameter-style heuristics elsewhere.
			continue
		}
		if declared.Constraint == "" {
			records = append(records, record(apispec.DriftGenericConstraint, tmpl.Name, "",
				"type parameter %q is documented with constraint %q but declared without one", tmpl.Name, tmpl.Constraint))
			continue
		}
		if !typesEqual(tmpl.Constraint, declared.Constraint) {
			records = append(records, record(apispec.DriftGenericConstraint, tmpl.Name, declared.Constraint,
				"type parameter %q is documented with constraint %q but declared with %q", tmpl.Name, tmpl.Constraint, declared.Constraint))
		}
	}
	return records
}

func deprecatedDrift(e *apispec.Export, patch *jsdoc.Patch) []apispec.DriftRecord {
	docDeprecated := patch.Deprecated != nil
	switch {
	case e.Deprecated && !docDeprecated:
		return []apispec.DriftRecord{record(apispec.DriftDeprecatedMismatch, "", "",
			"the declaration is marked deprecated but the documentation has no @deprecated tag")}
	case !e.Deprecated && docDeprecated:
		return []apispec.DriftRecord{record(apispec.DriftDeprecatedMismatch, "", "",
			"documentation carries an @deprecated tag but the declaration is not deprecated")}
	}
	return nil
}

func visibilityDrift(patch *jsdoc.Patch) []apispec.DriftRecord {
	switch patch.Visibility {
	case "private", "protected":
		return []apispec.DriftRecord{record(apispec.DriftVisibilityMismatch, "", "public",
			"documentation declares @%s visibility but the symbol is exported as public", patch.Visibility)}
	}
	return nil
}

// typesEqual compares type strings after whitespace normalization. Comparison is case-sensitive: "String" and "string" are genuinely different types.
func typesEqual(a, b string) bool {
	return normalizeType(a) == normalizeType(b)
}

func normalizeType(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
