package apispec

import (
	"fmt"
	"strings"
)

// DriftType is the closed enumeration of documentation drift kinds. It is part of the external JSON contract and only grows with explicit versioning.
type DriftType string

const (
	DriftParamMismatch         DriftType = "param-mismatch"
	DriftParamTypeMismatch     DriftType = "param-type-mismatch"
	DriftReturnTypeMismatch    DriftType = "return-type-mismatch"
	DriftOptionalityMismatch   DriftType = "optionality-mismatch"
	DriftGenericConstraint     DriftType = "generic-constraint-mismatch"
	DriftDeprecatedMismatch    DriftType = "deprecated-mismatch"
	DriftVisibilityMismatch    DriftType = "visibility-mismatch"
	DriftExampleRuntimeError   DriftType = "example-runtime-error"
	DriftExampleAssertionError DriftType = "example-assertion-failure"
)

// AllDriftTypes lists every DriftType in declaration order.
var AllDriftTypes = []DriftType{
	DriftParamMismatch,
	DriftParamTypeMismatch,
	DriftReturnTypeMismatch,
	DriftOptionalityMismatch,
	DriftGenericConstraint,
	DriftDeprecatedMismatch,
	DriftVisibilityMismatch,
	DriftExampleRuntimeError,
	DriftExampleAssertionError,
}

// Valid reports whether t is a known drift type.
func (t DriftType) Valid() bool {
	switch t {
	case DriftParamMismatch, DriftParamTypeMismatch, DriftReturnTypeMismatch, DriftOptionalityMismatch,
		DriftGenericConstraint, DriftDeprecatedMismatch, DriftVisibilityMismatch,
		DriftExampleRuntimeError, DriftExampleAssertionError:
		return true
	}
	return false
}

// DriftCategory groups drift types for filtering and reporting.
type DriftCategory string

const (
	// CategoryBreaking covers mismatches between documented and declared signature shape.
	CategoryBreaking DriftCategory = "breaking"
	// CategoryDrift covers metadata disagreements (deprecation, visibility).
	CategoryDrift DriftCategory = "drift"
	// CategoryExample covers failures reported for embedded examples.
	CategoryExample DriftCategory = "example"
)

// Category returns the fixed category of t. Panics on an unknown type: every place a new DriftType must be handled goes through here, so an unhandled
// addition fails loudly rather than silently miscategorizing.
func (t DriftType) Category() DriftCategory {
	switch t {
	case DriftParamMismatch, DriftParamTypeMismatch, DriftReturnTypeMismatch, DriftOptionalityMismatch, DriftGenericConstraint:
		return CategoryBreaking
	case DriftDeprecatedMismatch, DriftVisibilityMismatch:
		return CategoryDrift
	case DriftExampleRuntimeError, DriftExampleAssertionError:
		return CategoryExample
	default:
		panic(fmt.Sprintf("apispec: unknown drift type %q", string(t)))
	}
}

// DriftRecord describes one detected disagreement between documentation and the declared API.
//
// Issue is human-readable. Suggestion, when non-empty, is the mechanically correct value (a type string, a parameter name, an expected output). Param names
// the affected parameter for parameter-scoped types, letting fix generation target the right field.
type DriftRecord struct {
	Type       DriftType     `json:"type"`
	Issue      string        `json:"issue"`
	Suggestion string        `json:"suggestion,omitempty"`
	Category   DriftCategory `json:"category"`
	Param      string        `json:"param,omitempty"`
}

// ParseDriftTypeFilter parses a comma-separated list of drift type names (the "only these drift types" threshold accepted from calling layers). Blank
// entries are ignored; an unknown name is an error naming the offending entry.
func ParseDriftTypeFilter(s string) ([]DriftType, error) {
	var out []DriftType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := DriftType(part)
		if !t.Valid() {
			return nil, fmt.Errorf("apispec: unknown drift type %q in filter", part)
		}
		out = append(out, t)
	}
	return out, nil
}

// FilterDriftTypes returns the records whose type is in allow, preserving order. A nil or empty allow list returns records unchanged.
func FilterDriftTypes(records []DriftRecord, allow []DriftType) []DriftRecord {
	if len(allow) == 0 {
		return records
	}
	allowed := make(map[DriftType]bool, len(allow))
	for _, t := range allow {
		allowed[t] = true
	}
	var out []DriftRecord
	for _, r := range records {
		if allowed[r.Type] {
			out = append(out, r)
		}
	}
	return out
}
