// Package docfix turns coverage gaps and fixable drift into mechanical documentation fixes.
//
// A fix pairs a human-readable description with an atomic patch fragment. Fragments are data, not side effects: MergeFixes folds them into a jsdoc.Patch in
// order, later fragments winning per field, and the caller serializes and applies the result. What counts as fixable is a closed set: documented types,
// optionality, parameter renames, and missing tags whose content is mechanically derivable from the declaration. Missing examples and stale prose never get
// a generated fix; that content has to be authored.
package docfix

import (
	"fmt"

	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/drift"
	"github.com/docdrift/docdrift/jsdoc"
)

// FixKind identifies what a fix fragment changes.
type FixKind string

const (
	FixSetDescription FixKind = "set-description"
	FixAddParam       FixKind = "add-param"
	FixRenameParam    FixKind = "rename-param"
	FixSetParamType   FixKind = "set-param-type"
	FixSetOptionality FixKind = "set-optionality"
	FixSetReturns     FixKind = "set-returns"
	FixDropReturns    FixKind = "drop-returns"
)

// Fragment is the machine-applicable payload of one fix. Only the fields its Kind uses are set.
type Fragment struct {
	Kind     FixKind `json:"kind"`
	Param    string  `json:"param,omitempty"`    // documented parameter the fix targets
	NewName  string  `json:"newName,omitempty"`  // rename target
	Type     string  `json:"type,omitempty"`     // corrected/declared type string
	Optional bool    `json:"optional,omitempty"` // corrected optionality
	Text     string  `json:"text,omitempty"`     // description or tag text
}

// FixSuggestion is one proposed documentation fix.
type FixSuggestion struct {
	Description string   `json:"description"`
	Fragment    Fragment `json:"patchFragment"`
}

// CategorizeDrifts splits records into mechanically fixable and not. Fixable: wrong documented types, wrong optionality, and param-mismatch records that
// carry a rename or add suggestion. Deprecation, visibility, constraint, and example drift need a human.
func CategorizeDrifts(records []apispec.DriftRecord) (fixable, nonFixable []apispec.DriftRecord) {
	for _, r := range records {
		if isFixable(r) {
			fixable = append(fixable, r)
		} else {
			nonFixable = append(nonFixable, r)
		}
	}
	return fixable, nonFixable
}

func isFixable(r apispec.DriftRecord) bool {
	switch r.Type {
	case apispec.DriftParamTypeMismatch, apispec.DriftReturnTypeMismatch, apispec.DriftOptionalityMismatch:
		return true
	case apispec.DriftParamMismatch:
		return r.Suggestion != ""
	default:
		return false
	}
}

// GenerateFixes produces one fix per fixable condition of the export: missing signals from the coverage result (except examples), then fixable drift
// records. existing is the export's current parsed doc comment and may be nil. The output order is deterministic and significant for MergeFixes.
func GenerateFixes(e *apispec.Export, missing []apispec.SignalName, drifts []apispec.DriftRecord, existing *jsdoc.Patch) []FixSuggestion {
	var fixes []FixSuggestion
	sig := e.PrimarySignature()
	added := map[string]bool{}

	// Parameters a rename fix will produce; adding them as well would leave a duplicate @param after the merge.
	renameTargets := map[string]bool{}
	for _, r := range drifts {
		if r.Type == apispec.DriftParamMismatch && r.Suggestion != "" && r.Param != r.Suggestion {
			renameTargets[r.Suggestion] = true
		}
	}

	for _, signal := range missing {
		switch signal {
		case apispec.SignalDescription:
			fixes = append(fixes, FixSuggestion{
				Description: fmt.Sprintf("add a description for %q", e.Name),
				Fragment:    Fragment{Kind: FixSetDescription, Text: "TODO: describe " + e.Name + "."},
			})
		case apispec.SignalParams:
			if sig == nil {
				continue
			}
			for _, p := range sig.Parameters {
				if renameTargets[p.Name] || added[p.Name] {
					continue
				}
				if existing != nil && existing.ParamByName(p.Name) != nil {
					continue
				}
				added[p.Name] = true
				fixes = append(fixes, addParamFix(p))
			}
		case apispec.SignalReturns:
			if sig == nil || sig.Returns == nil {
				continue
			}
			fixes = append(fixes, FixSuggestion{
				Description: fmt.Sprintf("document the return value of %q", e.Name),
				Fragment:    Fragment{Kind: FixSetReturns, Type: sig.Returns.DeclaredType},
			})
		case apispec.SignalExamples:
			// Examples are authored content; there is no mechanical fix.
		}
	}

	fixable, _ := CategorizeDrifts(drifts)
	for _, r := range fixable {
		switch r.Type {
		case apispec.DriftParamTypeMismatch:
			fixes = append(fixes, FixSuggestion{
				Description: fmt.Sprintf("correct the documented type of %q to {%s}", r.Param, r.Suggestion),
				Fragment:    Fragment{Kind: FixSetParamType, Param: r.Param, Type: r.Suggestion},
			})
		case apispec.DriftReturnTypeMismatch:
			if r.Suggestion == "" {
				fixes = append(fixes, FixSuggestion{
					Description: "remove the @returns claim; the declaration returns nothing",
					Fragment:    Fragment{Kind: FixDropReturns},
				})
				continue
			}
			fixes = append(fixes, FixSuggestion{
				Description: fmt.Sprintf("correct the documented return type to {%s}", r.Suggestion),
				Fragment:    Fragment{Kind: FixSetReturns, Type: r.Suggestion},
			})
		case apispec.DriftOptionalityMismatch:
			fixes = append(fixes, optionalityFix(r.Param, r.Suggestion == "optional"))
		case apispec.DriftParamMismatch:
			if r.Param == r.Suggestion {
				if added[r.Param] {
					continue
				}
				p := sigParam(sig, r.Suggestion)
				if p == nil {
					continue
				}
				added[p.Name] = true
				fixes = append(fixes, addParamFix(*p))
			} else {
				fixes = append(fixes, FixSuggestion{
					Description: fmt.Sprintf("rename documented parameter %q to %q", r.Param, r.Suggestion),
					Fragment:    Fragment{Kind: FixRenameParam, Param: r.Param, NewName: r.Suggestion},
				})
			}
		}
	}

	// Adding a bracketed @param can put the optionality convention into use for a comment whose other entries were bare, which surfaces new drift only
	// after the merge. One alignment round settles it.
	if len(fixes) > 0 && sig != nil {
		merged := MergeFixes(existing, fixes)
		residual, _ := CategorizeDrifts(drift.Detect(e, merged))
		for _, r := range residual {
			if r.Type == apispec.DriftOptionalityMismatch {
				fixes = append(fixes, optionalityFix(r.Param, r.Suggestion == "optional"))
			}
		}
	}

	return fixes
}

func addParamFix(p apispec.Parameter) FixSuggestion {
	return FixSuggestion{
		Description: fmt.Sprintf("document parameter %q", p.Name),
		Fragment: Fragment{
			Kind:     FixAddParam,
			Param:    p.Name,
			Type:     p.DeclaredType,
			Optional: !p.Required,
			Text:     p.Description,
		},
	}
}

func optionalityFix(param string, optional bool) FixSuggestion {
	way := "required"
	if optional {
		way = "optional"
	}
	return FixSuggestion{
		Description: fmt.Sprintf("mark documented parameter %q as %s", param, way),
		Fragment:    Fragment{Kind: FixSetOptionality, Param: param, Optional: optional},
	}
}

func sigParam(sig *apispec.Signature, name string) *apispec.Parameter {
	if sig == nil {
		return nil
	}
	for i := range sig.Parameters {
		if sig.Parameters[i].Name == name {
			return &sig.Parameters[i]
		}
	}
	return nil
}

// MergeFixes folds fixes into a copy of existing, in order, later fragments winning per field. Fields no fragment touches survive verbatim; existing is
// never mutated and may be nil.
func MergeFixes(existing *jsdoc.Patch, fixes []FixSuggestion) *jsdoc.Patch {
	out := existing.Clone()
	if out == nil {
		out = &jsdoc.Patch{}
	}
	for _, f := range fixes {
		applyFragment(out, f.Fragment)
	}
	return out
}

func applyFragment(p *jsdoc.Patch, f Fragment) {
	switch f.Kind {
	case FixSetDescription:
		p.Description = f.Text
	case FixAddParam:
		if prm := p.ParamByName(f.Param); prm != nil {
			prm.Type = f.Type
			prm.Optional = f.Optional
			return
		}
		p.Params = append(p.Params, jsdoc.Param{Name: f.Param, Type: f.Type, Optional: f.Optional, Text: f.Text})
	case FixRenameParam:
		if prm := p.ParamByName(f.Param); prm != nil {
			prm.Name = f.NewName
		}
	case FixSetParamType:
		if prm := p.ParamByName(f.Param); prm != nil {
			prm.Type = f.Type
			return
		}
		p.Params = append(p.Params, jsdoc.Param{Name: f.Param, Type: f.Type})
	case FixSetOptionality:
		if prm := p.ParamByName(f.Param); prm != nil {
			prm.Optional = f.Optional
		}
	case FixSetReturns:
		if p.Returns == nil {
			p.Returns = &jsdoc.Returns{Type: f.Type, Text: f.Text}
			return
		}
		p.Returns.Type = f.Type // authored @returns text survives a type correction
	case FixDropReturns:
		p.Returns = nil
	default:
		panic(fmt.Sprintf("docfix: unknown fix kind %q", f.Kind))
	}
}
