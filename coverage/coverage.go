// Package coverage computes documentation coverage: which of the four signals (description, params, returns, examples) an export carries, a 0-100 score per
// export, and the aggregate score of a whole spec.
//
// Scoring is pure and total. A signal counts as present when either the extractor's structured fields or the parsed documentation comment carry it; signals
// that do not apply to an export (returns on a void function, params on a parameterless one) are excluded from the denominator.
package coverage

import (
	"math"
	"strings"

	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/jsdoc"
)

// Score computes the coverage score of one export and the ordered list of absent signals. patch is the export's parsed documentation comment and may be nil.
// An export with no signatures and no documentation scores 0 on every applicable signal; Score never panics on malformed exports.
//
// Invariants:
//   - The score is in [0, 100].
//   - The score is 100 exactly when missing is empty.
func Score(e *apispec.Export, patch *jsdoc.Patch) (int, []apispec.SignalName) {
	applicable := 0
	present := 0
	var missing []apispec.SignalName

	signal := func(name apispec.SignalName, ok bool) {
		applicable++
		if ok {
			present++
		} else {
			missing = append(missing, name)
		}
	}

	signal(apispec.SignalDescription, hasDescription(e, patch))

	sig := e.PrimarySignature()
	if sig != nil && len(sig.Parameters) > 0 {
		signal(apispec.SignalParams, allParamsDocumented(sig, patch))
	}
	if returnsApplicable(sig) {
		signal(apispec.SignalReturns, hasReturnDoc(sig, patch))
	}

	signal(apispec.SignalExamples, hasExamples(e, patch))

	score := int(math.Round(100 * float64(present) / float64(applicable)))
	return score, missing
}

// SpecScore computes the aggregate score: the mean of per-export scores, rounded, or 100 for a spec with no exports. Exports that already carry docs
// metadata contribute their recorded score; others are scored on structured fields alone.
func SpecScore(spec *apispec.Spec) int {
	if len(spec.Exports) == 0 {
		return 100
	}
	total := 0
	for i := range spec.Exports {
		e := &spec.Exports[i]
		if e.Docs != nil {
			total += e.Docs.CoverageScore
			continue
		}
		score, _ := Score(e, nil)
		total += score
	}
	return int(math.Round(float64(total) / float64(len(spec.Exports))))
}

func hasDescription(e *apispec.Export, patch *jsdoc.Patch) bool {
	if strings.TrimSpace(e.Description) != "" {
		return true
	}
	return patch != nil && strings.TrimSpace(patch.Description) != ""
}

// allParamsDocumented reports whether every declared parameter has text in the structured spec or an entry in the doc comment.
func allParamsDocumented(sig *apispec.Signature, patch *jsdoc.Patch) bool {
	for _, p := range sig.Parameters {
		if strings.TrimSpace(p.Description) != "" {
			continue
		}
		if patch != nil && patch.ParamByName(p.Name) != nil {
			continue
		}
		return false
	}
	return true
}

// returnsApplicable reports whether the returns signal counts for this signature: there must be a declared return whose type is not void-like.
func returnsApplicable(sig *apispec.Signature) bool {
	if sig == nil || sig.Returns == nil {
		return false
	}
	return !apispec.VoidType(sig.Returns.DeclaredType)
}

func hasReturnDoc(sig *apispec.Signature, patch *jsdoc.Patch) bool {
	if strings.TrimSpace(sig.Returns.Description) != "" {
		return true
	}
	return patch != nil && patch.Returns != nil
}

func hasExamples(e *apispec.Export, patch *jsdoc.Patch) bool {
	if len(e.Examples) > 0 {
		return true
	}
	return patch != nil && len(patch.Examples) > 0
}
