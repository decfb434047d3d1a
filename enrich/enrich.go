// Package enrich derives the documentation metadata of a spec: per-export coverage scores, missing signals, and drift records, plus the aggregate score on
// the spec root.
//
// Enrichment is a pure transformation. The input spec is never mutated; the result is a deep copy with Docs populated on every export and on the root.
// Because every Docs value is recomputed wholesale from the declaration and the doc text, enriching an already-enriched spec with the same options yields
// the same result.
package enrich

import (
	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/coverage"
	"github.com/docdrift/docdrift/drift"
	"github.com/docdrift/docdrift/jsdoc"
)

// DocTextSource supplies the raw documentation comment text of an export, typically read from the source tree by the layer that extracted the spec. The
// structured spec stores what the extractor merged; drift detection needs the literal claims, which only the raw text carries.
type DocTextSource interface {
	// DocText returns the raw comment text (with or without comment markers) for the export with the given id. ok is false when the export has no comment.
	DocText(exportID string) (text string, ok bool)
}

// DocTextMap is the simplest DocTextSource: a map from export id to raw comment text.
type DocTextMap map[string]string

func (m DocTextMap) DocText(exportID string) (string, bool) {
	text, ok := m[exportID]
	return text, ok
}

// Options configures enrichment. The zero value enriches from the structured spec alone: coverage uses the extractor's merged fields, and no claim-based
// drift can be detected without raw doc text.
type Options struct {
	// Docs supplies raw doc comment text per export. May be nil.
	Docs DocTextSource

	// ExampleResults are the external example runner's reports, converted into example drift records. May be empty; the core never executes examples.
	ExampleResults []drift.ExampleResult

	// Assertions optionally widens example assertion recall beyond the built-in "// =>" convention. May be nil.
	Assertions drift.AssertionParser
}

// Enrich returns a copy of spec with Docs computed on every export and the aggregate coverage score on the root. The input is not modified.
func Enrich(spec *apispec.Spec, opts Options) *apispec.Spec {
	out := spec.Clone()
	for i := range out.Exports {
		e := &out.Exports[i]
		patch := parseDocText(e.ID, opts.Docs)

		score, missing := coverage.Score(e, patch)
		records := drift.Detect(e, patch)
		records = append(records, drift.FromExampleResults(e, opts.ExampleResults, opts.Assertions)...)

		e.Docs = &apispec.DocsMetadata{
			CoverageScore: score,
			Missing:       missing,
			Drift:         records,
		}
	}
	out.Docs = &apispec.DocsMetadata{CoverageScore: coverage.SpecScore(out)}
	return out
}

// EnrichedOrSelf returns spec unchanged when it already carries docs metadata, and a freshly enriched copy otherwise. Consumers that accept both bare and
// enriched snapshots (the differ, reporting) use this to avoid re-deriving metadata that a pipeline stage already attached.
func EnrichedOrSelf(spec *apispec.Spec, opts Options) *apispec.Spec {
	if spec.Enriched() {
		return spec
	}
	return Enrich(spec, opts)
}

func parseDocText(exportID string, docs DocTextSource) *jsdoc.Patch {
	if docs == nil {
		return nil
	}
	text, ok := docs.DocText(exportID)
	if !ok {
		return nil
	}
	return jsdoc.Parse(text)
}
