package drift

import (
	"sort"

	"github.com/docdrift/docdrift/apispec"
)

// ExportDrift is one export's drift records, for grouped reporting.
type ExportDrift struct {
	ExportID   string
	ExportName string
	Records    []apispec.DriftRecord
}

// CategoryCount is the number of drift records in one category.
type CategoryCount struct {
	Category apispec.DriftCategory
	Count    int
}

// GroupByExport collects the drift records of an enriched spec into per-export groups, sorted by export id. Exports with no drift are omitted. The grouping
// is pure so reporting layers can consume it without re-deriving state.
func GroupByExport(spec *apispec.Spec) []ExportDrift {
	var groups []ExportDrift
	for i := range spec.Exports {
		e := &spec.Exports[i]
		if e.Docs == nil || len(e.Docs.Drift) == 0 {
			continue
		}
		groups = append(groups, ExportDrift{
			ExportID:   e.ID,
			ExportName: e.Name,
			Records:    append([]apispec.DriftRecord(nil), e.Docs.Drift...),
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ExportID < groups[j].ExportID })
	return groups
}

// CountByCategory tallies an enriched spec's drift records per category, in fixed category order (breaking, drift, example). Categories with no records are
// omitted.
func CountByCategory(spec *apispec.Spec) []CategoryCount {
	counts := map[apispec.DriftCategory]int{}
	for i := range spec.Exports {
		e := &spec.Exports[i]
		if e.Docs == nil {
			continue
		}
		for _, r := range e.Docs.Drift {
			counts[r.Category]++
		}
	}

	var out []CategoryCount
	for _, cat := range []apispec.DriftCategory{apispec.CategoryBreaking, apispec.CategoryDrift, apispec.CategoryExample} {
		if counts[cat] > 0 {
			out = append(out, CategoryCount{Category: cat, Count: counts[cat]})
		}
	}
	return out
}
