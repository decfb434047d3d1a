// Package specdiff compares two API snapshots: export-level change
// classification with severities, class member diffs, coverage and
// drift deltas, optional markdown impact scanning, and a semantic
// version bump recommendation.
//
// Invariants:
//   - Diff is pure. Inputs are never modified, and identical inputs
//     yield identical, order-stable results.
//   - Every output list is deterministically ordered: export ids
//     sorted, member changes by class then member, impact references
//     by file then line.
//   - An export id appears in at most one of Breaking, NonBreaking,
//     and DocsOnly.
package specdiff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/coverage"
	"github.com/docdrift/docdrift/enrich"
	"github.com/docdrift/docdrift/mdscan"
)

// Severity ranks how disruptive a breaking change is. High marks
// removals and required-parameter changes; medium marks changes that
// are additive or loosening but still alter the declared surface.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// CategorizedBreaking is one breaking export with its dominant cause.
// Name and Kind come from the head snapshot, or from base for a
// removed export.
type CategorizedBreaking struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Kind     apispec.ExportKind `json:"kind"`
	Severity Severity           `json:"severity"`
	Reason   string             `json:"reason"`
}

// SpecDiff is the comparison of a base snapshot to a head snapshot.
// Field names are stable; CI tooling consumes this shape directly.
type SpecDiff struct {
	OldCoverage         int                   `json:"oldCoverage"`
	NewCoverage         int                   `json:"newCoverage"`
	CoverageDelta       int                   `json:"coverageDelta"`
	Breaking            []string              `json:"breaking"`
	NonBreaking         []string              `json:"nonBreaking"`
	DocsOnly            []string              `json:"docsOnly"`
	NewUndocumented     []string              `json:"newUndocumented"`
	ImprovedExports     []string              `json:"improvedExports"`
	RegressedExports    []string              `json:"regressedExports"`
	DriftIntroduced     int                   `json:"driftIntroduced"`
	DriftResolved       int                   `json:"driftResolved"`
	CategorizedBreaking []CategorizedBreaking `json:"categorizedBreaking"`
	MemberChanges       []MemberChange        `json:"memberChanges"`
	DocsImpact          *DocsImpact           `json:"docsImpact,omitempty"`
	Semver              Recommendation        `json:"semver"`
}

// Options configures a Diff run. The zero value diffs without impact
// scanning.
type Options struct {
	// Docs is the markdown corpus to scan for references to changed
	// exports. Empty disables the DocsImpact section.
	Docs []mdscan.Document
}

// Diff compares base to head. Inputs that do not already carry
// documentation metadata are enriched internally from their structured
// fields; neither input is modified.
func Diff(base, head *apispec.Spec, opts Options) *SpecDiff {
	base = enrich.EnrichedOrSelf(base, enrich.Options{})
	head = enrich.EnrichedOrSelf(head, enrich.Options{})

	d := &SpecDiff{
		Breaking:            []string{},
		NonBreaking:         []string{},
		DocsOnly:            []string{},
		NewUndocumented:     []string{},
		ImprovedExports:     []string{},
		RegressedExports:    []string{},
		CategorizedBreaking: []CategorizedBreaking{},
		MemberChanges:       []MemberChange{},
	}

	baseByID := exportIndex(base)
	headByID := exportIndex(head)

	var addedIDs []string
	for _, id := range unionIDs(base, head) {
		be := baseByID[id]
		he := headByID[id]
		switch {
		case be == nil:
			d.NonBreaking = append(d.NonBreaking, id)
			addedIDs = append(addedIDs, id)
			if he.Undocumented() {
				d.NewUndocumented = append(d.NewUndocumented, id)
			}
		case he == nil:
			d.Breaking = append(d.Breaking, id)
			d.CategorizedBreaking = append(d.CategorizedBreaking, CategorizedBreaking{
				ID:       id,
				Name:     be.Name,
				Kind:     be.Kind,
				Severity: SeverityHigh,
				Reason:   "export removed",
			})
		default:
			mcs := diffMembers(be, he)
			d.MemberChanges = append(d.MemberChanges, mcs...)

			causes := append(pairCauses(be, he), memberCauses(mcs)...)
			switch {
			case len(causes) > 0:
				d.Breaking = append(d.Breaking, id)
				d.CategorizedBreaking = append(d.CategorizedBreaking, categorize(he, causes))
			case hasAdditions(mcs):
				d.NonBreaking = append(d.NonBreaking, id)
			case docsDiffer(be, he):
				d.DocsOnly = append(d.DocsOnly, id)
			}

			bs, hs := exportScore(be), exportScore(he)
			if hs > bs {
				d.ImprovedExports = append(d.ImprovedExports, id)
			} else if hs < bs {
				d.RegressedExports = append(d.RegressedExports, id)
			}
		}
	}

	sort.Slice(d.MemberChanges, func(i, j int) bool {
		a, b := d.MemberChanges[i], d.MemberChanges[j]
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		if a.MemberName != b.MemberName {
			return a.MemberName < b.MemberName
		}
		return a.Change < b.Change
	})

	d.OldCoverage = coverage.SpecScore(base)
	d.NewCoverage = coverage.SpecScore(head)
	d.CoverageDelta = d.NewCoverage - d.OldCoverage

	baseDrift := driftKeys(base)
	headDrift := driftKeys(head)
	d.DriftIntroduced = countAbsent(headDrift, baseDrift)
	d.DriftResolved = countAbsent(baseDrift, headDrift)

	if len(opts.Docs) > 0 {
		d.DocsImpact = buildDocsImpact(base, head, d, addedIDs, opts.Docs)
	}

	d.Semver = Recommend(d)
	return d
}

// cause is one structural reason an export pair is breaking.
type cause struct {
	severity Severity
	reason   string
}

// pairCauses collects the structural differences between two versions
// of the same export. An empty result means the callable shape is
// unchanged; parameter names are not structural.
func pairCauses(base, head *apispec.Export) []cause {
	if base.Kind != head.Kind {
		return []cause{{SeverityHigh, fmt.Sprintf("kind changed from %s to %s", base.Kind, head.Kind)}}
	}
	return signatureCauses(base.Signatures, head.Signatures)
}

// signatureCauses compares two overload sets: count, then the primary
// signature pairwise.
func signatureCauses(base, head []apispec.Signature) []cause {
	var causes []cause
	if len(base) != len(head) {
		if len(head) < len(base) {
			causes = append(causes, cause{SeverityHigh, "overload removed"})
		} else {
			causes = append(causes, cause{SeverityMedium, "overload added"})
		}
	}
	if len(base) == 0 || len(head) == 0 {
		return causes
	}
	bs, hs := &base[0], &head[0]
	causes = append(causes, paramCauses(bs.Parameters, hs.Parameters)...)
	if br, hr := normalizeReturn(bs.Returns), normalizeReturn(hs.Returns); br != hr {
		causes = append(causes, cause{
			SeverityMedium,
			fmt.Sprintf("return type changed from %s to %s", displayType(br), displayType(hr)),
		})
	}
	if !typeParamsEqual(bs.TypeParameters, hs.TypeParameters) {
		causes = append(causes, cause{SeverityMedium, "type parameter constraints changed"})
	}
	return causes
}

func paramCauses(base, head []apispec.Parameter) []cause {
	var causes []cause
	n := min(len(base), len(head))
	for i := 0; i < n; i++ {
		b, h := base[i], head[i]
		switch {
		case !b.Required && h.Required:
			causes = append(causes, cause{SeverityHigh, fmt.Sprintf("parameter %s became required", b.Name)})
		case b.Required && !h.Required:
			causes = append(causes, cause{SeverityMedium, fmt.Sprintf("parameter %s became optional", b.Name)})
		}
		if normalizeType(b.DeclaredType) != normalizeType(h.DeclaredType) {
			sev := SeverityMedium
			if b.Required && h.Required {
				sev = SeverityHigh
			}
			causes = append(causes, cause{
				sev,
				fmt.Sprintf("parameter %s type changed from %s to %s", b.Name, displayType(b.DeclaredType), displayType(h.DeclaredType)),
			})
		}
	}
	for _, p := range head[n:] {
		if p.Required {
			causes = append(causes, cause{SeverityHigh, fmt.Sprintf("new required parameter %s", p.Name)})
		} else {
			causes = append(causes, cause{SeverityMedium, fmt.Sprintf("new optional parameter %s", p.Name)})
		}
	}
	for _, p := range base[n:] {
		if p.Required {
			causes = append(causes, cause{SeverityHigh, fmt.Sprintf("removed required parameter %s", p.Name)})
		} else {
			causes = append(causes, cause{SeverityMedium, fmt.Sprintf("removed optional parameter %s", p.Name)})
		}
	}
	return causes
}

// categorize reduces an export's causes to one entry: the highest
// severity wins, and the first cause at that severity supplies the
// reason.
func categorize(e *apispec.Export, causes []cause) CategorizedBreaking {
	top := causes[0]
	for _, c := range causes[1:] {
		if top.severity != SeverityHigh && c.severity == SeverityHigh {
			top = c
		}
	}
	return CategorizedBreaking{ID: e.ID, Name: e.Name, Kind: e.Kind, Severity: top.severity, Reason: top.reason}
}

// docsDiffer reports whether two structurally equal exports differ in
// any recorded documentation detail: descriptions, examples,
// deprecation, parameter names. Source locations and derived
// documentation metadata are ignored: a declaration that merely moved
// is unchanged.
func docsDiffer(base, head *apispec.Export) bool {
	return !bytes.Equal(exportFingerprint(base), exportFingerprint(head))
}

func exportFingerprint(e *apispec.Export) []byte {
	c := *e
	c.Docs = nil
	c.Source = nil
	b, err := json.Marshal(&c)
	if err != nil {
		panic(fmt.Sprintf("specdiff: marshal export %q: %v", e.ID, err))
	}
	return b
}

func exportScore(e *apispec.Export) int {
	if e.Docs != nil {
		return e.Docs.CoverageScore
	}
	score, _ := coverage.Score(e, nil)
	return score
}

type driftKey struct {
	exportID string
	typ      apispec.DriftType
	issue    string
}

func driftKeys(spec *apispec.Spec) map[driftKey]struct{} {
	keys := make(map[driftKey]struct{})
	for i := range spec.Exports {
		e := &spec.Exports[i]
		if e.Docs == nil {
			continue
		}
		for _, r := range e.Docs.Drift {
			keys[driftKey{e.ID, r.Type, r.Issue}] = struct{}{}
		}
	}
	return keys
}

// countAbsent counts keys of a that are not in b.
func countAbsent(a, b map[driftKey]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; !ok {
			n++
		}
	}
	return n
}

func exportIndex(spec *apispec.Spec) map[string]*apispec.Export {
	idx := make(map[string]*apispec.Export, len(spec.Exports))
	for i := range spec.Exports {
		idx[spec.Exports[i].ID] = &spec.Exports[i]
	}
	return idx
}

func unionIDs(base, head *apispec.Spec) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(spec *apispec.Spec) {
		for i := range spec.Exports {
			id := spec.Exports[i].ID
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	add(base)
	add(head)
	sort.Strings(ids)
	return ids
}

// normalizeReturn folds the "nothing to return" spellings (absent,
// void, undefined, never) into the empty string.
func normalizeReturn(r *apispec.Return) string {
	if r == nil || apispec.VoidType(r.DeclaredType) {
		return ""
	}
	return normalizeType(r.DeclaredType)
}

func normalizeType(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func displayType(s string) string {
	if s == "" {
		return "void"
	}
	return normalizeType(s)
}

func typeParamsEqual(a, b []apispec.TypeParameter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || normalizeType(a[i].Constraint) != normalizeType(b[i].Constraint) {
			return false
		}
	}
	return true
}
