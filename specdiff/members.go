package specdiff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docdrift/docdrift/apispec"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// MemberChangeType tags a MemberChange.
type MemberChangeType string

const (
	MemberRemoved          MemberChangeType = "removed"
	MemberAdded            MemberChangeType = "added"
	MemberSignatureChanged MemberChangeType = "signature-changed"
)

// MemberChange is one detected difference in a class-like export's
// member list. OldSignature and NewSignature are display strings;
// Suggestion, when set on a removal, names a similarly-named member
// added in head.
type MemberChange struct {
	ClassName    string           `json:"className"`
	MemberName   string           `json:"memberName"`
	Change       MemberChangeType `json:"changeType"`
	OldSignature string           `json:"oldSignature,omitempty"`
	NewSignature string           `json:"newSignature,omitempty"`
	Suggestion   string           `json:"suggestion,omitempty"`
}

// ClassChanges groups one class's member changes.
type ClassChanges struct {
	ClassName string         `json:"className"`
	Changes   []MemberChange `json:"changes"`
}

// GroupMemberChanges groups changes by class, preserving input order
// within each class. Groups come back sorted by class name.
func GroupMemberChanges(changes []MemberChange) []ClassChanges {
	byClass := make(map[string][]MemberChange)
	for _, mc := range changes {
		byClass[mc.ClassName] = append(byClass[mc.ClassName], mc)
	}
	names := make([]string, 0, len(byClass))
	for name := range byClass {
		names = append(names, name)
	}
	sort.Strings(names)
	groups := make([]ClassChanges, 0, len(names))
	for _, name := range names {
		groups = append(groups, ClassChanges{ClassName: name, Changes: byClass[name]})
	}
	return groups
}

// memberedKinds are the export kinds whose Members lists are diffed.
var memberedKinds = map[apispec.ExportKind]bool{
	apispec.KindClass:     true,
	apispec.KindInterface: true,
	apispec.KindEnum:      true,
}

// diffMembers compares the member lists of two versions of the same
// export by name. Removals come first in base order, then signature
// changes, then additions in head order; Diff sorts the combined list
// afterwards.
func diffMembers(base, head *apispec.Export) []MemberChange {
	if base.Kind != head.Kind || !memberedKinds[base.Kind] {
		return nil
	}
	baseByName := memberIndex(base.Members)
	headByName := memberIndex(head.Members)

	var added []*apispec.Member
	for i := range head.Members {
		if baseByName[head.Members[i].Name] == nil {
			added = append(added, &head.Members[i])
		}
	}

	className := head.Name
	var changes []MemberChange
	for i := range base.Members {
		bm := &base.Members[i]
		hm := headByName[bm.Name]
		if hm == nil {
			mc := MemberChange{
				ClassName:    className,
				MemberName:   bm.Name,
				Change:       MemberRemoved,
				OldSignature: bm.DisplaySignature(),
			}
			mc.Suggestion = bestReplacement(bm.Name, added)
			changes = append(changes, mc)
			continue
		}
		if memberStructureChanged(bm, hm) {
			changes = append(changes, MemberChange{
				ClassName:    className,
				MemberName:   bm.Name,
				Change:       MemberSignatureChanged,
				OldSignature: bm.DisplaySignature(),
				NewSignature: hm.DisplaySignature(),
			})
		}
	}
	for _, hm := range added {
		changes = append(changes, MemberChange{
			ClassName:    className,
			MemberName:   hm.Name,
			Change:       MemberAdded,
			NewSignature: hm.DisplaySignature(),
		})
	}
	return changes
}

func memberIndex(members []apispec.Member) map[string]*apispec.Member {
	idx := make(map[string]*apispec.Member, len(members))
	for i := range members {
		idx[members[i].Name] = &members[i]
	}
	return idx
}

// memberStructureChanged applies the export-level structural rules to
// a member pair, plus the member-only dimensions (kind, visibility).
func memberStructureChanged(base, head *apispec.Member) bool {
	if base.Kind != head.Kind || base.Visibility != head.Visibility {
		return true
	}
	return len(signatureCauses(base.Signatures, head.Signatures)) > 0
}

// memberCauses translates an export's member changes into breaking
// causes: a removed member breaks callers outright, a changed
// signature degrades them.
func memberCauses(changes []MemberChange) []cause {
	var causes []cause
	for _, mc := range changes {
		switch mc.Change {
		case MemberRemoved:
			causes = append(causes, cause{SeverityHigh, fmt.Sprintf("removed member %s", mc.MemberName)})
		case MemberSignatureChanged:
			causes = append(causes, cause{SeverityMedium, fmt.Sprintf("member %s signature changed", mc.MemberName)})
		}
	}
	return causes
}

func hasAdditions(changes []MemberChange) bool {
	for _, mc := range changes {
		if mc.Change == MemberAdded {
			return true
		}
	}
	return false
}

// replacementThreshold is the minimum name similarity for suggesting
// an added member as the successor of a removed one.
const replacementThreshold = 0.5

// bestReplacement picks the added member whose name is most similar to
// the removed one. Renames usually surface as a removal plus an
// addition, so only freshly added members qualify.
func bestReplacement(removed string, added []*apispec.Member) string {
	dmp := diffmatchpatch.New()
	best := ""
	bestScore := replacementThreshold
	for _, m := range added {
		if s := nameSimilarity(dmp, removed, m.Name); s > bestScore {
			best, bestScore = m.Name, s
		}
	}
	return best
}

// nameSimilarity is 2*common/(len(a)+len(b)) over the character diff
// of the lowercased names: 1 for a case-only rename, 0 for disjoint
// names.
func nameSimilarity(dmp *diffmatchpatch.DiffMatchPatch, a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for _, d := range dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			common += len(d.Text)
		}
	}
	return float64(2*common) / float64(len(a)+len(b))
}
