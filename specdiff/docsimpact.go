package specdiff

import (
	"sort"

	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/mdscan"
)

// ImpactChange tags how the API surface a reference touches changed.
type ImpactChange string

const (
	ImpactExportRemoved ImpactChange = "removed"
	ImpactExportChanged ImpactChange = "changed"
	ImpactMemberRemoved ImpactChange = "member-removed"
	ImpactMemberChanged ImpactChange = "member-changed"
)

// DocReference is one markdown example line that touches a changed
// export or member. IsInstantiation marks the lower-priority "class
// still exists but changed" constructor references.
type DocReference struct {
	Line                  int          `json:"line"`
	ExportName            string       `json:"exportName"`
	MemberName            string       `json:"memberName,omitempty"`
	ChangeType            ImpactChange `json:"changeType"`
	IsInstantiation       bool         `json:"isInstantiation"`
	ReplacementSuggestion string       `json:"replacementSuggestion,omitempty"`
}

// ImpactedFile is one markdown file with its affected references,
// sorted by line.
type ImpactedFile struct {
	File       string         `json:"file"`
	References []DocReference `json:"references"`
}

// ImpactStats summarizes the scanned corpus against the head spec.
type ImpactStats struct {
	FilesScanned      int `json:"filesScanned"`
	CodeBlocksFound   int `json:"codeBlocksFound"`
	TotalExports      int `json:"totalExports"`
	DocumentedExports int `json:"documentedExports"`
}

// DocsImpact reports which markdown examples a diff invalidates.
// MissingDocs lists new exports no scanned file mentions;
// AllUndocumented lists every undocumented head export regardless of
// what changed.
type DocsImpact struct {
	ImpactedFiles   []ImpactedFile `json:"impactedFiles"`
	MissingDocs     []string       `json:"missingDocs"`
	AllUndocumented []string       `json:"allUndocumented"`
	Stats           ImpactStats    `json:"stats"`
}

func buildDocsImpact(base, head *apispec.Spec, d *SpecDiff, addedIDs []string, docs []mdscan.Document) *DocsImpact {
	headByID := exportIndex(head)
	baseByID := exportIndex(base)

	removed := make(map[string]bool)
	changed := make(map[string]bool)
	for _, id := range d.Breaking {
		if he := headByID[id]; he != nil {
			changed[he.Name] = true
		} else if be := baseByID[id]; be != nil {
			removed[be.Name] = true
		}
	}
	memberChange := make(map[string]map[string]MemberChange)
	for _, mc := range d.MemberChanges {
		if mc.Change == MemberAdded {
			continue
		}
		if memberChange[mc.ClassName] == nil {
			memberChange[mc.ClassName] = make(map[string]MemberChange)
		}
		memberChange[mc.ClassName][mc.MemberName] = mc
	}

	scans := mdscan.ScanAll(docs)
	impact := &DocsImpact{
		ImpactedFiles:   []ImpactedFile{},
		MissingDocs:     []string{},
		AllUndocumented: []string{},
	}
	impact.Stats.FilesScanned = len(scans)
	for _, s := range scans {
		impact.Stats.CodeBlocksFound += s.CodeBlocks
		refs := impactedReferences(s, removed, changed, memberChange)
		if len(refs) > 0 {
			impact.ImpactedFiles = append(impact.ImpactedFiles, ImpactedFile{File: s.Path, References: refs})
		}
	}
	sort.Slice(impact.ImpactedFiles, func(i, j int) bool {
		return impact.ImpactedFiles[i].File < impact.ImpactedFiles[j].File
	})

	// New exports nobody's markdown mentions yet.
	for _, id := range addedIDs {
		he := headByID[id]
		if he == nil {
			continue
		}
		mentioned := false
		for _, s := range scans {
			if s.Mentions(he.Name) {
				mentioned = true
				break
			}
		}
		if !mentioned {
			impact.MissingDocs = append(impact.MissingDocs, he.Name)
		}
	}
	sort.Strings(impact.MissingDocs)

	impact.Stats.TotalExports = len(head.Exports)
	for i := range head.Exports {
		if head.Exports[i].Undocumented() {
			impact.AllUndocumented = append(impact.AllUndocumented, head.Exports[i].Name)
		} else {
			impact.Stats.DocumentedExports++
		}
	}
	sort.Strings(impact.AllUndocumented)
	return impact
}

// impactedReferences tags the scan's references that touch a changed
// part of the API. Member-level matches win over export-level ones:
// client.connect() on a class whose connect was removed reports the
// member, not the class.
func impactedReferences(s mdscan.Scan, removed, changed map[string]bool, memberChange map[string]map[string]MemberChange) []DocReference {
	var refs []DocReference
	for _, r := range s.References {
		if r.Member != "" {
			if mc, ok := memberChange[r.Name][r.Member]; ok {
				ref := DocReference{
					Line:       r.Line,
					ExportName: r.Name,
					MemberName: r.Member,
				}
				if mc.Change == MemberRemoved {
					ref.ChangeType = ImpactMemberRemoved
					ref.ReplacementSuggestion = mc.Suggestion
				} else {
					ref.ChangeType = ImpactMemberChanged
				}
				refs = append(refs, ref)
				continue
			}
		}
		switch {
		case removed[r.Name]:
			refs = append(refs, DocReference{
				Line:            r.Line,
				ExportName:      r.Name,
				MemberName:      r.Member,
				ChangeType:      ImpactExportRemoved,
				IsInstantiation: r.IsInstantiation,
			})
		case changed[r.Name]:
			refs = append(refs, DocReference{
				Line:            r.Line,
				ExportName:      r.Name,
				MemberName:      r.Member,
				ChangeType:      ImpactExportChanged,
				IsInstantiation: r.IsInstantiation,
			})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Line < refs[j].Line })
	return refs
}
