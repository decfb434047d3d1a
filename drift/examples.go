package drift

import (
	"sort"
	"strings"

	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/internal/advisory"
	"github.com/docdrift/docdrift/internal/uni"
)

// ExampleResult is what the external example runner reports for one embedded example. The core never executes examples; it only turns these into drift
// records.
type ExampleResult struct {
	ExportID string `json:"exportId"`
	Index    int    `json:"index"` // index into the export's Examples
	Passed   bool   `json:"passed"`
	Stdout   string `json:"stdout"`
	Error    string `json:"error,omitempty"` // crash/non-zero-exit message; "" if the example ran to completion
}

// AssertionParser is an optional injected capability that widens assertion recall beyond the built-in "// => expected" convention (for instance a model-backed
// parser for free-form "prints ..." phrasing). Detection behaves identically without it, only with reduced recall.
type AssertionParser interface {
	Available() bool
	ParseAssertion(line string) (expected string, ok bool)
}

const assertionMarker = "// =>"

// FromExampleResults converts runner results for e into drift records: a crash or runner-reported failure becomes example-runtime-error, and a mismatched
// inline output assertion becomes example-assertion-failure with the expected value as the suggestion. parser may be nil. Results for other exports are
// ignored; results are processed in example order so the output is stable.
func FromExampleResults(e *apispec.Export, results []ExampleResult, parser AssertionParser) []apispec.DriftRecord {
	var mine []ExampleResult
	for _, r := range results {
		if r.ExportID == e.ID {
			mine = append(mine, r)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].Index < mine[j].Index })

	var records []apispec.DriftRecord
	for _, r := range mine {
		if r.Error != "" {
			records = append(records, record(apispec.DriftExampleRuntimeError, "", "",
				"example %d failed at runtime: %s", r.Index+1, uni.Truncate(r.Error, 120, "...", nil)))
			continue
		}
		if !r.Passed {
			records = append(records, record(apispec.DriftExampleRuntimeError, "", "",
				"example %d was reported as failing by the example runner", r.Index+1))
			continue
		}

		if r.Index < 0 || r.Index >= len(e.Examples) {
			advisory.Logf("drift: example result index %d out of range for export %q (%d examples)", r.Index, e.ID, len(e.Examples))
			continue
		}
		expected, found := ExtractAssertion(e.Examples[r.Index], parser)
		if !found {
			continue
		}
		if strings.TrimSpace(r.Stdout) != strings.TrimSpace(expected) {
			records = append(records, record(apispec.DriftExampleAssertionError, "", expected,
				"example %d expected output %q but produced %q", r.Index+1,
				uni.Truncate(expected, 80, "...", nil), uni.Truncate(strings.TrimSpace(r.Stdout), 80, "...", nil)))
		}
	}
	return records
}

// ExtractAssertion collects the example's inline expected-output assertions. Built-in convention: lines containing "// => expected". When parser is available
// it is consulted for lines the convention does not match. Multiple assertion lines join with newlines, mirroring multi-line stdout.
func ExtractAssertion(example string, parser AssertionParser) (string, bool) {
	var parts []string
	for _, line := range strings.Split(example, "\n") {
		if i := strings.Index(line, assertionMarker); i >= 0 {
			parts = append(parts, strings.TrimSpace(line[i+len(assertionMarker):]))
			continue
		}
		if parser != nil && parser.Available() {
			if expected, ok := parser.ParseAssertion(line); ok {
				parts = append(parts, expected)
			}
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}
