// Package apispec defines the structural snapshot of a package's public API — its exports, signatures, and members — plus the documentation metadata derived
// from it (coverage score, missing signals, drift records).
//
// A bare Spec is produced once by an external extractor and consumed here; this package never parses or type-checks source code. Enrichment (see the enrich
// package) attaches DocsMetadata to the root and to every export, returning a new Spec.
//
// Invariants:
//   - An Export's ID is unique within its Spec. Duplicates are tolerated with degraded behavior (later entries shadow earlier ones during diffing), never a panic.
//   - DocsMetadata is always derived, never hand-authored; CoverageScore is in [0, 100] and is 100 exactly when Missing is empty.
//   - Spec values are treated as immutable: all transformations return new values, and callers must not modify a Spec after handing it to this module.
//
// The JSON forms produced by EncodeSpec and consumed by ParseSpec use the stable camelCase field names that external tooling (CI bots, renderers) relies on.
package apispec
