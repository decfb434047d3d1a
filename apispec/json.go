package apispec

import (
	"encoding/json"
	"fmt"

	"github.com/docdrift/docdrift/internal/advisory"
)

// ParseSpec decodes a Spec from its JSON form. Shape anomalies that the analysis layer can degrade around (duplicate ids, unknown kinds) are logged as
// advisories rather than rejected; only malformed JSON is an error. Schema-level validation of produced specs is the extractor's responsibility.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("apispec: parse spec: %w", err)
	}

	seen := make(map[string]bool, len(spec.Exports))
	for i := range spec.Exports {
		e := &spec.Exports[i]
		if e.ID == "" {
			advisory.Logf("apispec: export %d (%q) has an empty id", i, e.Name)
		} else if seen[e.ID] {
			advisory.Logf("apispec: duplicate export id %q; later entry shadows earlier during diffing", e.ID)
		}
		seen[e.ID] = true
		if e.Kind != "" && !e.Kind.Valid() {
			advisory.Logf("apispec: export %q has unknown kind %q", e.ID, string(e.Kind))
		}
	}
	return &spec, nil
}

// EncodeSpec encodes spec in its stable, indented JSON form.
func EncodeSpec(spec *Spec) ([]byte, error) {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("apispec: encode spec: %w", err)
	}
	return append(data, '\n'), nil
}

// Canonical returns the compact deterministic serialization of spec used for content hashing. The model contains no map-typed fields, so struct field
// order makes encoding/json deterministic here.
func Canonical(spec *Spec) []byte {
	data, err := json.Marshal(spec)
	if err != nil {
		// The model is plain data; marshaling cannot fail for any value of it.
		panic(fmt.Sprintf("apispec: canonical marshal: %v", err))
	}
	return data
}
