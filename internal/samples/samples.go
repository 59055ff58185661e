// Package samples bundles case records shown when the store cannot answer.
package samples

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/casesearch/internal/domain/document"
)

//go:embed cases.json
var casesJSON []byte

// Records returns the raw bundled case records, for seeding a store.
// Each call decodes fresh maps, so callers may modify them.
func Records() ([]map[string]any, error) {
	var out []map[string]any
	if err := json.Unmarshal(casesJSON, &out); err != nil {
		return nil, fmt.Errorf("decode bundled cases: %w", err)
	}
	return out, nil
}

// Cases returns the bundled cases as normalized documents.
// The embedded file is validated by tests, so a decode failure yields an empty list.
func Cases() []document.Document {
	recs, err := Records()
	if err != nil {
		return []document.Document{}
	}
	out := make([]document.Document, 0, len(recs))
	for _, r := range recs {
		out = append(out, document.Normalize(r))
	}
	return out
}
