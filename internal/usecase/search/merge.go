package search

import "github.com/kailas-cloud/casesearch/internal/domain/document"

// Merge appends fallback documents not already present in primary.
// Documents with an ID are deduplicated by ID; documents without one by full equality.
// Primary order is kept, the result is not truncated.
func Merge(primary, fallback []document.Document) []document.Document {
	if len(fallback) == 0 {
		return primary
	}

	merged := make([]document.Document, 0, len(primary)+len(fallback))
	merged = append(merged, primary...)

	seen := make(map[string]struct{}, len(merged))
	for i := range primary {
		if primary[i].HasID() {
			seen[primary[i].ID] = struct{}{}
		}
	}

	for i := range fallback {
		doc := &fallback[i]
		if doc.HasID() {
			if _, dup := seen[doc.ID]; dup {
				continue
			}
			seen[doc.ID] = struct{}{}
			merged = append(merged, *doc)
			continue
		}
		if containsEqual(merged, doc) {
			continue
		}
		merged = append(merged, *doc)
	}
	return merged
}

func containsEqual(docs []document.Document, doc *document.Document) bool {
	for i := range docs {
		if docs[i].Equal(doc) {
			return true
		}
	}
	return false
}
