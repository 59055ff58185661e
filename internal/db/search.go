package db

// Record is one stored case record as the backend returns it.
type Record = map[string]any

// TextQuery is the input for scored full-text search.
type TextQuery struct {
	Collection string
	Query      string
	// Fields limits the returned record to these top-level keys (plus _id). Empty means all.
	Fields []string
	TopK   int
}

// PatternQuery is the input for substring search.
type PatternQuery struct {
	Collection string
	Pattern    string
	// Fields are dotted paths matched against Pattern; a hit on any one selects the record.
	Fields []string
	Limit  int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single record hit from a search.
type SearchEntry struct {
	Key   string
	Score float64
	Doc   Record
}

// Project keeps only the listed top-level keys of r (and its _id). Empty fields returns r.
func Project(r Record, fields []string) Record {
	if len(fields) == 0 || r == nil {
		return r
	}
	out := make(Record, len(fields)+1)
	if id, ok := r["_id"]; ok {
		out["_id"] = id
	}
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}
