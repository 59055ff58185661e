package document

import (
	"encoding/json"
	"reflect"
)

// Stored field names of a case record.
const (
	FieldID        = "_id"
	FieldScore     = "score"
	FieldTitle     = "case_title"
	FieldCourt     = "court"
	FieldCitation  = "citation"
	FieldBench     = "bench"
	FieldIssues    = "issues"
	FieldReasoning = "reasoning"
	FieldOutcome   = "outcome"
	FieldSummary   = "summary"
	FieldMetadata  = "search_metadata"
	FieldDate      = "judgment_date"
)

// presence bits for recognized fields, so Map reproduces keys that were stored empty.
const (
	hasID uint16 = 1 << iota
	hasTitle
	hasCourt
	hasCitation
	hasBench
	hasIssues
	hasReasoning
	hasOutcome
)

// Outcome is the structured disposition of a case.
type Outcome struct {
	Decision   string
	Directions []string
}

// Document is one case record. Fields the ranking stages read are typed;
// everything else rides along untouched in Extra.
type Document struct {
	ID        string
	Title     string
	Court     string
	Citation  string
	Bench     []string
	Issues    []string
	Reasoning map[string]string
	Outcome   *Outcome
	Extra     map[string]any

	present uint16
}

// HasID reports whether the document carries a usable identifier.
func (d *Document) HasID() bool { return d.ID != "" }

// Summary returns the case summary: top-level "summary", else "search_metadata.summary".
func (d *Document) Summary() string {
	if s, ok := d.Extra[FieldSummary].(string); ok && s != "" {
		return s
	}
	if meta, ok := d.Extra[FieldMetadata].(map[string]any); ok {
		if s, ok := meta[FieldSummary].(string); ok {
			return s
		}
	}
	return ""
}

// Field returns a pass-through string field from Extra (e.g. judgment_date).
func (d *Document) Field(key string) string {
	s, _ := d.Extra[key].(string)
	return s
}

// Map reassembles the record under its stored field names.
func (d *Document) Map() map[string]any {
	m := make(map[string]any, len(d.Extra)+8)
	for k, v := range d.Extra {
		m[k] = v
	}
	if d.present&hasID != 0 || d.ID != "" {
		m[FieldID] = d.ID
	}
	if d.present&hasTitle != 0 || d.Title != "" {
		m[FieldTitle] = d.Title
	}
	if d.present&hasCourt != 0 || d.Court != "" {
		m[FieldCourt] = d.Court
	}
	if d.present&hasCitation != 0 || d.Citation != "" {
		m[FieldCitation] = d.Citation
	}
	if d.present&hasBench != 0 || d.Bench != nil {
		m[FieldBench] = cloneStrings(d.Bench)
	}
	if d.present&hasIssues != 0 || d.Issues != nil {
		m[FieldIssues] = cloneStrings(d.Issues)
	}
	if d.present&hasReasoning != 0 || d.Reasoning != nil {
		r := make(map[string]any, len(d.Reasoning))
		for k, v := range d.Reasoning {
			r[k] = v
		}
		m[FieldReasoning] = r
	}
	if d.present&hasOutcome != 0 || d.Outcome != nil {
		o := map[string]any{}
		if d.Outcome != nil {
			if d.Outcome.Decision != "" {
				o["decision"] = d.Outcome.Decision
			}
			if d.Outcome.Directions != nil {
				o["directions"] = cloneStrings(d.Outcome.Directions)
			}
		}
		m[FieldOutcome] = o
	}
	return m
}

// Equal reports field-for-field equality of two records.
func (d *Document) Equal(other *Document) bool {
	return reflect.DeepEqual(d.Map(), other.Map())
}

// MarshalJSON renders the record with its stored field names.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// UnmarshalJSON decodes a stored record through Normalize.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Normalize(raw)
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
