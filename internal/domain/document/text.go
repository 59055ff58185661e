package document

import (
	"fmt"
	"sort"
	"strings"
)

// Text flattens the record into one string for embedding.
// Order: title, court, citation, bench, issues, summary, reasoning (by topic name),
// decision, directions. Empty parts are skipped.
func (d *Document) Text() string {
	parts := make([]string, 0, 16)
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	add(d.Title)
	add(d.Court)
	add(d.Citation)
	for _, b := range d.textList(FieldBench, d.Bench) {
		add(b)
	}
	for _, issue := range d.textList(FieldIssues, d.Issues) {
		add(issue)
	}
	add(d.Summary())

	topics := make([]string, 0, len(d.Reasoning))
	for k := range d.Reasoning {
		topics = append(topics, k)
	}
	sort.Strings(topics)
	for _, k := range topics {
		add(d.Reasoning[k])
	}

	if d.Outcome != nil {
		add(d.Outcome.Decision)
		for _, dir := range d.Outcome.Directions {
			add(dir)
		}
	}
	return strings.Join(parts, " ")
}

// textList returns typed list members, or the scalar members of a mixed list
// that Normalize left in Extra, rendered as text.
func (d *Document) textList(field string, typed []string) []string {
	if len(typed) > 0 {
		return typed
	}
	raw, ok := d.Extra[field].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case nil, map[string]any, []any:
			continue
		case string:
			out = append(out, v)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
