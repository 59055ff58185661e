package db

import "strings"

// MatchPattern reports whether any of the dotted field paths of r contains pattern,
// ignoring case. String values and lists of strings are inspected; other values never match.
// An empty pattern matches nothing.
func MatchPattern(r Record, pattern string, fields []string) bool {
	if pattern == "" {
		return false
	}
	needle := strings.ToLower(pattern)
	for _, f := range fields {
		if containsValue(lookup(r, f), needle) {
			return true
		}
	}
	return false
}

// lookup resolves a dotted path ("search_metadata.summary") inside nested maps.
// A trailing list marker ("issues[*]") is accepted and ignored.
func lookup(r Record, path string) any {
	var cur any = r
	for _, part := range strings.Split(FieldPath(path), ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[part]
		if !ok {
			return nil
		}
	}
	return cur
}

func containsValue(v any, needle string) bool {
	switch val := v.(type) {
	case string:
		return strings.Contains(strings.ToLower(val), needle)
	case []any:
		for _, item := range val {
			if containsValue(item, needle) {
				return true
			}
		}
	case []string:
		for _, item := range val {
			if strings.Contains(strings.ToLower(item), needle) {
				return true
			}
		}
	}
	return false
}

// FieldPath strips the list marker from a configured field path.
func FieldPath(field string) string {
	return strings.TrimSuffix(field, "[*]")
}
