package document

import (
	"fmt"
	"strconv"
)

// Normalize turns a raw store record into a Document.
// The identifier is coerced to its string form and the transitory relevance score is dropped;
// every other field is kept as stored. A nil record yields an empty Document.
func Normalize(raw map[string]any) Document {
	var d Document
	if raw == nil {
		return d
	}

	extra := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case FieldScore:
			continue
		case FieldID:
			if v == nil {
				extra[k] = v
				continue
			}
			d.ID = identifierString(v)
			d.present |= hasID
		case FieldTitle, FieldCourt, FieldCitation:
			s, ok := v.(string)
			if !ok {
				extra[k] = v
				continue
			}
			d.setText(k, s)
		case FieldBench, FieldIssues:
			list, ok := stringList(v)
			if !ok {
				extra[k] = v
				continue
			}
			if k == FieldBench {
				d.Bench = list
				d.present |= hasBench
			} else {
				d.Issues = list
				d.present |= hasIssues
			}
		case FieldReasoning:
			r, ok := stringMap(v)
			if !ok {
				extra[k] = v
				continue
			}
			d.Reasoning = r
			d.present |= hasReasoning
		case FieldOutcome:
			o, ok := outcome(v)
			if !ok {
				extra[k] = v
				continue
			}
			d.Outcome = o
			d.present |= hasOutcome
		default:
			extra[k] = v
		}
	}

	if len(extra) > 0 {
		d.Extra = extra
	}
	return d
}

func (d *Document) setText(field, s string) {
	switch field {
	case FieldTitle:
		d.Title = s
		d.present |= hasTitle
	case FieldCourt:
		d.Court = s
		d.present |= hasCourt
	case FieldCitation:
		d.Citation = s
		d.present |= hasCitation
	}
}

// identifierString renders an identifier of any stored type as a string.
func identifierString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case fmt.Stringer:
		return id.String()
	case int:
		return strconv.Itoa(id)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(id)
	default:
		return fmt.Sprint(id)
	}
}

func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func stringMap(v any) (map[string]string, bool) {
	switch m := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, item := range m {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// outcome accepts only {decision, directions}; any other shape stays in Extra.
func outcome(v any) (*Outcome, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	o := &Outcome{}
	for k, item := range m {
		switch k {
		case "decision":
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			o.Decision = s
		case "directions":
			list, ok := stringList(item)
			if !ok {
				return nil, false
			}
			o.Directions = list
		default:
			return nil, false
		}
	}
	return o, true
}
