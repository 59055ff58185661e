package db

import (
	"fmt"
	"strconv"
)

// RecordID returns the string form of a record's _id, or false when it has none.
func RecordID(r Record) (string, bool) {
	v, ok := r["_id"]
	if !ok || v == nil {
		return "", false
	}
	switch id := v.(type) {
	case string:
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case fmt.Stringer:
		return id.String(), true
	default:
		return fmt.Sprint(id), true
	}
}
