package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_JSONTextAs(t *testing.T) {
	idx, err := NewIndex("cases:idx").
		Prefix("cases:").
		TextAs("$.case_title", "case_title").
		TextAs("$.issues[*]", "issues").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idx.Name != "cases:idx" || len(idx.Prefixes) != 1 {
		t.Errorf("index = %+v", idx)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if f := idx.Fields[1]; f.Path != "$.issues[*]" || f.Alias != "issues" {
		t.Errorf("field[1] = %+v", f)
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx, err := NewIndex("multi-idx").
		Prefix("a:", "b:", "c:").
		TextAs("$.x", "x").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx.Prefixes) != 3 {
		t.Errorf("prefix count = %d, want 3", len(idx.Prefixes))
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").TextAs("$.x", "x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "empty path",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").TextAs("", "x").Build()
			},
			wantErr: "field path is required",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").TextAs("$.x", "x").Build()
			},
			wantErr: "invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexBuilder_DuplicateFields(t *testing.T) {
	idx := &IndexDefinition{
		Name: "dup-idx",
		Fields: []IndexField{
			{Path: "$.a", Alias: "field1"},
			{Path: "$.b", Alias: "field1"},
		},
	}

	if err := idx.Validate(); err == nil {
		t.Fatal("expected error for duplicate aliases")
	}
}

func TestMatchPattern(t *testing.T) {
	rec := Record{
		"case_title": "Union Bank vs Rajat",
		"issues":     []any{"Limitation under Article 137", 42},
		"search_metadata": map[string]any{
			"summary": "Acknowledgment of DEBT",
		},
		"bench": []string{"R. Mahadevan"},
	}
	fields := []string{"case_title", "issues", "search_metadata.summary", "bench"}

	tests := []struct {
		pattern string
		want    bool
	}{
		{"union", true},
		{"ARTICLE 137", true},
		{"debt", true},
		{"mahadevan", true},
		{"42", false},
		{"", false},
		{"arbitration", false},
	}
	for _, tt := range tests {
		if got := MatchPattern(rec, tt.pattern, fields); got != tt.want {
			t.Errorf("MatchPattern(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestMatchPattern_MissingPath(t *testing.T) {
	rec := Record{"search_metadata": "not a map"}
	if MatchPattern(rec, "x", []string{"search_metadata.summary", "absent"}) {
		t.Error("expected no match on unresolvable paths")
	}
}

func TestProject(t *testing.T) {
	rec := Record{"_id": "1", "case_title": "T", "parties": "P", "score": 2.0}
	got := Project(rec, []string{"case_title", "absent"})
	if len(got) != 2 || got["_id"] != "1" || got["case_title"] != "T" {
		t.Errorf("Project = %v", got)
	}
	if all := Project(rec, nil); len(all) != 4 {
		t.Errorf("Project(nil) = %v, want record unchanged", all)
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpGet, Err: ErrKeyNotFound}
	if err.Error() != "GET: db: key not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != ErrKeyNotFound {
		t.Error("Unwrap mismatch")
	}
}
