package samples

import (
	"strings"
	"testing"
)

func TestRecords(t *testing.T) {
	recs, err := Records()
	if err != nil {
		t.Fatalf("Records(): %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("no bundled cases")
	}
	for i, r := range recs {
		if _, ok := r["_id"].(string); !ok {
			t.Errorf("record %d has no string _id", i)
		}
	}

	recs[0]["case_title"] = "changed"
	again, _ := Records()
	if again[0]["case_title"] == "changed" {
		t.Error("Records must return independent copies")
	}
}

func TestCases(t *testing.T) {
	cases := Cases()
	if len(cases) == 0 {
		t.Fatal("no bundled cases")
	}
	c := cases[0]
	if c.ID != "68c93ace241e4ea8580068af" {
		t.Errorf("ID = %q", c.ID)
	}
	if c.Title == "" || c.Court == "" || len(c.Bench) != 2 || len(c.Issues) == 0 {
		t.Errorf("recognized fields missing: %+v", c)
	}
	if c.Outcome == nil || len(c.Outcome.Directions) != 2 {
		t.Errorf("outcome = %+v", c.Outcome)
	}
	if !strings.Contains(c.Summary(), "Kerala Police Act") {
		t.Errorf("summary = %q", c.Summary())
	}
	if c.Field("judgment_date") != "2023-03-24" {
		t.Errorf("judgment_date = %q", c.Field("judgment_date"))
	}
}
