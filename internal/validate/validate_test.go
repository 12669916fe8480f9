package validate

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return doc
}

const validProfile = `{
  "fund_name": "Lool Ventures",
  "mode": "generic",
  "thesis_areas": ["devtools"],
  "check_size_range": {"min": 500000, "max": 2000000},
  "stage_focus": ["seed"],
  "archetypes": [
    {"role": "visionary", "name": "Vera"},
    {"role": "operator", "name": "Omar"},
    {"role": "analyst", "name": "Ana"}
  ],
  "portfolio": [{"name": "Acme"}]
}`

func TestFundProfile_Valid(t *testing.T) {
	out, res := FundProfile(decode(t, validProfile))
	if !res.Valid() {
		t.Fatalf("errors = %v, want none", res.Errors)
	}
	if res.Status != StatusValid {
		t.Errorf("Status = %q, want %q", res.Status, StatusValid)
	}
	if out["fund_name"] != "Lool Ventures" {
		t.Errorf("profile fields not carried through: %v", out)
	}
	if _, ok := out["validation"]; !ok {
		t.Error("output missing validation key")
	}
}

func TestFundProfile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		want   string
	}{
		{"missing field", func(d map[string]any) { delete(d, "fund_name") }, "Missing required field: fund_name"},
		{"bad mode", func(d map[string]any) { d["mode"] = "vibes" }, "Invalid mode 'vibes'"},
		{"empty thesis", func(d map[string]any) { d["thesis_areas"] = []any{} }, "thesis_areas must contain at least 1"},
		{"thesis not array", func(d map[string]any) { d["thesis_areas"] = "ai" }, "thesis_areas must be an array"},
		{"empty stage focus", func(d map[string]any) { d["stage_focus"] = []any{} }, "stage_focus must be a non-empty array"},
		{"range as string", func(d map[string]any) { d["check_size_range"] = "5M-15M" }, "check_size_range must be an object (got string)"},
		{"range missing max", func(d map[string]any) { d["check_size_range"] = map[string]any{"min": 1.0} }, "check_size_range missing 'max' field"},
		{"range inverted", func(d map[string]any) {
			d["check_size_range"] = map[string]any{"min": 5000000.0, "max": 1000000.0}
		}, "check_size_range.min (5000000) must be <= max (1000000)"},
		{"range negative", func(d map[string]any) {
			d["check_size_range"] = map[string]any{"min": -1.0, "max": 1.0}
		}, "check_size_range.min must be non-negative"},
		{"range non-numeric", func(d map[string]any) {
			d["check_size_range"] = map[string]any{"min": "1M", "max": 2.0}
		}, "min and max must be numbers"},
		{"two archetypes", func(d map[string]any) {
			d["archetypes"] = d["archetypes"].([]any)[:2]
		}, "Must have exactly 3 archetypes, got 2"},
		{"duplicate role", func(d map[string]any) {
			a := d["archetypes"].([]any)
			a[2].(map[string]any)["role"] = "operator"
		}, "Archetype 2: duplicate role 'operator'"},
		{"bad role", func(d map[string]any) {
			d["archetypes"].([]any)[0].(map[string]any)["role"] = "oracle"
		}, "Archetype 0: invalid role 'oracle'"},
		{"unnamed archetype", func(d map[string]any) {
			delete(d["archetypes"].([]any)[1].(map[string]any), "name")
		}, "Archetype 1: missing 'name' field"},
		{"portfolio entry not object", func(d map[string]any) { d["portfolio"] = []any{"Acme"} }, "Portfolio entry 0 must be an object"},
		{"portfolio entry unnamed", func(d map[string]any) { d["portfolio"] = []any{map[string]any{}} }, "Portfolio entry 0: missing 'name' field"},
		{"fund specific without sources", func(d map[string]any) { d["mode"] = "fund_specific" }, "sources required for fund_specific mode"},
		{"fund specific bad source", func(d map[string]any) {
			d["mode"] = "fund_specific"
			d["sources"] = []any{map[string]any{"publisher": "x"}}
		}, "Source 0 must have at least 'url' or 'title'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decode(t, validProfile)
			tt.mutate(doc)
			_, res := FundProfile(doc)
			if res.Status != StatusInvalid {
				t.Fatalf("Status = %q, want invalid", res.Status)
			}
			if !containsMsg(res.Errors, tt.want) {
				t.Errorf("errors = %v, want one containing %q", res.Errors, tt.want)
			}
		})
	}
}

func TestFundProfile_FundSpecificWithSources(t *testing.T) {
	doc := decode(t, validProfile)
	doc["mode"] = "fund_specific"
	doc["sources"] = []any{map[string]any{"url": "https://lool.vc"}}
	if _, res := FundProfile(doc); !res.Valid() {
		t.Errorf("errors = %v, want none", res.Errors)
	}
}

func TestNormalizeCompany(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Acme Inc.", "acme"},
		{"  ACME   Robotics  LLC ", "acme robotics"},
		{"Acme", "acme"},
		{"Globex Corp.", "globex"},
		{"Initech Ltd", "initech"},
		{"Vandelay Inc. Inc.", "vandelay inc."},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCompany(tt.in); got != tt.want {
			t.Errorf("NormalizeCompany(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConflicts_DedupFirstOccurrenceWins(t *testing.T) {
	doc := decode(t, `{
	  "portfolio_size": 10,
	  "conflicts": [
	    {"company": "Acme Inc.", "type": "direct", "severity": "manageable", "rationale": "first"},
	    {"company": "acme", "type": "Direct", "severity": "blocking", "rationale": "second"},
	    {"company": "Acme", "type": "adjacent", "severity": "manageable", "rationale": "other type"}
	  ]
	}`)
	rep := Conflicts(doc)
	if !rep.Validation.Valid() {
		t.Fatalf("errors = %v", rep.Validation.Errors)
	}
	kept := rep.Doc["conflicts"].([]any)
	if len(kept) != 2 {
		t.Fatalf("kept %d conflicts, want 2", len(kept))
	}
	if r := kept[0].(map[string]any)["rationale"]; r != "first" {
		t.Errorf("kept[0].rationale = %v, want first", r)
	}
	if len(rep.Dropped) != 1 || rep.Dropped[0].Company != "acme" {
		t.Errorf("Dropped = %+v, want one acme entry", rep.Dropped)
	}
	if rep.Summary == nil {
		t.Fatal("Summary is nil for a valid check")
	}
	if rep.Summary.OverallSeverity != SeverityManageable || rep.Summary.HasBlockingConflict {
		t.Errorf("Summary = %+v, want manageable without blocking", rep.Summary)
	}
	if rep.Summary.ConflictCount != 2 || rep.Summary.TotalChecked != 10 {
		t.Errorf("Summary counts = %+v", rep.Summary)
	}
}

func TestConflicts_Severity(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"clear", `{"portfolio_size": 3, "conflicts": []}`, SeverityClear},
		{"blocking", `{"portfolio_size": 3.0, "conflicts": [
			{"company": "A", "type": "direct", "severity": "manageable", "rationale": "r"},
			{"company": "B", "type": "customer_overlap", "severity": "blocking", "rationale": "r"}]}`, SeverityBlocking},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Conflicts(decode(t, tt.json))
			if rep.Summary == nil {
				t.Fatalf("Summary nil, errors = %v", rep.Validation.Errors)
			}
			if rep.Summary.OverallSeverity != tt.want {
				t.Errorf("OverallSeverity = %q, want %q", rep.Summary.OverallSeverity, tt.want)
			}
		})
	}
}

func TestConflicts_FailClosed(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"missing fields", `{}`, "Missing required field: portfolio_size"},
		{"fractional size", `{"portfolio_size": 2.5, "conflicts": []}`, "portfolio_size must be a non-negative integer, got 2.5"},
		{"negative size", `{"portfolio_size": -1, "conflicts": []}`, "non-negative integer"},
		{"conflicts not array", `{"portfolio_size": 1, "conflicts": {}}`, "conflicts must be an array"},
		{"entry not object", `{"portfolio_size": 1, "conflicts": ["Acme"]}`, "Conflict 0 must be an object"},
		{"bad type", `{"portfolio_size": 1, "conflicts": [{"company": "A", "type": "cousin", "severity": "blocking", "rationale": "r"}]}`, "Conflict 0: invalid type 'cousin'"},
		{"bad severity", `{"portfolio_size": 1, "conflicts": [{"company": "A", "type": "direct", "severity": "meh", "rationale": "r"}]}`, "Conflict 0: invalid severity 'meh'"},
		{"missing rationale", `{"portfolio_size": 1, "conflicts": [{"company": "A", "type": "direct", "severity": "blocking"}]}`, "Conflict 0: missing required field 'rationale'"},
		{"too many conflicts", `{"portfolio_size": 1, "conflicts": [
			{"company": "A", "type": "direct", "severity": "blocking", "rationale": "r"},
			{"company": "B", "type": "direct", "severity": "blocking", "rationale": "r"}]}`, "portfolio_size (1) must be >= number of conflicts (2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Conflicts(decode(t, tt.json))
			if rep.Summary != nil {
				t.Errorf("Summary = %+v, want nil on invalid input", rep.Summary)
			}
			if !containsMsg(rep.Validation.Errors, tt.want) {
				t.Errorf("errors = %v, want one containing %q", rep.Validation.Errors, tt.want)
			}
			out := rep.Output()
			if v, ok := out["summary"]; !ok || v.(*ConflictSummary) != nil {
				t.Errorf("output summary = %v, want explicit null", v)
			}
		})
	}
}

func TestConflicts_UnnamedEntriesNotDeduped(t *testing.T) {
	rep := Conflicts(decode(t, `{"portfolio_size": 5, "conflicts": [
		{"company": "", "type": "direct"}, {"company": "", "type": "direct"}]}`))
	if got := len(rep.Doc["conflicts"].([]any)); got != 2 {
		t.Errorf("kept %d entries, want 2", got)
	}
	if len(rep.Dropped) != 0 {
		t.Errorf("Dropped = %v, want none", rep.Dropped)
	}
}

func containsMsg(errs []string, want string) bool {
	for _, e := range errs {
		if strings.Contains(e, want) {
			return true
		}
	}
	return false
}
