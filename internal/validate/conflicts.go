package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Conflict types and severities.
var (
	ConflictTypes      = []string{"direct", "adjacent", "customer_overlap"}
	ConflictSeverities = []string{"blocking", "manageable"}
)

// Overall conflict severities, worst first.
const (
	SeverityBlocking   = "blocking"
	SeverityManageable = "manageable"
	SeverityClear      = "clear"
)

// legalSuffixes are stripped once, longest dotted form first.
var legalSuffixes = []string{" inc.", " inc", " llc", " ltd.", " ltd", " corp.", " corp"}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeCompany lowercases and trims name, strips one trailing legal
// suffix and collapses internal whitespace. "Acme Inc." and "acme" match.
func NormalizeCompany(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(name, " "))
}

// ConflictSummary is derived only from a valid conflict check.
type ConflictSummary struct {
	TotalChecked        int    `json:"total_checked"`
	ConflictCount       int    `json:"conflict_count"`
	HasBlockingConflict bool   `json:"has_blocking_conflict"`
	OverallSeverity     string `json:"overall_severity"`
}

// Duplicate records a conflict entry dropped by dedup.
type Duplicate struct {
	Company string
	Type    string
}

func (d Duplicate) String() string {
	return fmt.Sprintf("duplicate conflict for '%s' (type: %s), keeping first occurrence", d.Company, d.Type)
}

// ConflictReport is the validated conflict check.
type ConflictReport struct {
	Doc        map[string]any
	Summary    *ConflictSummary
	Validation Result
	Dropped    []Duplicate
}

// Output returns the document with deduplicated conflicts, summary (nil when
// invalid) and validation keys.
func (r *ConflictReport) Output() map[string]any {
	out := make(map[string]any, len(r.Doc)+2)
	for k, v := range r.Doc {
		out[k] = v
	}
	out["summary"] = r.Summary
	out["validation"] = r.Validation
	return out
}

// Conflicts deduplicates and validates a conflict check. Entries are keyed
// by normalized (company, lowercased type); the first occurrence wins.
// Entries without a company are never deduplicated.
func Conflicts(doc map[string]any) *ConflictReport {
	var errs []string
	for _, key := range []string{"portfolio_size", "conflicts"} {
		if _, ok := doc[key]; !ok {
			errs = append(errs, "Missing required field: "+key)
		}
	}

	size, sizeOK := 0, true
	if raw, ok := doc["portfolio_size"]; ok {
		f, isNum := raw.(float64)
		if !isNum || f != float64(int(f)) || f < 0 {
			errs = append(errs, fmt.Sprintf("portfolio_size must be a non-negative integer, got %s", display(raw)))
			sizeOK = false
		} else {
			size = int(f)
		}
	}

	var conflicts []any
	if raw, ok := doc["conflicts"]; ok {
		arr, isArr := raw.([]any)
		if !isArr {
			errs = append(errs, "conflicts must be an array")
		} else {
			conflicts = arr
		}
	}

	report := &ConflictReport{}
	conflicts, report.Dropped = dedupConflicts(conflicts)

	hasBlocking := false
	for i, c := range conflicts {
		entry, ok := c.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("Conflict %d must be an object", i))
			continue
		}
		for _, field := range []string{"company", "type", "severity", "rationale"} {
			if !Truthy(entry[field]) {
				errs = append(errs, fmt.Sprintf("Conflict %d: missing required field '%s'", i, field))
			}
		}
		ctype, _ := entry["type"].(string)
		if !contains(ConflictTypes, ctype) {
			errs = append(errs, fmt.Sprintf("Conflict %d: invalid type '%s'. Must be one of: %s",
				i, display(entry["type"]), strings.Join(sortedCopy(ConflictTypes), ", ")))
		}
		sev, _ := entry["severity"].(string)
		if !contains(ConflictSeverities, sev) {
			errs = append(errs, fmt.Sprintf("Conflict %d: invalid severity '%s'. Must be one of: %s",
				i, display(entry["severity"]), strings.Join(sortedCopy(ConflictSeverities), ", ")))
		}
		if sev == SeverityBlocking {
			hasBlocking = true
		}
	}

	if sizeOK && size < len(conflicts) {
		errs = append(errs, fmt.Sprintf("portfolio_size (%d) must be >= number of conflicts (%d)", size, len(conflicts)))
	}

	report.Doc = make(map[string]any, len(doc))
	for k, v := range doc {
		report.Doc[k] = v
	}
	if conflicts == nil {
		conflicts = []any{}
	}
	report.Doc["conflicts"] = conflicts
	report.Validation = newResult(errs)
	if !report.Validation.Valid() {
		return report
	}

	overall := SeverityClear
	switch {
	case hasBlocking:
		overall = SeverityBlocking
	case len(conflicts) > 0:
		overall = SeverityManageable
	}
	report.Summary = &ConflictSummary{
		TotalChecked:        size,
		ConflictCount:       len(conflicts),
		HasBlockingConflict: hasBlocking,
		OverallSeverity:     overall,
	}
	return report
}

func dedupConflicts(conflicts []any) ([]any, []Duplicate) {
	type key struct{ company, ctype string }
	seen := make(map[key]bool)
	var kept []any
	var dropped []Duplicate
	for _, c := range conflicts {
		entry, ok := c.(map[string]any)
		if !ok {
			kept = append(kept, c)
			continue
		}
		rawCompany, _ := entry["company"].(string)
		rawType, _ := entry["type"].(string)
		k := key{NormalizeCompany(rawCompany), strings.ToLower(strings.TrimSpace(rawType))}
		if k.company != "" && seen[k] {
			dropped = append(dropped, Duplicate{Company: rawCompany, Type: k.ctype})
			continue
		}
		if k.company != "" {
			seen[k] = true
		}
		kept = append(kept, c)
	}
	return kept, dropped
}
