package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Embedded rubric names.
const (
	DeckReview   = "deck-review"
	MarketSizing = "market-sizing"
	ICDimensions = "ic-dimensions"
)

// Item is one evaluated criterion. Category and Label are filled from the
// rubric on output; inputs only need ID and Status.
type Item struct {
	ID       string `json:"id" jsonschema:"canonical rubric item ID"`
	Category string `json:"category,omitempty" jsonschema:"category label (filled from rubric)"`
	Label    string `json:"label,omitempty" jsonschema:"item label (filled from rubric)"`
	Status   string `json:"status" jsonschema:"status from the rubric vocabulary"`
	Evidence string `json:"evidence,omitempty" jsonschema:"evidence supporting the status"`
	Notes    string `json:"notes,omitempty" jsonschema:"free-form notes"`
}

// Ref is an item as it appears in a summary problem list.
type Ref struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Label    string `json:"label"`
	Evidence string `json:"evidence,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// EvidenceWarning flags an item whose status requires evidence but has none.
// It never blocks scoring.
type EvidenceWarning struct {
	ID     string
	Status string
}

func (w EvidenceWarning) String() string {
	return fmt.Sprintf("%s has status '%s' but no evidence", w.ID, w.Status)
}

// Result is the scored output for one submission.
type Result struct {
	Items   []Item  `json:"items"`
	Summary Summary `json:"summary"`

	// Evidence is reported on the diagnostic channel, not in the output.
	Evidence []EvidenceWarning `json:"-"`
}

// Summary holds derived counts, score and verdict. Its JSON form is flat:
// one key per status plus the rubric's score and verdict field names.
type Summary struct {
	Total      int
	Counts     map[string]int
	Applicable int
	Score      float64
	Verdict    string
	ByCategory map[string]map[string]int
	Lists      map[string][]Ref
	Warnings   []string

	rubric *Rubric
}

// MarshalJSON flattens counts and names score and verdict per rubric.
func (s Summary) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"total":       s.Total,
		"applicable":  s.Applicable,
		"by_category": s.ByCategory,
		"warnings":    nonNil(s.Warnings),
	}
	for status, n := range s.Counts {
		out[status] = n
	}
	scoreField, verdictField := "score", "verdict"
	if s.rubric != nil {
		scoreField, verdictField = s.rubric.ScoreField, s.rubric.VerdictField
	}
	out[scoreField] = s.Score
	out[verdictField] = s.Verdict
	for field, refs := range s.Lists {
		if refs == nil {
			refs = []Ref{}
		}
		out[field] = refs
	}
	return json.Marshal(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DecodeItems reads a {"items": [...]} payload. Entries that are not JSON
// objects are reported together as a SchemaError.
func DecodeItems(rubric string, data []byte) ([]Item, error) {
	var payload struct {
		Items *[]json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	if payload.Items == nil {
		return nil, &SchemaError{Rubric: rubric, Problems: []string{"JSON must be an object with an 'items' array"}}
	}
	var problems []string
	items := make([]Item, 0, len(*payload.Items))
	for i, raw := range *payload.Items {
		if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '{' {
			problems = append(problems, fmt.Sprintf("item %d must be an object", i))
			continue
		}
		var it Item
		if err := json.Unmarshal(raw, &it); err != nil {
			problems = append(problems, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		items = append(items, it)
	}
	if len(problems) > 0 {
		return nil, &SchemaError{Rubric: rubric, Problems: problems}
	}
	return items, nil
}

// Check reports every way items deviate from the canonical set: unknown or
// repeated IDs, invalid statuses and canonical IDs that are absent.
func (r *Rubric) Check(items []Item) error {
	var problems []string
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		switch {
		case !r.Has(it.ID):
			problems = append(problems, fmt.Sprintf("unknown item ID '%s'", it.ID))
		case seen[it.ID]:
			problems = append(problems, fmt.Sprintf("duplicate item ID '%s'", it.ID))
		}
		seen[it.ID] = true
		if !r.validStatus(it.Status) {
			problems = append(problems, fmt.Sprintf("invalid status '%s' for item '%s' (must be one of %s)",
				it.Status, it.ID, strings.Join(r.Statuses, ", ")))
		}
	}
	var missing []string
	for _, def := range r.Items {
		if !seen[def.ID] {
			missing = append(missing, def.ID)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		problems = append(problems, fmt.Sprintf("missing items: %s", strings.Join(missing, ", ")))
	}
	if len(problems) > 0 {
		return &SchemaError{Rubric: r.Name, Problems: problems}
	}
	return nil
}

// Score validates items against the rubric and computes the summary.
// It has no side effects.
func Score(r *Rubric, items []Item) (*Result, error) {
	if err := r.Check(items); err != nil {
		return nil, err
	}

	enriched := make([]Item, len(items))
	copy(enriched, items)
	sort.SliceStable(enriched, func(i, j int) bool {
		return r.index[enriched[i].ID] < r.index[enriched[j].ID]
	})

	sum := Summary{
		Total:      len(r.Items),
		Counts:     make(map[string]int, len(r.Statuses)),
		ByCategory: make(map[string]map[string]int),
		Lists:      make(map[string][]Ref, len(r.Lists)),
		rubric:     r,
	}
	for _, s := range r.Statuses {
		sum.Counts[s] = 0
	}
	for _, l := range r.Lists {
		sum.Lists[l.Field] = nil
	}

	var res Result
	var weighted float64
	for i := range enriched {
		it := &enriched[i]
		def, _ := r.Item(it.ID)
		it.Category, it.Label = def.Category, def.Label

		cat, ok := sum.ByCategory[def.Category]
		if !ok {
			cat = make(map[string]int, len(r.Statuses))
			for _, s := range r.Statuses {
				cat[s] = 0
			}
			sum.ByCategory[def.Category] = cat
		}
		cat[it.Status]++
		sum.Counts[it.Status]++
		weighted += r.Weights[it.Status]

		for _, l := range r.Lists {
			if l.Status == it.Status {
				sum.Lists[l.Field] = append(sum.Lists[l.Field], Ref{
					ID: it.ID, Category: def.Category, Label: def.Label,
					Evidence: it.Evidence, Notes: it.Notes,
				})
			}
		}
		if r.requiresEvidence(it.Status) && strings.TrimSpace(it.Evidence) == "" {
			res.Evidence = append(res.Evidence, EvidenceWarning{ID: it.ID, Status: it.Status})
		}
	}

	sum.Applicable = sum.Total - sum.Counts[r.NotApplicable]
	if sum.Applicable > 0 {
		sum.Score = round1(weighted / float64(sum.Applicable) * 100)
	} else if w := r.Verdict.ZeroApplicable.Warning; w != "" {
		sum.Warnings = append(sum.Warnings, w)
	}
	sum.Verdict = r.verdict(sum)

	res.Items = enriched
	res.Summary = sum
	return &res, nil
}

func (r *Rubric) verdict(s Summary) string {
	for _, o := range r.Verdict.Overrides {
		if s.Counts[o.Status] > 0 {
			return o.Verdict
		}
	}
	if s.Applicable == 0 {
		return r.Verdict.ZeroApplicable.Verdict
	}
	if r.Verdict.Mode == ModePassFail {
		for _, st := range r.Verdict.FailStatuses {
			if s.Counts[st] > 0 {
				return "fail"
			}
		}
		return "pass"
	}
	for _, t := range r.Verdict.Tiers {
		if s.Score >= t.Min {
			return t.Name
		}
	}
	return r.Verdict.Tiers[len(r.Verdict.Tiers)-1].Name
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
