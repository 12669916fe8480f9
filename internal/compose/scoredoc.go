package compose

import (
	"sort"

	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
)

// scoreDoc is a scored rubric artifact (checklist.json, score_dimensions.json).
// Counts are decoded as float64 so hand-edited values such as 3.0 still load.
type scoreDoc struct {
	Items   []scoredItem `json:"items"`
	Summary scoreSummary `json:"summary"`
}

type scoredItem struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Label    string `json:"label"`
	Status   string `json:"status"`
	Evidence string `json:"evidence"`
	Notes    string `json:"notes"`
}

func (it scoredItem) title() string {
	return or(it.Label, or(it.ID, "?"))
}

type scoreSummary struct {
	Pass          float64 `json:"pass"`
	Fail          float64 `json:"fail"`
	Warn          float64 `json:"warn"`
	NotApplicable float64 `json:"not_applicable"`

	StrongConviction   float64 `json:"strong_conviction"`
	ModerateConviction float64 `json:"moderate_conviction"`
	Concern            float64 `json:"concern"`
	Dealbreaker        float64 `json:"dealbreaker"`

	ScorePct        float64 `json:"score_pct"`
	OverallStatus   string  `json:"overall_status"`
	ConvictionScore float64 `json:"conviction_score"`
	Verdict         string  `json:"verdict"`

	ByCategory map[string]map[string]float64 `json:"by_category"`

	FailedItems  []scoredItem `json:"failed_items"`
	WarnedItems  []scoredItem `json:"warned_items"`
	Dealbreakers []scoredItem `json:"dealbreakers"`
	TopConcerns  []scoredItem `json:"top_concerns"`

	Warnings []string `json:"warnings"`
}

func (s scoreSummary) hasWarning(code string) bool {
	for _, w := range s.Warnings {
		if w == code {
			return true
		}
	}
	return false
}

// categories orders by_category keys by the rubric, then any others sorted.
func (s scoreSummary) categories(rubric string) []string {
	var out []string
	seen := make(map[string]bool)
	if r, err := scoring.Load(rubric); err == nil {
		for _, c := range r.Categories() {
			if _, ok := s.ByCategory[c]; ok {
				out = append(out, c)
				seen[c] = true
			}
		}
	}
	var rest []string
	for c := range s.ByCategory {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// canonicalCount is the number of items in an embedded rubric.
func canonicalCount(rubric string) int {
	r, err := scoring.Load(rubric)
	if err != nil {
		return 0
	}
	return len(r.Items)
}
