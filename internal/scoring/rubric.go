// Package scoring validates assessment items against a rubric's canonical
// item set and computes counts, a score and a verdict.
package scoring

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lool-ventures/founder-skills/cli/embedded"
)

// Verdict modes.
const (
	// ModeTiers maps the score onto the first tier whose minimum it reaches.
	ModeTiers = "tiers"

	// ModePassFail yields "fail" when any item carries a fail status, else "pass".
	ModePassFail = "pass_fail"
)

// ItemDef is one canonical rubric criterion.
type ItemDef struct {
	ID       string `yaml:"id" json:"id"`
	Category string `yaml:"category" json:"category"`
	Label    string `yaml:"label" json:"label"`
}

// Tier is a named verdict reached when the rounded score is at least Min.
type Tier struct {
	Name string  `yaml:"name" json:"name"`
	Min  float64 `yaml:"min" json:"min"`
}

// Override forces Verdict whenever any item carries Status.
type Override struct {
	Status  string `yaml:"status" json:"status"`
	Verdict string `yaml:"verdict" json:"verdict"`
}

// ZeroApplicable is the fallback used when every item is not applicable.
type ZeroApplicable struct {
	Verdict string `yaml:"verdict" json:"verdict"`
	Warning string `yaml:"warning" json:"warning"`
}

// VerdictRule describes how a verdict is derived from the score and counts.
type VerdictRule struct {
	Mode           string         `yaml:"mode" json:"mode"`
	Tiers          []Tier         `yaml:"tiers,omitempty" json:"tiers,omitempty"`
	FailStatuses   []string       `yaml:"fail_statuses,omitempty" json:"fail_statuses,omitempty"`
	Overrides      []Override     `yaml:"overrides,omitempty" json:"overrides,omitempty"`
	ZeroApplicable ZeroApplicable `yaml:"zero_applicable" json:"zero_applicable"`
}

// ListRule collects every item with Status into the summary list Field.
type ListRule struct {
	Field  string `yaml:"field" json:"field"`
	Status string `yaml:"status" json:"status"`
}

// Rubric is a loaded rubric table.
type Rubric struct {
	Name             string             `yaml:"name" json:"name"`
	Title            string             `yaml:"title" json:"title"`
	Statuses         []string           `yaml:"statuses" json:"statuses"`
	NotApplicable    string             `yaml:"not_applicable" json:"not_applicable"`
	EvidenceRequired []string           `yaml:"evidence_required" json:"evidence_required"`
	Weights          map[string]float64 `yaml:"weights" json:"weights"`
	ScoreField       string             `yaml:"score_field" json:"score_field"`
	VerdictField     string             `yaml:"verdict_field" json:"verdict_field"`
	Verdict          VerdictRule        `yaml:"verdict" json:"verdict"`
	Lists            []ListRule         `yaml:"lists" json:"lists"`
	Items            []ItemDef          `yaml:"items" json:"items"`

	index map[string]int
}

// Has reports whether id is one of the rubric's canonical items.
func (r *Rubric) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Item returns the canonical definition for id.
func (r *Rubric) Item(id string) (ItemDef, bool) {
	i, ok := r.index[id]
	if !ok {
		return ItemDef{}, false
	}
	return r.Items[i], true
}

// Categories returns the rubric's categories in first-appearance order.
func (r *Rubric) Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range r.Items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}

func (r *Rubric) validStatus(s string) bool {
	for _, v := range r.Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (r *Rubric) requiresEvidence(s string) bool {
	for _, v := range r.EvidenceRequired {
		if v == s {
			return true
		}
	}
	return false
}

// Parse decodes a rubric table and checks it for internal consistency.
func Parse(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}
	if err := r.init(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rubric) init() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRubric)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: %s has no items", ErrInvalidRubric, r.Name)
	}
	if !r.validStatus(r.NotApplicable) {
		return fmt.Errorf("%w: %s: not_applicable status %q not in statuses", ErrInvalidRubric, r.Name, r.NotApplicable)
	}
	for status := range r.Weights {
		if !r.validStatus(status) {
			return fmt.Errorf("%w: %s: weight for unknown status %q", ErrInvalidRubric, r.Name, status)
		}
	}
	switch r.Verdict.Mode {
	case ModeTiers:
		if len(r.Verdict.Tiers) == 0 {
			return fmt.Errorf("%w: %s: tiers mode needs at least one tier", ErrInvalidRubric, r.Name)
		}
		if !sort.SliceIsSorted(r.Verdict.Tiers, func(i, j int) bool {
			return r.Verdict.Tiers[i].Min > r.Verdict.Tiers[j].Min
		}) {
			return fmt.Errorf("%w: %s: tiers must be ordered by descending min", ErrInvalidRubric, r.Name)
		}
	case ModePassFail:
	default:
		return fmt.Errorf("%w: %s: unknown verdict mode %q", ErrInvalidRubric, r.Name, r.Verdict.Mode)
	}
	r.index = make(map[string]int, len(r.Items))
	for i, it := range r.Items {
		if _, dup := r.index[it.ID]; dup {
			return fmt.Errorf("%w: %s: duplicate item %q", ErrInvalidRubric, r.Name, it.ID)
		}
		r.index[it.ID] = i
	}
	return nil
}

var (
	loadOnce sync.Once
	rubrics  map[string]*Rubric
	loadErr  error
)

func loadEmbedded() {
	rubrics = make(map[string]*Rubric)
	entries, err := fs.ReadDir(embedded.Rubrics, "rubrics")
	if err != nil {
		loadErr = fmt.Errorf("read embedded rubrics: %w", err)
		return
	}
	for _, e := range entries {
		data, err := fs.ReadFile(embedded.Rubrics, "rubrics/"+e.Name())
		if err != nil {
			loadErr = fmt.Errorf("read %s: %w", e.Name(), err)
			return
		}
		r, err := Parse(data)
		if err != nil {
			loadErr = fmt.Errorf("%s: %w", e.Name(), err)
			return
		}
		rubrics[r.Name] = r
	}
}

// Load returns the embedded rubric with the given name.
func Load(name string) (*Rubric, error) {
	loadOnce.Do(loadEmbedded)
	if loadErr != nil {
		return nil, loadErr
	}
	r, ok := rubrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownRubric, name, Names())
	}
	return r, nil
}

// MustLoad is Load for rubrics the binary is known to embed.
func MustLoad(name string) *Rubric {
	r, err := Load(name)
	if err != nil {
		panic(err)
	}
	return r
}

// Names lists the embedded rubric names in sorted order.
func Names() []string {
	loadOnce.Do(loadEmbedded)
	names := make([]string, 0, len(rubrics))
	for n := range rubrics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
