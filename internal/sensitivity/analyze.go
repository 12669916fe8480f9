// Package sensitivity stress-tests market sizing assumptions one parameter
// at a time and ranks them by how far they move SOM.
//
// Each requested range is widened to the minimum implied by its confidence
// category before it is applied. Ranges are only ever widened.
package sensitivity

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/lool-ventures/founder-skills/cli/internal/provenance"
	"github.com/lool-ventures/founder-skills/cli/internal/sizing"
)

var (
	// ErrInvalidInput is wrapped by malformed bases and ranges.
	ErrInvalidInput = errors.New("invalid sensitivity input")

	// ErrInvalidApproach is returned for an unknown approach, or for "both"
	// when the base lacks any of the seven parameters.
	ErrInvalidApproach = errors.New("invalid approach")

	// ErrNoRelevantParams is returned when every range targets the other approach.
	ErrNoRelevantParams = errors.New("no relevant parameters")
)

// MinRange is the minimum symmetric range, in percent, per confidence category.
var MinRange = map[string]float64{
	provenance.Sourced:       0,
	provenance.Derived:       30,
	provenance.AgentEstimate: 50,
}

// params in evaluation order.
var params = append(slices.Clone(sizing.TopDownParams), sizing.BottomUpParams...)

// Range is a requested perturbation of one parameter.
type Range struct {
	LowPct     *float64 `json:"low_pct,omitempty" jsonschema:"low adjustment in percent, usually negative"`
	HighPct    *float64 `json:"high_pct,omitempty" jsonschema:"high adjustment in percent"`
	Confidence string   `json:"confidence,omitempty" jsonschema:"sourced, derived or agent_estimate (default sourced)"`
}

// Request is a sensitivity analysis request.
type Request struct {
	Approach string             `json:"approach,omitempty" jsonschema:"top_down, bottom_up or both (default bottom_up)"`
	Base     map[string]float64 `json:"base" jsonschema:"base parameter values"`
	Ranges   map[string]Range   `json:"ranges" jsonschema:"per-parameter ranges to test"`
}

// Bounds is a low/high pair of adjustments in percent.
type Bounds struct {
	LowPct  float64 `json:"low_pct"`
	HighPct float64 `json:"high_pct"`
}

// Outcome is the result of one perturbed run.
type Outcome struct {
	AdjustmentPct float64 `json:"adjustment_pct"`
	Value         float64 `json:"value"`
	sizing.Values
}

// Scenario is one parameter's stress test.
type Scenario struct {
	Parameter      string        `json:"parameter"`
	Confidence     string        `json:"confidence"`
	OriginalRange  Bounds        `json:"original_range"`
	EffectiveRange Bounds        `json:"effective_range"`
	RangeWidened   bool          `json:"range_widened"`
	BaseValue      float64       `json:"base_value"`
	Low            Outcome       `json:"low"`
	Base           sizing.Values `json:"base"`
	High           Outcome       `json:"high"`
	ApproachUsed   string        `json:"approach_used,omitempty"`
}

// Ranking is a parameter's impact on the bottom line.
type Ranking struct {
	Parameter   string  `json:"parameter"`
	SOMSwing    float64 `json:"som_swing"`
	SOMSwingPct float64 `json:"som_swing_pct"`
	TAMSwingPct float64 `json:"tam_swing_pct"`
}

// BaseResult is the unperturbed output: one triple for a single approach,
// or one per approach for "both".
type BaseResult struct {
	Single   *sizing.Values
	TopDown  *sizing.Values
	BottomUp *sizing.Values
}

func (b BaseResult) MarshalJSON() ([]byte, error) {
	if b.Single != nil {
		return json.Marshal(b.Single)
	}
	return json.Marshal(struct {
		TopDown  *sizing.Values `json:"top_down"`
		BottomUp *sizing.Values `json:"bottom_up"`
	}{b.TopDown, b.BottomUp})
}

func (b *BaseResult) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	if _, ok := top[sizing.TopDown]; ok {
		var both struct {
			TopDown  *sizing.Values `json:"top_down"`
			BottomUp *sizing.Values `json:"bottom_up"`
		}
		if err := json.Unmarshal(data, &both); err != nil {
			return err
		}
		b.TopDown, b.BottomUp = both.TopDown, both.BottomUp
		return nil
	}
	b.Single = new(sizing.Values)
	return json.Unmarshal(data, b.Single)
}

// Result is the analysis output written to sensitivity.json.
type Result struct {
	Approach      string     `json:"approach"`
	BaseResult    BaseResult `json:"base_result"`
	Scenarios     []Scenario `json:"scenarios"`
	Ranking       []Ranking  `json:"sensitivity_ranking"`
	MostSensitive *string    `json:"most_sensitive"`

	// Notes are non-fatal diagnostics.
	Notes []string `json:"-"`
}

// Analyze perturbs each ranged parameter independently, holding the others
// at base, and ranks the parameters by SOM swing.
func Analyze(req Request) (*Result, error) {
	approach := sizing.NormalizeApproach(req.Approach)
	if approach == "" {
		approach = sizing.BottomUp
	}
	switch approach {
	case sizing.TopDown, sizing.BottomUp, sizing.Both:
	default:
		return nil, fmt.Errorf("%w: approach must be one of both, bottom_up, top_down (got '%s')", ErrInvalidApproach, req.Approach)
	}
	if len(req.Ranges) == 0 {
		return nil, fmt.Errorf("%w: 'ranges' is required with at least one parameter to vary", ErrInvalidInput)
	}
	if missing := missingParams(req.Base, required(approach)); len(missing) > 0 {
		if approach == sizing.Both {
			return nil, fmt.Errorf("%w: approach 'both' requires all 7 params in 'base': %s", ErrInvalidApproach, strings.Join(missing, ", "))
		}
		return nil, fmt.Errorf("%w: approach '%s' requires these fields in 'base': %s", ErrInvalidInput, approach, strings.Join(missing, ", "))
	}
	if err := validateBase(req.Base); err != nil {
		return nil, err
	}

	res := &Result{Approach: approach, Scenarios: []Scenario{}, Ranking: []Ranking{}}
	baseFor := map[string]sizing.Values{}
	if approach == sizing.Both {
		td := sizing.TopDownValues(req.Base)
		bu := sizing.BottomUpValues(req.Base)
		baseFor[sizing.TopDown], baseFor[sizing.BottomUp] = td, bu
		tdr, bur := td.Rounded(), bu.Rounded()
		res.BaseResult = BaseResult{TopDown: &tdr, BottomUp: &bur}
	} else {
		v := compute(approach, req.Base)
		baseFor[approach] = v
		r := v.Rounded()
		res.BaseResult = BaseResult{Single: &r}
	}

	ranges, err := relevantRanges(approach, req.Ranges, res)
	if err != nil {
		return nil, err
	}

	for _, name := range ranges {
		rng := req.Ranges[name]
		if _, ok := req.Base[name]; !ok {
			return nil, fmt.Errorf("%w: range key '%s' not found in base params (available: %s)", ErrInvalidInput, name, strings.Join(sortedKeys(req.Base), ", "))
		}
		if rng.LowPct == nil {
			return nil, fmt.Errorf("%w: range for '%s' missing 'low_pct'", ErrInvalidInput, name)
		}
		if rng.HighPct == nil {
			return nil, fmt.Errorf("%w: range for '%s' missing 'high_pct'", ErrInvalidInput, name)
		}
		confidence := rng.Confidence
		if confidence == "" {
			res.Notes = append(res.Notes, fmt.Sprintf("'%s' missing confidence level, defaulting to 'sourced'", name))
			confidence = provenance.Sourced
		}
		if !provenance.ValidCategory(confidence) {
			return nil, fmt.Errorf("%w: confidence must be one of %s (got '%s')", ErrInvalidInput, strings.Join(provenance.Categories, ", "), confidence)
		}

		original := Bounds{LowPct: *rng.LowPct, HighPct: *rng.HighPct}
		effective := Widen(original, MinRange[confidence])

		paramApproach := approachOf(name)
		if approach != sizing.Both {
			paramApproach = approach
		}
		base := baseFor[paramApproach]
		baseVal := req.Base[name]
		lowVal := clamp(res, name, "low", effective.LowPct, baseVal*(1+effective.LowPct/100))
		highVal := clamp(res, name, "high", effective.HighPct, baseVal*(1+effective.HighPct/100))
		low := perturb(paramApproach, req.Base, name, lowVal)
		high := perturb(paramApproach, req.Base, name, highVal)

		sc := Scenario{
			Parameter:      name,
			Confidence:     confidence,
			OriginalRange:  original,
			EffectiveRange: effective,
			RangeWidened:   effective != original,
			BaseValue:      baseVal,
			Low:            Outcome{AdjustmentPct: effective.LowPct, Value: sizing.Round2(lowVal), Values: low.Rounded()},
			Base:           base.Rounded(),
			High:           Outcome{AdjustmentPct: effective.HighPct, Value: sizing.Round2(highVal), Values: high.Rounded()},
		}
		if approach == sizing.Both {
			sc.ApproachUsed = paramApproach
		}
		res.Scenarios = append(res.Scenarios, sc)

		somSwing := math.Abs(high.SOM - low.SOM)
		res.Ranking = append(res.Ranking, Ranking{
			Parameter:   name,
			SOMSwing:    sizing.Round2(somSwing),
			SOMSwingPct: sizing.Round2(swingPct(somSwing, base.SOM)),
			TAMSwingPct: sizing.Round2(swingPct(math.Abs(high.TAM-low.TAM), base.TAM)),
		})
	}

	slices.SortStableFunc(res.Ranking, func(a, b Ranking) int {
		return cmp.Compare(b.SOMSwingPct, a.SOMSwingPct)
	})
	if len(res.Ranking) > 0 {
		top := res.Ranking[0].Parameter
		res.MostSensitive = &top
	}
	return res, nil
}

// Widen raises each side of r to at least floor in magnitude. It never narrows.
func Widen(r Bounds, floor float64) Bounds {
	if floor <= 0 {
		return r
	}
	if math.Abs(r.LowPct) < floor {
		r.LowPct = -floor
	}
	if math.Abs(r.HighPct) < floor {
		r.HighPct = floor
	}
	return r
}

func required(approach string) []string {
	switch approach {
	case sizing.TopDown:
		return sizing.TopDownParams
	case sizing.BottomUp:
		return sizing.BottomUpParams
	default:
		return params
	}
}

func approachOf(name string) string {
	if slices.Contains(sizing.TopDownParams, name) {
		return sizing.TopDown
	}
	if slices.Contains(sizing.BottomUpParams, name) {
		return sizing.BottomUp
	}
	return ""
}

// relevantRanges returns the range keys to evaluate in parameter order.
func relevantRanges(approach string, ranges map[string]Range, res *Result) ([]string, error) {
	var ignored, unknown []string
	for name := range ranges {
		switch owner := approachOf(name); {
		case owner == "" && approach == sizing.Both:
			unknown = append(unknown, name)
		case owner != approach && approach != sizing.Both:
			ignored = append(ignored, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: range parameter '%s' does not belong to either approach (top-down: %s; bottom-up: %s)",
			ErrInvalidInput, unknown[0], strings.Join(sizing.TopDownParams, ", "), strings.Join(sizing.BottomUpParams, ", "))
	}
	sort.Strings(ignored)
	for _, name := range ignored {
		res.Notes = append(res.Notes, fmt.Sprintf("ignoring '%s', not relevant for %s approach", name, approach))
	}

	var keep []string
	for _, name := range required(approach) {
		if _, ok := ranges[name]; ok {
			keep = append(keep, name)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w for %s approach", ErrNoRelevantParams, approach)
	}
	return keep, nil
}

func validateBase(base map[string]float64) error {
	for _, key := range sortedKeys(base) {
		v := base[key]
		switch {
		case key == sizing.CustomerCount && v != math.Trunc(v):
			return fmt.Errorf("%w: base.customer_count must be a whole number (got %s)", ErrInvalidInput, sizing.Num(v))
		case sizing.PctParams[key] && (v < 0 || v > 100):
			return fmt.Errorf("%w: base.%s must be between 0 and 100 (got %s)", ErrInvalidInput, key, sizing.Num(v))
		case v < 0:
			return fmt.Errorf("%w: base.%s cannot be negative (got %s)", ErrInvalidInput, key, sizing.Num(v))
		}
	}
	return nil
}

func clamp(res *Result, name, side string, adj, v float64) float64 {
	if v < 0 {
		res.Notes = append(res.Notes, fmt.Sprintf("%s %s scenario (%s%%) produces negative value (%s), clamping to 0", name, side, sizing.Num(adj), sizing.Num(v)))
		return 0
	}
	if sizing.PctParams[name] && v > 100 {
		res.Notes = append(res.Notes, fmt.Sprintf("%s %s scenario clamped from %s to 100", name, side, sizing.Num(v)))
		return 100
	}
	return v
}

func compute(approach string, p map[string]float64) sizing.Values {
	if approach == sizing.TopDown {
		return sizing.TopDownValues(p)
	}
	return sizing.BottomUpValues(p)
}

func perturb(approach string, base map[string]float64, name string, v float64) sizing.Values {
	p := make(map[string]float64, len(base))
	for k, bv := range base {
		p[k] = bv
	}
	p[name] = v
	return compute(approach, p)
}

func swingPct(swing, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return swing / base * 100
}

func missingParams(base map[string]float64, names []string) []string {
	var missing []string
	for _, n := range names {
		if _, ok := base[n]; !ok {
			missing = append(missing, n)
		}
	}
	sort.Strings(missing)
	return missing
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
