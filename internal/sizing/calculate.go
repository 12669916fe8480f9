package sizing

import (
	"fmt"
	"strings"
)

// Input is a market sizing request. Pointer fields distinguish absent keys
// from zero values.
type Input struct {
	Approach       string   `json:"approach,omitempty" jsonschema:"top_down, bottom_up or both (default both)"`
	Currency       string   `json:"currency,omitempty" jsonschema:"currency label (default USD)"`
	IndustryTotal  *float64 `json:"industry_total,omitempty" jsonschema:"total industry revenue"`
	SegmentPct     *float64 `json:"segment_pct,omitempty" jsonschema:"target segment as percent of TAM"`
	SharePct       *float64 `json:"share_pct,omitempty" jsonschema:"expected market share as percent of SAM"`
	CustomerCount  *float64 `json:"customer_count,omitempty" jsonschema:"total potential customers"`
	ARPU           *float64 `json:"arpu,omitempty" jsonschema:"average revenue per customer"`
	ServiceablePct *float64 `json:"serviceable_pct,omitempty" jsonschema:"serviceable customers as percent of total"`
	TargetPct      *float64 `json:"target_pct,omitempty" jsonschema:"target customers as percent of serviceable"`
	GrowthRate     *float64 `json:"growth_rate,omitempty" jsonschema:"annual growth rate percent for projection"`
	Years          int      `json:"years,omitempty" jsonschema:"years to project forward"`
}

// Result is the sizing output written to sizing.json.
type Result struct {
	Approach   string      `json:"approach"`
	Currency   string      `json:"currency"`
	TopDown    *Estimate   `json:"top_down,omitempty"`
	BottomUp   *Estimate   `json:"bottom_up,omitempty"`
	Comparison *Comparison `json:"comparison,omitempty"`

	// Notes are non-fatal diagnostics.
	Notes []string `json:"-"`
}

// Calculate runs the requested approaches.
func Calculate(in Input) (*Result, error) {
	approach := NormalizeApproach(in.Approach)
	if approach == "" {
		approach = Both
	}
	if approach != TopDown && approach != BottomUp && approach != Both {
		return nil, fmt.Errorf("%w: approach must be one of both, bottom_up, top_down (got '%s')", ErrUnknownApproach, in.Approach)
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	if strings.TrimSpace(currency) == "" {
		return nil, fmt.Errorf("%w: currency must be a non-empty string", ErrInvalidInput)
	}
	if in.GrowthRate != nil && *in.GrowthRate < -100 {
		return nil, fmt.Errorf("%w: growth_rate cannot be below -100%% (got %s%%)", ErrInvalidInput, Num(*in.GrowthRate))
	}

	res := &Result{Approach: approach, Currency: currency}
	years := in.Years
	if years < 0 {
		res.Notes = append(res.Notes, fmt.Sprintf("years is negative (%d), ignoring growth projection", years))
		years = 0
	}

	if approach == TopDown || approach == Both {
		if missing := missingKeys(map[string]*float64{
			IndustryTotal: in.IndustryTotal, SegmentPct: in.SegmentPct, SharePct: in.SharePct,
		}, TopDownParams); len(missing) > 0 {
			return nil, fmt.Errorf("%w: top-down requires: %s", ErrInvalidInput, strings.Join(missing, ", "))
		}
		est, err := NewTopDown(*in.IndustryTotal, *in.SegmentPct, *in.SharePct)
		if err != nil {
			return nil, err
		}
		res.TopDown = est
	}

	if approach == BottomUp || approach == Both {
		if missing := missingKeys(map[string]*float64{
			CustomerCount: in.CustomerCount, ARPU: in.ARPU, ServiceablePct: in.ServiceablePct, TargetPct: in.TargetPct,
		}, BottomUpParams); len(missing) > 0 {
			return nil, fmt.Errorf("%w: bottom-up requires: %s", ErrInvalidInput, strings.Join(missing, ", "))
		}
		est, err := NewBottomUp(*in.CustomerCount, *in.ARPU, *in.ServiceablePct, *in.TargetPct)
		if err != nil {
			return nil, err
		}
		res.BottomUp = est
	}

	if in.GrowthRate != nil && years > 0 {
		for _, est := range []*Estimate{res.TopDown, res.BottomUp} {
			if est != nil {
				est.Project(*in.GrowthRate, years)
			}
		}
	}

	if res.TopDown != nil && res.BottomUp != nil {
		c := Compare(res.TopDown, res.BottomUp)
		res.Comparison = &c
	}
	return res, nil
}

func missingKeys(vals map[string]*float64, order []string) []string {
	var missing []string
	for _, k := range order {
		if vals[k] == nil {
			missing = append(missing, k)
		}
	}
	return missing
}
