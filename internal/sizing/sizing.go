// Package sizing computes TAM/SAM/SOM market sizes top-down from an industry
// total or bottom-up from customers and pricing, and cross-checks the two.
package sizing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Approaches.
const (
	TopDown  = "top_down"
	BottomUp = "bottom_up"
	Both     = "both"
)

// Parameter names.
const (
	IndustryTotal  = "industry_total"
	SegmentPct     = "segment_pct"
	SharePct       = "share_pct"
	CustomerCount  = "customer_count"
	ARPU           = "arpu"
	ServiceablePct = "serviceable_pct"
	TargetPct      = "target_pct"
)

// Thresholds for the top-down vs bottom-up TAM comparison.
const (
	DiscrepancyPct = 30.0
	ModeratePct    = 15.0
)

var (
	// ErrInvalidInput is wrapped by every input validation failure.
	ErrInvalidInput = errors.New("invalid sizing input")

	// ErrUnknownApproach is returned for approaches other than top_down, bottom_up or both.
	ErrUnknownApproach = errors.New("unknown approach")
)

// TopDownParams and BottomUpParams list each formula's parameters.
var (
	TopDownParams  = []string{IndustryTotal, SegmentPct, SharePct}
	BottomUpParams = []string{CustomerCount, ARPU, ServiceablePct, TargetPct}
)

// PctParams are percentages bounded to [0, 100].
var PctParams = map[string]bool{SegmentPct: true, SharePct: true, ServiceablePct: true, TargetPct: true}

// InputOrder is the display order for figure inputs.
var InputOrder = []string{
	IndustryTotal, "tam", SegmentPct, "sam", SharePct,
	CustomerCount, "serviceable_customers", ServiceablePct, "target_customers", TargetPct, ARPU,
}

// NormalizeApproach accepts either "-" or "_" as the word separator.
func NormalizeApproach(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", "_")
}

// Values is one TAM/SAM/SOM triple.
type Values struct {
	TAM float64 `json:"tam"`
	SAM float64 `json:"sam"`
	SOM float64 `json:"som"`
}

// Rounded returns v with each figure rounded to cents.
func (v Values) Rounded() Values {
	return Values{TAM: Round2(v.TAM), SAM: Round2(v.SAM), SOM: Round2(v.SOM)}
}

// TopDownValues applies the top-down formula: TAM is the industry total,
// SAM the segment share of TAM, SOM the market share of SAM.
func TopDownValues(p map[string]float64) Values {
	tam := p[IndustryTotal]
	sam := tam * p[SegmentPct] / 100
	return Values{TAM: tam, SAM: sam, SOM: sam * p[SharePct] / 100}
}

// BottomUpValues applies the bottom-up formula from customers and ARPU.
func BottomUpValues(p map[string]float64) Values {
	tam := p[CustomerCount] * p[ARPU]
	serviceable := p[CustomerCount] * p[ServiceablePct] / 100
	target := serviceable * p[TargetPct] / 100
	return Values{TAM: tam, SAM: serviceable * p[ARPU], SOM: target * p[ARPU]}
}

// Figure is one computed market size with the formula that produced it.
type Figure struct {
	Value    float64            `json:"value"`
	RawValue float64            `json:"raw_value"`
	Formula  string             `json:"formula"`
	Inputs   map[string]float64 `json:"inputs"`
}

// Projection is a compound-growth forward view of one approach.
type Projection struct {
	Years         int     `json:"years"`
	GrowthRatePct float64 `json:"growth_rate_pct"`
	TAM           float64 `json:"tam"`
	SAM           float64 `json:"sam"`
	SOM           float64 `json:"som"`
}

// Estimate is the full output of one approach.
type Estimate struct {
	TAM       Figure      `json:"tam"`
	SAM       Figure      `json:"sam"`
	SOM       Figure      `json:"som"`
	Projected *Projection `json:"projected,omitempty"`
}

func (e *Estimate) raw() Values {
	return Values{TAM: e.TAM.RawValue, SAM: e.SAM.RawValue, SOM: e.SOM.RawValue}
}

// NewTopDown validates inputs and builds a top-down estimate.
func NewTopDown(industryTotal, segmentPct, sharePct float64) (*Estimate, error) {
	if err := errors.Join(positive(IndustryTotal, industryTotal), pct(SegmentPct, segmentPct), pct(SharePct, sharePct)); err != nil {
		return nil, err
	}
	v := TopDownValues(map[string]float64{IndustryTotal: industryTotal, SegmentPct: segmentPct, SharePct: sharePct})
	return &Estimate{
		TAM: figure(v.TAM, "industry_total", map[string]float64{IndustryTotal: industryTotal}),
		SAM: figure(v.SAM, "tam * segment_pct", map[string]float64{"tam": Round2(v.TAM), SegmentPct: segmentPct}),
		SOM: figure(v.SOM, "sam * share_pct", map[string]float64{"sam": Round2(v.SAM), SharePct: sharePct}),
	}, nil
}

// NewBottomUp validates inputs and builds a bottom-up estimate.
func NewBottomUp(customerCount, arpu, serviceablePct, targetPct float64) (*Estimate, error) {
	err := errors.Join(positive(CustomerCount, customerCount), whole(CustomerCount, customerCount),
		positive(ARPU, arpu), pct(ServiceablePct, serviceablePct), pct(TargetPct, targetPct))
	if err != nil {
		return nil, err
	}
	v := BottomUpValues(map[string]float64{
		CustomerCount: customerCount, ARPU: arpu, ServiceablePct: serviceablePct, TargetPct: targetPct,
	})
	serviceable := customerCount * serviceablePct / 100
	target := serviceable * targetPct / 100
	return &Estimate{
		TAM: figure(v.TAM, "customer_count * arpu", map[string]float64{CustomerCount: customerCount, ARPU: arpu}),
		SAM: figure(v.SAM, "serviceable_customers * arpu", map[string]float64{
			"serviceable_customers": serviceable, ServiceablePct: serviceablePct, ARPU: arpu,
		}),
		SOM: figure(v.SOM, "target_customers * arpu", map[string]float64{
			"target_customers": target, TargetPct: targetPct, ARPU: arpu,
		}),
	}, nil
}

// Project compounds growthRate over years onto the estimate.
func (e *Estimate) Project(growthRate float64, years int) {
	g := math.Pow(1+growthRate/100, float64(years))
	raw := e.raw()
	e.Projected = &Projection{
		Years:         years,
		GrowthRatePct: growthRate,
		TAM:           Round2(raw.TAM * g),
		SAM:           Round2(raw.SAM * g),
		SOM:           Round2(raw.SOM * g),
	}
}

// Comparison cross-checks top-down and bottom-up TAM.
type Comparison struct {
	TopDownTAM  *float64 `json:"top_down_tam,omitempty"`
	BottomUpTAM *float64 `json:"bottom_up_tam,omitempty"`
	TAMDeltaPct float64  `json:"tam_delta_pct"`
	Warning     string   `json:"warning,omitempty"`
	Note        string   `json:"note,omitempty"`
}

// Compare reports the TAM delta as a percentage of the two estimates' mean.
func Compare(td, bu *Estimate) Comparison {
	a, b := td.TAM.RawValue, bu.TAM.RawValue
	if a == 0 && b == 0 {
		return Comparison{TAMDeltaPct: 0, Note: "Both TAM values are zero."}
	}
	delta := 0.0
	if avg := (a + b) / 2; avg != 0 {
		delta = math.Abs(a-b) / avg * 100
	}
	c := Comparison{TopDownTAM: &a, BottomUpTAM: &b, TAMDeltaPct: Round1(delta)}
	d := strconv.FormatFloat(c.TAMDeltaPct, 'f', -1, 64)
	switch {
	case delta > DiscrepancyPct:
		c.Warning = fmt.Sprintf("Top-down and bottom-up TAM differ by %s%% (>%g%%). "+
			"Review assumptions, one approach likely has a flawed input.", d, DiscrepancyPct)
	case delta > ModeratePct:
		c.Note = fmt.Sprintf("TAM estimates differ by %s%%. Moderate discrepancy, worth investigating but not alarming.", d)
	default:
		c.Note = fmt.Sprintf("TAM estimates differ by only %s%%. Good convergence.", d)
	}
	return c
}

func figure(raw float64, formula string, inputs map[string]float64) Figure {
	return Figure{Value: Round2(raw), RawValue: raw, Formula: formula, Inputs: inputs}
}

func positive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be positive (> 0) (got %s)", ErrInvalidInput, name, Num(v))
	}
	return nil
}

func pct(name string, v float64) error {
	switch {
	case v < 0:
		return fmt.Errorf("%w: %s cannot be negative (got %s)", ErrInvalidInput, name, Num(v))
	case v > 100:
		return fmt.Errorf("%w: %s cannot exceed 100%% (got %s%%)", ErrInvalidInput, name, Num(v))
	}
	return nil
}

func whole(name string, v float64) error {
	if v != math.Trunc(v) {
		return fmt.Errorf("%w: %s must be a whole number (got %s)", ErrInvalidInput, name, Num(v))
	}
	return nil
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Num formats v without an exponent or trailing zeros.
func Num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
