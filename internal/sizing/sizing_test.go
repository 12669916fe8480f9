package sizing

import (
	"errors"
	"strings"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestCalculate_TopDown(t *testing.T) {
	res, err := Calculate(Input{
		Approach:      "top-down",
		IndustryTotal: f(100_000_000_000),
		SegmentPct:    f(6),
		SharePct:      f(5),
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.Approach != TopDown {
		t.Errorf("Approach = %q, want %q", res.Approach, TopDown)
	}
	if res.BottomUp != nil || res.Comparison != nil {
		t.Error("top-down request produced bottom-up output")
	}
	td := res.TopDown
	if td.TAM.Value != 100_000_000_000 || td.SAM.Value != 6_000_000_000 || td.SOM.Value != 300_000_000 {
		t.Errorf("TAM/SAM/SOM = %v/%v/%v", td.TAM.Value, td.SAM.Value, td.SOM.Value)
	}
	if td.SAM.Inputs["tam"] != 100_000_000_000 || td.SAM.Inputs[SegmentPct] != 6 {
		t.Errorf("SAM inputs = %v", td.SAM.Inputs)
	}
	if res.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", res.Currency)
	}
}

func TestCalculate_BottomUp(t *testing.T) {
	res, err := Calculate(Input{
		Approach:       BottomUp,
		CustomerCount:  f(4_500_000),
		ARPU:           f(15_000),
		ServiceablePct: f(35),
		TargetPct:      f(0.5),
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	bu := res.BottomUp
	if bu.TAM.Value != 67_500_000_000 {
		t.Errorf("TAM = %v, want 67.5B", bu.TAM.Value)
	}
	if bu.SAM.Value != 23_625_000_000 {
		t.Errorf("SAM = %v, want 23.625B", bu.SAM.Value)
	}
	if bu.SOM.Value != 118_125_000 {
		t.Errorf("SOM = %v, want 118.125M", bu.SOM.Value)
	}
	if bu.SAM.Inputs["serviceable_customers"] != 1_575_000 {
		t.Errorf("serviceable_customers = %v", bu.SAM.Inputs["serviceable_customers"])
	}
}

func TestCalculate_BothCompares(t *testing.T) {
	tests := []struct {
		name     string
		industry float64
		warning  bool
		note     string
	}{
		{"converge", 1000, false, "Good convergence"},
		{"moderate", 1200, false, "Moderate discrepancy"},
		{"discrepant", 2000, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Calculate(Input{
				IndustryTotal: f(tt.industry), SegmentPct: f(50), SharePct: f(10),
				CustomerCount: f(100), ARPU: f(10), ServiceablePct: f(50), TargetPct: f(10),
			})
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			c := res.Comparison
			if c == nil {
				t.Fatal("Comparison is nil for approach both")
			}
			if (c.Warning != "") != tt.warning {
				t.Errorf("Warning = %q, want present=%v", c.Warning, tt.warning)
			}
			if tt.note != "" && !strings.Contains(c.Note, tt.note) {
				t.Errorf("Note = %q, want %q", c.Note, tt.note)
			}
		})
	}
}

func TestCompare_DeltaPct(t *testing.T) {
	td, _ := NewTopDown(2000, 50, 10)
	bu, _ := NewBottomUp(100, 10, 50, 10)
	c := Compare(td, bu)
	// |2000-1000| / 1500 = 66.7%
	if c.TAMDeltaPct != 66.7 {
		t.Errorf("TAMDeltaPct = %v, want 66.7", c.TAMDeltaPct)
	}
	if !strings.Contains(c.Warning, "66.7%") {
		t.Errorf("Warning = %q, want it to quote the delta", c.Warning)
	}
}

func TestCalculate_Projection(t *testing.T) {
	res, err := Calculate(Input{
		Approach: TopDown, IndustryTotal: f(1000), SegmentPct: f(10), SharePct: f(10),
		GrowthRate: f(10), Years: 2,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	p := res.TopDown.Projected
	if p == nil {
		t.Fatal("Projected is nil")
	}
	if p.TAM != 1210 || p.SAM != 121 || p.SOM != 12.1 {
		t.Errorf("projection = %+v", p)
	}
}

func TestCalculate_NegativeYearsIgnored(t *testing.T) {
	res, err := Calculate(Input{
		Approach: TopDown, IndustryTotal: f(1000), SegmentPct: f(10), SharePct: f(10),
		GrowthRate: f(10), Years: -3,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.TopDown.Projected != nil {
		t.Error("negative years produced a projection")
	}
	if len(res.Notes) != 1 {
		t.Errorf("Notes = %v, want one diagnostic", res.Notes)
	}
}

func TestCalculate_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
		is   error
	}{
		{"unknown approach", Input{Approach: "sideways"}, "approach must be one of", ErrUnknownApproach},
		{"missing top-down", Input{Approach: TopDown, IndustryTotal: f(1)}, "top-down requires: segment_pct, share_pct", ErrInvalidInput},
		{"missing bottom-up", Input{Approach: BottomUp}, "bottom-up requires", ErrInvalidInput},
		{"zero industry", Input{Approach: TopDown, IndustryTotal: f(0), SegmentPct: f(1), SharePct: f(1)}, "industry_total must be positive", ErrInvalidInput},
		{"pct over 100", Input{Approach: TopDown, IndustryTotal: f(1), SegmentPct: f(101), SharePct: f(1)}, "segment_pct cannot exceed 100%", ErrInvalidInput},
		{"fractional customers", Input{Approach: BottomUp, CustomerCount: f(3.9), ARPU: f(1), ServiceablePct: f(1), TargetPct: f(1)}, "customer_count must be a whole number", ErrInvalidInput},
		{"growth floor", Input{Approach: TopDown, GrowthRate: f(-101)}, "growth_rate cannot be below -100%", ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.in)
			if !errors.Is(err, tt.is) {
				t.Fatalf("err = %v, want %v", err, tt.is)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestNormalizeApproach(t *testing.T) {
	for in, want := range map[string]string{"top-down": TopDown, "bottom_up": BottomUp, " both ": Both} {
		if got := NormalizeApproach(in); got != want {
			t.Errorf("NormalizeApproach(%q) = %q, want %q", in, got, want)
		}
	}
}
