package provenance

import (
	"testing"

	"github.com/lool-ventures/founder-skills/cli/internal/sizing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		cats []string
		want string
	}{
		{"none", nil, Unknown},
		{"all sourced", []string{Sourced, Sourced}, Sourced},
		{"mixed", []string{Sourced, Derived}, Derived},
		{"any estimate", []string{Sourced, AgentEstimate, Derived}, AgentEstimate},
		{"unrecognized treated as derived", []string{"hunch"}, Derived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.cats); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.cats, got, tt.want)
			}
		})
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name  string
		calc  float64
		claim any
		want  *float64
	}{
		{"higher", 150, 100.0, ptr(50)},
		{"lower", 40, 100.0, ptr(-60)},
		{"string claim", 110, "100", ptr(10)},
		{"zero claim", 10, 0.0, nil},
		{"negative claim", 10, -5.0, nil},
		{"garbage", 10, "lots", nil},
		{"absent", 10, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Delta(tt.calc, tt.claim)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Delta = %v, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("Delta = %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestTrace(t *testing.T) {
	res, err := sizing.Calculate(sizing.Input{
		Approach:      sizing.Both,
		IndustryTotal: ptr(1000), SegmentPct: ptr(50), SharePct: ptr(10),
		CustomerCount: ptr(100), ARPU: ptr(10), ServiceablePct: ptr(50), TargetPct: ptr(10),
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	assumptions := map[string]string{
		sizing.IndustryTotal:  Sourced,
		sizing.SegmentPct:     Derived,
		sizing.CustomerCount:  Sourced,
		sizing.ARPU:           AgentEstimate,
		sizing.ServiceablePct: Sourced,
	}
	claims := map[string]any{"tam": 400.0}

	graph, unresolved := Trace(res, assumptions, claims)

	tests := []struct {
		approach, metric, want string
	}{
		{sizing.TopDown, "tam", Sourced},
		{sizing.TopDown, "sam", Derived},
		{sizing.TopDown, "som", Unknown},
		{sizing.BottomUp, "tam", AgentEstimate},
		{sizing.BottomUp, "sam", AgentEstimate},
	}
	for _, tt := range tests {
		rec, ok := graph.Get(tt.approach, tt.metric)
		if !ok {
			t.Fatalf("missing record %s/%s", tt.approach, tt.metric)
		}
		if rec.Classification != tt.want {
			t.Errorf("%s/%s = %q, want %q", tt.approach, tt.metric, rec.Classification, tt.want)
		}
	}

	tam, _ := graph.Get(sizing.TopDown, "tam")
	if tam.DeltaVsDeckPct == nil || *tam.DeltaVsDeckPct != 150 {
		t.Errorf("top-down TAM delta = %v, want 150", tam.DeltaVsDeckPct)
	}
	if tam.ConfidenceBreakdown[Sourced] != 1 {
		t.Errorf("breakdown = %v, want one sourced", tam.ConfidenceBreakdown)
	}
	sam, _ := graph.Get(sizing.TopDown, "sam")
	if _, ok := sam.InputProvenances["tam"]; ok {
		t.Error("intermediate tam was traced as a quantitative input")
	}

	want := []Unresolved{
		{Param: sizing.SharePct, Metric: "SOM"},
		{Param: sizing.TargetPct, Metric: "SOM"},
	}
	if len(unresolved) != len(want) {
		t.Fatalf("unresolved = %v, want %v", unresolved, want)
	}
	for i := range want {
		if unresolved[i] != want[i] {
			t.Errorf("unresolved[%d] = %v, want %v", i, unresolved[i], want[i])
		}
	}
}

func TestTrace_SingleApproach(t *testing.T) {
	res, err := sizing.Calculate(sizing.Input{
		Approach: sizing.TopDown, IndustryTotal: ptr(1000), SegmentPct: ptr(50), SharePct: ptr(10),
	})
	if err != nil {
		t.Fatal(err)
	}
	graph, _ := Trace(res, nil, nil)
	if _, ok := graph[sizing.BottomUp]; ok {
		t.Error("graph has a bottom_up entry for a top-down result")
	}
	if rec, _ := graph.Get(sizing.TopDown, "tam"); rec.Classification != Unknown || rec.DeltaVsDeckPct != nil {
		t.Errorf("record = %+v, want unknown without delta", rec)
	}
}

func ptr(v float64) *float64 { return &v }
