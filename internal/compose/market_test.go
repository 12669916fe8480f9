package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lool-ventures/founder-skills/cli/internal/provenance"
	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
	"github.com/lool-ventures/founder-skills/cli/internal/sensitivity"
	"github.com/lool-ventures/founder-skills/cli/internal/sizing"
)

func ptr(v float64) *float64 { return &v }

// marketRun is a top-down market sizing run: TAM $10.0B, SAM $1.0B, SOM $50.0M.
func marketRun(t *testing.T) map[string]any {
	t.Helper()
	res, err := sizing.Calculate(sizing.Input{
		Approach:      sizing.TopDown,
		IndustryTotal: ptr(10e9),
		SegmentPct:    ptr(10),
		SharePct:      ptr(5),
	})
	require.NoError(t, err)
	return map[string]any{
		"inputs": map[string]any{
			"company_name": "Acme Robotics", "analysis_date": "2026-02-01",
			"materials_provided": []any{"deck.pdf"},
			"existing_claims":    map[string]any{"tam": 12e9},
		},
		"methodology": map[string]any{"approach_chosen": "top-down", "rationale": "Industry reports exist."},
		"validation": map[string]any{
			"assumptions": []any{
				map[string]any{"name": sizing.IndustryTotal, "category": provenance.Sourced, "value": 10e9},
				map[string]any{"name": sizing.SegmentPct, "category": provenance.Derived, "value": 10},
				map[string]any{"name": sizing.SharePct, "category": provenance.Sourced, "value": 5},
			},
			"figure_validations": []any{
				map[string]any{"figure": "tam", "label": "TAM", "status": "validated", "source_count": 2},
			},
			"sources": []any{map[string]any{"title": "Robotics Market 2025", "publisher": "IDC", "url": "https://example.com/r"}},
		},
		"sizing":    res,
		"checklist": scored(t, scoring.MarketSizing, allStatus("pass")),
	}
}

func TestCompose_MarketOptionalSensitivityMissing(t *testing.T) {
	res := compose(t, MarketSizing, writeRun(t, marketRun(t)))

	require.Equal(t, []string{CodeMissingOptional}, codes(res.Validation.Warnings))
	w := res.Validation.Warnings[0]
	assert.Equal(t, Low, w.Severity)
	assert.Empty(t, res.Validation.Errors, "optional artifacts are not integrity errors")
	assert.Equal(t, []string{"sensitivity.json"}, res.Validation.ArtifactsMissing)
	assert.Empty(t, res.Blocking())

	rec, ok := res.Provenance.Get(sizing.TopDown, "sam")
	require.True(t, ok)
	assert.Equal(t, provenance.Derived, rec.Classification)
	rec, _ = res.Provenance.Get(sizing.TopDown, "som")
	assert.Equal(t, provenance.Sourced, rec.Classification)

	md := res.ReportMarkdown
	assert.Contains(t, md, "# Market Sizing: Acme Robotics")
	assert.Contains(t, md, "| TAM | $10.0B | Top-down |")
	assert.Contains(t, md, "| SOM | $50.0M | Top-down |")
	assert.Contains(t, md, "Robotics Market 2025")
}

func TestCompose_MarketChecks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, docs map[string]any)
		code   string
		sev    Severity
		msg    string
	}{
		{
			name: "approach mismatch",
			mutate: func(t *testing.T, docs map[string]any) {
				docs["methodology"].(map[string]any)["approach_chosen"] = "both"
			},
			code: "APPROACH_MISMATCH", sev: Medium,
			msg: "Methodology says 'both' but sizing.json missing top_down or bottom_up",
		},
		{
			name: "unvalidated claim",
			mutate: func(t *testing.T, docs map[string]any) {
				v := docs["validation"].(map[string]any)
				v["figure_validations"] = []any{map[string]any{"figure": "sam", "status": "unsupported"}}
			},
			code: "UNVALIDATED_CLAIMS", sev: High, msg: "Unsupported figure: sam",
		},
		{
			name: "overclaimed validation",
			mutate: func(t *testing.T, docs map[string]any) {
				v := docs["validation"].(map[string]any)
				v["figure_validations"] = []any{map[string]any{"label": "TAM", "status": "validated", "source_count": 1}}
			},
			code: "OVERCLAIMED_VALIDATION", sev: High, msg: "Figure 'TAM' marked validated but source_count=1",
		},
		{
			name: "refuted without reason",
			mutate: func(t *testing.T, docs map[string]any) {
				v := docs["validation"].(map[string]any)
				v["figure_validations"] = []any{map[string]any{"label": "SOM", "status": "refuted"}}
			},
			code: "REFUTED_MISSING_REASON", sev: Medium, msg: "Refuted figure 'SOM' has no refutation explanation",
		},
		{
			name: "deck claim mismatch",
			mutate: func(t *testing.T, docs map[string]any) {
				docs["inputs"].(map[string]any)["existing_claims"] = map[string]any{"tam": 50e9}
			},
			code: "DECK_CLAIM_MISMATCH", sev: Low,
			msg: "TAM differs from deck claim by -80.0% (deck: $50.0B, calculated: $10.0B)",
		},
		{
			name: "unresolved provenance",
			mutate: func(t *testing.T, docs map[string]any) {
				v := docs["validation"].(map[string]any)
				v["assumptions"] = v["assumptions"].([]any)[:2]
			},
			code: "PROVENANCE_UNRESOLVED", sev: Low,
			msg: "Quantitative inputs without matching assumptions in validation.json: share_pct (used in SOM)",
		},
		{
			name: "agent estimate not stress-tested",
			mutate: func(t *testing.T, docs map[string]any) {
				v := docs["validation"].(map[string]any)
				v["assumptions"].([]any)[1].(map[string]any)["category"] = provenance.AgentEstimate
			},
			code: "UNSOURCED_ASSUMPTIONS", sev: Medium,
			msg: "Agent-estimate assumptions not stress-tested in sensitivity: [Segment %]",
		},
		{
			name: "checklist failures",
			mutate: func(t *testing.T, docs map[string]any) {
				docs["checklist"] = scored(t, scoring.MarketSizing, func(i int) string {
					if i == 0 {
						return "fail"
					}
					return "pass"
				})
			},
			code: "CHECKLIST_FAILURES", sev: High,
		},
		{
			name: "incomplete checklist",
			mutate: func(t *testing.T, docs map[string]any) {
				cl := docs["checklist"].(map[string]any)
				cl["items"] = cl["items"].([]any)[:20]
			},
			code: "CHECKLIST_INCOMPLETE", sev: Medium, msg: "Checklist has 20 items (expected 22)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := marketRun(t)
			tt.mutate(t, docs)
			res := compose(t, MarketSizing, writeRun(t, docs))

			w, ok := find(res.Validation.Warnings, tt.code)
			require.True(t, ok, "%s expected, got %v", tt.code, codes(res.Validation.Warnings))
			assert.Equal(t, tt.sev, w.Severity)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, w.Message)
			}
			assert.Contains(t, res.ReportMarkdown, "**"+marketWorkflow.registry.Label(tt.code)+":** "+w.Message)
		})
	}
}

func TestCompose_MarketSensitivity(t *testing.T) {
	docs := marketRun(t)
	sens, err := sensitivity.Analyze(sensitivity.Request{
		Approach: sizing.TopDown,
		Base:     map[string]float64{sizing.IndustryTotal: 10e9, sizing.SegmentPct: 10, sizing.SharePct: 5},
		Ranges: map[string]sensitivity.Range{
			sizing.SharePct: {LowPct: ptr(-20), HighPct: ptr(20), Confidence: provenance.AgentEstimate},
		},
	})
	require.NoError(t, err)
	docs["sensitivity"] = sens
	res := compose(t, MarketSizing, writeRun(t, docs))

	w, ok := find(res.Validation.Warnings, "FEW_SENSITIVITY_PARAMS")
	require.True(t, ok, "got %v", codes(res.Validation.Warnings))
	assert.Equal(t, "Sensitivity analysis has 1 parameters (recommend 3+)", w.Message)
	_, narrow := find(res.Validation.Warnings, "NARROW_AGENT_ESTIMATE_RANGE")
	assert.False(t, narrow, "effective ranges are widened to the agent-estimate floor")
	_, optional := find(res.Validation.Warnings, CodeMissingOptional)
	assert.False(t, optional)
	assert.Contains(t, res.ReportMarkdown, "Market Share %")
}

func TestCompose_MarketSizingHierarchy(t *testing.T) {
	docs := marketRun(t)
	s := docs["sizing"].(*sizing.Result)
	s.TopDown.SOM.Value = s.TopDown.SAM.Value * 2
	res := compose(t, MarketSizing, writeRun(t, docs))

	w, ok := find(res.Validation.Warnings, "SIZING_HIERARCHY")
	require.True(t, ok, "got %v", codes(res.Validation.Warnings))
	assert.True(t, strings.HasPrefix(w.Message, "Top-down sizing violates TAM >= SAM >= SOM"), w.Message)
}
