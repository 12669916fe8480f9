package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAcknowledge_SeverityGating(t *testing.T) {
	reg := deckWorkflow.registry
	ws := []Warning{
		reg.Warn("CHECKLIST_FAILURES_CRITICAL", "Checklist has 12 failures"),
		reg.Warn("STAGE_MISMATCH", "Deck claims 'seed' but analysis detected 'series_a'"),
		reg.Warn("STAGE_OUT_OF_SCOPE", "Stage 'series_b' is outside calibrated range"),
	}
	doc := map[string]any{"accepted_warnings": []any{
		map[string]any{"code": "CHECKLIST_FAILURES_CRITICAL", "match": "failures", "reason": "known"},
		map[string]any{"code": "STAGE_MISMATCH", "match": "SERIES_A", "reason": "bridge round"},
		map[string]any{"code": "STAGE_OUT_OF_SCOPE", "match": "series_b", "reason": "growth deck"},
	}}

	core, logs := observer.New(zapcore.WarnLevel)
	accs := parseAcceptances(doc, reg, zap.New(core))
	require.Len(t, accs, 2)
	assert.Equal(t, 1, logs.FilterMessage("cannot accept code, ignored").Len())

	n := acknowledge(ws, accs)
	assert.Equal(t, 2, n)
	assert.Equal(t, High, ws[0].Severity, "high severity is never downgraded")
	assert.Equal(t, Acknowledged, ws[1].Severity)
	assert.Equal(t, "Deck claims 'seed' but analysis detected 'series_a' [Accepted: bridge round]", ws[1].Message)
	assert.Equal(t, Acknowledged, ws[2].Severity)
	assert.False(t, ws[1].Blocking())
}

func TestParseAcceptances_Malformed(t *testing.T) {
	reg := deckWorkflow.registry
	doc := map[string]any{"accepted_warnings": []any{
		"not an object",
		map[string]any{"code": "STAGE_MISMATCH"},
		map[string]any{"code": "STAGE_MISMATCH", "match": "seed", "reason": "  "},
		map[string]any{"code": "NOT_A_CODE", "match": "x", "reason": "typo"},
	}}
	core, logs := observer.New(zapcore.WarnLevel)
	accs := parseAcceptances(doc, reg, zap.New(core))

	assert.Equal(t, []Acceptance{{Code: "NOT_A_CODE", Match: "x", Reason: "typo"}}, accs)
	assert.Equal(t, 2, logs.FilterMessage("accepted_warnings entry missing 'code' or 'match', skipped").Len())
	assert.Equal(t, 1, logs.FilterMessage("accepted_warnings entry missing 'reason', skipped").Len())

	ws := []Warning{reg.Warn("STAGE_MISMATCH", "x marks the spot")}
	assert.Zero(t, acknowledge(ws, accs), "unknown codes never match")
}

func TestAcknowledge_FirstMatchWins(t *testing.T) {
	ws := []Warning{{Code: "STAGE_MISMATCH", Message: "Deck claims 'seed'", Severity: Medium}}
	accs := []Acceptance{
		{Code: "STAGE_MISMATCH", Match: "seed", Reason: "first"},
		{Code: "STAGE_MISMATCH", Match: "claims", Reason: "second"},
	}
	acknowledge(ws, accs)
	assert.Equal(t, "Deck claims 'seed' [Accepted: first]", ws[0].Message)

	// Already acknowledged warnings are not touched again.
	assert.Zero(t, acknowledge(ws, accs))
}

func TestCompose_AcknowledgedWarningIsNotBlocking(t *testing.T) {
	docs := deckRun(t)
	docs["deck_inventory"].(map[string]any)["claimed_stage"] = "series_a"
	docs["stage_profile"].(map[string]any)["accepted_warnings"] = []any{
		map[string]any{"code": "STAGE_MISMATCH", "match": "series_a", "reason": "founder positions as A"},
	}
	res := compose(t, DeckReview, writeRun(t, docs))

	w, ok := find(res.Validation.Warnings, "STAGE_MISMATCH")
	require.True(t, ok)
	assert.Equal(t, Acknowledged, w.Severity)
	assert.Equal(t, StatusWarnings, res.Validation.Status)
	assert.Empty(t, res.Blocking())
	assert.Contains(t, res.ReportMarkdown, "[Accepted: founder positions as A]")
}
