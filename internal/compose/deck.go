package compose

import (
	"fmt"
	"strings"

	"github.com/lool-ventures/founder-skills/cli/internal/provenance"
	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
)

const (
	criticalFailures = 10
	minSlides        = 5
	maxSlides        = 20
	priorityFixes    = 5
)

// knownStages are the stages the rubrics are calibrated for.
var knownStages = map[string]bool{"pre_seed": true, "seed": true, "series_a": true}

var aiCriteria = map[string]bool{
	"ai_retention_rebased":          true,
	"ai_cost_to_serve_shown":        true,
	"ai_defensibility_beyond_model": true,
	"ai_responsible_controls":       true,
}

var deckWorkflow = &workflow{
	name:  DeckReview,
	agent: "Deck Review Agent",
	artifacts: []Artifact{
		{"deck_inventory", true, "{company_name, review_date, total_slides, input_format, claimed_stage}"},
		{"stage_profile", true, "{detected_stage, confidence, is_ai_company, stage_benchmarks{}, evidence[], accepted_warnings[]}"},
		{"slide_reviews", true, "{reviews[], missing_slides[], overall_narrative_assessment}"},
		{"checklist", true, "{items[], summary{}}"},
	},
	registry: integrityCodes().with(Registry{
		"CHECKLIST_FAILURES_CRITICAL": {High, "Checklist Failures (Critical)"},
		"STAGE_MISMATCH":              {Medium, "Stage Mismatch"},
		"SLIDE_COUNT_EXTREME":         {Medium, "Slide Count"},
		"UNCITED_CRITIQUE":            {Medium, "Uncited Critique"},
		"AI_CRITERIA_SKIPPED":         {Medium, "AI Criteria Skipped"},
		"STAGE_OUT_OF_SCOPE":          {Low, "Stage Out of Scope"},
	}),
	ackSource: "stage_profile",
	bind:      bindDeck,
}

type deckInventory struct {
	CompanyName  string   `json:"company_name"`
	ReviewDate   string   `json:"review_date"`
	TotalSlides  *float64 `json:"total_slides"`
	InputFormat  string   `json:"input_format"`
	ClaimedStage string   `json:"claimed_stage"`
}

func (d *deckInventory) slides() string {
	if d.TotalSlides == nil {
		return "?"
	}
	return num(*d.TotalSlides)
}

type stageProfile struct {
	DetectedStage   string          `json:"detected_stage"`
	Confidence      any             `json:"confidence"`
	IsAICompany     bool            `json:"is_ai_company"`
	StageBenchmarks *stageBenchmark `json:"stage_benchmarks"`
	Evidence        []any           `json:"evidence"`
}

type stageBenchmark struct {
	RoundSizeRange    any `json:"round_size_range"`
	ExpectedTraction  any `json:"expected_traction"`
	RunwayExpectation any `json:"runway_expectation"`
}

type slideReview struct {
	SlideNumber      any    `json:"slide_number"`
	MapsTo           string `json:"maps_to"`
	Strengths        []any  `json:"strengths"`
	Weaknesses       []any  `json:"weaknesses"`
	Recommendations  []any  `json:"recommendations"`
	BestPracticeRefs []any  `json:"best_practice_refs"`
}

type missingSlide struct {
	Importance     string `json:"importance"`
	ExpectedType   string `json:"expected_type"`
	Recommendation string `json:"recommendation"`
}

type slideReviews struct {
	Reviews                    []slideReview  `json:"reviews"`
	MissingSlides              []missingSlide `json:"missing_slides"`
	OverallNarrativeAssessment string         `json:"overall_narrative_assessment"`
}

type deckReport struct {
	r         *run
	inventory *deckInventory
	profile   *stageProfile
	reviews   *slideReviews
	checklist *scoreDoc
}

func bindDeck(r *run) report {
	return &deckReport{
		r:         r,
		inventory: decodeSlot[deckInventory](r, "deck_inventory"),
		profile:   decodeSlot[stageProfile](r, "stage_profile"),
		reviews:   decodeSlot[slideReviews](r, "slide_reviews"),
		checklist: decodeSlot[scoreDoc](r, "checklist"),
	}
}

func (d *deckReport) provenance() provenance.Graph {
	return nil
}

func (d *deckReport) check() []Warning {
	reg := d.r.wf.registry
	var ws []Warning
	add := func(code, format string, args ...any) {
		ws = append(ws, reg.Warn(code, fmt.Sprintf(format, args...)))
	}

	if d.checklist != nil && d.checklist.Summary.Fail > criticalFailures {
		add("CHECKLIST_FAILURES_CRITICAL", "Checklist has %s failures (>10 — critical threshold)", num(d.checklist.Summary.Fail))
	}

	var claimed, detected string
	if d.inventory != nil {
		claimed = normStage(d.inventory.ClaimedStage)
	}
	if d.profile != nil {
		detected = normStage(d.profile.DetectedStage)
	}
	if d.inventory != nil && d.profile != nil && claimed != "" && detected != "" && claimed != detected {
		add("STAGE_MISMATCH", "Deck claims '%s' but analysis detected '%s'", claimed, detected)
	}

	var outOfScope []string
	if detected != "" && !knownStages[detected] {
		outOfScope = append(outOfScope, detected)
	}
	if claimed != "" && !knownStages[claimed] && claimed != detected {
		outOfScope = append(outOfScope, claimed)
	}
	if len(outOfScope) > 0 {
		add("STAGE_OUT_OF_SCOPE", "Stage '%s' is outside calibrated range (pre_seed, seed, series_a). Results may be less precise.",
			strings.Join(outOfScope, ", "))
	}

	if d.inventory != nil {
		total := 0.0
		if d.inventory.TotalSlides != nil {
			total = *d.inventory.TotalSlides
		}
		switch {
		case total < minSlides:
			add("SLIDE_COUNT_EXTREME", "Deck has only %s slides (<5 — too few for a complete pitch)", num(total))
		case total > maxSlides:
			add("SLIDE_COUNT_EXTREME", "Deck has %s slides (>20 — sharp engagement drop-off after ~18)", num(total))
		}
	}

	if d.reviews != nil {
		for _, rv := range d.reviews.Reviews {
			if len(rv.Weaknesses) > 0 && len(rv.BestPracticeRefs) == 0 {
				add("UNCITED_CRITIQUE", "Slide %s has critiques without best-practice citations", display(rv.SlideNumber, "?"))
			}
		}
	}

	if d.profile != nil && d.checklist != nil && d.profile.IsAICompany {
		seen, skipped := 0, 0
		for _, it := range d.checklist.Items {
			if aiCriteria[it.ID] {
				seen++
				if it.Status == "not_applicable" {
					skipped++
				}
			}
		}
		if seen > 0 && seen == skipped {
			add("AI_CRITERIA_SKIPPED", "Company detected as AI-first but all AI criteria marked not_applicable")
		}
	}
	return ws
}

func (d *deckReport) sections(ws []Warning) []string {
	return []string{
		d.title(),
		d.executiveSummary(),
		d.stageContext(),
		d.slideFeedback(),
		d.checklistSection(),
		d.priorityFixes(),
		warningsSection(d.r.wf.registry, ws),
		d.fullChecklist(),
	}
}

func (d *deckReport) title() string {
	if d.inventory == nil {
		if reason, ok := d.r.stub("deck_inventory"); ok {
			return "# Pitch Deck Review\n\n*Deck inventory not recorded — " + reason + "*\n"
		}
		return "# Pitch Deck Review\n\n*No deck inventory found.*\n"
	}
	inv := d.inventory
	return fmt.Sprintf("# Pitch Deck Review: %s\n\n**Date:** %s | **Slides:** %s | **Format:** %s  \n",
		or(inv.CompanyName, "Unknown Company"), or(inv.ReviewDate, "unknown date"), inv.slides(), or(inv.InputFormat, "unknown")) +
		fmt.Sprintf(generatedBy, d.r.wf.agent)
}

var deckStatusLabels = map[string]string{
	"strong":         "Strong — your deck is investor-ready with minor polish",
	"solid":          "Solid — good foundation, a few targeted improvements will make this shine",
	"needs_work":     "Needs Work — the business may be strong but the deck has gaps to close before sending",
	"major_revision": "Major Revision — worth reworking before it goes out; see priority fixes below",
}

func (d *deckReport) executiveSummary() string {
	lines := []string{"## Executive Summary\n"}
	if p := d.profile; p != nil {
		lines = append(lines, fmt.Sprintf("**Stage:** %s (confidence: %s)", stageLabel(or(p.DetectedStage, "unknown")), display(p.Confidence, "unknown")))
		if p.IsAICompany {
			lines = append(lines, "**AI Company:** Yes")
		}
	}
	if d.inventory != nil {
		lines = append(lines, "**Slide Count:** "+d.inventory.slides())
	}
	if d.checklist != nil {
		s := d.checklist.Summary
		status := or(s.OverallStatus, "unknown")
		label, ok := deckStatusLabels[status]
		if !ok {
			label = status
		}
		lines = append(lines,
			fmt.Sprintf("**Overall Score:** %s%% — %s", num(s.ScorePct), label),
			fmt.Sprintf("**Breakdown:** %s pass, %s fail, %s warn, %s N/A", num(s.Pass), num(s.Fail), num(s.Warn), num(s.NotApplicable)))
	}
	return joinLines(lines)
}

func (d *deckReport) stageContext() string {
	if d.profile == nil {
		return "## Stage Context\n\n*No stage profile available.*\n"
	}
	p := d.profile
	lines := []string{"## Stage Context\n", "**Detected Stage:** " + stageLabel(or(p.DetectedStage, "unknown")) + "\n"}
	if len(p.Evidence) > 0 {
		lines = append(lines, "**Evidence:**")
		for _, e := range p.Evidence {
			lines = append(lines, "- "+display(e, ""))
		}
		lines = append(lines, "")
	}
	if b := p.StageBenchmarks; b != nil {
		lines = append(lines,
			"**Typical Round Size:** "+display(b.RoundSizeRange, "N/A"),
			"**Expected Traction:** "+display(b.ExpectedTraction, "N/A"),
			"**Runway Expectation:** "+display(b.RunwayExpectation, "N/A"))
	}
	lines = append(lines, "\n*Stage benchmarks are reference data from industry standards "+
		"(Sequoia, DocSend, YC, a16z, Carta). They represent typical ranges, not recommendations.*")
	return joinLines(lines)
}

func bullets(lines []string, heading string, items []any) []string {
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, heading)
	for _, it := range items {
		lines = append(lines, "- "+display(it, ""))
	}
	return lines
}

func (d *deckReport) slideFeedback() string {
	if d.reviews == nil {
		if reason, ok := d.r.stub("slide_reviews"); ok {
			return "## Slide-by-Slide Feedback\n\n*Slide reviews skipped — " + reason + "*\n"
		}
		return "## Slide-by-Slide Feedback\n\n*No slide reviews available.*\n"
	}
	lines := []string{
		"## Slide-by-Slide Feedback\n",
		"*Each slide assessment is the agent's evaluation against best-practice frameworks. " +
			"Strengths and weaknesses are the agent's analysis, not investor quotes.*\n",
	}
	for _, rv := range d.reviews.Reviews {
		lines = append(lines, fmt.Sprintf("### Slide %s (%s)\n", display(rv.SlideNumber, "?"), or(rv.MapsTo, "unknown")))
		lines = bullets(lines, "**What's working:**", rv.Strengths)
		lines = bullets(lines, "**What investors will question:**", rv.Weaknesses)
		if len(rv.Recommendations) > 0 {
			lines = append(lines, "")
			lines = bullets(lines, "**How to fix:**", rv.Recommendations)
		}
		lines = append(lines, "")
	}
	if missing := d.reviews.MissingSlides; len(missing) > 0 {
		lines = append(lines, "### Slides to Add\n", "Investors at your stage will expect these:\n")
		for _, ms := range missing {
			lines = append(lines, fmt.Sprintf("- **[%s]** %s: %s",
				strings.ToUpper(or(ms.Importance, "important")), or(ms.ExpectedType, "unknown"), ms.Recommendation))
		}
		lines = append(lines, "")
	}
	if n := d.reviews.OverallNarrativeAssessment; n != "" {
		lines = append(lines, "### Overall Narrative\n\n"+n+"\n")
	}
	return joinLines(lines)
}

func (d *deckReport) checklistSection() string {
	if d.checklist == nil {
		return "## Checklist Results\n\n*No checklist data available.*\n"
	}
	s := d.checklist.Summary
	lines := []string{"## Checklist Results\n", "| Category | Pass | Fail | Warn | N/A |", "|----------|------|------|------|-----|"}
	for _, cat := range s.categories(scoring.DeckReview) {
		c := s.ByCategory[cat]
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s |",
			cat, num(c["pass"]), num(c["fail"]), num(c["warn"]), num(c["not_applicable"])))
	}
	lines = append(lines, "")

	if len(s.FailedItems) > 0 {
		lines = append(lines, "### Areas That Need Attention\n")
		for _, f := range s.FailedItems {
			lines = append(lines, fmt.Sprintf("- **%s** (%s)", f.title(), or(f.Category, "?")))
			if f.Notes != "" {
				lines = append(lines, "  - "+f.Notes)
			}
			if f.Evidence != "" {
				lines = append(lines, "  - *Basis: "+f.Evidence+"*")
			}
		}
		lines = append(lines, "")
	}
	if len(s.WarnedItems) > 0 {
		lines = append(lines, "### Items Needing Attention\n")
		for _, w := range s.WarnedItems {
			lines = append(lines, fmt.Sprintf("- **%s** (%s)", w.title(), or(w.Category, "?")))
			if w.Notes != "" {
				lines = append(lines, "  - "+w.Notes)
			}
		}
		lines = append(lines, "")
	}
	return joinLines(lines)
}

func fixLine(it scoredItem) string {
	if it.Notes != "" {
		return it.title() + ": " + it.Notes
	}
	return it.title()
}

// priorityFixes ranks failed items first, then critical missing slides,
// then warned items.
func (d *deckReport) priorityFixes() string {
	lines := []string{"## Top 5 Priority Fixes\n", "These are the changes that will have the biggest impact on investor response:\n"}
	var fixes []string
	if d.checklist != nil {
		for _, f := range d.checklist.Summary.FailedItems {
			fixes = append(fixes, fixLine(f))
		}
	}
	if d.reviews != nil {
		for _, ms := range d.reviews.MissingSlides {
			if ms.Importance == "critical" {
				fixes = append(fixes, fmt.Sprintf("Add missing %s: %s", or(ms.ExpectedType, "slide"), ms.Recommendation))
			}
		}
	}
	if d.checklist != nil {
		for _, w := range d.checklist.Summary.WarnedItems {
			fixes = append(fixes, fixLine(w))
		}
	}
	if len(fixes) == 0 {
		lines = append(lines, "No critical fixes identified.\n")
		return joinLines(lines)
	}
	for i, f := range fixes {
		if i == priorityFixes {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, f))
	}
	lines = append(lines, "")
	return joinLines(lines)
}

var deckStatusIcons = map[string]string{"pass": "PASS", "fail": "FAIL", "warn": "WARN", "not_applicable": "N/A"}

func statusIcon(icons map[string]string, status string) string {
	if s, ok := icons[status]; ok {
		return s
	}
	return "?"
}

func (d *deckReport) fullChecklist() string {
	if d.checklist == nil || len(d.checklist.Items) == 0 {
		return ""
	}
	lines := []string{"## Appendix: Full Checklist\n", "| # | Category | Criterion | Status |", "|---|----------|-----------|--------|"}
	for i, it := range d.checklist.Items {
		lines = append(lines, fmt.Sprintf("| %d | %s | %s | %s |", i+1, or(it.Category, "?"), it.title(), statusIcon(deckStatusIcons, it.Status)))
	}
	return joinLines(lines)
}
