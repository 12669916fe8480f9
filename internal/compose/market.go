package compose

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lool-ventures/founder-skills/cli/internal/provenance"
	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
	"github.com/lool-ventures/founder-skills/cli/internal/sensitivity"
	"github.com/lool-ventures/founder-skills/cli/internal/sizing"
)

const (
	tamDiscrepancyPct   = 30.0
	deckClaimMismatch   = 50.0
	maxNotApplicable    = 7
	minScenarios        = 3
	agentEstimateMinPct = 50.0
	minCorroboration    = 2
)

var marketWorkflow = &workflow{
	name:  MarketSizing,
	agent: "Market Sizing Agent",
	artifacts: []Artifact{
		{"inputs", true, "{company_name, analysis_date, materials_provided[], existing_claims{}}"},
		{"methodology", true, "{approach_chosen, rationale, accepted_warnings[]}"},
		{"validation", true, "{assumptions[], figure_validations[], sources[]}"},
		{"sizing", true, "{approach, top_down{tam,sam,som}, bottom_up{tam,sam,som}, comparison}"},
		{"checklist", true, "{items[], summary{}}"},
		{"sensitivity", false, "{approach, base_result, scenarios[], sensitivity_ranking[]}"},
	},
	registry: integrityCodes().with(Registry{
		"CHECKLIST_FAILURES":          {High, "Checklist Failures"},
		"OVERCLAIMED_VALIDATION":      {High, "Overclaimed Validation"},
		"UNVALIDATED_CLAIMS":          {High, "Unvalidated Claims"},
		CodeMissingOptional:           {Low, "Missing Optional Artifact"},
		"UNSOURCED_ASSUMPTIONS":       {Medium, "Unsourced Assumptions"},
		"APPROACH_MISMATCH":           {Medium, "Approach Mismatch"},
		"TAM_DISCREPANCY":             {Medium, "TAM Discrepancy"},
		"SIZING_HIERARCHY":            {Medium, "Sizing Hierarchy"},
		"CHECKLIST_INCOMPLETE":        {Medium, "Checklist Incomplete"},
		"FEW_SENSITIVITY_PARAMS":      {Medium, "Few Sensitivity Parameters"},
		"NARROW_AGENT_ESTIMATE_RANGE": {Medium, "Narrow Agent-Estimate Range"},
		"LOW_CHECKLIST_COVERAGE":      {Medium, "Low Checklist Coverage"},
		"REFUTED_CLAIMS":              {Medium, "Refuted Claims"},
		"REFUTED_MISSING_REASON":      {Medium, "Refuted Claim Missing Reason"},
		"DECK_CLAIM_MISMATCH":         {Low, "Deck Claim Mismatch"},
		"PROVENANCE_UNRESOLVED":       {Low, "Provenance Unresolved"},
	}),
	ackSource:      "methodology",
	reportOptional: true,
	bind:           bindMarket,
}

type marketInputs struct {
	CompanyName       string         `json:"company_name"`
	AnalysisDate      string         `json:"analysis_date"`
	MaterialsProvided []any          `json:"materials_provided"`
	ExistingClaims    map[string]any `json:"existing_claims"`
}

type methodologyDoc struct {
	ApproachChosen string `json:"approach_chosen"`
	Rationale      string `json:"rationale"`
}

type assumption struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Value    any    `json:"value"`
}

type figureValidation struct {
	Figure      string  `json:"figure"`
	Label       string  `json:"label"`
	Status      string  `json:"status"`
	SourceCount float64 `json:"source_count"`
	Refutation  string  `json:"refutation"`
}

func (f figureValidation) title() string {
	return or(f.Label, or(f.Figure, "unknown"))
}

type source struct {
	Title        string `json:"title"`
	Publisher    string `json:"publisher"`
	URL          string `json:"url"`
	DateAccessed string `json:"date_accessed"`
	Supported    any    `json:"supported"`
}

type validationDoc struct {
	Assumptions       []assumption       `json:"assumptions"`
	FigureValidations []figureValidation `json:"figure_validations"`
	Sources           []source           `json:"sources"`
}

type marketReport struct {
	r           *run
	inputs      *marketInputs
	methodology *methodologyDoc
	validation  *validationDoc
	sizing      *sizing.Result
	checklist   *scoreDoc
	sensitivity *sensitivity.Result

	graph      provenance.Graph
	unresolved []provenance.Unresolved
}

func bindMarket(r *run) report {
	m := &marketReport{
		r:           r,
		inputs:      decodeSlot[marketInputs](r, "inputs"),
		methodology: decodeSlot[methodologyDoc](r, "methodology"),
		validation:  decodeSlot[validationDoc](r, "validation"),
		sizing:      decodeSlot[sizing.Result](r, "sizing"),
		checklist:   decodeSlot[scoreDoc](r, "checklist"),
		sensitivity: decodeSlot[sensitivity.Result](r, "sensitivity"),
	}
	if m.sizing != nil {
		assumptions := make(map[string]string)
		if m.validation != nil {
			for _, a := range m.validation.Assumptions {
				if a.Name != "" && a.Category != "" {
					assumptions[a.Name] = a.Category
				}
			}
		}
		var claims map[string]any
		if m.inputs != nil {
			claims = m.inputs.ExistingClaims
		}
		m.graph, m.unresolved = provenance.Trace(m.sizing, assumptions, claims)
	}
	return m
}

func (m *marketReport) provenance() provenance.Graph {
	return m.graph
}

type approachEstimate struct {
	approach string
	est      *sizing.Estimate
}

// estimates returns the sizing estimates present, top-down first.
func estimates(res *sizing.Result) []approachEstimate {
	var out []approachEstimate
	if res == nil {
		return out
	}
	if res.TopDown != nil {
		out = append(out, approachEstimate{sizing.TopDown, res.TopDown})
	}
	if res.BottomUp != nil {
		out = append(out, approachEstimate{sizing.BottomUp, res.BottomUp})
	}
	return out
}

func (m *marketReport) check() []Warning {
	reg := m.r.wf.registry
	var ws []Warning
	add := func(code, format string, args ...any) {
		ws = append(ws, reg.Warn(code, fmt.Sprintf(format, args...)))
	}

	if m.validation != nil {
		estimated := make(map[string]bool)
		for _, a := range m.validation.Assumptions {
			if a.Category == provenance.AgentEstimate && provenance.Quantitative(a.Name) {
				estimated[a.Name] = true
			}
		}
		if m.sensitivity != nil {
			for _, s := range m.sensitivity.Scenarios {
				if s.Confidence == provenance.AgentEstimate {
					delete(estimated, s.Parameter)
				}
			}
		}
		if len(estimated) > 0 {
			names := make([]string, 0, len(estimated))
			for n := range estimated {
				names = append(names, n)
			}
			sort.Strings(names)
			labels := make([]string, len(names))
			for i, n := range names {
				labels[i] = humanizeParam(n)
			}
			add("UNSOURCED_ASSUMPTIONS", "Agent-estimate assumptions not stress-tested in sensitivity: %s", bracket(labels))
		}

		for _, f := range m.validation.FigureValidations {
			if f.Status == "unsupported" {
				add("UNVALIDATED_CLAIMS", "Unsupported figure: %s", f.title())
			}
		}
		for _, f := range m.validation.FigureValidations {
			if f.Status != "refuted" {
				continue
			}
			if f.Refutation == "" {
				add("REFUTED_MISSING_REASON", "Refuted figure '%s' has no refutation explanation", f.title())
			}
			add("REFUTED_CLAIMS", "Refuted figure: %s — %s", f.title(), or(f.Refutation, "no explanation provided"))
		}
	}

	if m.methodology != nil && m.sizing != nil {
		switch approach := sizing.NormalizeApproach(m.methodology.ApproachChosen); approach {
		case sizing.Both:
			if m.sizing.TopDown == nil || m.sizing.BottomUp == nil {
				add("APPROACH_MISMATCH", "Methodology says 'both' but sizing.json missing top_down or bottom_up")
			}
		case sizing.TopDown, sizing.BottomUp:
			if (approach == sizing.TopDown && m.sizing.TopDown == nil) || (approach == sizing.BottomUp && m.sizing.BottomUp == nil) {
				add("APPROACH_MISMATCH", "Methodology says '%s' but sizing.json missing %s key", approach, approach)
			}
		}
	}

	if m.sizing != nil {
		if c := m.sizing.Comparison; c != nil && c.TAMDeltaPct > tamDiscrepancyPct {
			add("TAM_DISCREPANCY", "Top-down and bottom-up TAM differ by %s%% (>30%%)", num(c.TAMDeltaPct))
		}
		for _, ae := range estimates(m.sizing) {
			tam, sam, som := ae.est.TAM.Value, ae.est.SAM.Value, ae.est.SOM.Value
			if tam < sam || sam < som {
				add("SIZING_HIERARCHY", "%s sizing violates TAM >= SAM >= SOM (TAM %s, SAM %s, SOM %s)",
					methodLabel(ae.approach), fmtUSD(tam), fmtUSD(sam), fmtUSD(som))
			}
		}
	}

	if m.checklist != nil {
		sum := m.checklist.Summary
		if sum.OverallStatus == "fail" {
			ids := make([]string, len(sum.FailedItems))
			for i, f := range sum.FailedItems {
				ids[i] = or(f.ID, "?")
			}
			add("CHECKLIST_FAILURES", "Checklist has %d failures: %s", len(ids), bracket(ids))
		}
		if want := canonicalCount(scoring.MarketSizing); len(m.checklist.Items) != want {
			add("CHECKLIST_INCOMPLETE", "Checklist has %d items (expected %d)", len(m.checklist.Items), want)
		}
		if sum.NotApplicable > maxNotApplicable {
			add("LOW_CHECKLIST_COVERAGE", "Checklist has %s not_applicable items (>%d of %d)",
				num(sum.NotApplicable), maxNotApplicable, canonicalCount(scoring.MarketSizing))
		}
	}

	if m.sensitivity != nil {
		if n := len(m.sensitivity.Scenarios); n < minScenarios {
			add("FEW_SENSITIVITY_PARAMS", "Sensitivity analysis has %d parameters (recommend 3+)", n)
		}
		for _, s := range m.sensitivity.Scenarios {
			if s.Confidence != provenance.AgentEstimate {
				continue
			}
			eff := s.EffectiveRange
			if math.Abs(eff.LowPct) < agentEstimateMinPct || math.Abs(eff.HighPct) < agentEstimateMinPct {
				add("NARROW_AGENT_ESTIMATE_RANGE",
					"Agent-estimate parameter '%s' has effective range [%s%%, +%s%%] — should be at least +/-50%%",
					s.Parameter, num(eff.LowPct), num(eff.HighPct))
			}
		}
	}

	if m.validation != nil {
		for _, f := range m.validation.FigureValidations {
			if f.Status == "validated" && f.SourceCount < minCorroboration {
				add("OVERCLAIMED_VALIDATION", "Figure '%s' marked validated but source_count=%s", f.title(), num(f.SourceCount))
			}
		}
	}

	if m.sizing != nil && m.inputs != nil {
		for _, ae := range estimates(m.sizing) {
			for _, metric := range provenance.Metrics {
				val := provenance.Figure(ae.est, metric).Value
				claim := m.inputs.ExistingClaims[metric]
				d := provenance.Delta(val, claim)
				if d == nil || math.Abs(*d) <= deckClaimMismatch {
					continue
				}
				c, _ := provenance.Number(claim)
				add("DECK_CLAIM_MISMATCH", "%s differs from deck claim by %+.1f%% (deck: %s, calculated: %s)",
					strings.ToUpper(metric), *d, fmtUSD(c), fmtUSD(val))
			}
		}
	}

	if m.sizing != nil && m.validation != nil && len(m.unresolved) > 0 {
		byParam := make(map[string][]string)
		for _, u := range m.unresolved {
			byParam[u.Param] = append(byParam[u.Param], u.Metric)
		}
		params := make([]string, 0, len(byParam))
		for p := range byParam {
			params = append(params, p)
		}
		sort.Strings(params)
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = fmt.Sprintf("%s (used in %s)", p, strings.Join(byParam[p], ", "))
		}
		add("PROVENANCE_UNRESOLVED", "Quantitative inputs without matching assumptions in validation.json: %s",
			strings.Join(parts, ", "))
	}
	return ws
}

func (m *marketReport) sections(ws []Warning) []string {
	return []string{
		m.title(),
		m.executiveSummary(),
		m.analysisChecklist(),
		m.methodologySection(),
		definitionsSection,
		m.sizingTable(),
		m.assumptions(),
		m.validationSection(),
		m.sensitivitySection(),
		warningsSection(m.r.wf.registry, ws),
		m.sources(),
	}
}

func (m *marketReport) title() string {
	if m.inputs == nil {
		if reason, ok := m.r.stub("inputs"); ok {
			return "# Market Sizing Report\n\n*Inputs not recorded — " + reason + "*\n"
		}
		return "# Market Sizing Report\n\n*No inputs artifact found.*\n"
	}
	materials := "none"
	if len(m.inputs.MaterialsProvided) > 0 {
		parts := make([]string, len(m.inputs.MaterialsProvided))
		for i, v := range m.inputs.MaterialsProvided {
			parts[i] = display(v, "")
		}
		materials = strings.Join(parts, ", ")
	}
	return joinLines([]string{
		"# Market Sizing: " + or(m.inputs.CompanyName, "Unknown Company") + "\n",
		"**Date:** " + or(m.inputs.AnalysisDate, "unknown date") + "  ",
		"**Materials:** " + materials + "  ",
		fmt.Sprintf(generatedBy, m.r.wf.agent),
	})
}

func (m *marketReport) executiveSummary() string {
	if m.sizing == nil {
		return "## Executive Summary\n\n*No sizing data available for summary.*\n"
	}
	lines := []string{"## Executive Summary\n", "| Metric | Value | Method |", "|--------|-------|--------|"}
	for _, ae := range estimates(m.sizing) {
		for _, metric := range provenance.Metrics {
			lines = append(lines, fmt.Sprintf("| %s | %s | %s |",
				strings.ToUpper(metric), fmtUSD(provenance.Figure(ae.est, metric).Value), methodLabel(ae.approach)))
		}
	}
	if m.sensitivity != nil && m.sensitivity.MostSensitive != nil && *m.sensitivity.MostSensitive != "" {
		lines = append(lines, fmt.Sprintf("| Most Sensitive Parameter | %s | — |", humanizeParam(*m.sensitivity.MostSensitive)))
	}

	both := m.sizing.TopDown != nil && m.sizing.BottomUp != nil
	for _, metric := range provenance.Metrics {
		type mismatch struct {
			label      string
			val, claim float64
		}
		var ms []mismatch
		for _, ae := range estimates(m.sizing) {
			rec, ok := m.graph.Get(ae.approach, metric)
			if !ok || rec.DeltaVsDeckPct == nil || math.Abs(*rec.DeltaVsDeckPct) <= deckClaimMismatch {
				continue
			}
			claim, _ := provenance.Number(rec.DeckClaim)
			ms = append(ms, mismatch{methodLabel(ae.approach), provenance.Figure(ae.est, metric).Value, claim})
		}
		if len(ms) == 0 {
			continue
		}
		upper := strings.ToUpper(metric)
		claim := fmtUSD(ms[0].claim)
		switch {
		case both && len(ms) > 1:
			parts := make([]string, len(ms))
			for i, x := range ms {
				parts[i] = x.label + ": " + fmtUSD(x.val)
			}
			lines = append(lines, fmt.Sprintf("\n**Note:** Both %s estimates differ significantly from the deck's claim of %s (%s).",
				upper, claim, strings.Join(parts, ", ")))
		case both:
			lines = append(lines, fmt.Sprintf("\n**Note:** Our %s %s estimate differs significantly from the deck's claim (%s vs %s).",
				strings.ToLower(ms[0].label), upper, fmtUSD(ms[0].val), claim))
		default:
			lines = append(lines, fmt.Sprintf("\n**Note:** Our %s estimate differs significantly from the deck's claim (%s vs %s).",
				upper, fmtUSD(ms[0].val), claim))
		}
	}
	return joinLines(lines)
}

func (m *marketReport) analysisChecklist() string {
	lines := []string{"## Analysis Checklist\n", "- Artifacts produced: " + strings.Join(m.r.found(), ", ")}
	if m.checklist != nil {
		s := m.checklist.Summary
		lines = append(lines, fmt.Sprintf("- Self-check: %s pass, %s fail, %s N/A", num(s.Pass), num(s.Fail), num(s.NotApplicable)))
	}
	return joinLines(lines)
}

var approachLabels = map[string]string{
	sizing.Both:     "Both (top-down and bottom-up cross-validation)",
	sizing.TopDown:  "Top-down",
	sizing.BottomUp: "Bottom-up",
}

func (m *marketReport) methodologySection() string {
	if m.methodology == nil {
		if reason, ok := m.r.stub("methodology"); ok {
			return "## Methodology\n\n*Methodology not recorded — " + reason + "*\n"
		}
		return "## Methodology\n\n*No methodology artifact found.*\n"
	}
	approach := or(m.methodology.ApproachChosen, "unknown")
	label, ok := approachLabels[sizing.NormalizeApproach(approach)]
	if !ok {
		label = approach
	}
	lines := []string{"## Methodology\n", "**Approach:** " + label}
	if m.methodology.Rationale != "" {
		lines = append(lines, "**Rationale:** "+m.methodology.Rationale)
	}
	return joinLines(lines)
}

const definitionsSection = "## Definitions\n\n" +
	"- **TAM** (Total Addressable Market): Total market demand for the " +
	"product/service if 100% market share were achieved.\n" +
	"- **SAM** (Serviceable Available Market): The segment of TAM targeted " +
	"by your products and services that is within your geographical reach.\n" +
	"- **SOM** (Serviceable Obtainable Market): The portion of SAM that you " +
	"can realistically capture in the near term.\n"

var monetaryInputs = map[string]bool{sizing.IndustryTotal: true, sizing.ARPU: true, "tam": true, "sam": true}

// orderedInputs returns a figure's input names in display order.
func orderedInputs(inputs map[string]float64) []string {
	var out []string
	seen := make(map[string]bool)
	for _, k := range sizing.InputOrder {
		if _, ok := inputs[k]; ok {
			out = append(out, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range inputs {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func inputOr(inputs map[string]float64, key, fallback string, format func(float64) string) string {
	if v, ok := inputs[key]; ok {
		return format(v)
	}
	return fallback
}

func (m *marketReport) sizingTable() string {
	if m.sizing == nil {
		if reason, ok := m.r.stub("sizing"); ok {
			return "## Market Sizing\n\n*Sizing not performed — " + reason + "*\n"
		}
		return "## Market Sizing\n\n*No sizing data available.*\n"
	}
	lines := []string{"## Market Sizing\n"}
	if td := m.sizing.TopDown; td != nil {
		lines = append(lines, fmt.Sprintf(
			"**Top-down:** Starting from industry total of %s, targeting %s%% segment with %s%% market share.\n",
			inputOr(td.TAM.Inputs, sizing.IndustryTotal, "?", fmtUSD),
			inputOr(td.SAM.Inputs, sizing.SegmentPct, "?", num),
			inputOr(td.SOM.Inputs, sizing.SharePct, "?", num)))
	}
	if bu := m.sizing.BottomUp; bu != nil {
		serv := inputOr(bu.TAM.Inputs, sizing.ServiceablePct, inputOr(bu.SAM.Inputs, sizing.ServiceablePct, "?", num), num)
		tgt := inputOr(bu.TAM.Inputs, sizing.TargetPct, inputOr(bu.SOM.Inputs, sizing.TargetPct, "?", num), num)
		lines = append(lines, fmt.Sprintf(
			"**Bottom-up:** %s potential customers x %s ARPU, %s%% serviceable, %s%% target capture.\n",
			inputOr(bu.TAM.Inputs, sizing.CustomerCount, "?", fmtNumber),
			inputOr(bu.TAM.Inputs, sizing.ARPU, "?", fmtUSD), serv, tgt))
	}

	lines = append(lines,
		"| Metric | Value | Method | Provenance | Key Assumptions |",
		"|--------|-------|--------|------------|-----------------|")
	for _, ae := range estimates(m.sizing) {
		for _, metric := range provenance.Metrics {
			fig := provenance.Figure(ae.est, metric)
			var parts []string
			for _, k := range orderedInputs(fig.Inputs) {
				format := fmtNumber
				if monetaryInputs[k] {
					format = fmtUSD
				}
				parts = append(parts, humanizeParam(k)+": "+format(fig.Inputs[k]))
			}
			rec, _ := m.graph.Get(ae.approach, metric)
			lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s |", strings.ToUpper(metric), fmtUSD(fig.Value),
				methodLabel(ae.approach), mdSafe(rec.Classification), strings.Join(parts, ", ")))
		}
	}

	if c := m.sizing.Comparison; c != nil {
		lines = append(lines, fmt.Sprintf("\n**Cross-validation:** TAM delta = %s%%. %s", num(c.TAMDeltaPct), or(c.Warning, c.Note)))
	}

	var rows []string
	for _, ae := range estimates(m.sizing) {
		for _, metric := range provenance.Metrics {
			rec, ok := m.graph.Get(ae.approach, metric)
			if !ok || rec.DeckClaim == nil || rec.DeltaVsDeckPct == nil {
				continue
			}
			claim, _ := provenance.Number(rec.DeckClaim)
			rows = append(rows, fmt.Sprintf("| %s (%s) | %s | %s | %+.1f%% | %s |", strings.ToUpper(metric), methodLabel(ae.approach),
				fmtUSD(claim), fmtUSD(provenance.Figure(ae.est, metric).Value), *rec.DeltaVsDeckPct, mdSafe(rec.Classification)))
		}
	}
	if len(rows) > 0 {
		lines = append(lines, "\n### Deck Claims vs. Our Estimates\n",
			"| Metric | Deck Claim | Our Estimate | Delta | Classification |",
			"|--------|-----------|--------------|-------|----------------|")
		lines = append(lines, rows...)
	}
	return joinLines(lines)
}

var confidenceLabels = map[string]string{
	provenance.Sourced:       "Sourced",
	provenance.Derived:       "Derived",
	provenance.AgentEstimate: "Estimate",
}

func confidenceLabel(c string) string {
	if l, ok := confidenceLabels[c]; ok {
		return l
	}
	return c
}

func (m *marketReport) validationPlaceholder(section string) (string, bool) {
	if m.validation != nil {
		return "", false
	}
	if reason, ok := m.r.stub("validation"); ok {
		return "## " + section + "\n\n*Validation not performed — " + reason + "*\n", true
	}
	return "## " + section + "\n\n*No validation data available.*\n", true
}

func (m *marketReport) assumptions() string {
	if p, ok := m.validationPlaceholder("Assumptions"); ok {
		return p
	}
	if len(m.validation.Assumptions) == 0 {
		return "## Assumptions\n\n*No assumptions recorded.*\n"
	}
	lines := []string{"## Assumptions\n"}
	for _, a := range m.validation.Assumptions {
		name := or(a.Name, "unnamed")
		value := display(a.Value, "")
		if v, ok := a.Value.(float64); ok {
			if name == sizing.IndustryTotal || name == sizing.ARPU {
				value = fmtUSD(v)
			} else {
				value = fmtNumber(v)
			}
		}
		lines = append(lines, fmt.Sprintf("- **%s** = %s (%s)", or(a.Label, humanizeParam(name)), value,
			confidenceLabel(or(a.Category, "unknown"))))
	}
	return joinLines(lines)
}

func (m *marketReport) validationSection() string {
	if p, ok := m.validationPlaceholder("Validation"); ok {
		return p
	}
	if len(m.validation.FigureValidations) == 0 {
		return "## Validation\n\n*No figures validated.*\n"
	}
	lines := []string{"## Validation\n"}
	for _, f := range m.validation.FigureValidations {
		plural := "s"
		if f.SourceCount == 1 {
			plural = ""
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %s (%s source%s)", f.title(), or(f.Status, "unknown"), num(f.SourceCount), plural))
	}
	return joinLines(lines)
}

func (m *marketReport) sensitivitySection() string {
	if m.sensitivity == nil {
		if reason, ok := m.r.stub("sensitivity"); ok {
			return "## Sensitivity Analysis\n\n*Sensitivity analysis not performed — " + reason + "*\n"
		}
		return "## Sensitivity Analysis\n\n*No sensitivity analysis available.*\n"
	}
	scenarios := m.sensitivity.Scenarios
	if len(scenarios) == 0 {
		return "## Sensitivity Analysis\n\n*No scenarios analyzed.*\n"
	}
	lines := []string{
		"## Sensitivity Analysis\n",
		"The table below shows how SOM changes when each assumption moves between" +
			" its low and high estimate. Parameters tagged *Estimate* have wider ranges" +
			" because they lack external sourcing — they tend to dominate the sensitivity," +
			" which highlights exactly where better data would most strengthen the analysis.\n",
	}
	withApproach := false
	for _, s := range scenarios {
		if s.ApproachUsed != "" {
			withApproach = true
			break
		}
	}
	if withApproach {
		lines = append(lines,
			"| Parameter | Approach | Confidence | Low SOM | Base SOM | High SOM | Range |",
			"|-----------|----------|------------|---------|----------|----------|-------|")
	} else {
		lines = append(lines,
			"| Parameter | Confidence | Low SOM | Base SOM | High SOM | Range |",
			"|-----------|------------|---------|----------|----------|-------|")
	}
	for _, s := range scenarios {
		rng := fmt.Sprintf("[%s%%, +%s%%]", num(s.EffectiveRange.LowPct), num(s.EffectiveRange.HighPct))
		if s.RangeWidened {
			rng += " (widened)"
		}
		cells := []string{humanizeParam(or(s.Parameter, "?"))}
		if withApproach {
			used := or(s.ApproachUsed, "?")
			if used == sizing.TopDown || used == sizing.BottomUp {
				used = methodLabel(used)
			}
			cells = append(cells, used)
		}
		cells = append(cells, confidenceLabel(or(s.Confidence, provenance.Sourced)),
			fmtUSD(s.Low.SOM), fmtUSD(s.Base.SOM), fmtUSD(s.High.SOM), rng)
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	if len(m.sensitivity.Ranking) > 0 {
		lines = append(lines, "\n**Most sensitive parameter:** "+humanizeParam(or(m.sensitivity.Ranking[0].Parameter, "?")))
	}
	return joinLines(lines)
}

func (m *marketReport) sources() string {
	if m.validation == nil {
		if _, ok := m.r.stub("validation"); ok {
			return "## Sources Used\n\n*No sources — validation not performed.*\n"
		}
		return "## Sources Used\n\n*No validation data available.*\n"
	}
	if len(m.validation.Sources) == 0 {
		return "## Sources Used\n\nSources Used: none — pure calculation from " +
			"user-provided inputs (no market size claims to validate)\n"
	}
	seen := make(map[string]bool)
	lines := []string{"## Sources Used\n"}
	for i, s := range m.validation.Sources {
		key := or(s.URL, or(s.Title, fmt.Sprintf("__unnamed_%d", i)))
		if seen[key] {
			continue
		}
		seen[key] = true
		title := or(s.Title, "Untitled")
		line := "- **" + title + "**"
		if s.URL != "" {
			line = "- [" + title + "](" + s.URL + ")"
		}
		var meta []string
		if s.Publisher != "" {
			meta = append(meta, s.Publisher)
		}
		if s.DateAccessed != "" {
			meta = append(meta, "accessed "+s.DateAccessed)
		}
		if len(meta) > 0 {
			line += " (" + strings.Join(meta, ", ") + ")"
		}
		if sup := display(s.Supported, ""); sup != "" {
			line += " — supports: " + sup
		}
		lines = append(lines, line)
	}
	return joinLines(lines)
}
