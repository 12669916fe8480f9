package compose

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lool-ventures/founder-skills/cli/internal/artifact"
	"github.com/lool-ventures/founder-skills/cli/internal/provenance"
	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
	"github.com/lool-ventures/founder-skills/cli/internal/validate"
)

const (
	maxNADimensions  = 6
	minPoints        = 2
	minRationaleLen  = 100
	maxCoachingItems = 10
	zeroApplicable   = "ZERO_APPLICABLE_DIMENSIONS"
)

var partnerFiles = []string{
	"partner_assessment_visionary",
	"partner_assessment_operator",
	"partner_assessment_analyst",
}

var icWorkflow = &workflow{
	name:  ICSim,
	agent: "IC Simulation Agent",
	artifacts: []Artifact{
		{"startup_profile", true, "{company_name, simulation_date, stage, one_liner, sector}"},
		{"fund_profile", true, "{fund_name, mode, thesis_areas[], check_size_range{min,max}, archetypes[], portfolio[], validation{}, accepted_warnings[]}"},
		{"conflict_check", true, "{portfolio_size, conflicts[], summary{}}"},
		{"discussion", true, "{assessment_mode, partner_verdicts[], debate_sections[], consensus_verdict, key_concerns[], diligence_requirements[]}"},
		{"score_dimensions", true, "{items[], summary{}}"},
		{"prior_artifacts", false, "{imported[{source_skill, import_date}]}"},
		{partnerFiles[0], false, "{conviction_points[], key_concerns[], rationale}"},
		{partnerFiles[1], false, "{conviction_points[], key_concerns[], rationale}"},
		{partnerFiles[2], false, "{conviction_points[], key_concerns[], rationale}"},
	},
	registry: integrityCodes().with(Registry{
		"BLOCKING_CONFLICT":          {High, "Blocking Conflict"},
		"ORPHANED_CONFLICT":          {High, "Orphaned Conflict"},
		"VERDICT_SCORE_MISMATCH":     {High, "Verdict/Score Mismatch"},
		"PARTNER_UNANIMITY":          {Medium, "Partner Unanimity"},
		"ZERO_APPLICABLE":            {Medium, "Zero Applicable Dimensions"},
		"STALE_IMPORT":               {Medium, "Stale Import"},
		"LOW_EVIDENCE":               {Medium, "Low Evidence"},
		"FUND_VALIDATION_ERROR":      {Medium, "Fund Validation Error"},
		"DEGRADED_ASSESSMENT":        {Medium, "Degraded Assessment"},
		"CONSENSUS_SCORE_MISMATCH":   {Medium, "Consensus/Score Verdict Mismatch"},
		"UNANIMOUS_VERDICT_MISMATCH": {Medium, "Unanimous Verdict Mismatch"},
		"SHALLOW_ASSESSMENT":         {Medium, "Shallow Assessment"},
		"HIGH_NA_COUNT":              {Medium, "High N/A Count"},
		"SCHEMA_DRIFT":               {Low, "Schema Drift"},
		"STAGE_OUT_OF_SCOPE":         {Low, "Stage Out of Scope"},
		"PARTNER_CONVERGENCE":        {Info, "Partner Convergence"},
		"SEQUENTIAL_FALLBACK":        {Info, "Sequential Fallback"},
	}),
	ackSource: "fund_profile",
	bind:      bindIC,
}

// verdictRanges are the inclusive score ranges each tier verdict implies.
var verdictRanges = map[string][2]float64{
	"invest":         {75.0, 100.0},
	"more_diligence": {50.0, 74.9},
	"pass":           {0.0, 49.9},
}

var (
	positiveVerdicts = map[string]bool{"invest": true, "more_diligence": true}
	negativeVerdicts = map[string]bool{"pass": true, "hard_pass": true}
)

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// expectedKeys are the top-level keys each artifact may carry; anything
// else is reported as drift.
var expectedKeys = map[string]map[string]bool{
	"startup_profile": keySet("company_name", "simulation_date", "stage", "one_liner", "sector", "geography",
		"business_model", "funding_history", "current_raise", "key_metrics", "materials_provided",
		"founded", "team", "website", "competitors", "product_description", "team_highlights"),
	"fund_profile": keySet("fund_name", "mode", "thesis_areas", "check_size_range", "stage_focus", "archetypes",
		"portfolio", "sources", "validation", "accepted_warnings"),
	"conflict_check":   keySet("portfolio_size", "conflicts", "summary", "validation"),
	"discussion":       keySet("assessment_mode", "partner_verdicts", "debate_sections", "consensus_verdict", "key_concerns", "diligence_requirements", "assessment_mode_intentional"),
	"score_dimensions": keySet("items", "summary"),
	"prior_artifacts":  keySet("imported", "skipped", "reason"),
}

var requiredKeys = map[string][]string{
	"startup_profile":  {"company_name", "stage", "one_liner", "sector"},
	"fund_profile":     {"fund_name", "mode", "thesis_areas", "check_size_range", "stage_focus", "archetypes", "portfolio"},
	"conflict_check":   {"portfolio_size", "conflicts"},
	"discussion":       {"assessment_mode", "partner_verdicts", "consensus_verdict"},
	"score_dimensions": {"items", "summary"},
}

var driftOrder = []string{"startup_profile", "fund_profile", "conflict_check", "discussion", "score_dimensions", "prior_artifacts"}

type startupProfile struct {
	CompanyName    string `json:"company_name"`
	SimulationDate string `json:"simulation_date"`
	Stage          string `json:"stage"`
	OneLiner       string `json:"one_liner"`
	Sector         string `json:"sector"`
}

type checkSize struct {
	Currency string
	Min      any
	Max      any
}

type archetype struct {
	Role       string
	Name       string
	Background string
}

// fundProfile is read leniently. The fund-profile validator writes invalid
// profiles back out, and those must reach FUND_VALIDATION_ERROR rather than
// be rejected as corrupt, so fields of the wrong type are simply absent.
type fundProfile struct {
	FundName       string
	Mode           string
	ThesisAreas    []any
	CheckSizeRange *checkSize
	Archetypes     []archetype
	Portfolio      []string
	Validation     *fundValidation
}

type fundValidation struct {
	Status string
	Errors []any
}

func (f *fundProfile) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	f.FundName, _ = doc["fund_name"].(string)
	f.Mode, _ = doc["mode"].(string)
	f.ThesisAreas, _ = doc["thesis_areas"].([]any)
	if cs, ok := doc["check_size_range"].(map[string]any); ok {
		f.CheckSizeRange = &checkSize{Min: cs["min"], Max: cs["max"]}
		f.CheckSizeRange.Currency, _ = cs["currency"].(string)
	}
	for _, a := range objects(doc["archetypes"]) {
		var arch archetype
		arch.Role, _ = a["role"].(string)
		arch.Name, _ = a["name"].(string)
		arch.Background, _ = a["background"].(string)
		f.Archetypes = append(f.Archetypes, arch)
	}
	for _, p := range objects(doc["portfolio"]) {
		if name, ok := p["name"].(string); ok {
			f.Portfolio = append(f.Portfolio, name)
		}
	}
	if v, ok := doc["validation"].(map[string]any); ok {
		f.Validation = &fundValidation{}
		f.Validation.Status, _ = v["status"].(string)
		f.Validation.Errors, _ = v["errors"].([]any)
	}
	return nil
}

// objects returns the object entries of a JSON array, skipping the rest.
func objects(v any) []map[string]any {
	list, _ := v.([]any)
	var out []map[string]any
	for _, raw := range list {
		if m, ok := raw.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

type conflictEntry struct {
	Company   string `json:"company"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Rationale string `json:"rationale"`
}

type conflictCheck struct {
	Conflicts []conflictEntry `json:"conflicts"`
	Summary   *struct {
		TotalChecked        any  `json:"total_checked"`
		ConflictCount       any  `json:"conflict_count"`
		HasBlockingConflict bool `json:"has_blocking_conflict"`
		OverallSeverity     any  `json:"overall_severity"`
	} `json:"summary"`
}

type partnerVerdict struct {
	Partner   string `json:"partner"`
	Verdict   string `json:"verdict"`
	Rationale string `json:"rationale"`
}

type debateSection struct {
	Topic     string `json:"topic"`
	Exchanges []struct {
		Partner  string `json:"partner"`
		Position string `json:"position"`
	} `json:"exchanges"`
}

type discussion struct {
	AssessmentMode            string           `json:"assessment_mode"`
	AssessmentModeIntentional bool             `json:"assessment_mode_intentional"`
	PartnerVerdicts           []partnerVerdict `json:"partner_verdicts"`
	DebateSections            []debateSection  `json:"debate_sections"`
	ConsensusVerdict          string           `json:"consensus_verdict"`
	KeyConcerns               []any            `json:"key_concerns"`
	DiligenceRequirements     []any            `json:"diligence_requirements"`
}

func (d *discussion) mode() string {
	return normStage(d.AssessmentMode)
}

type priorArtifacts struct {
	Imported []struct {
		SourceSkill string `json:"source_skill"`
		ImportDate  string `json:"import_date"`
	} `json:"imported"`
}

type partnerAssessment struct {
	ConvictionPoints []any `json:"conviction_points"`
	KeyConcerns      []any `json:"key_concerns"`
	Rationale        any   `json:"rationale"`
}

type icReport struct {
	r          *run
	startup    *startupProfile
	fund       *fundProfile
	conflicts  *conflictCheck
	discussion *discussion
	scores     *scoreDoc
	prior      *priorArtifacts
	partners   map[string]*partnerAssessment
}

func bindIC(r *run) report {
	ic := &icReport{
		r:          r,
		startup:    decodeSlot[startupProfile](r, "startup_profile"),
		fund:       decodeSlot[fundProfile](r, "fund_profile"),
		conflicts:  decodeSlot[conflictCheck](r, "conflict_check"),
		discussion: decodeSlot[discussion](r, "discussion"),
		scores:     decodeSlot[scoreDoc](r, "score_dimensions"),
		prior:      decodeSlot[priorArtifacts](r, "prior_artifacts"),
		partners:   make(map[string]*partnerAssessment),
	}
	for _, f := range partnerFiles {
		ic.partners[f] = decodeSlot[partnerAssessment](r, f)
	}
	return ic
}

func (ic *icReport) provenance() provenance.Graph {
	return nil
}

// normVerdict folds case and separators; non-verdicts become "".
func normVerdict(v string) string {
	return normStage(v)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (ic *icReport) check() []Warning {
	reg := ic.r.wf.registry
	var ws []Warning
	add := func(code, format string, args ...any) {
		ws = append(ws, reg.Warn(code, fmt.Sprintf(format, args...)))
	}

	if ic.conflicts != nil && ic.conflicts.Summary != nil && ic.conflicts.Summary.HasBlockingConflict {
		add("BLOCKING_CONFLICT", "Portfolio has a blocking conflict — cannot proceed with investment")
	}

	if ic.conflicts != nil && ic.fund != nil {
		portfolio := make(map[string]bool)
		for _, name := range ic.fund.Portfolio {
			portfolio[validate.NormalizeCompany(name)] = true
		}
		for _, c := range ic.conflicts.Conflicts {
			if !portfolio[validate.NormalizeCompany(c.Company)] {
				add("ORPHANED_CONFLICT", "Conflict company '%s' not in fund_profile.portfolio — cross-artifact identity mismatch", c.Company)
			}
		}
	}

	if ic.scores != nil {
		s := ic.scores.Summary
		if rng, ok := verdictRanges[s.Verdict]; ok && !s.hasWarning(zeroApplicable) {
			if s.ConvictionScore < rng[0] || s.ConvictionScore > rng[1] {
				add("VERDICT_SCORE_MISMATCH", "Verdict '%s' does not match score %s%% (expected range: %s%%-%s%%)",
					s.Verdict, num(s.ConvictionScore), fmt.Sprintf("%.1f", rng[0]), fmt.Sprintf("%.1f", rng[1]))
			}
		}
	}

	if ic.discussion != nil && ic.scores != nil {
		consensus, score := normVerdict(ic.discussion.ConsensusVerdict), normVerdict(ic.scores.Summary.Verdict)
		if consensus != "" && score != "" && consensus != score {
			add("CONSENSUS_SCORE_MISMATCH", "Discussion consensus verdict '%s' differs from score verdict '%s' — review for consistency",
				ic.discussion.ConsensusVerdict, ic.scores.Summary.Verdict)
		}
	}

	if d := ic.discussion; d != nil {
		consensus := normVerdict(d.ConsensusVerdict)
		var verdicts []string
		for _, pv := range d.PartnerVerdicts {
			if pv.Verdict != "" {
				verdicts = append(verdicts, normVerdict(pv.Verdict))
			}
		}
		if len(verdicts) > 0 {
			allPos, allNeg := true, true
			for _, v := range verdicts {
				allPos = allPos && positiveVerdicts[v]
				allNeg = allNeg && negativeVerdicts[v]
			}
			if (allPos && negativeVerdicts[consensus]) || (allNeg && positiveVerdicts[consensus]) {
				side, other := "positive", "negative"
				if allNeg {
					side, other = "negative", "positive"
				}
				add("UNANIMOUS_VERDICT_MISMATCH", "All %d partners are %s but consensus is '%s' (%s) — "+
					"partner_verdicts or consensus_verdict likely not updated after debate",
					len(verdicts), side, d.ConsensusVerdict, other)
			}
		}

		if pvs := d.PartnerVerdicts; len(pvs) == 3 && pvs[0].Verdict == pvs[1].Verdict && pvs[1].Verdict == pvs[2].Verdict {
			identical := false
			for i := 0; i < len(pvs) && !identical; i++ {
				for j := i + 1; j < len(pvs); j++ {
					if collapseSpace(pvs[i].Rationale) == collapseSpace(pvs[j].Rationale) {
						identical = true
						break
					}
				}
			}
			switch {
			case identical:
				add("PARTNER_UNANIMITY", "All 3 partners agree on verdict AND share identical rationales — flags generation collapse")
			case d.mode() == "sub_agent":
				add("PARTNER_CONVERGENCE", "All 3 partners independently converged on the same verdict with distinct rationales")
			}
		}
	}

	if ic.scores != nil && ic.scores.Summary.hasWarning(zeroApplicable) {
		add("ZERO_APPLICABLE", "All dimensions marked not_applicable — score is 0.0")
	}

	if ic.prior != nil {
		limit := time.Duration(ic.r.staleDays) * 24 * time.Hour
		for _, imp := range ic.prior.Imported {
			if len(imp.ImportDate) < 10 {
				continue
			}
			// Import dates are calendar days in the clock's zone.
			t, err := time.ParseInLocation(time.DateOnly, imp.ImportDate[:10], ic.r.now.Location())
			if err != nil {
				continue
			}
			if ic.r.now.Sub(t) > limit {
				add("STALE_IMPORT", "Imported %s artifact from %s is older than %d days",
					or(imp.SourceSkill, "unknown"), imp.ImportDate, ic.r.staleDays)
			}
		}
	}

	na := 0
	if ic.scores != nil {
		for _, it := range ic.scores.Items {
			if it.Status == "not_applicable" {
				na++
				continue
			}
			if strings.TrimSpace(it.Evidence) == "" {
				add("LOW_EVIDENCE", "Dimension '%s' has no evidence field", or(it.ID, "?"))
			}
		}
	}

	if ic.fund != nil {
		v := ic.fund.Validation
		if v == nil || v.Status != "valid" {
			var errs []string
			if v != nil {
				for i, e := range v.Errors {
					if i == 3 {
						break
					}
					errs = append(errs, display(e, ""))
				}
			}
			add("FUND_VALIDATION_ERROR", "Fund profile validation failed: %s", strings.Join(errs, "; "))
		}
	}

	if d := ic.discussion; d != nil && d.mode() == "sub_agent" {
		for _, f := range partnerFiles {
			if ic.r.slot(f).State == artifact.Missing {
				add("DEGRADED_ASSESSMENT", "Sub-agent mode but %s.json is missing — indicates sub-agent failure with silent fallback", f)
			}
		}
		for _, f := range partnerFiles {
			pa := ic.partners[f]
			if pa == nil {
				continue
			}
			var issues []string
			if len(pa.ConvictionPoints) < minPoints {
				issues = append(issues, "conviction_points < 2")
			}
			if len(pa.KeyConcerns) < minPoints {
				issues = append(issues, "key_concerns < 2")
			}
			if r, _ := pa.Rationale.(string); len(r) < minRationaleLen {
				issues = append(issues, "rationale < 100 chars")
			}
			if len(issues) > 0 {
				add("SHALLOW_ASSESSMENT", "%s.json: %s", f, strings.Join(issues, ", "))
			}
		}
	}

	if na > maxNADimensions {
		add("HIGH_NA_COUNT", "%d of %d dimensions marked not_applicable — conviction score may be inflated",
			na, canonicalCount(scoring.ICDimensions))
	}

	for _, name := range driftOrder {
		s := ic.r.slot(name)
		if !s.Usable() {
			continue
		}
		var extra, missing []string
		for k := range s.Doc {
			if !expectedKeys[name][k] {
				extra = append(extra, k)
			}
		}
		for _, k := range requiredKeys[name] {
			if _, ok := s.Doc[k]; !ok {
				missing = append(missing, k)
			}
		}
		sort.Strings(extra)
		sort.Strings(missing)
		if len(extra) > 0 {
			add("SCHEMA_DRIFT", "%s has unexpected top-level keys: %s", s.File(), bracket(extra))
		}
		if len(missing) > 0 {
			add("SCHEMA_DRIFT", "%s missing required top-level keys: %s", s.File(), bracket(missing))
		}
	}

	if ic.startup != nil {
		if stage := normStage(ic.startup.Stage); stage != "" && !knownStages[stage] {
			add("STAGE_OUT_OF_SCOPE", "Stage '%s' is outside calibrated range (pre_seed, seed, series_a). Results may be less precise.", stage)
		}
	}

	if d := ic.discussion; d != nil && d.mode() == "sequential" && !d.AssessmentModeIntentional {
		add("SEQUENTIAL_FALLBACK", "Assessments generated sequentially (no sub-agents) — not an error, just transparency")
	}
	return ws
}

func (ic *icReport) sections(ws []Warning) []string {
	return []string{
		ic.title(),
		ic.executiveSummary(),
		ic.fundSection(),
		ic.conflictSection(),
		ic.discussionSection(),
		ic.scorecard(),
		ic.concerns(),
		ic.diligence(),
		ic.coaching(),
		warningsSection(ic.r.wf.registry, ws),
	}
}

func (ic *icReport) title() string {
	if ic.startup == nil {
		if reason, ok := ic.r.stub("startup_profile"); ok {
			return "# IC Simulation Report\n\n*Startup profile not recorded — " + reason + "*\n"
		}
		return "# IC Simulation Report\n\n*No startup profile found.*\n"
	}
	p := ic.startup
	return fmt.Sprintf("# IC Simulation: %s\n\n**Date:** %s | **Stage:** %s  \n",
		or(p.CompanyName, "Unknown Company"), or(p.SimulationDate, "unknown date"), stageLabel(or(p.Stage, "unknown"))) +
		fmt.Sprintf(generatedBy, ic.r.wf.agent) + "\n" +
		"> *This is an AI simulation. Partner verdicts, debate positions, and questions are " +
		"generated based on archetype personas and provided materials. They represent plausible " +
		"perspectives, not actual VC feedback.*\n"
}

var verdictLabels = map[string]string{
	"invest":         "Invest — strong enough for a term sheet discussion",
	"more_diligence": "More Diligence — promising but needs more evidence",
	"pass":           "Pass — too many concerns to proceed at this time",
	"hard_pass":      "Hard Pass — fatal flaw identified",
}

func (ic *icReport) executiveSummary() string {
	lines := []string{"## Executive Summary\n"}
	if p := ic.startup; p != nil {
		lines = append(lines,
			"**Company:** "+or(p.CompanyName, "?"),
			"**One-liner:** "+or(p.OneLiner, "?"),
			"**Sector:** "+or(p.Sector, "?"))
	}
	if ic.scores != nil {
		s := ic.scores.Summary
		verdict := or(s.Verdict, "unknown")
		label, ok := verdictLabels[verdict]
		if !ok {
			label = verdict
		}
		lines = append(lines,
			fmt.Sprintf("**Conviction Score:** %s%% — %s", num(s.ConvictionScore), label),
			fmt.Sprintf("**Breakdown:** %s strong, %s moderate, %s concern, %s dealbreaker",
				num(s.StrongConviction), num(s.ModerateConviction), num(s.Concern), num(s.Dealbreaker)))
	}
	if d := ic.discussion; d != nil && len(d.PartnerVerdicts) > 0 {
		split := make([]string, len(d.PartnerVerdicts))
		for i, pv := range d.PartnerVerdicts {
			split[i] = titleCase(or(pv.Partner, "?")) + ": " + or(pv.Verdict, "?")
		}
		lines = append(lines, "**Partner Split:** "+strings.Join(split, " | "))
	}
	if ic.scores != nil && ic.discussion != nil {
		consensus, score := normVerdict(ic.discussion.ConsensusVerdict), normVerdict(ic.scores.Summary.Verdict)
		if consensus != "" && score != "" && consensus != score {
			lines = append(lines, "", fmt.Sprintf("> **Note:** The IC discussion consensus (*%s*) "+
				"differs from the quantitative score verdict (*%s*). "+
				"This can occur when qualitative debate conclusions override borderline numeric scores.",
				ic.discussion.ConsensusVerdict, ic.scores.Summary.Verdict))
		}
	}
	return joinLines(lines)
}

// amount groups thousands of a JSON number, or "?" when absent.
func amount(v any) string {
	if f, ok := v.(float64); ok {
		return humanize.Commaf(f)
	}
	return display(v, "?")
}

func (ic *icReport) fundSection() string {
	f := ic.fund
	if f == nil {
		return "## Fund Profile\n\n*No fund profile available.*\n"
	}
	lines := []string{"## Fund Profile\n", "**Fund:** " + or(f.FundName, "?"), "**Mode:** " + or(f.Mode, "?")}
	if len(f.ThesisAreas) > 0 {
		areas := make([]string, len(f.ThesisAreas))
		for i, t := range f.ThesisAreas {
			areas[i] = display(t, "")
		}
		lines = append(lines, "**Thesis Areas:** "+strings.Join(areas, ", "))
	}
	if cs := f.CheckSizeRange; cs != nil {
		lines = append(lines, fmt.Sprintf("**Check Size:** %s %s - %s", or(cs.Currency, "USD"), amount(cs.Min), amount(cs.Max)))
	}
	if len(f.Archetypes) > 0 {
		lines = append(lines, "\n**Partners:**")
		for _, a := range f.Archetypes {
			lines = append(lines, fmt.Sprintf("- **%s** (%s): %s", or(a.Name, "?"), titleCase(or(a.Role, "?")), or(a.Background, "?")))
		}
	}
	return joinLines(lines)
}

func (ic *icReport) conflictSection() string {
	c := ic.conflicts
	if c == nil {
		return "## Conflict Check\n\n*No conflict check available.*\n"
	}
	var checked, count, severity any
	if s := c.Summary; s != nil {
		checked, count, severity = s.TotalChecked, s.ConflictCount, s.OverallSeverity
	}
	lines := []string{
		"## Conflict Check\n",
		"**Portfolio Companies Checked:** " + display(checked, "?"),
		"**Conflicts Found:** " + display(count, "0"),
		"**Overall Severity:** " + display(severity, "?"),
	}
	if len(c.Conflicts) > 0 {
		lines = append(lines, "")
		for _, e := range c.Conflicts {
			lines = append(lines, fmt.Sprintf("- **[%s]** %s (%s): %s",
				strings.ToUpper(or(e.Severity, "?")), or(e.Company, "?"), or(e.Type, "?"), or(e.Rationale, "?")))
		}
	}
	return joinLines(lines)
}

func (ic *icReport) discussionSection() string {
	d := ic.discussion
	if d == nil {
		return "## Discussion Summary\n\n*No discussion available.*\n"
	}
	lines := []string{
		"## Discussion Summary\n",
		"**Assessment Mode:** " + or(d.AssessmentMode, "?"),
		"**Consensus Verdict:** " + or(d.ConsensusVerdict, "?"),
	}
	for _, pv := range d.PartnerVerdicts {
		lines = append(lines, fmt.Sprintf("\n### %s: %s", titleCase(or(pv.Partner, "?")), or(pv.Verdict, "?")))
		if pv.Rationale != "" {
			lines = append(lines, "\n"+pv.Rationale)
		}
	}
	if len(d.DebateSections) > 0 {
		lines = append(lines, "\n### Key Debates\n")
		for _, sec := range d.DebateSections {
			lines = append(lines, "**"+or(sec.Topic, "?")+"**\n")
			for _, ex := range sec.Exchanges {
				lines = append(lines, fmt.Sprintf("> **%s:** %s\n", titleCase(or(ex.Partner, "?")), ex.Position))
			}
		}
	}
	return joinLines(lines)
}

var dimensionIcons = map[string]string{
	"strong_conviction":   "STRONG",
	"moderate_conviction": "MODERATE",
	"concern":             "CONCERN",
	"dealbreaker":         "DEALBREAKER",
	"not_applicable":      "N/A",
}

func (ic *icReport) scorecard() string {
	if ic.scores == nil {
		return "## Dimension Scorecard\n\n*No scorecard available.*\n"
	}
	s := ic.scores.Summary
	lines := []string{
		"## Dimension Scorecard\n",
		"*Dimension scores reflect the agent's assessment calibrated against " +
			"stage-appropriate benchmarks. All scores are agent-generated.*\n",
		"| Category | Strong | Moderate | Concern | Dealbreaker | N/A |",
		"|----------|--------|----------|---------|-------------|-----|",
	}
	for _, cat := range s.categories(scoring.ICDimensions) {
		c := s.ByCategory[cat]
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s | %s |", cat,
			num(c["strong_conviction"]), num(c["moderate_conviction"]), num(c["concern"]), num(c["dealbreaker"]), num(c["not_applicable"])))
	}
	lines = append(lines, "", "| # | Category | Dimension | Status |", "|---|----------|-----------|--------|")
	for i, it := range ic.scores.Items {
		lines = append(lines, fmt.Sprintf("| %d | %s | %s | %s |", i+1, or(it.Category, "?"), it.title(), statusIcon(dimensionIcons, it.Status)))
	}
	return joinLines(lines)
}

func concernList(lines []string, heading string, items []scoredItem) []string {
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, heading)
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("- **%s** (%s)", it.title(), or(it.Category, "?")))
		if it.Notes != "" {
			lines = append(lines, "  - "+it.Notes)
		}
	}
	return append(lines, "")
}

func (ic *icReport) concerns() string {
	if ic.scores == nil {
		return ""
	}
	s := ic.scores.Summary
	if len(s.Dealbreakers) == 0 && len(s.TopConcerns) == 0 {
		return ""
	}
	lines := []string{"## Concerns and Dealbreakers\n"}
	lines = concernList(lines, "### Dealbreakers\n", s.Dealbreakers)
	lines = concernList(lines, "### Key Concerns\n", s.TopConcerns)
	return joinLines(lines)
}

func (ic *icReport) diligence() string {
	if ic.discussion == nil || len(ic.discussion.DiligenceRequirements) == 0 {
		return ""
	}
	lines := []string{"## Diligence Requirements\n"}
	for i, req := range ic.discussion.DiligenceRequirements {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, display(req, "")))
	}
	return joinLines(lines)
}

func (ic *icReport) coaching() string {
	lines := []string{"## Founder Coaching\n", "Prepare for these areas before your next investor meeting:\n"}
	var items []string
	if ic.scores != nil {
		evidence := make(map[string]string)
		for _, it := range ic.scores.Items {
			if it.ID != "" {
				evidence[it.ID] = it.Evidence
			}
		}
		for _, db := range ic.scores.Summary.Dealbreakers {
			item := "CRITICAL — **" + or(db.Label, "?") + "**"
			if ev := or(db.Evidence, evidence[db.ID]); ev != "" {
				item += ": " + ev
			}
			items = append(items, item+" **Prepare:** Gather specific evidence to address this before your next IC.")
		}
	}
	if ic.discussion != nil {
		for _, c := range ic.discussion.KeyConcerns {
			items = append(items, "Address this concern proactively: "+display(c, ""))
		}
	}
	if len(items) == 0 {
		lines = append(lines, "No specific coaching items identified.\n")
		return joinLines(lines)
	}
	for i, it := range items {
		if i == maxCoachingItems {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, it))
	}
	lines = append(lines, "")
	return joinLines(lines)
}
