// Package provenance classifies computed market figures by the confidence
// of the assumptions that fed them. Provenance exists only at report time;
// it is derived from the sizing and validation artifacts, never stored in one.
package provenance

import (
	"math"
	"strconv"
	"strings"

	"github.com/lool-ventures/founder-skills/cli/internal/sizing"
)

// Confidence categories, best first.
const (
	Sourced       = "sourced"
	Derived       = "derived"
	AgentEstimate = "agent_estimate"

	// Unknown classifies a figure with no traceable inputs.
	Unknown = "unknown"
)

// Categories lists the assumption confidence categories.
var Categories = []string{Sourced, Derived, AgentEstimate}

// ValidCategory reports whether c is a known confidence category.
func ValidCategory(c string) bool {
	return c == Sourced || c == Derived || c == AgentEstimate
}

// Metrics are the traced figures, in report order.
var Metrics = []string{"tam", "sam", "som"}

// Approaches are the sizing approaches, in report order.
var Approaches = []string{sizing.TopDown, sizing.BottomUp}

// Quantitative reports whether name is a sizing formula parameter.
// Intermediates such as "tam" or "serviceable_customers" are not.
func Quantitative(name string) bool {
	for _, p := range sizing.TopDownParams {
		if p == name {
			return true
		}
	}
	for _, p := range sizing.BottomUpParams {
		if p == name {
			return true
		}
	}
	return false
}

// Classify returns the worst category among cats: any agent_estimate wins,
// all sourced is sourced, anything else is derived. No inputs is unknown.
func Classify(cats []string) string {
	if len(cats) == 0 {
		return Unknown
	}
	allSourced := true
	for _, c := range cats {
		if c == AgentEstimate {
			return AgentEstimate
		}
		if c != Sourced {
			allSourced = false
		}
	}
	if allSourced {
		return Sourced
	}
	return Derived
}

// Record is the provenance of one figure.
type Record struct {
	Classification      string            `json:"classification"`
	ConfidenceBreakdown map[string]int    `json:"confidence_breakdown"`
	DeckClaim           any               `json:"deck_claim"`
	DeltaVsDeckPct      *float64          `json:"delta_vs_deck_pct"`
	InputProvenances    map[string]string `json:"input_provenances"`
}

// Graph maps approach -> metric -> record.
type Graph map[string]map[string]Record

// Get returns the record for approach and metric.
func (g Graph) Get(approach, metric string) (Record, bool) {
	m, ok := g[approach]
	if !ok {
		return Record{}, false
	}
	r, ok := m[metric]
	return r, ok
}

// Unresolved is a quantitative input with no matching assumption.
type Unresolved struct {
	Param  string
	Metric string
}

// Trace classifies every figure in res. assumptions maps assumption name to
// confidence category; claims maps metric to an externally claimed value.
func Trace(res *sizing.Result, assumptions map[string]string, claims map[string]any) (Graph, []Unresolved) {
	graph := make(Graph)
	var unresolved []Unresolved
	for _, approach := range Approaches {
		est := estimate(res, approach)
		if est == nil {
			continue
		}
		records := make(map[string]Record, len(Metrics))
		for _, metric := range Metrics {
			fig := Figure(est, metric)
			inputs := make(map[string]string)
			var cats []string
			for _, name := range sizing.InputOrder {
				if _, used := fig.Inputs[name]; !used || !Quantitative(name) {
					continue
				}
				cat, ok := assumptions[name]
				if !ok {
					unresolved = append(unresolved, Unresolved{Param: name, Metric: strings.ToUpper(metric)})
					continue
				}
				inputs[name] = cat
				cats = append(cats, cat)
			}
			breakdown := map[string]int{Sourced: 0, Derived: 0, AgentEstimate: 0}
			for _, c := range cats {
				if _, ok := breakdown[c]; ok {
					breakdown[c]++
				}
			}
			claim := claims[metric]
			records[metric] = Record{
				Classification:      Classify(cats),
				ConfidenceBreakdown: breakdown,
				DeckClaim:           claim,
				DeltaVsDeckPct:      Delta(fig.Value, claim),
				InputProvenances:    inputs,
			}
		}
		graph[approach] = records
	}
	return graph, unresolved
}

func estimate(res *sizing.Result, approach string) *sizing.Estimate {
	if res == nil {
		return nil
	}
	if approach == sizing.TopDown {
		return res.TopDown
	}
	return res.BottomUp
}

// Figure returns the named metric of an estimate.
func Figure(est *sizing.Estimate, metric string) sizing.Figure {
	switch metric {
	case "tam":
		return est.TAM
	case "sam":
		return est.SAM
	default:
		return est.SOM
	}
}

// Delta returns the signed percentage by which calculated differs from
// claim, rounded to one decimal. It is nil unless claim is a positive number.
func Delta(calculated float64, claim any) *float64 {
	c, ok := Number(claim)
	if !ok || c <= 0 {
		return nil
	}
	d := math.Round((calculated-c)/c*100*10) / 10
	return &d
}

// Number converts a JSON number or numeric string.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
