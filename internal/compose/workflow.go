package compose

import (
	"sort"

	"github.com/lool-ventures/founder-skills/cli/internal/provenance"
)

// Workflow names.
const (
	MarketSizing = "market-sizing"
	DeckReview   = "deck-review"
	ICSim        = "ic-sim"
)

// Artifact describes one file a workflow expects in its run directory.
type Artifact struct {
	Name     string
	Required bool

	// Shape is a short description of the expected document, quoted in
	// integrity messages so the producer knows what to regenerate.
	Shape string
}

// File returns the artifact's file name.
func (a Artifact) File() string {
	return a.Name + ".json"
}

// report is the workflow-specific half of one composition pass.
type report interface {
	check() []Warning
	sections(ws []Warning) []string
	provenance() provenance.Graph
}

type workflow struct {
	name  string
	agent string

	artifacts []Artifact
	registry  Registry

	// ackSource names the artifact whose accepted_warnings apply.
	ackSource string

	// reportOptional emits MISSING_OPTIONAL_ARTIFACT for absent optional artifacts.
	reportOptional bool

	// bind decodes the run's artifacts and returns its report.
	bind func(r *run) report
}

var workflows = map[string]*workflow{
	MarketSizing: marketWorkflow,
	DeckReview:   deckWorkflow,
	ICSim:        icWorkflow,
}

// Workflows lists the workflow names, sorted.
func Workflows() []string {
	names := make([]string, 0, len(workflows))
	for n := range workflows {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Artifacts returns the artifacts a workflow reads, or nil for an unknown workflow.
func Artifacts(name string) []Artifact {
	wf, ok := workflows[name]
	if !ok {
		return nil
	}
	return append([]Artifact(nil), wf.artifacts...)
}

// RegistryFor returns the warning registry of a workflow.
func RegistryFor(name string) (Registry, bool) {
	wf, ok := workflows[name]
	if !ok {
		return nil, false
	}
	return wf.registry.with(nil), true
}
