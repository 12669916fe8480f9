package compose

import (
	"fmt"
	"sort"
	"strings"
)

// Severity classifies a warning. Severity is fixed per code by the workflow
// registry; only acknowledgment changes it.
type Severity string

const (
	High         Severity = "high"
	Medium       Severity = "medium"
	Low          Severity = "low"
	Info         Severity = "info"
	Acknowledged Severity = "acknowledged"
)

// Integrity codes shared by every workflow.
const (
	CodeMissing         = "MISSING_ARTIFACT"
	CodeCorrupt         = "CORRUPT_ARTIFACT"
	CodeMissingOptional = "MISSING_OPTIONAL_ARTIFACT"
)

// Warning is one composition finding.
type Warning struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Blocking reports whether w holds back a clean report.
func (w Warning) Blocking() bool {
	return w.Severity == High || w.Severity == Medium
}

// Code is a registry entry.
type Code struct {
	Severity Severity
	Label    string
}

// Registry maps warning codes to their fixed severity and display label.
type Registry map[string]Code

// Warn builds a warning for code. It panics if code is not registered, since
// a warning without a fixed severity cannot be classified.
func (r Registry) Warn(code, message string) Warning {
	c, ok := r[code]
	if !ok {
		panic(fmt.Sprintf("compose: unregistered warning code %q", code))
	}
	return Warning{Code: code, Message: message, Severity: c.Severity}
}

// Label returns the display label for code.
func (r Registry) Label(code string) string {
	if c, ok := r[code]; ok && c.Label != "" {
		return c.Label
	}
	return titleCase(strings.ReplaceAll(code, "_", " "))
}

// Codes lists the registered codes, sorted.
func (r Registry) Codes() []string {
	codes := make([]string, 0, len(r))
	for c := range r {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func integrityCodes() Registry {
	return Registry{
		CodeCorrupt: {High, "Corrupt Artifact"},
		CodeMissing: {High, "Missing Artifact"},
	}
}

// with merges extra into a copy of r.
func (r Registry) with(extra Registry) Registry {
	out := make(Registry, len(r)+len(extra))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var severityIcons = map[Severity]string{
	High:         "!!!",
	Medium:       "!!",
	Acknowledged: "~",
	Low:          "i",
	Info:         "~",
}

// warningsSection renders the Warnings section, or nothing when ws is empty.
func warningsSection(reg Registry, ws []Warning) string {
	if len(ws) == 0 {
		return ""
	}
	lines := []string{"## Warnings\n"}
	for _, w := range ws {
		prefix := ""
		if icon := severityIcons[w.Severity]; icon != "" {
			prefix = "[" + icon + "] "
		}
		lines = append(lines, "- "+prefix+"**"+reg.Label(w.Code)+":** "+w.Message)
	}
	return joinLines(lines)
}
