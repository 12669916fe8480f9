package compose

import (
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryWarn(t *testing.T) {
	reg := icWorkflow.registry

	w := reg.Warn("STAGE_OUT_OF_SCOPE", "Stage 'series_b' is outside calibrated range")
	assert.Equal(t, Low, w.Severity)
	assert.Equal(t, High, reg.Warn(CodeCorrupt, "x").Severity)

	assert.PanicsWithValue(t, `compose: unregistered warning code "STALE_IMPORTS"`, func() {
		reg.Warn("STALE_IMPORTS", "typo")
	})
	assert.Panics(t, func() { deckWorkflow.registry.Warn("STALE_IMPORT", "ic-sim only") })
}

var addCode = regexp.MustCompile(`add\("([A-Z_]+)"`)

// Every literal code a workflow emits must be in that workflow's registry.
func TestRegistry_CoversEmittedCodes(t *testing.T) {
	for file, wf := range map[string]*workflow{
		"market.go": marketWorkflow,
		"deck.go":   deckWorkflow,
		"icsim.go":  icWorkflow,
	} {
		src, err := os.ReadFile(file)
		require.NoError(t, err)
		matches := addCode.FindAllStringSubmatch(string(src), -1)
		require.NotEmpty(t, matches, file)
		for _, m := range matches {
			_, ok := wf.registry[m[1]]
			assert.True(t, ok, "%s emits unregistered code %s", file, m[1])
		}
		if wf.reportOptional {
			assert.Contains(t, wf.registry, CodeMissingOptional, wf.name)
		}
	}
}
