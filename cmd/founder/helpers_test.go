package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lool-ventures/founder-skills/cli/internal/config"
	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
)

// runCommand calls a RunE function on a bare command with stdin and
// captured stdout and stderr.
func runCommand(t *testing.T, run func(*cobra.Command, []string) error, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := run(cmd, args)
	return out.String(), errOut.String(), err
}

// executeRoot runs the full command tree with args, isolated from the
// user's config. Flag state is restored afterwards.
func executeRoot(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	isolateConfig(t)
	t.Cleanup(resetFlags)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, k := range configEnvVars {
		t.Setenv(k, "")
	}
	setGlobal(t, &cfgFile, filepath.Join(dir, "project.yaml"))
	old := cfg
	cfg = config.Default()
	t.Cleanup(func() { cfg = old })
}

func resetFlags() {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		reset(c.Flags())
	}
	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
}

// setGlobal sets *p for the duration of the test.
func setGlobal[T any](t *testing.T, p *T, v T) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("output is not a JSON object: %v\n%s", err, s)
	}
	return out
}

func itemsJSON(t *testing.T, rubric, status string) string {
	t.Helper()
	r := scoring.MustLoad(rubric)
	items := make([]map[string]string, len(r.Items))
	for i, def := range r.Items {
		items[i] = map[string]string{"id": def.ID, "status": status, "evidence": "slide 3"}
	}
	data, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// writeDeckRun writes a deck-review run that composes without warnings.
func writeDeckRun(t *testing.T) string {
	t.Helper()
	r := scoring.MustLoad(scoring.DeckReview)
	items := make([]scoring.Item, len(r.Items))
	for i, def := range r.Items {
		items[i] = scoring.Item{ID: def.ID, Status: "pass", Evidence: "from materials"}
	}
	checklist, err := scoring.Score(r, items)
	if err != nil {
		t.Fatal(err)
	}
	docs := map[string]any{
		"deck_inventory": map[string]any{
			"company_name": "Acme Robotics", "review_date": "2026-01-15",
			"total_slides": 12, "input_format": "pdf", "claimed_stage": "seed",
		},
		"stage_profile": map[string]any{
			"detected_stage": "seed", "confidence": "high", "is_ai_company": false,
			"evidence": []any{"$2M raise"},
		},
		"slide_reviews": map[string]any{
			"reviews": []any{map[string]any{
				"slide_number": 1, "maps_to": "problem",
				"strengths": []any{"clear pain"}, "weaknesses": []any{},
				"best_practice_refs": []any{},
			}},
			"missing_slides":               []any{},
			"overall_narrative_assessment": "Tight story.",
		},
		"checklist": checklist,
	}
	dir := t.TempDir()
	for name, v := range docs {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
