// Package embedded provides the rubric tables compiled into the founder binary.
// Each rubric names its canonical items, status vocabulary, score weights and
// verdict rules. Use fs.ReadFile(Rubrics, "rubrics/<file>.yaml") to read one.
package embedded

import "embed"

// Rubrics contains every rubric definition shipped with the CLI.
//
//go:embed rubrics/*.yaml
var Rubrics embed.FS
