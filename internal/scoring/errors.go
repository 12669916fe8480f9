package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the scoring package.
var (
	// ErrSchema is matched by every SchemaError.
	ErrSchema = errors.New("assessment items do not match rubric")

	// ErrUnknownRubric is returned when a rubric name is not embedded in the binary.
	ErrUnknownRubric = errors.New("unknown rubric")

	// ErrInvalidRubric is returned when a rubric table fails its own consistency checks.
	ErrInvalidRubric = errors.New("invalid rubric table")
)

// SchemaError lists every problem found while checking a submission against
// the rubric's canonical item set. Scoring never proceeds past one.
type SchemaError struct {
	Rubric   string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %d problem(s): %s", e.Rubric, len(e.Problems), strings.Join(e.Problems, "; "))
}

// Unwrap lets callers match with errors.Is(err, ErrSchema).
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
