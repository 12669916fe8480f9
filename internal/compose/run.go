package compose

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/artifact"
)

// shapeError marks a well-formed document that does not fit its artifact type.
type shapeError struct{ err error }

func (e *shapeError) Error() string { return "document does not match the expected shape: " + e.err.Error() }

func (e *shapeError) Unwrap() error { return e.err }

// run is the state of one composition pass.
type run struct {
	wf        *workflow
	slots     map[string]artifact.Slot
	now       time.Time
	staleDays int
	log       *zap.Logger
}

func (r *run) slot(name string) artifact.Slot {
	return r.slots[name]
}

func (r *run) usable(name string) bool {
	return r.slots[name].Usable()
}

// stub returns the declared reason when name is a stub.
func (r *run) stub(name string) (string, bool) {
	s := r.slots[name]
	if s.State != artifact.Stub {
		return "", false
	}
	return or(s.Reason, "unknown reason"), true
}

// decodeSlot decodes a present artifact into T. A document that does not
// fit T is demoted to corrupt, so it is reported and rendered as unusable.
func decodeSlot[T any](r *run, name string) *T {
	s := r.slots[name]
	if !s.Usable() {
		return nil
	}
	v := new(T)
	if err := s.Decode(v); err != nil {
		s.State = artifact.Corrupt
		s.Err = &shapeError{err}
		r.slots[name] = s
		r.log.Debug("artifact shape mismatch", zap.String("artifact", s.File()), zap.Error(err))
		return nil
	}
	return v
}

// integrity reports missing and corrupt artifacts, required before optional.
func (r *run) integrity() (ws []Warning, errs []string) {
	emit := func(w Warning) {
		ws = append(ws, w)
		errs = append(errs, w.Message)
	}
	for _, required := range []bool{true, false} {
		for _, a := range r.wf.artifacts {
			if a.Required != required {
				continue
			}
			s := r.slots[a.Name]
			switch s.State {
			case artifact.Corrupt:
				var se *shapeError
				switch {
				case errors.As(s.Err, &se):
					emit(r.wf.registry.Warn(CodeCorrupt, fmt.Sprintf(
						"Artifact does not match expected shape: %s (%v; expected %s)", s.File(), se.err, a.Shape)))
				case errors.Is(s.Err, artifact.ErrNotObject):
					emit(r.wf.registry.Warn(CodeCorrupt, fmt.Sprintf(
						"Artifact is not a JSON object: %s (expected %s)", s.File(), a.Shape)))
				default:
					emit(r.wf.registry.Warn(CodeCorrupt, fmt.Sprintf(
						"Artifact has invalid JSON: %s (expected %s)", s.File(), a.Shape)))
				}
			case artifact.Missing:
				if a.Required {
					emit(r.wf.registry.Warn(CodeMissing, fmt.Sprintf(
						"Required artifact missing: %s (expected %s)", s.File(), a.Shape)))
				} else if r.wf.reportOptional {
					ws = append(ws, r.wf.registry.Warn(CodeMissingOptional, "Optional artifact missing: "+s.File()))
				}
			}
		}
	}
	return ws, errs
}

// found lists the files present as content or stubs, in artifact order.
func (r *run) found() []string {
	var out []string
	for _, a := range r.wf.artifacts {
		if st := r.slots[a.Name].State; st == artifact.Present || st == artifact.Stub {
			out = append(out, a.File())
		}
	}
	return out
}
