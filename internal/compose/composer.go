// Package compose reads every artifact of one workflow run, cross-checks
// them, and renders the final markdown report with a severity-classified
// warning list.
//
// Integrity problems (missing or corrupt artifacts) are warnings, not Go
// errors: a report is always rendered so the caller can inspect it.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/artifact"
	"github.com/lool-ventures/founder-skills/cli/internal/provenance"
)

// Validation statuses.
const (
	StatusClean    = "clean"
	StatusWarnings = "warnings"
)

// DefaultStaleImportDays is the age after which an imported artifact is stale.
const DefaultStaleImportDays = 7

var (
	// ErrUnknownWorkflow is returned by New for a workflow it does not know.
	ErrUnknownWorkflow = errors.New("unknown workflow")

	// ErrStrict is returned by callers in strict mode once the output is
	// written, when blocking warnings remain.
	ErrStrict = errors.New("unresolved high or medium severity warnings")
)

// fingerprintNS scopes report fingerprints.
var fingerprintNS = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/lool-ventures/founder-skills"))

// Validation is the machine-readable outcome of a composition.
type Validation struct {
	Status           string    `json:"status"`
	Warnings         []Warning `json:"warnings"`
	Errors           []string  `json:"errors"`
	ArtifactsFound   []string  `json:"artifacts_found"`
	ArtifactsMissing []string  `json:"artifacts_missing"`
}

// Result is the composed report.
type Result struct {
	ReportMarkdown string           `json:"report_markdown"`
	Validation     Validation       `json:"validation"`
	Provenance     provenance.Graph `json:"provenance,omitempty"`
	Fingerprint    string           `json:"fingerprint"`
}

// Blocking returns the unacknowledged high and medium warnings.
func (r *Result) Blocking() []Warning {
	var out []Warning
	for _, w := range r.Validation.Warnings {
		if w.Blocking() {
			out = append(out, w)
		}
	}
	return out
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) { c.log = l }
}

// WithClock sets the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// WithStaleImportDays sets the STALE_IMPORT age threshold.
func WithStaleImportDays(days int) Option {
	return func(c *Composer) {
		if days > 0 {
			c.staleDays = days
		}
	}
}

// Composer composes reports for one workflow.
type Composer struct {
	wf        *workflow
	log       *zap.Logger
	now       func() time.Time
	staleDays int
}

// New returns a Composer for the named workflow.
func New(workflow string, opts ...Option) (*Composer, error) {
	wf, ok := workflows[workflow]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownWorkflow, workflow, strings.Join(Workflows(), ", "))
	}
	c := &Composer{wf: wf, log: zap.NewNop(), now: time.Now, staleDays: DefaultStaleImportDays}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Workflow returns the composer's workflow name.
func (c *Composer) Workflow() string {
	return c.wf.name
}

// Required lists the artifacts that must exist before composing.
func (c *Composer) Required() []string {
	var names []string
	for _, a := range c.wf.artifacts {
		if a.Required {
			names = append(names, a.Name)
		}
	}
	return names
}

// Compose reads the run directory dir and renders its report. It fails
// only when dir cannot be opened.
func (c *Composer) Compose(ctx context.Context, dir string) (*Result, error) {
	store, err := artifact.NewStore(dir)
	if err != nil {
		return nil, err
	}
	log := c.log.With(zap.String("workflow", c.wf.name), zap.String("dir", dir))

	log.Debug("compose phase", zap.String("phase", "reading"))
	r := &run{
		wf:        c.wf,
		slots:     make(map[string]artifact.Slot, len(c.wf.artifacts)),
		now:       c.now(),
		staleDays: c.staleDays,
		log:       log,
	}
	for _, a := range c.wf.artifacts {
		r.slots[a.Name] = store.Load(a.Name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep := c.wf.bind(r)

	log.Debug("compose phase", zap.String("phase", "checking"))
	warnings, errs := r.integrity()
	warnings = append(warnings, rep.check()...)

	if src := r.slot(c.wf.ackSource); src.Usable() {
		accs := parseAcceptances(src.Doc, c.wf.registry, log)
		if n := acknowledge(warnings, accs); n > 0 {
			log.Debug("warnings acknowledged", zap.Int("count", n), zap.String("source", src.File()))
		}
	}

	res := &Result{
		Validation: Validation{
			Status:           StatusClean,
			Warnings:         warnings,
			Errors:           errs,
			ArtifactsFound:   []string{},
			ArtifactsMissing: []string{},
		},
	}
	if len(warnings) > 0 {
		res.Validation.Status = StatusWarnings
	}
	if res.Validation.Warnings == nil {
		res.Validation.Warnings = []Warning{}
	}
	if res.Validation.Errors == nil {
		res.Validation.Errors = []string{}
	}
	if blocking := res.Blocking(); len(blocking) > 0 {
		log.Debug("compose phase", zap.String("phase", "blocked"), zap.Int("blocking", len(blocking)))
	}

	log.Debug("compose phase", zap.String("phase", "rendering"))
	var sections []string
	for _, s := range rep.sections(warnings) {
		if s != "" {
			sections = append(sections, s)
		}
	}
	res.ReportMarkdown = strings.Join(sections, "\n") + fmt.Sprintf(footerFmt, c.wf.agent)
	res.Provenance = rep.provenance()

	res.Validation.ArtifactsFound = append(res.Validation.ArtifactsFound, r.found()...)
	var fp []byte
	fp = append(fp, c.wf.name...)
	for _, a := range c.wf.artifacts {
		s := r.slot(a.Name)
		if s.State == artifact.Missing {
			res.Validation.ArtifactsMissing = append(res.Validation.ArtifactsMissing, a.File())
		}
		fp = append(fp, 0)
		fp = append(fp, a.Name...)
		fp = append(fp, 0)
		fp = append(fp, s.Raw...)
	}
	res.Fingerprint = uuid.NewSHA1(fingerprintNS, fp).String()

	high, medium := 0, 0
	for _, w := range warnings {
		switch w.Severity {
		case High:
			high++
		case Medium:
			medium++
		}
	}
	log.Info("composed report",
		zap.Int("artifacts_found", len(res.Validation.ArtifactsFound)),
		zap.Int("artifacts_expected", len(c.wf.artifacts)),
		zap.Int("high", high),
		zap.Int("medium", medium),
		zap.String("status", res.Validation.Status),
	)
	for _, w := range warnings {
		log.Debug("warning", zap.String("code", w.Code), zap.String("severity", string(w.Severity)), zap.String("message", w.Message))
	}
	log.Debug("compose phase", zap.String("phase", "done"))
	return res, nil
}
