// Package pipeline runs the application stages: each stage pulls the records
// waiting at its input status and processes them one at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/timjtrainor/Apply4Jobs/internal/ai"
	"github.com/timjtrainor/Apply4Jobs/internal/config"
	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/prompts"
	"github.com/timjtrainor/Apply4Jobs/internal/resume"
	"github.com/timjtrainor/Apply4Jobs/internal/selector"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// Outcome is the result of processing one record.
type Outcome string

const (
	Advanced Outcome = "advanced" // moved to the next status
	Skipped  Outcome = "skipped"  // left at its status
	Terminal Outcome = "terminal" // moved to Bad Fit
	Fatal    Outcome = "fatal"    // stopped the run
)

// Stage processes records at one input status.
type Stage interface {
	Name() workflow.Stage
	Input() workflow.Status
	Query() store.Filter
	Process(ctx context.Context, app *store.Application) (Outcome, error)
}

// Preparer is implemented by stages with preconditions that must hold
// before any record is read.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Store is the record access the stages need.
type Store interface {
	QueryByStatus(ctx context.Context, status workflow.Status, filter store.Filter) ([]store.Application, error)
	UpdateStage(ctx context.Context, stage workflow.Stage, id int64, current workflow.Status, fields map[string]any) error
}

// Deps are the collaborators shared by every stage.
type Deps struct {
	Store    Store
	Gen      ai.Generator // nil when no API key is configured
	Prompts  *prompts.Builder
	Selector *selector.Selector
	Config   *config.Config
	Logger   *apperrors.Logger

	// ResumePath locates the parsed resume export.
	ResumePath string
	// Clock defaults to time.Now.
	Clock func() time.Time

	resume *resume.Resume
}

func (d *Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

func (d *Deps) today() string {
	return store.Date(d.now())
}

func (d *Deps) requireGenerator() error {
	if d.Gen == nil {
		return apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey,
			"no Gemini API key configured (set ai.apiKey, vault, or the google_token config entry)", nil)
	}
	return nil
}

func (d *Deps) loadResume() (*resume.Resume, error) {
	if d.resume != nil {
		return d.resume, nil
	}
	if d.ResumePath == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeMissingConfig,
			"no resume export configured (set resume.name or the full_resume_file_name config entry)", nil)
	}
	r, err := resume.Load(d.ResumePath)
	if err != nil {
		return nil, err
	}
	d.resume = r
	return r, nil
}

// generate renders a prompt and sends it. A template that fails to render
// is a configuration problem.
func (d *Deps) generate(ctx context.Context, id prompts.TemplateID, fields prompts.Fields) (string, error) {
	p, err := d.Prompts.Build(id, fields)
	if err != nil {
		return "", apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			fmt.Sprintf("cannot render %s prompt", id), err)
	}
	return d.Gen.Generate(ctx, p)
}

func (d *Deps) fitScore(ctx context.Context, requirements, resumeText string) (*float64, error) {
	score, err := ai.FitScore(ctx, d.Gen, d.Prompts, requirements, resumeText)
	if err != nil {
		return nil, err
	}
	if score.Value == nil {
		d.Logger.Warn("Fit score output had no number", "raw", score.Raw)
		d.Selector.Note("Fit Score: unavailable")
		return nil, nil
	}
	d.Selector.Note("Fit Score: %.2f%%", *score.Value)
	return score.Value, nil
}

// IsFatal reports whether err must stop the whole run rather than just the
// current record.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, selector.ErrInputClosed):
		return true
	case apperrors.HasCode(err, apperrors.ErrCodeStatusMismatch),
		apperrors.HasCode(err, apperrors.ErrCodeFieldNotOwned):
		return true
	case apperrors.HasCode(err, apperrors.ErrCodeAIRetriesExhausted),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return true
	case apperrors.IsType(err, apperrors.ErrorTypeConfig),
		apperrors.IsType(err, apperrors.ErrorTypeStore):
		return true
	}
	return false
}

// New returns the stage named by name.
func New(name workflow.Stage, d *Deps) (Stage, error) {
	switch name {
	case workflow.StageReview:
		return &ReviewStage{d: d}, nil
	case workflow.StageResume:
		return &ResumeStage{d: d}, nil
	case workflow.StageApply:
		return &ApplyStage{d: d}, nil
	case workflow.StageDM:
		return &DMStage{d: d}, nil
	case workflow.StageEmail:
		return &EmailStage{d: d}, nil
	}
	return nil, fmt.Errorf("unknown stage %q", name)
}

// NeedsGenerator reports whether the stage calls the generation service.
func NeedsGenerator(name workflow.Stage) bool {
	return name != workflow.StageApply
}
