package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/observability"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/types"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// Result records what happened to one application.
type Result struct {
	ID      int64
	Label   string
	Company string
	Title   string
	Outcome Outcome
	Err     error
}

// Report aggregates one stage run.
type Report struct {
	RunID    uuid.UUID
	Stage    workflow.Stage
	Started  time.Time
	Finished time.Time
	Results  []Result
	Counts   map[Outcome]int
	Err      error // the error that stopped the run, if any
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	r.Counts[res.Outcome]++
}

// Summary converts the report into its rendered shape.
func (r *Report) Summary() types.StageReport {
	out := types.StageReport{
		RunID:    r.RunID.String(),
		Stage:    string(r.Stage),
		Duration: r.Finished.Sub(r.Started).Round(time.Millisecond).String(),
		Counts:   make(map[string]int, len(r.Counts)),
		Records:  make([]types.RecordResult, 0, len(r.Results)),
	}
	for k, v := range r.Counts {
		out.Counts[string(k)] = v
	}
	for _, res := range r.Results {
		rec := types.RecordResult{
			ID:      res.ID,
			Company: res.Company,
			Title:   res.Title,
			Outcome: string(res.Outcome),
		}
		if res.Err != nil {
			rec.Detail = res.Err.Error()
		}
		out.Records = append(out.Records, rec)
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

// Runner drives a stage over its pending records.
type Runner struct {
	store   Store
	logger  *apperrors.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
	clock   func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerMetrics records per-record outcomes.
func WithRunnerMetrics(m *observability.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithRunnerTracer starts a span per record.
func WithRunnerTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = t }
}

// WithRunnerClock replaces time.Now for report timestamps.
func WithRunnerClock(clock func() time.Time) RunnerOption {
	return func(r *Runner) { r.clock = clock }
}

// NewRunner creates a runner reading from s.
func NewRunner(s Store, logger *apperrors.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:  s,
		logger: logger,
		tracer: noop.NewTracerProvider().Tracer("pipeline"),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every record waiting for stage. The returned report is
// never nil; the error is the one that stopped the run.
func (r *Runner) Run(ctx context.Context, stage Stage, filter store.Filter) (*Report, error) {
	report := &Report{
		RunID:   uuid.New(),
		Stage:   stage.Name(),
		Started: r.clock(),
		Counts:  make(map[Outcome]int),
	}
	finish := func(err error) (*Report, error) {
		report.Finished = r.clock()
		report.Err = err
		return report, err
	}
	log := r.logger.With("run_id", report.RunID.String(), "stage", string(stage.Name()))

	if p, ok := stage.(Preparer); ok {
		if err := p.Prepare(ctx); err != nil {
			log.LogError(err, "Stage preconditions not met")
			return finish(err)
		}
	}

	q := stage.Query()
	if filter.Company != "" {
		q.Company = filter.Company
	}
	q.RequireApplied = q.RequireApplied || filter.RequireApplied

	apps, err := r.store.QueryByStatus(ctx, stage.Input(), q)
	if err != nil {
		return finish(err)
	}
	log.Info("Processing records", "count", len(apps), "status", string(stage.Input()))

	for i := range apps {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		app := &apps[i]
		res := r.process(ctx, log, stage, app)
		report.add(res)
		r.metrics.RecordStageOutcome(ctx, string(stage.Name()), string(res.Outcome))
		if res.Outcome == Fatal {
			return finish(res.Err)
		}
	}

	log.Info("Stage finished",
		"advanced", report.Counts[Advanced],
		"skipped", report.Counts[Skipped],
		"terminal", report.Counts[Terminal])
	return finish(nil)
}

func (r *Runner) process(ctx context.Context, log *apperrors.Logger, stage Stage, app *store.Application) Result {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("stage.%s", stage.Name()))
	defer span.End()
	span.SetAttributes(
		attribute.Int64("application.id", app.ID),
		attribute.String("application.company", app.CompanyName),
		attribute.String("application.title", app.JobTitle),
	)

	res := Result{ID: app.ID, Label: app.Label(), Company: app.CompanyName, Title: app.JobTitle}
	recLog := log.With("id", app.ID, "company", app.CompanyName, "title", app.JobTitle)
	recLog.Debug("Processing record")

	outcome, err := stage.Process(ctx, app)
	switch {
	case err == nil:
		res.Outcome = outcome
	case IsFatal(err):
		res.Outcome = Fatal
		res.Err = err
		if !errors.Is(err, context.Canceled) {
			recLog.LogError(err, "Stage stopped")
		}
	default:
		res.Outcome = Skipped
		res.Err = err
		recLog.LogError(err, "Record skipped")
	}

	span.SetAttributes(attribute.String("stage.outcome", string(res.Outcome)))
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	return res
}
