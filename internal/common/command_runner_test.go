package common

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/pipeline"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

type fakeStage struct{}

func (fakeStage) Name() workflow.Stage   { return workflow.StageEmail }
func (fakeStage) Input() workflow.Status { return workflow.StatusEmail }
func (fakeStage) Query() store.Filter    { return store.Filter{} }
func (fakeStage) Process(context.Context, *store.Application) (pipeline.Outcome, error) {
	return pipeline.Advanced, nil
}

type fakeRunner struct {
	report *pipeline.Report
	err    error
	filter store.Filter
}

func (f *fakeRunner) Run(_ context.Context, _ pipeline.Stage, filter store.Filter) (*pipeline.Report, error) {
	f.filter = filter
	return f.report, f.err
}

func report(err error) *pipeline.Report {
	return &pipeline.Report{
		RunID:   uuid.New(),
		Stage:   workflow.StageEmail,
		Results: []pipeline.Result{{ID: 7, Company: "Acme", Title: "Engineer", Outcome: pipeline.Advanced}},
		Counts:  map[pipeline.Outcome]int{pipeline.Advanced: 1},
		Err:     err,
	}
}

func logger() *apperrors.Logger { return apperrors.NewLoggerTo(io.Discard, 0) }

func TestRunStageCommandWritesSummary(t *testing.T) {
	var buf bytes.Buffer
	runner := &fakeRunner{report: report(nil)}

	got, err := RunStageCommand(context.Background(), logger(),
		CommandConfig{OutputFormat: "text"}, NewOutputHandlerTo(&buf, logger()),
		runner, fakeStage{}, store.Filter{Company: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Counts[pipeline.Advanced])
	assert.Equal(t, "Acme", runner.filter.Company)
	assert.Contains(t, buf.String(), "=== STAGE EMAIL ===")
	assert.Contains(t, buf.String(), "[advanced] #7 Acme - Engineer")
}

func TestRunStageCommandReturnsRunError(t *testing.T) {
	var buf bytes.Buffer
	stop := errors.New("input closed")
	runner := &fakeRunner{report: report(stop), err: stop}

	_, err := RunStageCommand(context.Background(), logger(),
		CommandConfig{OutputFormat: "text"}, NewOutputHandlerTo(&buf, logger()),
		runner, fakeStage{}, store.Filter{})
	require.ErrorIs(t, err, stop)
	assert.Contains(t, buf.String(), "Stopped: input closed")
}

func TestOutputHandlerWritesFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "out", "report.json")

	h := NewOutputHandlerTo(&buf, logger())
	require.NoError(t, h.HandleOutput(report(nil).Summary(), CommandConfig{OutputFile: path, OutputFormat: "json"}))
	assert.Empty(t, buf.String())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"stage": "email"`)

	err = h.HandleOutput(report(nil).Summary(), CommandConfig{OutputFile: t.TempDir(), OutputFormat: "json"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest))
}

func TestReadTextFile(t *testing.T) {
	fp := NewFileProcessor(logger())
	path := filepath.Join(t.TempDir(), "jd.txt")
	require.NoError(t, os.WriteFile(path, []byte("We need Go."), 0o600))

	got, err := fp.ReadTextFile(path)
	require.NoError(t, err)
	assert.Equal(t, "We need Go.", got)

	_, err = fp.ReadTextFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
