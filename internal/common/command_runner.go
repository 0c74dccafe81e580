package common

import (
	"context"

	"github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/pipeline"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
)

// StageRunner runs one stage over its pending records.
type StageRunner interface {
	Run(ctx context.Context, stage pipeline.Stage, filter store.Filter) (*pipeline.Report, error)
}

// RunStageCommand runs stage and writes the run summary. The summary is
// written even when the run stopped early; the stopping error is returned
// after it.
func RunStageCommand(
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	out *OutputHandler,
	runner StageRunner,
	stage pipeline.Stage,
	filter store.Filter,
) (*pipeline.Report, error) {
	logger.Info("Starting stage",
		"stage", string(stage.Name()),
		"status", string(stage.Input()),
		"company", filter.Company,
		"output_format", cmdConfig.OutputFormat)

	report, runErr := runner.Run(ctx, stage, filter)
	if report == nil {
		return nil, runErr
	}

	if err := out.HandleOutput(report.Summary(), cmdConfig); err != nil {
		if runErr != nil {
			logger.LogError(err, "Failed to write stage summary")
			return report, runErr
		}
		return report, err
	}
	return report, runErr
}
