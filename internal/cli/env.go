package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/timjtrainor/Apply4Jobs/internal/ai"
	"github.com/timjtrainor/Apply4Jobs/internal/config"
	"github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/observability"
	"github.com/timjtrainor/Apply4Jobs/internal/pipeline"
	"github.com/timjtrainor/Apply4Jobs/internal/prompts"
	"github.com/timjtrainor/Apply4Jobs/internal/selector"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// env bundles what a command needs once the store is open.
type env struct {
	cfg    *config.Config
	logger *errors.Logger
	obs    *observability.ObservabilityManager
	store  *store.Store
}

// openEnv opens the application store. Callers must close it.
func openEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	s, err := store.Open(ctx, cfg.Paths.Resolve(cfg.Store.Path), cfg.Store.BusyTimeout, logger)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		obs:    getObservabilityFromContext(ctx),
		store:  s,
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("Failed to close store", "error", err.Error())
	}
}

// apiKey resolves the Gemini key. Vault and config/env values were already
// merged into cfg.AI.APIKey at startup; the config table is the fallback.
func (e *env) apiKey(ctx context.Context) (string, error) {
	if e.cfg.AI.APIKey != "" {
		return e.cfg.AI.APIKey, nil
	}
	key, ok, err := e.store.ConfigGet(ctx, store.KeyGoogleToken)
	if err != nil || !ok {
		return "", err
	}
	return key, nil
}

// generator builds the retrying client for stage, or returns nil when no
// key is configured anywhere.
func (e *env) generator(ctx context.Context, stage workflow.Stage) (ai.Generator, error) {
	key, err := e.apiKey(ctx)
	if err != nil || key == "" {
		return nil, err
	}

	aiCfg := e.cfg.GetStageAIConfig(string(stage))
	aiCfg.APIKey = key

	backend, err := ai.NewGeminiBackend(ctx, aiCfg, e.obs.HTTPTransport(nil))
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Generation client ready", "stage", string(stage), "model", backend.Model())
	return ai.NewClient(backend, aiCfg, e.logger.With("stage", string(stage)),
		ai.WithMetrics(e.obs.GetMetrics()),
		ai.WithTracer(e.obs.Tracer("apply4jobs/ai")),
	), nil
}

// resumePath locates the parsed resume export: resume.name from config
// first, then the full_resume_file_name config entry.
func (e *env) resumePath(ctx context.Context) (string, error) {
	name := e.cfg.Resume.Name
	if name == "" {
		v, ok, err := e.store.ConfigGet(ctx, store.KeyFullResumeFileName)
		if err != nil {
			return "", err
		}
		if ok {
			name = v
		}
	}
	if name == "" {
		return "", nil
	}
	return e.cfg.Paths.ResumeExportPath(name), nil
}

// deps wires the collaborators for one stage. The selector reads operator
// input from stdin and prints to the command's output.
func (e *env) deps(cmd *cobra.Command, stage workflow.Stage, sel *selector.Selector) (*pipeline.Deps, error) {
	ctx := cmd.Context()

	builder, err := prompts.NewBuilder(e.cfg)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid prompt template", err)
	}

	var gen ai.Generator
	if pipeline.NeedsGenerator(stage) {
		if gen, err = e.generator(ctx, stage); err != nil {
			return nil, err
		}
	}

	resumePath, err := e.resumePath(ctx)
	if err != nil {
		return nil, err
	}

	if sel == nil {
		sel = newSelector(cmd)
	}
	return &pipeline.Deps{
		Store:      e.store,
		Gen:        gen,
		Prompts:    builder,
		Selector:   sel,
		Config:     e.cfg,
		Logger:     e.logger.With("stage", string(stage)),
		ResumePath: resumePath,
	}, nil
}

func newSelector(cmd *cobra.Command) *selector.Selector {
	return selector.New(selector.NewStdinSource(cmd.InOrStdin()), cmd.OutOrStdout())
}

func (e *env) runner() *pipeline.Runner {
	return pipeline.NewRunner(e.store, e.logger,
		pipeline.WithRunnerMetrics(e.obs.GetMetrics()),
		pipeline.WithRunnerTracer(e.obs.Tracer("apply4jobs/pipeline")),
	)
}
