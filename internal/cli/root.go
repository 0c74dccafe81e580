package cli

import (
	"context"

	"github.com/timjtrainor/Apply4Jobs/internal/config"
	"github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/observability"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}
type obsKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}
var obsKey = obsKeyType{}

var rootCmd = &cobra.Command{
	Use:   "apply4jobs",
	Short: "A job application assistant driven by a status workflow",
	Long: `Apply4Jobs moves job applications through five stages: JD review,
resume build, apply, outreach DM and follow-up email. Each stage picks up the
records waiting at its status, drafts text with Gemini, lets you choose or
rewrite every generated piece, and advances the record.`,
	SilenceUsage: true,
}

// Execute runs the CLI with the loaded config, logger and observability
// manager available to every subcommand.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger, obs *observability.ObservabilityManager) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	ctx = context.WithValue(ctx, obsKey, obs)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// getObservabilityFromContext returns the manager, or nil when none was set.
// A nil manager hands out no-op tracers and nil metrics.
func getObservabilityFromContext(ctx context.Context) *observability.ObservabilityManager {
	obs, _ := ctx.Value(obsKey).(*observability.ObservabilityManager)
	return obs
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(markAppliedCmd)
	rootCmd.AddCommand(promptsCmd)
	for _, cmd := range stageCommands() {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
