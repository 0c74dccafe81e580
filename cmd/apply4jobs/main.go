package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timjtrainor/Apply4Jobs/internal/cli"
	"github.com/timjtrainor/Apply4Jobs/internal/config"
	"github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	// Vault overrides any key from the config file or environment
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		logger.LogError(err, "Failed to load secrets from Vault")
		return 1
	}

	obs, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, cli.Version))
	if err != nil {
		logger.LogError(err, "Failed to initialize observability")
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Observability shutdown failed", "error", err.Error())
		}
	}()

	logger.Debug("Starting apply4jobs",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"ai_model", cfg.AI.Model)

	if err := cli.Execute(ctx, cfg, logger, obs); err != nil {
		logger.LogError(err, "Command failed")
		return 1
	}
	return 0
}
