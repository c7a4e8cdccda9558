package main

import (
	"context"
	"log/slog"
	"os"

	"propembed/internal/app"
	"propembed/internal/config"
	"propembed/internal/logger"
)

func main() {
	// Initialize structured logger
	slog.SetDefault(logger.New(os.Stdout, "info"))

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))

	ctx := context.Background()

	// 2. Connections, index, optional ledger and events
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}
	defer deps.Close(ctx)

	// 3. Run
	summary, err := app.New(cfg, deps).Run(ctx)
	if err != nil {
		slog.Error("enrichment run failed", "run_id", summary.RunID, "error", err)
		deps.Close(ctx)
		os.Exit(1)
	}
	slog.Info("enrichment run finished",
		"run_id", summary.RunID,
		"total", summary.Total,
		"processed", summary.Processed,
		"failed_workers", summary.Failed,
		"failed_records", summary.FailedRecords,
	)
}
