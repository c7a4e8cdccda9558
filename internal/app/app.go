package app

import (
	"context"

	"propembed/internal/config"
	"propembed/internal/embedding"
	"propembed/internal/worker"
)

type App struct {
	Coordinator *worker.Coordinator
}

// New wires the enrichment pipeline on top of deps.
func New(cfg *config.Config, deps *Dependencies) *App {
	embedder := embedding.NewRetryingEmbedder(deps.Embedder,
		embedding.WithMaxAttempts(cfg.EmbedMaxAttempts),
		embedding.WithBaseDelay(cfg.EmbedBaseDelay()),
	)

	w := worker.NewWorker(deps.Opener, embedder, worker.Options{
		BatchSize: cfg.BatchSize,
		Dimension: cfg.EmbeddingDimension,
		Failures:  deps.Failures,
	})

	var opts []worker.CoordinatorOption
	if deps.Publisher != nil {
		opts = append(opts, worker.WithPublisher(deps.Publisher))
	}
	if deps.FailureCount != nil {
		opts = append(opts, worker.WithFailureCounter(deps.FailureCount))
	}

	return &App{
		Coordinator: worker.NewCoordinator(deps.Source, w, cfg.WorkerCount, opts...),
	}
}

// Run processes the whole source collection once.
func (a *App) Run(ctx context.Context) (worker.Summary, error) {
	return a.Coordinator.Run(ctx)
}
