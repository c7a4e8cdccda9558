package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"propembed/internal/logger"
)

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Runner interface {
	Run(ctx context.Context, a Assignment) ProcessingResult
}

type Summary struct {
	RunID     string
	Workers   int
	Total     int64
	Processed int
	Failed    int
	// FailedRecords is the ledger count for the run, -1 when unknown.
	FailedRecords int
	Results       []ProcessingResult
}

// Coordinator fans a run out to a fixed number of workers and aggregates
// what they report back over a channel.
type Coordinator struct {
	counter   Counter
	runner    Runner
	workers   int
	publisher EventPublisher
	failures  FailureCounter
}

type CoordinatorOption func(*Coordinator)

// WithPublisher sends every worker result and the run summary to NSQ.
func WithPublisher(p EventPublisher) CoordinatorOption {
	return func(c *Coordinator) {
		c.publisher = p
	}
}

// WithFailureCounter adds the run's recorded failures to the summary.
func WithFailureCounter(f FailureCounter) CoordinatorOption {
	return func(c *Coordinator) {
		c.failures = f
	}
}

func NewCoordinator(counter Counter, runner Runner, workers int, opts ...CoordinatorOption) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	c := &Coordinator{counter: counter, runner: runner, workers: workers}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)

	summary := Summary{RunID: runID, Workers: c.workers, Total: -1, FailedRecords: -1}
	if total, err := c.counter.Count(ctx); err != nil {
		slog.WarnContext(ctx, "error counting properties", "error", err)
	} else {
		summary.Total = total
		slog.InfoContext(ctx, "total properties to process", "total", total)
	}

	pool, err := ants.NewPool(c.workers)
	if err != nil {
		return summary, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	slog.InfoContext(ctx, "starting workers", "workers", c.workers)
	results := make(chan ProcessingResult, c.workers)

	for i := 1; i <= c.workers; i++ {
		a := Assignment{WorkerID: i, TotalWorkers: c.workers}
		task := func() {
			defer func() {
				if r := recover(); r != nil {
					results <- ProcessingResult{WorkerID: a.WorkerID, Err: fmt.Errorf("worker panicked: %v", r)}
				}
			}()
			results <- c.runner.Run(ctx, a)
		}
		if err := pool.Submit(task); err != nil {
			results <- ProcessingResult{WorkerID: a.WorkerID, Err: fmt.Errorf("failed to start worker: %w", err)}
		}
	}

	for completed := 0; completed < c.workers; completed++ {
		res := <-results
		summary.Results = append(summary.Results, res)

		if res.Err != nil {
			summary.Failed++
			slog.ErrorContext(ctx, "worker encountered an error",
				"worker_id", res.WorkerID, "processed", res.Processed, "error", res.Err)
		} else {
			summary.Processed += res.Processed
			slog.InfoContext(ctx, "worker completed", "worker_id", res.WorkerID, "processed", res.Processed)
		}
		c.publish(ctx, newWorkerEvent(runID, res))
	}

	if c.failures != nil {
		if n, err := c.failures.Count(ctx, runID); err != nil {
			slog.WarnContext(ctx, "error counting recorded failures", "error", err)
		} else {
			summary.FailedRecords = n
		}
	}

	slog.InfoContext(ctx, "all workers completed",
		"processed", summary.Processed, "failed_workers", summary.Failed, "failed_records", summary.FailedRecords)
	c.publish(ctx, newSummaryEvent(summary))

	return summary, nil
}
