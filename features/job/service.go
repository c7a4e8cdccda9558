package job

import (
	"context"
	"log/slog"

	"propembed/internal/logger"
	"propembed/internal/worker"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordFailure stores f under the run id carried by ctx.
func (s *Service) RecordFailure(ctx context.Context, f worker.Failure) error {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	j := &Job{
		RunID:    logger.RunID(ctx),
		WorkerID: f.WorkerID,
		SourceID: f.SourceID,
		Stage:    f.Stage,
		Error:    msg,
	}
	if err := s.repo.Save(ctx, j); err != nil {
		return err
	}
	slog.DebugContext(ctx, "failure recorded", "job_id", j.ID, "stage", f.Stage, "property_id", f.SourceID)
	return nil
}

// Count is the number of failures recorded for runID.
func (s *Service) Count(ctx context.Context, runID string) (int, error) {
	return s.repo.Count(ctx, runID)
}
