package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"propembed/internal/config"
)

const (
	EventWorkerCompleted = "worker.completed"
	EventRunCompleted    = "run.completed"
)

// ResultEvent is the JSON body published to config.TopicEnrichmentResult.
type ResultEvent struct {
	Type          string `json:"type"`
	RunID         string `json:"run_id"`
	WorkerID      int    `json:"worker_id,omitempty"`
	Processed     int    `json:"processed"`
	Error         string `json:"error,omitempty"`
	Workers       int    `json:"workers,omitempty"`
	FailedWorkers int    `json:"failed_workers,omitempty"`
	FailedRecords int    `json:"failed_records,omitempty"`
	Total         int64  `json:"total,omitempty"`
}

func newWorkerEvent(runID string, res ProcessingResult) ResultEvent {
	ev := ResultEvent{
		Type:      EventWorkerCompleted,
		RunID:     runID,
		WorkerID:  res.WorkerID,
		Processed: res.Processed,
	}
	if res.Err != nil {
		ev.Error = res.Err.Error()
	}
	return ev
}

func newSummaryEvent(s Summary) ResultEvent {
	return ResultEvent{
		Type:          EventRunCompleted,
		RunID:         s.RunID,
		Processed:     s.Processed,
		Workers:       s.Workers,
		FailedWorkers: s.Failed,
		FailedRecords: max(s.FailedRecords, 0),
		Total:         s.Total,
	}
}

func (c *Coordinator) publish(ctx context.Context, ev ResultEvent) {
	if c.publisher == nil {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		slog.WarnContext(ctx, "failed to marshal result event", "error", err)
		return
	}
	if err := c.publisher.Publish(config.TopicEnrichmentResult, body); err != nil {
		slog.WarnContext(ctx, "failed to publish result event", "type", ev.Type, "error", err)
	}
}
