package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"

	"propembed/internal/listing"
	"propembed/internal/logger"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

type Options struct {
	BatchSize int
	// Dimension is the expected vector length; 0 disables the check.
	Dimension int
	// Failures is optional.
	Failures FailureRecorder
}

// Worker runs the per-record pipeline over its partition of the source.
type Worker struct {
	opener   StoreOpener
	embedder Embedder
	opts     Options
}

func NewWorker(opener StoreOpener, embedder Embedder, opts Options) *Worker {
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Worker{opener: opener, embedder: embedder, opts: opts}
}

// Run scans the whole source and enriches the records a owns. Only a
// connection or cursor fault ends up in the result's Err; per-record
// problems are logged and skipped.
func (w *Worker) Run(ctx context.Context, a Assignment) ProcessingResult {
	ctx = logger.WithWorkerID(ctx, a.WorkerID)
	slog.InfoContext(ctx, "starting to process properties", "total_workers", a.TotalWorkers)

	h, err := w.opener.Open(ctx)
	if err != nil {
		return ProcessingResult{WorkerID: a.WorkerID, Err: fmt.Errorf("failed to open stores: %w", err)}
	}
	defer func() {
		if h.Close == nil {
			return
		}
		if err := h.Close(ctx); err != nil {
			slog.WarnContext(ctx, "failed to close stores", "error", err)
		}
	}()

	processed, err := w.process(ctx, a, h)
	return ProcessingResult{WorkerID: a.WorkerID, Processed: processed, Err: err}
}

func (w *Worker) process(ctx context.Context, a Assignment, h *Handles) (int, error) {
	cursor, err := h.Source.Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("error finding properties: %w", err)
	}
	defer cursor.Close(ctx)

	writer := NewBatchWriter(h.Target, w.opts.BatchSize, func(ctx context.Context, batch []listing.EnrichedRecord, err error) {
		w.recordDropped(ctx, a.WorkerID, h.Target, batch, err)
	})

	processed := 0
	for index := 0; cursor.Next(ctx); index++ {
		if index%100 == 0 {
			slog.DebugContext(ctx, "scanning property", "index", index)
		}
		if !a.Owns(index) {
			continue
		}

		rec, ok := w.enrich(ctx, a, cursor, h.Target)
		if !ok {
			continue
		}

		writer.Add(ctx, rec)
		processed++
		if processed%10 == 0 {
			slog.InfoContext(ctx, "processed properties so far", "processed", processed)
		}
	}

	writer.Flush(ctx)

	if err := cursor.Err(); err != nil {
		return processed, fmt.Errorf("cursor error: %w", err)
	}

	slog.InfoContext(ctx, "completed processing properties",
		"processed", processed, "written", writer.Written(), "dropped", writer.Dropped())
	return processed, nil
}

// enrich runs dedup, description and embedding for the record under the
// cursor. ok is false when the record is skipped.
func (w *Worker) enrich(ctx context.Context, a Assignment, cursor Cursor, target TargetStore) (listing.EnrichedRecord, bool) {
	var raw bson.Raw
	if err := cursor.Decode(&raw); err != nil {
		slog.WarnContext(ctx, "error decoding property", "error", err)
		w.recordFailure(ctx, a.WorkerID, "", StageDecode, err)
		return listing.EnrichedRecord{}, false
	}
	p, err := listing.DecodeProperty(raw)
	if err != nil {
		slog.WarnContext(ctx, "error decoding property", "error", err)
		w.recordFailure(ctx, a.WorkerID, "", StageDecode, err)
		return listing.EnrichedRecord{}, false
	}
	id := p.ID.Hex()

	exists, err := target.Exists(ctx, p.ID)
	if err != nil {
		slog.WarnContext(ctx, "error checking for existing property", "property_id", id, "error", err)
	} else if exists {
		slog.DebugContext(ctx, "property already has embeddings, skipping", "property_id", id)
		return listing.EnrichedRecord{}, false
	}

	vec, err := w.embedder.Embed(ctx, listing.Describe(&p))
	if err != nil {
		slog.ErrorContext(ctx, "error generating embedding", "property_id", id, "error", err)
		w.recordFailure(ctx, a.WorkerID, id, StageEmbed, err)
		return listing.EnrichedRecord{}, false
	}

	if w.opts.Dimension > 0 && len(vec) != w.opts.Dimension {
		err := fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), w.opts.Dimension)
		slog.ErrorContext(ctx, "unexpected embedding size", "property_id", id, "error", err)
		w.recordFailure(ctx, a.WorkerID, id, StageDimension, err)
		return listing.EnrichedRecord{}, false
	}

	return listing.EnrichedRecord{Metadata: raw, Embeddings: vec, Listing: p}, true
}

// recordDropped reports the records of a failed batch that did not reach the
// target. Stores may keep part of a batch that errored.
func (w *Worker) recordDropped(ctx context.Context, workerID int, target TargetStore, batch []listing.EnrichedRecord, cause error) {
	if w.opts.Failures == nil {
		return
	}
	for _, rec := range batch {
		id := rec.Listing.ID
		if exists, err := target.Exists(ctx, id); err == nil && exists {
			slog.DebugContext(ctx, "property stored despite batch error", "property_id", id.Hex())
			continue
		}
		w.recordFailure(ctx, workerID, id.Hex(), StageInsert, cause)
	}
}

func (w *Worker) recordFailure(ctx context.Context, workerID int, sourceID, stage string, cause error) {
	if w.opts.Failures == nil {
		return
	}
	f := Failure{WorkerID: workerID, SourceID: sourceID, Stage: stage, Err: cause}
	if err := w.opts.Failures.RecordFailure(ctx, f); err != nil {
		slog.WarnContext(ctx, "failed to record enrichment failure", "stage", stage, "property_id", sourceID, "error", err)
	}
}
