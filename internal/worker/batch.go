package worker

import (
	"context"
	"log/slog"

	"propembed/internal/listing"
)

const DefaultBatchSize = 50

type Inserter interface {
	InsertMany(ctx context.Context, records []listing.EnrichedRecord) error
}

// DropFunc is told about a batch that failed to insert and was discarded.
type DropFunc func(ctx context.Context, batch []listing.EnrichedRecord, err error)

// BatchWriter buffers enriched records and writes them with one InsertMany
// per full batch. A failed insert drops the whole batch; it is not retried.
type BatchWriter struct {
	target  Inserter
	size    int
	buf     []listing.EnrichedRecord
	onDrop  DropFunc
	written int
	dropped int
}

func NewBatchWriter(target Inserter, size int, onDrop DropFunc) *BatchWriter {
	if size < 1 {
		size = DefaultBatchSize
	}
	return &BatchWriter{
		target: target,
		size:   size,
		buf:    make([]listing.EnrichedRecord, 0, size),
		onDrop: onDrop,
	}
}

func (b *BatchWriter) Add(ctx context.Context, rec listing.EnrichedRecord) {
	b.buf = append(b.buf, rec)
	if len(b.buf) >= b.size {
		b.Flush(ctx)
	}
}

// Flush writes whatever is buffered. An empty buffer makes no store call.
func (b *BatchWriter) Flush(ctx context.Context) {
	if len(b.buf) == 0 {
		return
	}

	batch := b.buf
	b.buf = make([]listing.EnrichedRecord, 0, b.size)

	if err := b.target.InsertMany(ctx, batch); err != nil {
		b.dropped += len(batch)
		slog.ErrorContext(ctx, "error inserting batch, dropping it", "batch_size", len(batch), "error", err)
		if b.onDrop != nil {
			b.onDrop(ctx, batch, err)
		}
		return
	}

	b.written += len(batch)
	slog.InfoContext(ctx, "inserted batch", "batch_size", len(batch), "written", b.written)
}

func (b *BatchWriter) Pending() int { return len(b.buf) }
func (b *BatchWriter) Written() int { return b.written }
func (b *BatchWriter) Dropped() int { return b.dropped }
