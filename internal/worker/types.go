package worker

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"propembed/internal/listing"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cursor is a single forward pass over the source collection. *mongo.Cursor
// satisfies it.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Err() error
	Close(ctx context.Context) error
}

type SourceStore interface {
	Count(ctx context.Context) (int64, error)
	Scan(ctx context.Context) (Cursor, error)
}

type TargetStore interface {
	Exists(ctx context.Context, sourceID primitive.ObjectID) (bool, error)
	InsertMany(ctx context.Context, records []listing.EnrichedRecord) error
	EnsureIndex(ctx context.Context, field string) error
}

// Handles are the store connections owned by a single worker.
type Handles struct {
	Source SourceStore
	Target TargetStore
	Close  func(ctx context.Context) error
}

// StoreOpener gives every worker its own connections; handles are never
// shared between workers.
type StoreOpener interface {
	Open(ctx context.Context) (*Handles, error)
}

// Failure stages reported to a FailureRecorder.
const (
	StageDecode    = "decode"
	StageEmbed     = "embed"
	StageDimension = "dimension"
	StageInsert    = "insert"
)

type Failure struct {
	WorkerID int
	SourceID string
	Stage    string
	Err      error
}

type FailureRecorder interface {
	RecordFailure(ctx context.Context, f Failure) error
}

// FailureCounter reports how many failures were recorded for a run.
type FailureCounter interface {
	Count(ctx context.Context, runID string) (int, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}
