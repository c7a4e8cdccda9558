package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"propembed/internal/worker"
)

type SourceStore struct {
	coll *mongo.Collection
}

func NewSourceStore(coll *mongo.Collection) *SourceStore {
	return &SourceStore{coll: coll}
}

func (s *SourceStore) Count(ctx context.Context) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting properties: %w", err)
	}
	return count, nil
}

// Scan opens a cursor over the whole collection ordered by _id, so every
// worker sees the same sequence.
func (s *SourceStore) Scan(ctx context.Context) (worker.Cursor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return cursor, nil
}
