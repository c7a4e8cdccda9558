package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"propembed/internal/listing"
)

type TargetStore struct {
	coll *mongo.Collection
}

func NewTargetStore(coll *mongo.Collection) *TargetStore {
	return &TargetStore{coll: coll}
}

func (s *TargetStore) Exists(ctx context.Context, sourceID primitive.ObjectID) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := s.coll.FindOne(ctx, bson.M{listing.SourceIDField: sourceID}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *TargetStore) InsertMany(ctx context.Context, records []listing.EnrichedRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return err
}

// EnsureIndex creates a non-unique ascending index on field. Creating an
// index that already exists with the same keys is a no-op.
func (s *TargetStore) EnsureIndex(ctx context.Context, field string) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
	})
	return err
}
