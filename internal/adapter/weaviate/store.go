package weaviate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"propembed/internal/listing"
	"propembed/internal/vector"
)

// Store keeps enriched listings as objects of vector.ClassName. The source
// record is stored as relaxed extended JSON in the metadata property.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Exists(ctx context.Context, sourceID primitive.ObjectID) (bool, error) {
	where := filters.Where().
		WithOperator(filters.Equal).
		WithPath([]string{"sourceId"}).
		WithValueText(sourceID.Hex())

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithWhere(where).
		WithLimit(1).
		WithFields(graphql.Field{Name: "sourceId"}).
		Do(ctx)
	if err != nil {
		return false, err
	}
	if len(res.Errors) > 0 {
		return false, fmt.Errorf("graphql error: %v", res.Errors[0].Message)
	}

	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if objs, ok := data[vector.ClassName].([]interface{}); ok {
			return len(objs) > 0, nil
		}
	}
	return false, nil
}

// InsertMany sends the records in one batch request. Any per-object error
// fails the whole call.
func (s *Store) InsertMany(ctx context.Context, records []listing.EnrichedRecord) error {
	if len(records) == 0 {
		return nil
	}

	objs := make([]*models.Object, 0, len(records))
	for _, rec := range records {
		meta, err := bson.MarshalExtJSON(rec.Metadata, false, false)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", rec.Listing.ID.Hex(), err)
		}
		objs = append(objs, &models.Object{
			Class: vector.ClassName,
			Properties: map[string]interface{}{
				"sourceId": rec.Listing.ID.Hex(),
				"title":    rec.Listing.Title(),
				"city":     rec.Listing.City,
				"metadata": string(meta),
			},
			Vector: rec.Embeddings,
		})
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objs...).Do(ctx)
	if err != nil {
		return err
	}

	var msgs []string
	for _, r := range resp {
		if r.Result == nil || r.Result.Errors == nil {
			continue
		}
		for _, e := range r.Result.Errors.Error {
			if e != nil {
				msgs = append(msgs, e.Message)
			}
		}
	}
	if len(msgs) > 0 {
		return errors.New("batch insert failed: " + strings.Join(msgs, "; "))
	}
	return nil
}

// EnsureIndex makes sure the class and its filterable sourceId property
// exist. Weaviate has no separate secondary indexes.
func (s *Store) EnsureIndex(ctx context.Context, field string) error {
	if field != listing.SourceIDField {
		return fmt.Errorf("unsupported index field %q", field)
	}
	return vector.EnsureSchema(ctx, schemaClient{client: s.client})
}
