package mongo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	adapter "propembed/internal/adapter/mongo"
	"propembed/internal/listing"
	"propembed/internal/testutils"
)

func TestStores_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.SetupMongo()
	defer s.Teardown()

	ctx := context.Background()
	client, err := adapter.Connect(ctx, s.MongoURI)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	db := client.Database("properties_db")
	srcColl := db.Collection("properties")
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	// inserted out of id order
	_, err = srcColl.InsertMany(ctx, []interface{}{
		bson.M{"_id": ids[1], "city": "Recife", "bedrooms": 2},
		bson.M{"_id": ids[0], "city": "Natal", "ad": bson.M{"title": "A"}, "virtualTour": "https://t/1", "isExclusive": false},
	})
	require.NoError(t, err)

	source := adapter.NewSourceStore(srcColl)
	count, err := source.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	cursor, err := source.Scan(ctx)
	require.NoError(t, err)
	var raws []bson.Raw
	var props []listing.Property
	for cursor.Next(ctx) {
		var raw bson.Raw
		require.NoError(t, cursor.Decode(&raw))
		p, err := listing.DecodeProperty(raw)
		require.NoError(t, err)
		raws = append(raws, raw)
		props = append(props, p)
	}
	require.NoError(t, cursor.Err())
	require.NoError(t, cursor.Close(ctx))
	require.Len(t, props, 2)
	assert.Equal(t, ids[0], props[0].ID)
	assert.Equal(t, ids[1], props[1].ID)
	assert.Equal(t, "https://t/1", props[0].Extra["virtualTour"])

	target := adapter.NewTargetStore(db.Collection("properties_embeddings"))
	require.NoError(t, target.EnsureIndex(ctx, listing.SourceIDField))
	require.NoError(t, target.EnsureIndex(ctx, listing.SourceIDField))

	exists, err := target.Exists(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, exists)

	err = target.InsertMany(ctx, []listing.EnrichedRecord{
		{Metadata: raws[0], Embeddings: []float32{1, 0, 0}, Listing: props[0]},
	})
	require.NoError(t, err)

	exists, err = target.Exists(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = target.Exists(ctx, ids[1])
	require.NoError(t, err)
	assert.False(t, exists)

	var stored listing.EnrichedRecord
	err = db.Collection("properties_embeddings").FindOne(ctx, bson.M{listing.SourceIDField: ids[0]}).Decode(&stored)
	require.NoError(t, err)
	assert.Equal(t, raws[0], stored.Metadata)
	assert.Equal(t, ids[0], stored.Metadata.Lookup("_id").ObjectID())
	assert.False(t, stored.Metadata.Lookup("isExclusive").Boolean())
	assert.Equal(t, "https://t/1", stored.Metadata.Lookup("virtualTour").StringValue())
	assert.Equal(t, []float32{1, 0, 0}, stored.Embeddings)
}

func TestConnect_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow connection test")
	}
	client, err := adapter.Connect(context.Background(), "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestTargetStore_InsertManyEmpty(t *testing.T) {
	target := adapter.NewTargetStore(nil)
	assert.NoError(t, target.InsertMany(context.Background(), nil))
}
