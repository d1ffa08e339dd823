package mongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the catalog queries depend on:
// the unique slug constraint (the authoritative arbiter behind the slug
// generator), the weighted text index for relevance search, the 2dsphere
// index for proximity queries, and the review join key.
func EnsureIndexes(ctx context.Context, db *mongo.Database, storeCollection, reviewCollection string) error {
	storeIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
			},
			Options: options.Index().
				SetName("store_text").
				SetWeights(bson.D{
					{Key: "name", Value: 10},
					{Key: "description", Value: 5},
				}),
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}
	if _, err := db.Collection(storeCollection).Indexes().CreateMany(ctx, storeIndexes); err != nil {
		return errors.Wrap(err, "create store indexes")
	}

	reviewIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "storeId", Value: 1}}},
	}
	if _, err := db.Collection(reviewCollection).Indexes().CreateMany(ctx, reviewIndexes); err != nil {
		return errors.Wrap(err, "create review indexes")
	}
	return nil
}
