package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

// slugFilter matches a base slug and its numeric-suffix variants,
// case-insensitively.
func slugFilter(base string) bson.M {
	return bson.M{"slug": primitive.Regex{Pattern: domain.SlugPattern(base), Options: "i"}}
}

// tagFilter selects stores by exact tag; an empty tag selects every store
// carrying at least one tag.
func tagFilter(tag string) bson.M {
	if tag == "" {
		return bson.M{"tags": bson.M{"$exists": true, "$ne": bson.A{}}}
	}
	return bson.M{"tags": tag}
}

// nearFilter builds the nearest-first geospatial query bounded by
// maxDistanceMeters. Ordering by distance is implied by $near.
func nearFilter(lng, lat, maxDistanceMeters float64) bson.M {
	return bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        domain.GeoJSONPoint,
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": maxDistanceMeters,
			},
		},
	}
}

// nearProjection is the reduced field set map displays need.
func nearProjection() bson.M {
	return bson.M{"slug": 1, "name": 1, "description": 1, "location": 1, "photo": 1}
}

// textSearchFilter runs the weighted name+description text index.
func textSearchFilter(query string) bson.M {
	return bson.M{"$text": bson.M{"$search": query}}
}

// textScoreProjection surfaces the engine's relevance score.
func textScoreProjection() bson.D {
	return bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}
}

// textScoreSort orders results by descending relevance.
func textScoreSort() bson.D {
	return bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}
}

// tagCountsPipeline flattens every store's tag list into individual
// occurrences, groups by tag and sorts by frequency. Ties are broken by tag so
// the output is deterministic.
func tagCountsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
	}
}

// topStoresPipeline joins each store with its reviews, keeps stores with at
// least two reviews, averages their ratings and returns the best `limit`
// stores. The minimum-sample filter runs before the average, never after.
func topStoresPipeline(reviewCollection string, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: reviewCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "storeId"},
			{Key: "as", Value: "reviews"},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "reviews.1", Value: bson.D{{Key: "$exists", Value: true}}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "averageRating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "photo", Value: 1},
			{Key: "name", Value: 1},
			{Key: "slug", Value: 1},
			{Key: "reviews", Value: 1},
			{Key: "averageRating", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "averageRating", Value: -1},
			{Key: "name", Value: 1},
		}}},
		{{Key: "$limit", Value: int64(limit)}},
	}
}
