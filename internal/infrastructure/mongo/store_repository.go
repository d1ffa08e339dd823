package mongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

// StoreRepository implements application.StoreRepository using MongoDB.
type StoreRepository struct {
	stores           *mongo.Collection
	reviews          *mongo.Collection
	reviewCollection string
}

// NewStoreRepository creates a Mongo-backed store repository. The review
// collection is needed for the opt-in review join and the ranking pipeline.
func NewStoreRepository(db *mongo.Database, storeCollection, reviewCollection string) *StoreRepository {
	return &StoreRepository{
		stores:           db.Collection(storeCollection),
		reviews:          db.Collection(reviewCollection),
		reviewCollection: reviewCollection,
	}
}

// Create persists a new store as a single atomic insert. A duplicate slug is
// reported as a UniquenessError so the caller can retry generation.
func (r *StoreRepository) Create(ctx context.Context, store *domain.Store) error {
	doc := buildStoreDocument(store)
	doc.ID = primitive.NewObjectID()

	if _, err := r.stores.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.UniquenessError{Field: "slug", Value: store.Slug}
		}
		return errors.Wrap(err, "insert store")
	}
	store.ID = doc.ID.Hex()
	return nil
}

// Update replaces the mutable fields of an existing store.
func (r *StoreRepository) Update(ctx context.Context, store *domain.Store) error {
	objectID, err := storeObjectID(store.ID)
	if err != nil {
		return err
	}

	doc := buildStoreDocument(store)
	update := bson.M{"$set": bson.M{
		"name":        doc.Name,
		"slug":        doc.Slug,
		"description": doc.Description,
		"tags":        doc.Tags,
		"location":    doc.Location,
		"photo":       doc.Photo,
		"updatedAt":   doc.UpdatedAt,
	}}

	result, err := r.stores.UpdateByID(ctx, objectID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.UniquenessError{Field: "slug", Value: store.Slug}
		}
		return errors.Wrap(err, "update store")
	}
	if result.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "store", Key: store.ID}
	}
	return nil
}

// FindByID returns a single store by its identifier.
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	objectID, err := storeObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc StoreDocument
	if err := r.stores.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: "store", Key: id}
		}
		return nil, errors.Wrap(err, "find store by id")
	}
	store := mapStoreDocument(doc)
	return &store, nil
}

// FindBySlug resolves the canonical URL lookup. Joining reviews is opt-in so
// plain lookups stay cheap.
func (r *StoreRepository) FindBySlug(ctx context.Context, slug string, withReviews bool) (*domain.Store, error) {
	var doc StoreDocument
	if err := r.stores.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: "store", Key: slug}
		}
		return nil, errors.Wrap(err, "find store by slug")
	}
	store := mapStoreDocument(doc)

	if withReviews {
		reviews, err := r.loadReviews(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		store.Reviews = reviews
	}
	return &store, nil
}

// FindByIDs returns the stores matching the given identifiers, in storage
// order.
func (r *StoreRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Store, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := storeObjectID(id)
		if err != nil {
			return nil, err
		}
		objectIDs = append(objectIDs, objectID)
	}
	if len(objectIDs) == 0 {
		return []domain.Store{}, nil
	}

	cursor, err := r.stores.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, errors.Wrap(err, "find stores by ids")
	}
	return decodeStores(ctx, cursor)
}

// ListPage returns one createdAt-descending page of stores plus the total
// count. page is 1-indexed.
func (r *StoreRepository) ListPage(ctx context.Context, page, size int) ([]domain.Store, int64, error) {
	skip := int64(page-1) * int64(size)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(size))

	cursor, err := r.stores.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list stores")
	}
	stores, err := decodeStores(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.stores.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, errors.Wrap(err, "count stores")
	}
	return stores, total, nil
}

// FindNear answers the nearest-first proximity query with the reduced
// projection map displays need.
func (r *StoreRepository) FindNear(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int) ([]domain.StoreSummary, error) {
	opts := options.Find().
		SetProjection(nearProjection()).
		SetLimit(int64(limit))

	cursor, err := r.stores.Find(ctx, nearFilter(lng, lat, maxDistanceMeters), opts)
	if err != nil {
		return nil, errors.Wrap(err, "find stores near point")
	}
	defer cursor.Close(ctx)

	summaries := make([]domain.StoreSummary, 0)
	for cursor.Next(ctx) {
		var doc StoreDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode store summary")
		}
		summaries = append(summaries, domain.StoreSummary{
			Slug:        doc.Slug,
			Name:        doc.Name,
			Description: doc.Description,
			Location: domain.Location{
				Type:        doc.Location.Type,
				Coordinates: append([]float64{}, doc.Location.Coordinates...),
				Address:     doc.Location.Address,
			},
			Photo: doc.Photo,
		})
	}
	return summaries, errors.Wrap(cursor.Err(), "iterate store summaries")
}

// SearchText runs the weighted full-text index over name and description,
// ordered by descending relevance score.
func (r *StoreRepository) SearchText(ctx context.Context, query string, limit int) ([]domain.Store, error) {
	opts := options.Find().
		SetProjection(textScoreProjection()).
		SetSort(textScoreSort()).
		SetLimit(int64(limit))

	cursor, err := r.stores.Find(ctx, textSearchFilter(query), opts)
	if err != nil {
		return nil, errors.Wrap(err, "search stores")
	}
	return decodeStores(ctx, cursor)
}

// FindByTag returns stores carrying the exact tag, or every tagged store when
// tag is empty. Ordering beyond storage default is not guaranteed.
func (r *StoreRepository) FindByTag(ctx context.Context, tag string) ([]domain.Store, error) {
	cursor, err := r.stores.Find(ctx, tagFilter(tag))
	if err != nil {
		return nil, errors.Wrap(err, "find stores by tag")
	}
	return decodeStores(ctx, cursor)
}

// TagCounts aggregates per-occurrence tag frequencies across the collection.
func (r *StoreRepository) TagCounts(ctx context.Context) ([]domain.TagCount, error) {
	cursor, err := r.stores.Aggregate(ctx, tagCountsPipeline())
	if err != nil {
		return nil, errors.Wrap(err, "aggregate tag counts")
	}
	defer cursor.Close(ctx)

	counts := make([]domain.TagCount, 0)
	for cursor.Next(ctx) {
		var doc tagCountDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode tag count")
		}
		counts = append(counts, domain.TagCount{Tag: doc.Tag, Count: doc.Count})
	}
	return counts, errors.Wrap(cursor.Err(), "iterate tag counts")
}

// TopStores runs the review join and average-rating ranking, excluding stores
// with fewer than two reviews.
func (r *StoreRepository) TopStores(ctx context.Context, limit int) ([]domain.RankedStore, error) {
	cursor, err := r.stores.Aggregate(ctx, topStoresPipeline(r.reviewCollection, limit))
	if err != nil {
		return nil, errors.Wrap(err, "aggregate top stores")
	}
	defer cursor.Close(ctx)

	ranked := make([]domain.RankedStore, 0, limit)
	for cursor.Next(ctx) {
		var doc rankedStoreDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode ranked store")
		}
		reviews := make([]domain.Review, 0, len(doc.Reviews))
		for _, review := range doc.Reviews {
			reviews = append(reviews, mapReviewDocument(review))
		}
		ranked = append(ranked, domain.RankedStore{
			Slug:          doc.Slug,
			Name:          doc.Name,
			Photo:         doc.Photo,
			Reviews:       reviews,
			AverageRating: doc.AverageRating,
		})
	}
	return ranked, errors.Wrap(cursor.Err(), "iterate ranked stores")
}

// SlugsMatching lists existing slugs matching base or base-<number>,
// case-insensitively.
func (r *StoreRepository) SlugsMatching(ctx context.Context, base string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"slug": 1})

	cursor, err := r.stores.Find(ctx, slugFilter(base), opts)
	if err != nil {
		return nil, errors.Wrap(err, "find slugs")
	}
	defer cursor.Close(ctx)

	slugs := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			Slug string `bson:"slug"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode slug")
		}
		slugs = append(slugs, doc.Slug)
	}
	return slugs, errors.Wrap(cursor.Err(), "iterate slugs")
}

func (r *StoreRepository) loadReviews(ctx context.Context, storeID primitive.ObjectID) ([]domain.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.reviews.Find(ctx, bson.M{"storeId": storeID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "load reviews")
	}
	defer cursor.Close(ctx)

	reviews := make([]domain.Review, 0)
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode review")
		}
		reviews = append(reviews, mapReviewDocument(doc))
	}
	return reviews, errors.Wrap(cursor.Err(), "iterate reviews")
}

func buildStoreDocument(store *domain.Store) StoreDocument {
	doc := StoreDocument{
		Name:        store.Name,
		Slug:        store.Slug,
		Description: store.Description,
		Tags:        append([]string{}, store.Tags...),
		Location: LocationDocument{
			Type:        store.Location.Type,
			Coordinates: append([]float64{}, store.Location.Coordinates...),
			Address:     store.Location.Address,
		},
		Photo:     store.Photo,
		Author:    store.AuthorID,
		CreatedAt: store.CreatedAt,
	}
	if !store.UpdatedAt.IsZero() {
		updatedAt := store.UpdatedAt
		doc.UpdatedAt = &updatedAt
	}
	return doc
}

func decodeStores(ctx context.Context, cursor *mongo.Cursor) ([]domain.Store, error) {
	defer cursor.Close(ctx)

	stores := make([]domain.Store, 0)
	for cursor.Next(ctx) {
		var doc StoreDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode store")
		}
		stores = append(stores, mapStoreDocument(doc))
	}
	return stores, errors.Wrap(cursor.Err(), "iterate stores")
}

func storeObjectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &domain.NotFoundError{Resource: "store", Key: id}
	}
	return objectID, nil
}
