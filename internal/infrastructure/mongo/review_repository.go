package mongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

// ReviewRepository implements the append-only review port.
type ReviewRepository struct {
	reviews *mongo.Collection
}

// NewReviewRepository creates a Mongo-backed review repository.
func NewReviewRepository(db *mongo.Database, collection string) *ReviewRepository {
	return &ReviewRepository{reviews: db.Collection(collection)}
}

// Create appends a review and reflects the assigned id back onto the model.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	storeID, err := primitive.ObjectIDFromHex(review.StoreID)
	if err != nil {
		return &domain.ValidationError{Field: "storeId", Reason: "malformed store reference"}
	}

	doc := ReviewDocument{
		ID:        primitive.NewObjectID(),
		StoreID:   storeID,
		Author:    review.AuthorID,
		Rating:    review.Rating,
		Text:      review.Text,
		CreatedAt: review.CreatedAt,
	}
	if _, err := r.reviews.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(err, "insert review")
	}
	review.ID = doc.ID.Hex()
	return nil
}
