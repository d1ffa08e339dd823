package mongo

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

// UserRepository implements the identity port over the users collection.
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a Mongo-backed user repository.
func NewUserRepository(db *mongo.Database, collection string) *UserRepository {
	return &UserRepository{users: db.Collection(collection)}
}

// Exists reports whether a user document with the given id is present.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{"_id": strings.TrimSpace(id)})
	if err != nil {
		return false, errors.Wrap(err, "count users")
	}
	return count > 0, nil
}

// FindByID returns a single user by identity-provider subject.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var doc UserDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": strings.TrimSpace(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: "user", Key: id}
		}
		return nil, errors.Wrap(err, "find user")
	}
	user := mapUserDocument(doc)
	return &user, nil
}

// Upsert records the identity resolved at the auth boundary so ownership and
// author checks have a user document to reference.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) error {
	update := bson.M{
		"$set":         bson.M{"name": user.Name, "email": user.Email},
		"$setOnInsert": bson.M{"hearts": bson.A{}},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.users.UpdateByID(ctx, strings.TrimSpace(user.ID), update, opts)
	return errors.Wrap(err, "upsert user")
}

// ToggleHeart adds the store to the user's hearts if absent, removes it if
// present, and returns the updated user.
func (r *UserRepository) ToggleHeart(ctx context.Context, userID, storeID string) (*domain.User, error) {
	storeObjectID, err := primitive.ObjectIDFromHex(storeID)
	if err != nil {
		return nil, &domain.NotFoundError{Resource: "store", Key: storeID}
	}

	var doc UserDocument
	if err := r.users.FindOne(ctx, bson.M{"_id": strings.TrimSpace(userID)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &domain.NotFoundError{Resource: "user", Key: userID}
		}
		return nil, errors.Wrap(err, "find user")
	}

	operator := "$addToSet"
	for _, hearted := range doc.Hearts {
		if hearted == storeObjectID {
			operator = "$pull"
			break
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{operator: bson.M{"hearts": storeObjectID}}

	var updated UserDocument
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": doc.ID}, update, opts).Decode(&updated); err != nil {
		return nil, errors.Wrap(err, "toggle heart")
	}
	user := mapUserDocument(updated)
	return &user, nil
}
