package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

// LocationDocument is the embedded GeoJSON point plus street address.
type LocationDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
	Address     string    `bson:"address"`
}

// StoreDocument mirrors the stores collection schema.
type StoreDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
	Tags        []string           `bson:"tags,omitempty"`
	Location    LocationDocument   `bson:"location"`
	Photo       string             `bson:"photo,omitempty"`
	Author      string             `bson:"author"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   *time.Time         `bson:"updatedAt,omitempty"`
}

// ReviewDocument mirrors the reviews collection schema. The catalog appends
// and reads these; it never rewrites them.
type ReviewDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	StoreID   primitive.ObjectID `bson:"storeId"`
	Author    string             `bson:"author"`
	Rating    float64            `bson:"rating"`
	Text      string             `bson:"text,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// UserDocument mirrors the users collection. The _id is the identity
// provider's subject, not an ObjectID.
type UserDocument struct {
	ID     string               `bson:"_id"`
	Name   string               `bson:"name,omitempty"`
	Email  string               `bson:"email,omitempty"`
	Hearts []primitive.ObjectID `bson:"hearts,omitempty"`
}

// rankedStoreDocument is the shape produced by the top-stores pipeline.
type rankedStoreDocument struct {
	Slug          string           `bson:"slug"`
	Name          string           `bson:"name"`
	Photo         string           `bson:"photo,omitempty"`
	Reviews       []ReviewDocument `bson:"reviews"`
	AverageRating float64          `bson:"averageRating"`
}

// tagCountDocument is one row of the tag aggregation.
type tagCountDocument struct {
	Tag   string `bson:"_id"`
	Count int    `bson:"count"`
}

func mapStoreDocument(doc StoreDocument) domain.Store {
	store := domain.Store{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Slug:        doc.Slug,
		Description: doc.Description,
		Tags:        append([]string{}, doc.Tags...),
		Location: domain.Location{
			Type:        doc.Location.Type,
			Coordinates: append([]float64{}, doc.Location.Coordinates...),
			Address:     doc.Location.Address,
		},
		Photo:     doc.Photo,
		AuthorID:  doc.Author,
		CreatedAt: doc.CreatedAt,
	}
	if doc.UpdatedAt != nil {
		store.UpdatedAt = *doc.UpdatedAt
	}
	return store
}

func mapReviewDocument(doc ReviewDocument) domain.Review {
	return domain.Review{
		ID:        doc.ID.Hex(),
		StoreID:   doc.StoreID.Hex(),
		AuthorID:  doc.Author,
		Rating:    doc.Rating,
		Text:      doc.Text,
		CreatedAt: doc.CreatedAt,
	}
}

func mapUserDocument(doc UserDocument) domain.User {
	hearts := make([]string, 0, len(doc.Hearts))
	for _, id := range doc.Hearts {
		hearts = append(hearts, id.Hex())
	}
	return domain.User{
		ID:     doc.ID,
		Name:   doc.Name,
		Email:  doc.Email,
		Hearts: hearts,
	}
}
