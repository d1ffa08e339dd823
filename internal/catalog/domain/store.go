package domain

import (
	"strings"
	"time"
)

// GeoJSONPoint is the location type stored for every store.
const GeoJSONPoint = "Point"

// Store is the catalog aggregate: a point of interest with a stable,
// human-readable slug derived from its name.
type Store struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Tags        []string
	Location    Location
	Photo       string
	AuthorID    string
	Reviews     []Review // populated only when a read explicitly joins reviews
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Location is a GeoJSON point plus the free-text street address.
type Location struct {
	Type        string
	Coordinates []float64 // longitude, latitude
	Address     string
}

// StoreSummary is the reduced projection returned by proximity queries.
type StoreSummary struct {
	Slug        string
	Name        string
	Description string
	Location    Location
	Photo       string
}

// RankedStore is a store projection augmented with the average rating of its
// joined reviews.
type RankedStore struct {
	Slug          string
	Name          string
	Photo         string
	Reviews       []Review
	AverageRating float64
}

// TagCount is one row of the tag frequency aggregation.
type TagCount struct {
	Tag   string
	Count int
}

// Review belongs to the review store. The catalog only reads reviews through
// joins and the append-only write path; it never mutates them.
type Review struct {
	ID        string
	StoreID   string
	AuthorID  string
	Rating    float64
	Text      string
	CreatedAt time.Time
}

// User is the minimal identity projection the catalog needs for ownership
// checks and hearts.
type User struct {
	ID     string
	Name   string
	Email  string
	Hearts []string
}

// Normalize trims free-text fields and pins the GeoJSON type.
func (s *Store) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
	s.Location.Type = GeoJSONPoint
	s.Location.Address = strings.TrimSpace(s.Location.Address)
}

// Validate checks the invariants every persisted store must hold.
func (s *Store) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Reason: "store name must not be empty"}
	}
	if len(s.Location.Coordinates) != 2 {
		return &ValidationError{Field: "location.coordinates", Reason: "longitude and latitude are required"}
	}
	if strings.TrimSpace(s.Location.Address) == "" {
		return &ValidationError{Field: "location.address", Reason: "address must not be empty"}
	}
	if strings.TrimSpace(s.AuthorID) == "" {
		return &ValidationError{Field: "author", Reason: "author is required"}
	}
	return nil
}

// Validate checks review input before it is appended.
func (r *Review) Validate() error {
	if strings.TrimSpace(r.StoreID) == "" {
		return &ValidationError{Field: "storeId", Reason: "store reference is required"}
	}
	if strings.TrimSpace(r.AuthorID) == "" {
		return &ValidationError{Field: "author", Reason: "author is required"}
	}
	if r.Rating < 1 || r.Rating > 5 {
		return &ValidationError{Field: "rating", Reason: "rating must be between 1 and 5"}
	}
	return nil
}
