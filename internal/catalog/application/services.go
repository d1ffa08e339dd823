package application

import (
	"context"
	"fmt"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

// StoreRepository is the persistence port for the store collection.
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	Update(ctx context.Context, store *domain.Store) error
	FindByID(ctx context.Context, id string) (*domain.Store, error)
	// FindBySlug resolves the canonical URL lookup. The review join is opt-in:
	// plain lookups must not pay for it.
	FindBySlug(ctx context.Context, slug string, withReviews bool) (*domain.Store, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Store, error)
	// ListPage returns one createdAt-descending page plus the total count.
	// page is 1-indexed.
	ListPage(ctx context.Context, page, size int) ([]domain.Store, int64, error)
	FindNear(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int) ([]domain.StoreSummary, error)
	SearchText(ctx context.Context, query string, limit int) ([]domain.Store, error)
	// FindByTag returns stores carrying the exact tag; an empty tag returns
	// every store that has at least one tag.
	FindByTag(ctx context.Context, tag string) ([]domain.Store, error)
	TagCounts(ctx context.Context) ([]domain.TagCount, error)
	TopStores(ctx context.Context, limit int) ([]domain.RankedStore, error)
	// SlugsMatching lists slugs matching base or base-<number>,
	// case-insensitively.
	SlugsMatching(ctx context.Context, base string) ([]string, error)
}

// ReviewRepository is the append-only port to the review store.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
}

// UserRepository is the identity port backing ownership checks and hearts.
type UserRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ToggleHeart(ctx context.Context, userID, storeID string) (*domain.User, error)
}

// CreateStoreCommand carries author-supplied fields for a new store.
type CreateStoreCommand struct {
	Name        string
	Description string
	Tags        []string
	Longitude   float64
	Latitude    float64
	Address     string
	Photo       string
}

// UpdateStoreCommand is a partial patch; nil fields are left untouched.
type UpdateStoreCommand struct {
	Name        *string
	Description *string
	Tags        *[]string
	Longitude   *float64
	Latitude    *float64
	Address     *string
	Photo       *string
}

// StorePage is one stable page of the catalog listing.
type StorePage struct {
	Items    []domain.Store
	Page     int
	Pages    int
	PageSize int
	Total    int64
}

// NearQuery bounds a geospatial proximity search. Zero values fall back to the
// configured defaults.
type NearQuery struct {
	Longitude         float64
	Latitude          float64
	MaxDistanceMeters float64
	Limit             int
}

// TagBrowse is the faceted-browsing read model: the full tag frequency list
// plus the stores matching the selected tag (or all tagged stores).
type TagBrowse struct {
	Tag    string
	Tags   []domain.TagCount
	Stores []domain.Store
}

// Limits carries the configurable read-boundary constants.
type Limits struct {
	PageSize          int
	NearMaxDistance   float64
	NearLimit         int
	SearchLimit       int
	TopLimit          int
}

// DefaultLimits mirrors the observed behavior of the catalog.
func DefaultLimits() Limits {
	return Limits{
		PageSize:        4,
		NearMaxDistance: 16600,
		NearLimit:       10,
		SearchLimit:     5,
		TopLimit:        10,
	}
}

// PageOutOfRangeError signals that a listing page beyond the last one was
// requested. It is a redirect-to-last-page policy for the caller, not a
// failure.
type PageOutOfRangeError struct {
	Requested int
	LastPage  int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("page %d is beyond the last page %d", e.Requested, e.LastPage)
}

// CatalogService exposes the catalog's read and write operations to the
// transport layer.
type CatalogService interface {
	CreateStore(ctx context.Context, authorID string, cmd CreateStoreCommand) (*domain.Store, error)
	UpdateStore(ctx context.Context, userID, storeID string, cmd UpdateStoreCommand) (*domain.Store, error)
	StoreBySlug(ctx context.Context, slug string, withReviews bool) (*domain.Store, error)
	StoreByID(ctx context.Context, id string) (*domain.Store, error)
	ListStores(ctx context.Context, page int) (*StorePage, error)
	NearbyStores(ctx context.Context, q NearQuery) ([]domain.StoreSummary, error)
	SearchStores(ctx context.Context, query string, limit int) ([]domain.Store, error)
	BrowseTags(ctx context.Context, tag string) (*TagBrowse, error)
	TopStores(ctx context.Context, limit int) ([]domain.RankedStore, error)
	AddReview(ctx context.Context, authorID, storeID string, rating float64, text string) (*domain.Review, error)
	ToggleHeart(ctx context.Context, userID, storeID string) (*domain.User, error)
	HeartedStores(ctx context.Context, userID string) ([]domain.Store, error)
}
