package application

import (
	"context"
	"strings"
	"time"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

// catalogService implements CatalogService on top of the repository ports.
type catalogService struct {
	stores  StoreRepository
	reviews ReviewRepository
	users   UserRepository
	limits  Limits
	now     func() time.Time
}

// NewCatalogService wires the repositories into a CatalogService.
func NewCatalogService(stores StoreRepository, reviews ReviewRepository, users UserRepository, limits Limits) CatalogService {
	if limits.PageSize <= 0 {
		limits = DefaultLimits()
	}
	return &catalogService{
		stores:  stores,
		reviews: reviews,
		users:   users,
		limits:  limits,
		now:     time.Now,
	}
}

// ConfirmOwner verifies that userID owns the store.
func ConfirmOwner(store *domain.Store, userID string) error {
	if store.AuthorID != userID {
		return &domain.AuthorizationError{Reason: "you are not the author of this store"}
	}
	return nil
}

func (s *catalogService) CreateStore(ctx context.Context, authorID string, cmd CreateStoreCommand) (*domain.Store, error) {
	store := &domain.Store{
		Name:        cmd.Name,
		Description: cmd.Description,
		Tags:        append([]string{}, cmd.Tags...),
		Location: domain.Location{
			Type:        domain.GeoJSONPoint,
			Coordinates: []float64{cmd.Longitude, cmd.Latitude},
			Address:     cmd.Address,
		},
		Photo:     cmd.Photo,
		AuthorID:  strings.TrimSpace(authorID),
		CreatedAt: s.now().UTC(),
	}
	store.Normalize()
	if err := store.Validate(); err != nil {
		return nil, err
	}

	// Best-effort referential check; the identity store is the source of truth.
	exists, err := s.users.Exists(ctx, store.AuthorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &domain.ValidationError{Field: "author", Reason: "author does not reference a known user"}
	}

	generated, err := domain.GenerateSlug(ctx, store.Name, s.stores.SlugsMatching)
	if err != nil {
		return nil, err
	}
	store.Slug = generated

	if err := s.stores.Create(ctx, store); err != nil {
		if !domain.IsUniqueness(err) {
			return nil, err
		}
		// The count-based scheme lost a race or hit a gap in the suffix
		// sequence; re-read the taken set and take the smallest free suffix.
		base := domain.Slugify(store.Name)
		taken, lookupErr := s.stores.SlugsMatching(ctx, base)
		if lookupErr != nil {
			return nil, lookupErr
		}
		store.Slug = domain.NextFreeSlug(base, taken)
		if err := s.stores.Create(ctx, store); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *catalogService) UpdateStore(ctx context.Context, userID, storeID string, cmd UpdateStoreCommand) (*domain.Store, error) {
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if err := ConfirmOwner(store, userID); err != nil {
		return nil, err
	}

	nameChanged := false
	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) != store.Name {
		store.Name = *cmd.Name
		nameChanged = true
	}
	if cmd.Description != nil {
		store.Description = *cmd.Description
	}
	if cmd.Tags != nil {
		store.Tags = append([]string{}, (*cmd.Tags)...)
	}
	if cmd.Longitude != nil && cmd.Latitude != nil {
		store.Location.Coordinates = []float64{*cmd.Longitude, *cmd.Latitude}
	}
	if cmd.Address != nil {
		store.Location.Address = *cmd.Address
	}
	if cmd.Photo != nil {
		store.Photo = *cmd.Photo
	}

	store.Normalize()
	if err := store.Validate(); err != nil {
		return nil, err
	}

	// The slug is regenerated only when the name changed; it is immutable
	// otherwise.
	if nameChanged {
		generated, err := domain.GenerateSlug(ctx, store.Name, s.stores.SlugsMatching)
		if err != nil {
			return nil, err
		}
		store.Slug = generated
	}
	store.UpdatedAt = s.now().UTC()

	if err := s.stores.Update(ctx, store); err != nil {
		if !domain.IsUniqueness(err) || !nameChanged {
			return nil, err
		}
		base := domain.Slugify(store.Name)
		taken, lookupErr := s.stores.SlugsMatching(ctx, base)
		if lookupErr != nil {
			return nil, lookupErr
		}
		store.Slug = domain.NextFreeSlug(base, taken)
		if err := s.stores.Update(ctx, store); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *catalogService) StoreBySlug(ctx context.Context, slug string, withReviews bool) (*domain.Store, error) {
	return s.stores.FindBySlug(ctx, strings.TrimSpace(slug), withReviews)
}

func (s *catalogService) StoreByID(ctx context.Context, id string) (*domain.Store, error) {
	return s.stores.FindByID(ctx, strings.TrimSpace(id))
}

func (s *catalogService) ListStores(ctx context.Context, page int) (*StorePage, error) {
	if page < 1 {
		page = 1
	}
	size := s.limits.PageSize

	items, total, err := s.stores.ListPage(ctx, page, size)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(size) - 1) / int64(size))
	if page > pages && pages > 0 {
		return nil, &PageOutOfRangeError{Requested: page, LastPage: pages}
	}

	return &StorePage{
		Items:    items,
		Page:     page,
		Pages:    pages,
		PageSize: size,
		Total:    total,
	}, nil
}

func (s *catalogService) NearbyStores(ctx context.Context, q NearQuery) ([]domain.StoreSummary, error) {
	if q.MaxDistanceMeters <= 0 {
		q.MaxDistanceMeters = s.limits.NearMaxDistance
	}
	if q.Limit <= 0 {
		q.Limit = s.limits.NearLimit
	}
	return s.stores.FindNear(ctx, q.Longitude, q.Latitude, q.MaxDistanceMeters, q.Limit)
}

func (s *catalogService) SearchStores(ctx context.Context, query string, limit int) ([]domain.Store, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Store{}, nil
	}
	if limit <= 0 {
		limit = s.limits.SearchLimit
	}
	return s.stores.SearchText(ctx, query, limit)
}

func (s *catalogService) BrowseTags(ctx context.Context, tag string) (*TagBrowse, error) {
	tag = strings.TrimSpace(tag)

	counts, err := s.stores.TagCounts(ctx)
	if err != nil {
		return nil, err
	}
	stores, err := s.stores.FindByTag(ctx, tag)
	if err != nil {
		return nil, err
	}

	return &TagBrowse{Tag: tag, Tags: counts, Stores: stores}, nil
}

func (s *catalogService) TopStores(ctx context.Context, limit int) ([]domain.RankedStore, error) {
	if limit <= 0 {
		limit = s.limits.TopLimit
	}
	return s.stores.TopStores(ctx, limit)
}

func (s *catalogService) AddReview(ctx context.Context, authorID, storeID string, rating float64, text string) (*domain.Review, error) {
	store, err := s.stores.FindByID(ctx, strings.TrimSpace(storeID))
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		StoreID:   store.ID,
		AuthorID:  strings.TrimSpace(authorID),
		Rating:    rating,
		Text:      strings.TrimSpace(text),
		CreatedAt: s.now().UTC(),
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *catalogService) ToggleHeart(ctx context.Context, userID, storeID string) (*domain.User, error) {
	store, err := s.stores.FindByID(ctx, strings.TrimSpace(storeID))
	if err != nil {
		return nil, err
	}
	return s.users.ToggleHeart(ctx, strings.TrimSpace(userID), store.ID)
}

func (s *catalogService) HeartedStores(ctx context.Context, userID string) ([]domain.Store, error) {
	user, err := s.users.FindByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	if len(user.Hearts) == 0 {
		return []domain.Store{}, nil
	}
	return s.stores.FindByIDs(ctx, user.Hearts)
}
