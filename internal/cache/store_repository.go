package cache

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tastemap/catalog-api/internal/catalog/application"
	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

const (
	tagCountsKey = "catalog:tags"
	topStoresKey = "catalog:top"
)

// StoreRepository decorates a store repository with read-through caching for
// the two aggregation queries, which are the most expensive reads and the
// slowest to change. Writes invalidate both keys. Cache failures degrade to
// the underlying repository and are logged, never surfaced.
type StoreRepository struct {
	application.StoreRepository

	cache    *Cache
	logger   *zap.Logger
	topLimit int
}

// NewStoreRepository wraps inner with caching. Only TopStores calls at
// topLimit are cached; other limits pass through.
func NewStoreRepository(inner application.StoreRepository, cache *Cache, logger *zap.Logger, topLimit int) *StoreRepository {
	return &StoreRepository{
		StoreRepository: inner,
		cache:           cache,
		logger:          logger,
		topLimit:        topLimit,
	}
}

func (r *StoreRepository) TagCounts(ctx context.Context) ([]domain.TagCount, error) {
	var cached []domain.TagCount
	err := r.cache.GetJSON(ctx, tagCountsKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		r.logger.Warn("tag count cache read failed", zap.Error(err))
	}

	counts, err := r.StoreRepository.TagCounts(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, tagCountsKey, counts); err != nil {
		r.logger.Warn("tag count cache write failed", zap.Error(err))
	}
	return counts, nil
}

func (r *StoreRepository) TopStores(ctx context.Context, limit int) ([]domain.RankedStore, error) {
	if limit != r.topLimit {
		return r.StoreRepository.TopStores(ctx, limit)
	}

	var cached []domain.RankedStore
	err := r.cache.GetJSON(ctx, topStoresKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		r.logger.Warn("top store cache read failed", zap.Error(err))
	}

	ranked, err := r.StoreRepository.TopStores(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, topStoresKey, ranked); err != nil {
		r.logger.Warn("top store cache write failed", zap.Error(err))
	}
	return ranked, nil
}

func (r *StoreRepository) Create(ctx context.Context, store *domain.Store) error {
	if err := r.StoreRepository.Create(ctx, store); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *StoreRepository) Update(ctx context.Context, store *domain.Store) error {
	if err := r.StoreRepository.Update(ctx, store); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *StoreRepository) invalidate(ctx context.Context) {
	if err := r.cache.Invalidate(ctx, tagCountsKey, topStoresKey); err != nil {
		r.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}

// ReviewRepository decorates the review write path. A new review changes the
// average behind TopStores, so the ranking key is dropped on every append.
// Tag counts are untouched by reviews and keep their entry.
type ReviewRepository struct {
	application.ReviewRepository

	cache  *Cache
	logger *zap.Logger
}

func NewReviewRepository(inner application.ReviewRepository, cache *Cache, logger *zap.Logger) *ReviewRepository {
	return &ReviewRepository{
		ReviewRepository: inner,
		cache:            cache,
		logger:           logger,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if err := r.ReviewRepository.Create(ctx, review); err != nil {
		return err
	}
	if err := r.cache.Invalidate(ctx, topStoresKey); err != nil {
		r.logger.Warn("cache invalidation failed", zap.Error(err))
	}
	return nil
}
