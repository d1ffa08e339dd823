package application

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

// fakeStoreRepo is an in-memory StoreRepository that mirrors the storage
// contract: unique slug enforcement, createdAt-descending pages, and the
// regex-based slug lookup.
type fakeStoreRepo struct {
	stores map[string]*domain.Store
	nextID int
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: make(map[string]*domain.Store)}
}

// seed inserts a store directly, bypassing the service's slug generation.
func (r *fakeStoreRepo) seed(store *domain.Store) {
	r.nextID++
	stored := *store
	stored.ID = "store-" + strconv.Itoa(r.nextID)
	r.stores[stored.ID] = &stored
}

func (r *fakeStoreRepo) Create(_ context.Context, store *domain.Store) error {
	for _, existing := range r.stores {
		if strings.EqualFold(existing.Slug, store.Slug) {
			return &domain.UniquenessError{Field: "slug", Value: store.Slug}
		}
	}
	r.nextID++
	stored := *store
	stored.ID = "store-" + strconv.Itoa(r.nextID)
	r.stores[stored.ID] = &stored
	store.ID = stored.ID
	return nil
}

func (r *fakeStoreRepo) Update(_ context.Context, store *domain.Store) error {
	if _, ok := r.stores[store.ID]; !ok {
		return &domain.NotFoundError{Resource: "store", Key: store.ID}
	}
	for id, existing := range r.stores {
		if id != store.ID && strings.EqualFold(existing.Slug, store.Slug) {
			return &domain.UniquenessError{Field: "slug", Value: store.Slug}
		}
	}
	stored := *store
	r.stores[store.ID] = &stored
	return nil
}

func (r *fakeStoreRepo) FindByID(_ context.Context, id string) (*domain.Store, error) {
	store, ok := r.stores[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "store", Key: id}
	}
	copied := *store
	return &copied, nil
}

func (r *fakeStoreRepo) FindBySlug(_ context.Context, slug string, _ bool) (*domain.Store, error) {
	for _, store := range r.stores {
		if store.Slug == slug {
			copied := *store
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "store", Key: slug}
}

func (r *fakeStoreRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Store, error) {
	out := make([]domain.Store, 0, len(ids))
	for _, id := range ids {
		if store, ok := r.stores[id]; ok {
			out = append(out, *store)
		}
	}
	return out, nil
}

func (r *fakeStoreRepo) ListPage(_ context.Context, page, size int) ([]domain.Store, int64, error) {
	all := make([]domain.Store, 0, len(r.stores))
	for _, store := range r.stores {
		all = append(all, *store)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (page - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *fakeStoreRepo) FindNear(context.Context, float64, float64, float64, int) ([]domain.StoreSummary, error) {
	return nil, nil
}

func (r *fakeStoreRepo) SearchText(context.Context, string, int) ([]domain.Store, error) {
	return nil, nil
}

func (r *fakeStoreRepo) FindByTag(_ context.Context, tag string) ([]domain.Store, error) {
	out := make([]domain.Store, 0)
	for _, store := range r.stores {
		if tag == "" {
			if len(store.Tags) > 0 {
				out = append(out, *store)
			}
			continue
		}
		for _, t := range store.Tags {
			if t == tag {
				out = append(out, *store)
				break
			}
		}
	}
	return out, nil
}

// TagCounts reproduces the per-occurrence flatten-group-sort semantics of the
// storage aggregation.
func (r *fakeStoreRepo) TagCounts(context.Context) ([]domain.TagCount, error) {
	counts := make(map[string]int)
	for _, store := range r.stores {
		for _, tag := range store.Tags {
			counts[tag]++
		}
	}
	out := make([]domain.TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, domain.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

func (r *fakeStoreRepo) TopStores(_ context.Context, limit int) ([]domain.RankedStore, error) {
	if limit > len(r.stores) {
		limit = len(r.stores)
	}
	return make([]domain.RankedStore, 0, limit), nil
}

func (r *fakeStoreRepo) SlugsMatching(_ context.Context, base string) ([]string, error) {
	re := regexp.MustCompile("(?i)" + domain.SlugPattern(base))
	matches := make([]string, 0)
	for _, store := range r.stores {
		if re.MatchString(store.Slug) {
			matches = append(matches, store.Slug)
		}
	}
	return matches, nil
}

type fakeReviewRepo struct {
	reviews []domain.Review
}

func (r *fakeReviewRepo) Create(_ context.Context, review *domain.Review) error {
	review.ID = "review-" + strconv.Itoa(len(r.reviews)+1)
	r.reviews = append(r.reviews, *review)
	return nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	users := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		users[id] = &domain.User{ID: id}
	}
	return &fakeUserRepo{users: users}
}

func (r *fakeUserRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "user", Key: id}
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) ToggleHeart(_ context.Context, userID, storeID string) (*domain.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "user", Key: userID}
	}
	for i, id := range user.Hearts {
		if id == storeID {
			user.Hearts = append(user.Hearts[:i], user.Hearts[i+1:]...)
			copied := *user
			return &copied, nil
		}
	}
	user.Hearts = append(user.Hearts, storeID)
	copied := *user
	return &copied, nil
}

func newTestService(t *testing.T) (CatalogService, *fakeStoreRepo, *fakeReviewRepo, *fakeUserRepo) {
	t.Helper()
	stores := newFakeStoreRepo()
	reviews := &fakeReviewRepo{}
	users := newFakeUserRepo("user-1", "user-2")
	svc := NewCatalogService(stores, reviews, users, DefaultLimits())
	return svc, stores, reviews, users
}

func createCommand(name string) CreateStoreCommand {
	return CreateStoreCommand{
		Name:      name,
		Longitude: -74.006,
		Latitude:  40.7128,
		Address:   "123 Main St",
		Tags:      []string{"burgers"},
	}
}

func TestCreateStore_SlugSequence(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)
	second, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)
	third, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)

	assert.Equal(t, "burger-barn", first.Slug)
	assert.Equal(t, "burger-barn-2", second.Slug)
	assert.Equal(t, "burger-barn-3", third.Slug)
}

func TestCreateStore_RetriesIntoSuffixGap(t *testing.T) {
	svc, stores, _, _ := newTestService(t)
	ctx := context.Background()

	// Only the -2 variant exists, so the count-based generator also produces
	// burger-barn-2 and collides with the unique constraint.
	stores.seed(&domain.Store{
		Name:     "Burger Barn",
		Slug:     "burger-barn-2",
		AuthorID: "user-1",
	})

	store, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)
	assert.Equal(t, "burger-barn", store.Slug)

	next, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)
	assert.Equal(t, "burger-barn-3", next.Slug)
}

func TestUpdateStore_RenameRetriesIntoSuffixGap(t *testing.T) {
	svc, stores, _, _ := newTestService(t)
	ctx := context.Background()

	stores.seed(&domain.Store{
		Name:     "Taco Truck",
		Slug:     "taco-truck-2",
		AuthorID: "user-2",
	})

	store, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)

	name := "Taco Truck"
	updated, err := svc.UpdateStore(ctx, "user-1", store.ID, UpdateStoreCommand{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "taco-truck", updated.Slug)
}

func TestCreateStore_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	cmd := createCommand("  ")
	_, err := svc.CreateStore(ctx, "user-1", cmd)
	assert.True(t, domain.IsValidation(err))

	cmd = createCommand("Burger Barn")
	cmd.Address = ""
	_, err = svc.CreateStore(ctx, "user-1", cmd)
	assert.True(t, domain.IsValidation(err))
}

func TestCreateStore_UnknownAuthor(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateStore(context.Background(), "stranger", createCommand("Burger Barn"))
	assert.True(t, domain.IsValidation(err))
}

func TestCreateStore_SetsCreatedAtAndAuthor(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	store, err := svc.CreateStore(context.Background(), "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)

	assert.Equal(t, "user-1", store.AuthorID)
	assert.False(t, store.CreatedAt.IsZero())
	assert.Equal(t, domain.GeoJSONPoint, store.Location.Type)
}

func TestUpdateStore_DescriptionKeepsSlug(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	store, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)

	desc := "now with curly fries"
	updated, err := svc.UpdateStore(ctx, "user-1", store.ID, UpdateStoreCommand{Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, store.Slug, updated.Slug)
	assert.Equal(t, desc, updated.Description)
}

func TestUpdateStore_RenameRegeneratesSlug(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	store, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)

	name := "Taco Truck"
	updated, err := svc.UpdateStore(ctx, "user-1", store.ID, UpdateStoreCommand{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "taco-truck", updated.Slug)
	assert.Equal(t, "Taco Truck", updated.Name)
}

func TestUpdateStore_NonOwnerRejected(t *testing.T) {
	svc, stores, _, _ := newTestService(t)
	ctx := context.Background()

	store, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)

	desc := "hijacked"
	_, err = svc.UpdateStore(ctx, "user-2", store.ID, UpdateStoreCommand{Description: &desc})
	assert.True(t, domain.IsAuthorization(err))

	// The record is unchanged.
	unchanged, err := stores.FindByID(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "", unchanged.Description)
}

func TestUpdateStore_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	desc := "x"
	_, err := svc.UpdateStore(context.Background(), "user-1", "missing", UpdateStoreCommand{Description: &desc})
	assert.True(t, domain.IsNotFound(err))
}

func TestListStores_PageBeyondLastRedirects(t *testing.T) {
	svc, stores, _, _ := newTestService(t)
	ctx := context.Background()

	// Two pages worth of stores at the default page size of 4.
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		store := &domain.Store{
			Name:      "Store " + strconv.Itoa(i),
			Slug:      "store-" + strconv.Itoa(i),
			AuthorID:  "user-1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Location: domain.Location{
				Type:        domain.GeoJSONPoint,
				Coordinates: []float64{0, 0},
				Address:     "somewhere",
			},
		}
		require.NoError(t, stores.Create(ctx, store))
	}

	_, err := svc.ListStores(ctx, 99)
	var pageErr *PageOutOfRangeError
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, 99, pageErr.Requested)
	assert.Equal(t, 2, pageErr.LastPage)

	page, err := svc.ListStores(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, int64(7), page.Total)
}

func TestListStores_EmptyCatalogFirstPage(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	page, err := svc.ListStores(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Pages)
}

func TestListStores_NewestFirst(t *testing.T) {
	svc, stores, _, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, stores.Create(ctx, &domain.Store{
			Name:      "Store " + strconv.Itoa(i),
			Slug:      "store-" + strconv.Itoa(i),
			AuthorID:  "user-1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page, err := svc.ListStores(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Store 2", page.Items[0].Name)
	assert.Equal(t, "Store 0", page.Items[2].Name)
}

func TestBrowseTags_CountsAndFilter(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	mk := func(name string, tags ...string) {
		cmd := createCommand(name)
		cmd.Tags = tags
		_, err := svc.CreateStore(ctx, "user-1", cmd)
		require.NoError(t, err)
	}
	mk("Alpha", "a", "b")
	mk("Beta", "a")
	mk("Gamma", "b", "b")
	mk("Delta")

	browse, err := svc.BrowseTags(ctx, "")
	require.NoError(t, err)

	// Per-occurrence counting: the duplicate tag inside one store counts twice.
	require.Len(t, browse.Tags, 2)
	assert.Equal(t, domain.TagCount{Tag: "b", Count: 3}, browse.Tags[0])
	assert.Equal(t, domain.TagCount{Tag: "a", Count: 2}, browse.Tags[1])

	// No tag selected: every store with at least one tag.
	assert.Len(t, browse.Stores, 3)

	browse, err = svc.BrowseTags(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, browse.Stores, 2)
}

func TestAddReview(t *testing.T) {
	svc, _, reviews, _ := newTestService(t)
	ctx := context.Background()

	store, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)

	review, err := svc.AddReview(ctx, "user-2", store.ID, 4, "solid burgers")
	require.NoError(t, err)
	assert.Equal(t, store.ID, review.StoreID)
	assert.Equal(t, "user-2", review.AuthorID)
	require.Len(t, reviews.reviews, 1)

	_, err = svc.AddReview(ctx, "user-2", store.ID, 9, "")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.AddReview(ctx, "user-2", "missing", 4, "")
	assert.True(t, domain.IsNotFound(err))
}

func TestToggleHeart(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	store, err := svc.CreateStore(ctx, "user-1", createCommand("Burger Barn"))
	require.NoError(t, err)

	user, err := svc.ToggleHeart(ctx, "user-2", store.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{store.ID}, user.Hearts)

	hearted, err := svc.HeartedStores(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, hearted, 1)
	assert.Equal(t, store.ID, hearted[0].ID)

	user, err = svc.ToggleHeart(ctx, "user-2", store.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Hearts)
}

func TestSearchStores_BlankQuery(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	results, err := svc.SearchStores(context.Background(), "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
