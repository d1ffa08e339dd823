package public

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tastemap/catalog-api/internal/catalog/application"
)

const handlerTimeout = 5 * time.Second

// Handler wires public HTTP endpoints to the catalog service.
type Handler struct {
	logger  *zap.Logger
	catalog application.CatalogService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger  *zap.Logger
	Catalog application.CatalogService
}

// NewHandler constructs the public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:  cfg.Logger,
		catalog: cfg.Catalog,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/stores", h.storeListHandler())
	r.Get("/stores/top", h.storeTopHandler())
	r.Get("/stores/near", h.storeNearHandler())
	r.Get("/stores/search", h.storeSearchHandler())
	r.Get("/stores/{slug}", h.storeDetailHandler())
	r.Get("/tags", h.tagBrowseHandler())
	r.Get("/tags/{tag}", h.tagBrowseHandler())

	r.With(authMiddleware).Post("/stores", h.storeCreateHandler())
	r.With(authMiddleware).Patch("/stores/{id}", h.storeUpdateHandler())
	r.With(authMiddleware).Post("/stores/{id}/reviews", h.reviewCreateHandler())
	r.With(authMiddleware).Post("/stores/{id}/heart", h.heartToggleHandler())
	r.With(authMiddleware).Get("/hearts", h.heartListHandler())
}
