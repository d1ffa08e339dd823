package public

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/tastemap/catalog-api/internal/catalog/application"
	"github.com/tastemap/catalog-api/internal/interfaces/http/common"
)

func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		page, _ := common.ParsePositiveInt(r.URL.Query().Get("page"), 1)

		result, err := h.catalog.ListStores(ctx, page)
		if err != nil {
			var outOfRange *application.PageOutOfRangeError
			if errors.As(err, &outOfRange) {
				http.Redirect(w, r, fmt.Sprintf("/stores?page=%d", outOfRange.LastPage), http.StatusSeeOther)
				return
			}
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, storePageResponse{
			Stores:   toStoreResponses(result.Items),
			Page:     result.Page,
			Pages:    result.Pages,
			PageSize: result.PageSize,
			Total:    result.Total,
		})
	}
}

func (h *Handler) storeTopHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), 0)

		ranked, err := h.catalog.TopStores(ctx, limit)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		out := make([]rankedStoreResponse, 0, len(ranked))
		for _, store := range ranked {
			out = append(out, rankedStoreResponse{
				Slug:          store.Slug,
				Name:          store.Name,
				Photo:         store.Photo,
				ReviewCount:   len(store.Reviews),
				AverageRating: store.AverageRating,
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stores": out})
	}
}

func (h *Handler) storeNearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		query := r.URL.Query()
		lng, lngOK := common.ParseFloat(query.Get("lng"))
		lat, latOK := common.ParseFloat(query.Get("lat"))
		if !lngOK || !latOK {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "lng and lat are required"})
			return
		}

		maxDistance, _ := common.ParseFloat(query.Get("maxDistance"))
		limit, _ := common.ParsePositiveInt(query.Get("limit"), 0)

		summaries, err := h.catalog.NearbyStores(ctx, application.NearQuery{
			Longitude:         lng,
			Latitude:          lat,
			MaxDistanceMeters: maxDistance,
			Limit:             limit,
		})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		out := make([]storeSummaryResponse, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, storeSummaryResponse{
				Slug:        s.Slug,
				Name:        s.Name,
				Description: s.Description,
				Location:    toLocationResponse(s.Location),
				Photo:       s.Photo,
			})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stores": out})
	}
}

func (h *Handler) storeSearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		query := r.URL.Query()
		limit, _ := common.ParsePositiveInt(query.Get("limit"), 0)

		stores, err := h.catalog.SearchStores(ctx, query.Get("q"), limit)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stores": toStoreResponses(stores)})
	}
}

func (h *Handler) storeDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		slug := chi.URLParam(r, "slug")
		withReviews := r.URL.Query().Get("withReviews") == "true"

		store, err := h.catalog.StoreBySlug(ctx, slug, withReviews)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toStoreResponse(*store))
	}
}

func (h *Handler) storeCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		var req createStoreRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		store, err := h.catalog.CreateStore(ctx, user.ID, application.CreateStoreCommand{
			Name:        req.Name,
			Description: req.Description,
			Tags:        req.Tags,
			Longitude:   req.Longitude,
			Latitude:    req.Latitude,
			Address:     req.Address,
			Photo:       req.Photo,
		})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusCreated, toStoreResponse(*store))
	}
}

func (h *Handler) storeUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		var req updateStoreRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		store, err := h.catalog.UpdateStore(ctx, user.ID, chi.URLParam(r, "id"), application.UpdateStoreCommand{
			Name:        req.Name,
			Description: req.Description,
			Tags:        req.Tags,
			Longitude:   req.Longitude,
			Latitude:    req.Latitude,
			Address:     req.Address,
			Photo:       req.Photo,
		})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toStoreResponse(*store))
	}
}
