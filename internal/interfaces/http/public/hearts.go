package public

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tastemap/catalog-api/internal/interfaces/http/common"
)

func (h *Handler) heartToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		updated, err := h.catalog.ToggleHeart(ctx, user.ID, chi.URLParam(r, "id"))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, toUserResponse(*updated))
	}
}

func (h *Handler) heartListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		stores, err := h.catalog.HeartedStores(ctx, user.ID)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"stores": toStoreResponses(stores)})
	}
}
