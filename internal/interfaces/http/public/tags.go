package public

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tastemap/catalog-api/internal/interfaces/http/common"
)

func (h *Handler) tagBrowseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		browse, err := h.catalog.BrowseTags(ctx, chi.URLParam(r, "tag"))
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		tags := make([]tagCountResponse, 0, len(browse.Tags))
		for _, count := range browse.Tags {
			tags = append(tags, tagCountResponse{Tag: count.Tag, Count: count.Count})
		}
		common.WriteJSON(h.logger, w, http.StatusOK, tagBrowseResponse{
			Tag:    browse.Tag,
			Tags:   tags,
			Stores: toStoreResponses(browse.Stores),
		})
	}
}
