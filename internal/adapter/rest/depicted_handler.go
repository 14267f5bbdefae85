package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/eslsoft/depictor/internal/adapter/mapping"
	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/usecase"
)

func depictedQuery(r *http.Request) usecase.DepictedQuery {
	return usecase.DepictedQuery{
		ItemID:    chi.URLParam(r, "itemId"),
		Identity:  IdentityFromContext(r.Context()),
		Languages: languages(r),
		LocalOnly: queryBool(r, "local_only"),
		Username:  r.URL.Query().Get("username"),
	}
}

// GET /api/v1/items/{itemId}/depicteds?local_only=&username=
func (h *Handler) listDepicteds(w http.ResponseWriter, r *http.Request) {
	depicteds, err := h.depicteds.List(r.Context(), depictedQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"depicteds": mapping.ToDepicteds(depicteds)})
}

// GET /api/v1/items/{itemId}
func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.Get(r.Context(), depictedQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToItem(item))
}

// GET /iiif/{itemId}/{propertyId}/list/annotations.json
func (h *Handler) annotationList(w http.ResponseWriter, r *http.Request) {
	query := depictedQuery(r)
	query.LocalOnly, query.Username = false, ""
	item, err := h.items.Get(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	propertyID := chi.URLParam(r, "propertyId")
	item.Depicteds = lo.Filter(item.Depicteds, func(d entity.Depicted, _ int) bool {
		return d.PropertyID == propertyID
	})
	writeJSON(w, http.StatusOK, mapping.ToAnnotationList(requestURL(r), item))
}

// requestURL is the external URL of r, honouring the proxy's X-Forwarded-Proto.
func requestURL(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	return scheme + "://" + r.Host + r.URL.Path
}
