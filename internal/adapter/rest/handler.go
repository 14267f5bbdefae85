// Package rest exposes the annotation workflow as a JSON API and a IIIF annotation list.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/eslsoft/depictor/internal/usecase"
)

// Handler serves the HTTP API on top of the usecases.
type Handler struct {
	depicteds  usecase.DepictedUsecase
	items      usecase.ItemUsecase
	staging    usecase.StagingUsecase
	edits      usecase.EditUsecase
	promotions usecase.PromotionUsecase
	review     usecase.ReviewUsecase
}

func NewHandler(depicteds usecase.DepictedUsecase, items usecase.ItemUsecase, staging usecase.StagingUsecase,
	edits usecase.EditUsecase, promotions usecase.PromotionUsecase, review usecase.ReviewUsecase) *Handler {
	return &Handler{
		depicteds:  depicteds,
		items:      items,
		staging:    staging,
		edits:      edits,
		promotions: promotions,
		review:     review,
	}
}

// NewRouter mounts every route. Middlewares run before identity resolution.
func NewRouter(h *Handler, auth *Authenticator, middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares...)
	r.Use(denyFraming, auth.Identify)

	// Read-only views are embedded by other IIIF viewers and sites.
	public := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	}).Handler

	r.With(public).Get("/iiif/{itemId}/{propertyId}/list/annotations.json", h.annotationList)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(public).Get("/items/{itemId}/depicteds", h.listDepicteds)
		r.Get("/items/{itemId}", h.getItem)

		r.Group(func(r chi.Router) {
			r.Use(auth.Protect)
			r.Post("/statements", h.addStatement)
			r.Delete("/statements/{statementId}", h.deleteStatement)
			r.Post("/remote/statements", h.addRemoteStatement)
		})
	})

	r.Route("/api/v2", func(r chi.Router) {
		r.Use(auth.Protect)

		r.Post("/qualifiers", h.addQualifier)
		r.Delete("/qualifiers/{statementId}", h.deleteQualifier)
		r.Post("/remote/qualifiers", h.setRemoteQualifier)

		r.Post("/promotions", h.promote)

		r.Get("/comments", h.listComments)
		r.Post("/comments", h.addComment)
		r.Get("/approvals", h.getApproval)
		r.Post("/approvals", h.setApproval)

		r.Get("/dashboard/objects", h.annotatedObjects)
		r.Get("/dashboard/annotations", h.userAnnotations)

		r.Get("/permissions", h.permissions)
		r.Post("/permissions/request", h.requestLead)
		r.Post("/permissions/approve", h.approveLead)
	})

	return r
}
