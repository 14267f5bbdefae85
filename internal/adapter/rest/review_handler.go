package rest

import (
	"net/http"

	"github.com/eslsoft/depictor/internal/entity"
)

type commentInput struct {
	StatementID string `json:"statement_id"`
	Comment     string `json:"comment"`
	ItemID      string `json:"item_id"`
	Username    string `json:"username"`
}

type approvalInput struct {
	Username string `json:"username"`
	ItemID   string `json:"item_id"`
	Approved bool   `json:"approved"`
}

type leadInput struct {
	Username string `json:"username"`
}

type pageResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int32 `json:"page"`
}

// GET /api/v2/comments?item_id=&username=
func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	comments, err := h.review.ListComments(r.Context(), IdentityFromContext(r.Context()), q.Get("item_id"), q.Get("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []entity.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// POST /api/v2/comments
func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var in commentInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	comment, err := h.review.AddComment(r.Context(), IdentityFromContext(r.Context()), &entity.Comment{
		StatementID: in.StatementID,
		Comment:     in.Comment,
		ItemID:      in.ItemID,
		Username:    in.Username,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// GET /api/v2/approvals?username=&item_id=
func (h *Handler) getApproval(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	approved, err := h.review.Approved(r.Context(), IdentityFromContext(r.Context()), q.Get("username"), q.Get("item_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"approved": approved})
}

// POST /api/v2/approvals
func (h *Handler) setApproval(w http.ResponseWriter, r *http.Request) {
	var in approvalInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.review.SetApproval(r.Context(), IdentityFromContext(r.Context()), in.Username, in.ItemID, in.Approved)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /api/v2/dashboard/objects?page=
func (h *Handler) annotatedObjects(w http.ResponseWriter, r *http.Request) {
	page := queryPage(r)
	objects, total, err := h.review.AnnotatedObjects(r.Context(), IdentityFromContext(r.Context()), page)
	if err != nil {
		writeError(w, err)
		return
	}
	if objects == nil {
		objects = []entity.AnnotatedObject{}
	}
	writeJSON(w, http.StatusOK, pageResponse[entity.AnnotatedObject]{Items: objects, Total: total, Page: page})
}

// GET /api/v2/dashboard/annotations?page=
func (h *Handler) userAnnotations(w http.ResponseWriter, r *http.Request) {
	page := queryPage(r)
	annotations, total, err := h.review.UserAnnotations(r.Context(), IdentityFromContext(r.Context()), page)
	if err != nil {
		writeError(w, err)
		return
	}
	if annotations == nil {
		annotations = []entity.UserAnnotation{}
	}
	writeJSON(w, http.StatusOK, pageResponse[entity.UserAnnotation]{Items: annotations, Total: total, Page: page})
}

// GET /api/v2/permissions
func (h *Handler) permissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.review.Permissions(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perms)
}

// POST /api/v2/permissions/request
func (h *Handler) requestLead(w http.ResponseWriter, r *http.Request) {
	if err := h.review.RequestLead(r.Context(), IdentityFromContext(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v2/permissions/approve
func (h *Handler) approveLead(w http.ResponseWriter, r *http.Request) {
	var in leadInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := h.review.ApproveLead(r.Context(), IdentityFromContext(r.Context()), in.Username); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
