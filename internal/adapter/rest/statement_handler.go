package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eslsoft/depictor/internal/adapter/mapping"
	"github.com/eslsoft/depictor/internal/entity"
)

type statementResponse struct {
	StatementID  string            `json:"statement_id"`
	Depicted     *mapping.Depicted `json:"depicted"`
	DepictedLink string            `json:"depicted_link"`
}

func newStatementResponse(d *entity.Depicted) statementResponse {
	return statementResponse{
		StatementID:  d.StatementID,
		Depicted:     mapping.ToDepicted(d),
		DepictedLink: mapping.DepictedLink(d),
	}
}

type qualifierInput struct {
	StatementID   string `json:"statement_id"`
	IIIFRegion    string `json:"iiif_region"`
	QualifierHash string `json:"qualifier_hash"`
}

type qualifierResponse struct {
	StatementID   string `json:"statement_id"`
	IIIFRegion    string `json:"iiif_region"`
	QualifierHash string `json:"qualifier_hash"`
}

// POST /api/v1/statements
func (h *Handler) addStatement(w http.ResponseWriter, r *http.Request) {
	var in mapping.StatementInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	depicted, err := h.staging.AddStatement(r.Context(), IdentityFromContext(r.Context()), mapping.FromStatementInput(&in), languages(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newStatementResponse(depicted))
}

// DELETE /api/v1/statements/{statementId}
func (h *Handler) deleteStatement(w http.ResponseWriter, r *http.Request) {
	id, err := entity.ParseStatementID(chi.URLParam(r, "statementId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.staging.DeleteStatement(r.Context(), IdentityFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/remote/statements
func (h *Handler) addRemoteStatement(w http.ResponseWriter, r *http.Request) {
	var in mapping.StatementInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	depicted, err := h.edits.AddRemoteStatement(r.Context(), IdentityFromContext(r.Context()), mapping.FromStatementInput(&in), languages(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newStatementResponse(depicted))
}

// POST /api/v2/qualifiers
func (h *Handler) addQualifier(w http.ResponseWriter, r *http.Request) {
	var in qualifierInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	q, err := h.staging.AddQualifier(r.Context(), IdentityFromContext(r.Context()), in.StatementID, in.IIIFRegion, in.QualifierHash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, qualifierResponse{
		StatementID:   q.StatementRef,
		IIIFRegion:    q.Region.String(),
		QualifierHash: q.Hash,
	})
}

// DELETE /api/v2/qualifiers/{statementId}
func (h *Handler) deleteQualifier(w http.ResponseWriter, r *http.Request) {
	id, err := entity.ParseStatementID(chi.URLParam(r, "statementId"))
	if err != nil {
		writeError(w, err)
		return
	}
	depicted, err := h.staging.DeleteQualifier(r.Context(), IdentityFromContext(r.Context()), id, languages(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatementResponse(depicted))
}

// POST /api/v2/remote/qualifiers
func (h *Handler) setRemoteQualifier(w http.ResponseWriter, r *http.Request) {
	var in qualifierInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	hash, err := h.edits.SetRemoteQualifier(r.Context(), IdentityFromContext(r.Context()), in.StatementID, in.IIIFRegion, in.QualifierHash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, qualifierResponse{
		StatementID:   in.StatementID,
		IIIFRegion:    strings.TrimSpace(in.IIIFRegion),
		QualifierHash: hash,
	})
}

type promotionInput struct {
	ItemID string `json:"item_id"`
}

type promotionResponse struct {
	Message string                  `json:"message"`
	Report  *entity.PromotionReport `json:"report"`
}

// POST /api/v2/promotions
func (h *Handler) promote(w http.ResponseWriter, r *http.Request) {
	var in promotionInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	report, err := h.promotions.Promote(r.Context(), IdentityFromContext(r.Context()), in.ItemID)
	if err != nil {
		writeError(w, err)
		return
	}
	message := "Nothing to upload."
	if n := report.Uploaded(); n > 0 {
		message = fmt.Sprintf("Uploaded %d annotation(s) for %s.", n, report.ItemID)
	}
	writeJSON(w, http.StatusOK, promotionResponse{Message: message, Report: report})
}
