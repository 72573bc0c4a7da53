package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

type updateRunResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Result  *model.UpdateRunResult `json:"result"`
}

// handleProbabilityUpdate runs a full signal collection and probability
// update pass
func (h *handler) handleProbabilityUpdate(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.UpdateAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, r, http.StatusOK, &updateRunResponse{
		Status:  "completed",
		Message: "Probability update completed",
		Result:  result,
	})
}

// handleAuditRecord returns the full audit record of one probability update
func (h *handler) handleAuditRecord(w http.ResponseWriter, r *http.Request) {
	updateID := types.UpdateID(chi.URLParam(r, "updateID"))

	update, err := h.repo.GetUpdate(r.Context(), updateID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, update)
}
