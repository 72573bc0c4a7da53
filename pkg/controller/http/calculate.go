package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const maxRequestBody = 4 * 1024 * 1024

// handleCalculate runs the exposure calculation for a client assessment
func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		respondError(w, goerr.Wrap(err, "failed to read request body"))
		return
	}

	var req model.CalculationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, goerr.Wrap(err, "invalid JSON format", goerr.T(types.TagBadRequest)), http.StatusBadRequest)
		return
	}

	result, err := h.calculator.Calculate(r.Context(), &req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
