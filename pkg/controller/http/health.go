package http

import (
	"net/http"
	"time"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

// handleRoot describes the service
func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := &model.ServiceInfo{
		Name:    "PRISM Brain API",
		Version: types.Version + " (Live Probabilities)",
		Status:  "operational",
		Features: []string{
			"Live probability updates from 5 external sources",
			"Complete audit trail for every update",
			"Signal aggregation and analysis",
			"13-risk database with cascading analysis",
			"Real-time risk intelligence",
		},
	}
	writeJSON(w, r, http.StatusOK, info)
}

// handleHealth reports storage counters and the calculator version
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	risks, err := h.repo.CountRisks(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	updates, err := h.repo.CountUpdates(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	signals, err := h.repo.CountSignals(ctx)
	if err != nil {
		respondError(w, err)
		return
	}

	status := &model.HealthStatus{
		Status:            "healthy",
		Timestamp:         time.Now().UTC(),
		RisksLoaded:       risks,
		TotalUpdates:      updates,
		TotalSignals:      signals,
		CalculatorVersion: types.Version,
	}
	writeJSON(w, r, http.StatusOK, status)
}
