package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const defaultSignalWindowHours = 24

var errInvalidHours = goerr.New("hours must be a positive integer", goerr.T(types.TagBadRequest))

type recentSignalsResponse struct {
	Signals        []model.Signal            `json:"signals"`
	TotalCount     int                       `json:"total_count"`
	BySource       map[string][]model.Signal `json:"by_source"`
	TimeRangeHours int                       `json:"time_range_hours"`
}

// handleRecentSignals returns signals observed within the requested window,
// grouped by source
func (h *handler) handleRecentSignals(w http.ResponseWriter, r *http.Request) {
	hours := defaultSignalWindowHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, errInvalidHours, http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	signals, err := h.repo.RecentSignals(r.Context(), cutoff)
	if err != nil {
		respondError(w, err)
		return
	}
	if signals == nil {
		signals = []model.Signal{}
	}

	bySource := make(map[string][]model.Signal)
	for _, signal := range signals {
		bySource[signal.Source] = append(bySource[signal.Source], signal)
	}

	writeJSON(w, r, http.StatusOK, &recentSignalsResponse{
		Signals:        signals,
		TotalCount:     len(signals),
		BySource:       bySource,
		TimeRangeHours: hours,
	})
}
