package http

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const defaultHistoryLimit = 50

var errInvalidLimit = goerr.New("limit must be a positive integer", goerr.T(types.TagBadRequest))

type liveRisksResponse struct {
	Risks      []model.LiveRisk `json:"risks"`
	TotalCount int              `json:"total_count"`
	Timestamp  time.Time        `json:"timestamp"`
}

// handleLiveRisks returns the full catalog with live probabilities, highest
// first
func (h *handler) handleLiveRisks(w http.ResponseWriter, r *http.Request) {
	risks, err := h.repo.ListRisks(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	live := make([]model.LiveRisk, 0, len(risks))
	for _, risk := range risks {
		live = append(live, risk.ToLive())
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].ProbabilityLive > live[j].ProbabilityLive
	})

	writeJSON(w, r, http.StatusOK, &liveRisksResponse{
		Risks:      live,
		TotalCount: len(live),
		Timestamp:  time.Now().UTC(),
	})
}

// handleRisk returns a single catalog risk
func (h *handler) handleRisk(w http.ResponseWriter, r *http.Request) {
	riskID := types.RiskID(chi.URLParam(r, "riskID"))

	risk, err := h.repo.GetRisk(r.Context(), riskID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, risk.ToLive())
}

type riskHistoryResponse struct {
	RiskID       types.RiskID               `json:"risk_id"`
	RiskName     string                     `json:"risk_name"`
	Updates      []*model.ProbabilityUpdate `json:"updates"`
	TotalUpdates int                        `json:"total_updates"`
}

// handleRiskHistory returns the audit trail of a single risk, newest first
func (h *handler) handleRiskHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	riskID := types.RiskID(chi.URLParam(r, "riskID"))

	risk, err := h.repo.GetRisk(ctx, riskID)
	if err != nil {
		respondError(w, err)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, errInvalidLimit, http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	updates, err := h.repo.ListUpdates(ctx, riskID, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	if updates == nil {
		updates = []*model.ProbabilityUpdate{}
	}

	writeJSON(w, r, http.StatusOK, &riskHistoryResponse{
		RiskID:       riskID,
		RiskName:     risk.Name,
		Updates:      updates,
		TotalUpdates: len(updates),
	})
}

type domainsResponse struct {
	Domains []model.DomainStats `json:"domains"`
}

// handleDomains aggregates catalog risks per domain
func (h *handler) handleDomains(w http.ResponseWriter, r *http.Request) {
	risks, err := h.repo.ListRisks(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	order := []model.Domain{
		model.DomainPhysical,
		model.DomainStructural,
		model.DomainDigital,
		model.DomainOperational,
	}
	byDomain := make(map[model.Domain]*model.DomainStats)
	for _, risk := range risks {
		stats, ok := byDomain[risk.Domain]
		if !ok {
			stats = &model.DomainStats{Domain: risk.Domain}
			byDomain[risk.Domain] = stats
		}
		stats.RiskCount++
		stats.Risks = append(stats.Risks, model.DomainRiskStat{
			ID:                  risk.ID.String(),
			Name:                risk.Name,
			ProbabilityBaseline: risk.ProbabilityBaseline,
			ProbabilityLive:     risk.ProbabilityLive,
		})
	}

	var domains []model.DomainStats
	for _, domain := range order {
		stats, ok := byDomain[domain]
		if !ok {
			continue
		}
		var baselineSum, liveSum float64
		for _, rs := range stats.Risks {
			baselineSum += rs.ProbabilityBaseline
			liveSum += rs.ProbabilityLive
		}
		n := float64(stats.RiskCount)
		stats.AvgProbabilityBaseline = math.Round(baselineSum/n*10) / 10
		stats.AvgProbabilityLive = math.Round(liveSum/n*10) / 10
		domains = append(domains, *stats)
	}

	writeJSON(w, r, http.StatusOK, &domainsResponse{Domains: domains})
}
