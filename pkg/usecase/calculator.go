package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const annualizationDays = 365.0

type exposureCalculator struct {
	repo interfaces.Repository
}

// NewCalculator creates a new ExposureCalculator backed by the risk catalog
func NewCalculator(repo interfaces.Repository) interfaces.ExposureCalculator {
	return &exposureCalculator{repo: repo}
}

// baseExposure computes the annual exposure of one process/risk pair:
// criticality/day x vulnerability x (1 - resilience) x probability x 365.
// Percentage inputs are 0-100.
func baseExposure(criticalityEUR, vulnerability, resilience, probability float64) float64 {
	v := vulnerability / 100.0
	r := resilience / 100.0
	p := probability / 100.0
	return criticalityEUR * v * (1.0 - r) * p * annualizationDays
}

// cascadingExposure computes the downstream impact of an upstream exposure:
// upstream x dependency strength x (1 - downstream resilience).
func cascadingExposure(upstream, dependencyStrength, downstreamResilience float64) float64 {
	r := downstreamResilience / 100.0
	return upstream * dependencyStrength * (1.0 - r)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Calculate computes exposures for a client assessment against the live
// risk catalog. Assessments referencing unknown processes or risks are
// skipped. Cascading impact is applied only when requested and only where
// the downstream process carries an assessment for the same risk.
func (uc *exposureCalculator) Calculate(ctx context.Context, req *model.CalculationRequest) (*model.CalculationResult, error) {
	logger := ctxlog.From(ctx)

	risks, err := uc.repo.ListRisks(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load risk catalog")
	}

	riskLookup := make(map[types.RiskID]*model.Risk, len(risks))
	for _, r := range risks {
		riskLookup[r.ID] = r
	}

	client := &req.ClientData
	processLookup := make(map[string]*model.Process, len(client.Processes))
	for i := range client.Processes {
		processLookup[client.Processes[i].ID] = &client.Processes[i]
	}

	var exposures []model.Exposure
	for _, assessment := range client.Assessments {
		process, okP := processLookup[assessment.ProcessID]
		risk, okR := riskLookup[assessment.RiskID]
		if !okP || !okR {
			logger.Debug("Skipping assessment with unknown reference",
				"process_id", assessment.ProcessID,
				"risk_id", assessment.RiskID,
			)
			continue
		}

		base := baseExposure(
			process.CriticalityEURPerDay,
			assessment.Vulnerability,
			assessment.Resilience,
			risk.ProbabilityLive,
		)

		var cascading float64
		if req.UseCascading {
			cascading = uc.cascadeFor(client, &assessment, base)
		}

		exposures = append(exposures, model.Exposure{
			RiskID:               risk.ID,
			RiskName:             risk.Name,
			Domain:               risk.Domain,
			ProcessID:            process.ID,
			ProcessName:          process.Name,
			Criticality:          process.CriticalityEURPerDay,
			Vulnerability:        assessment.Vulnerability,
			Resilience:           assessment.Resilience,
			Probability:          risk.ProbabilityLive,
			BaseExposureEUR:      roundCents(base),
			CascadingExposureEUR: roundCents(cascading),
			TotalExposureEUR:     roundCents(base + cascading),
			ConfidenceLevel:      risk.ConfidenceLevel,
		})
	}

	sort.SliceStable(exposures, func(i, j int) bool {
		return exposures[i].TotalExposureEUR > exposures[j].TotalExposureEUR
	})

	result := &model.CalculationResult{
		Exposures:            exposures,
		Summary:              summarize(exposures),
		ByDomain:             aggregateByDomain(exposures),
		ByProcess:            aggregateByProcess(exposures),
		CalculationTimestamp: time.Now(),
		ClientName:           client.ClientName,
		Industry:             client.Industry,
		Geography:            client.Geography,
	}

	logger.Info("Exposure calculation completed",
		"client", client.ClientName,
		"pairs", len(exposures),
		"total_exposure_eur", result.Summary.TotalOverallExposure,
		"cascading", req.UseCascading,
	)

	return result, nil
}

// cascadeFor sums the cascading impact of one assessed process over every
// dependency where it is upstream.
func (uc *exposureCalculator) cascadeFor(client *model.ClientData, assessment *model.Assessment, base float64) float64 {
	var total float64
	for _, dep := range client.Dependencies {
		if dep.UpstreamProcessID != assessment.ProcessID {
			continue
		}
		for _, downstream := range client.Assessments {
			if downstream.ProcessID != dep.DownstreamProcessID || downstream.RiskID != assessment.RiskID {
				continue
			}
			total += cascadingExposure(base, dep.DependencyStrength, downstream.Resilience)
			break
		}
	}
	return total
}

func summarize(exposures []model.Exposure) model.ExposureSummary {
	var base, cascading, overall float64
	for _, e := range exposures {
		base += e.BaseExposureEUR
		cascading += e.CascadingExposureEUR
		overall += e.TotalExposureEUR
	}

	var cascadingPct float64
	if overall > 0 {
		cascadingPct = math.Round(cascading/overall*1000) / 10
	}

	return model.ExposureSummary{
		TotalBaseExposure:      roundCents(base),
		TotalCascadingExposure: roundCents(cascading),
		TotalOverallExposure:   roundCents(overall),
		TotalRisksAssessed:     len(exposures),
		CascadingPercentage:    cascadingPct,
	}
}

func aggregateByDomain(exposures []model.Exposure) []model.DomainExposure {
	totals := make(map[model.Domain]*model.DomainExposure)
	var order []model.Domain
	for _, e := range exposures {
		agg, ok := totals[e.Domain]
		if !ok {
			agg = &model.DomainExposure{Domain: e.Domain}
			totals[e.Domain] = agg
			order = append(order, e.Domain)
		}
		agg.TotalExposure = roundCents(agg.TotalExposure + e.TotalExposureEUR)
		agg.RiskCount++
	}

	out := make([]model.DomainExposure, 0, len(order))
	for _, d := range order {
		out = append(out, *totals[d])
	}
	return out
}

func aggregateByProcess(exposures []model.Exposure) []model.ProcessExposure {
	totals := make(map[string]*model.ProcessExposure)
	var order []string
	for _, e := range exposures {
		agg, ok := totals[e.ProcessID]
		if !ok {
			agg = &model.ProcessExposure{ProcessID: e.ProcessID, ProcessName: e.ProcessName}
			totals[e.ProcessID] = agg
			order = append(order, e.ProcessID)
		}
		agg.TotalExposure = roundCents(agg.TotalExposure + e.TotalExposureEUR)
		agg.RiskCount++
	}

	out := make([]model.ProcessExposure, 0, len(order))
	for _, id := range order {
		out = append(out, *totals[id])
	}
	return out
}
