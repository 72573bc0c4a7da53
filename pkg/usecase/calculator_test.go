package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/riskdb"
	"github.com/prism-brain/prism/pkg/infra/memory"
	"github.com/prism-brain/prism/pkg/usecase"
)

func seedRepo(t *testing.T) *memory.Repository {
	t.Helper()
	repo := memory.New()
	risks, err := riskdb.Baseline(time.Now())
	gt.NoError(t, err)
	for _, r := range risks {
		gt.NoError(t, repo.SaveRisk(context.Background(), r))
	}
	return repo
}

func TestCalculateBaseExposure(t *testing.T) {
	ctx := context.Background()
	calc := usecase.NewCalculator(seedRepo(t))

	req := &model.CalculationRequest{
		ClientData: model.ClientData{
			ClientName: "Acme Manufacturing",
			Industry:   "Automotive",
			Geography:  "EU",
			Processes: []model.Process{
				{
					ID:                   "PR1",
					Name:                 "Assembly line",
					CriticalityTier:      model.TierCritical,
					CriticalityEURPerDay: 100000,
				},
			},
			Assessments: []model.Assessment{
				// D1.1 baseline probability is 55%
				{ProcessID: "PR1", RiskID: "D1.1", Vulnerability: 80, Resilience: 50},
			},
		},
		UseCascading: true,
	}

	result, err := calc.Calculate(ctx, req)
	gt.NoError(t, err)
	gt.Equal(t, len(result.Exposures), 1)

	// 100000 * 0.8 * 0.5 * 0.55 * 365 = 8_030_000
	exp := result.Exposures[0]
	gt.Equal(t, exp.BaseExposureEUR, 8030000.0)
	gt.Equal(t, exp.CascadingExposureEUR, 0.0)
	gt.Equal(t, exp.TotalExposureEUR, 8030000.0)
	gt.Equal(t, exp.Probability, 55.0)

	gt.Equal(t, result.Summary.TotalOverallExposure, 8030000.0)
	gt.Equal(t, result.Summary.TotalRisksAssessed, 1)
	gt.Equal(t, result.Summary.CascadingPercentage, 0.0)
	gt.Equal(t, result.ClientName, "Acme Manufacturing")
}

func TestCalculateCascading(t *testing.T) {
	ctx := context.Background()
	calc := usecase.NewCalculator(seedRepo(t))

	client := model.ClientData{
		ClientName: "Acme",
		Processes: []model.Process{
			{ID: "UP", Name: "Power supply", CriticalityEURPerDay: 10000},
			{ID: "DOWN", Name: "Production", CriticalityEURPerDay: 20000},
		},
		Assessments: []model.Assessment{
			// P1.1 baseline probability is 12%
			{ProcessID: "UP", RiskID: "P1.1", Vulnerability: 100, Resilience: 0},
			{ProcessID: "DOWN", RiskID: "P1.1", Vulnerability: 50, Resilience: 40},
		},
		Dependencies: []model.Dependency{
			{UpstreamProcessID: "UP", DownstreamProcessID: "DOWN", DependencyStrength: 0.5},
		},
	}

	withCascading, err := calc.Calculate(ctx, &model.CalculationRequest{
		ClientData: client, UseCascading: true,
	})
	gt.NoError(t, err)
	gt.Equal(t, len(withCascading.Exposures), 2)

	// Upstream base: 10000 * 1.0 * 1.0 * 0.12 * 365 = 438000
	// Cascading: 438000 * 0.5 * (1 - 0.4) = 131400
	var upstream *model.Exposure
	for i := range withCascading.Exposures {
		if withCascading.Exposures[i].ProcessID == "UP" {
			upstream = &withCascading.Exposures[i]
		}
	}
	gt.V(t, upstream).NotNil()
	gt.Equal(t, upstream.BaseExposureEUR, 438000.0)
	gt.Equal(t, upstream.CascadingExposureEUR, 131400.0)
	gt.Equal(t, upstream.TotalExposureEUR, 569400.0)

	// Exposures are sorted by total descending
	gt.True(t, withCascading.Exposures[0].TotalExposureEUR >= withCascading.Exposures[1].TotalExposureEUR)
	gt.True(t, withCascading.Summary.CascadingPercentage > 0)

	withoutCascading, err := calc.Calculate(ctx, &model.CalculationRequest{
		ClientData: client, UseCascading: false,
	})
	gt.NoError(t, err)
	gt.Equal(t, withoutCascading.Summary.TotalCascadingExposure, 0.0)
}

func TestCalculateSkipsUnknownReferences(t *testing.T) {
	ctx := context.Background()
	calc := usecase.NewCalculator(seedRepo(t))

	result, err := calc.Calculate(ctx, &model.CalculationRequest{
		ClientData: model.ClientData{
			Processes: []model.Process{
				{ID: "PR1", Name: "Line", CriticalityEURPerDay: 1000},
			},
			Assessments: []model.Assessment{
				{ProcessID: "PR1", RiskID: "X9.9", Vulnerability: 50, Resilience: 50},
				{ProcessID: "missing", RiskID: "P1.1", Vulnerability: 50, Resilience: 50},
			},
		},
	})
	gt.NoError(t, err)
	gt.Equal(t, len(result.Exposures), 0)
	gt.Equal(t, result.Summary.TotalRisksAssessed, 0)
	gt.Equal(t, result.Summary.CascadingPercentage, 0.0)
}

func TestCalculateAggregation(t *testing.T) {
	ctx := context.Background()
	calc := usecase.NewCalculator(seedRepo(t))

	result, err := calc.Calculate(ctx, &model.CalculationRequest{
		ClientData: model.ClientData{
			Processes: []model.Process{
				{ID: "PR1", Name: "Line A", CriticalityEURPerDay: 1000},
				{ID: "PR2", Name: "Line B", CriticalityEURPerDay: 2000},
			},
			Assessments: []model.Assessment{
				{ProcessID: "PR1", RiskID: "D1.1", Vulnerability: 50, Resilience: 50},
				{ProcessID: "PR1", RiskID: "P1.1", Vulnerability: 50, Resilience: 50},
				{ProcessID: "PR2", RiskID: "D1.2", Vulnerability: 50, Resilience: 50},
			},
		},
	})
	gt.NoError(t, err)
	gt.Equal(t, len(result.Exposures), 3)
	gt.Equal(t, len(result.ByProcess), 2)

	domains := map[model.Domain]model.DomainExposure{}
	for _, d := range result.ByDomain {
		domains[d.Domain] = d
	}
	gt.Equal(t, domains[model.DomainDigital].RiskCount, 2)
	gt.Equal(t, domains[model.DomainPhysical].RiskCount, 1)
}
