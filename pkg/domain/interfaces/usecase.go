package interfaces

import (
	"context"

	"github.com/prism-brain/prism/pkg/domain/model"
)

// ExposureCalculator runs the client exposure calculation
type ExposureCalculator interface {
	// Calculate computes exposures for a client assessment
	Calculate(ctx context.Context, req *model.CalculationRequest) (*model.CalculationResult, error)
}

// ProbabilityEngine updates live probabilities from collected signals
type ProbabilityEngine interface {
	// UpdateAll collects signals from every configured source and applies
	// them to the affected risks, writing one audit record per risk
	UpdateAll(ctx context.Context) (*model.UpdateRunResult, error)
}

// SignalAnalyst maps unclassified signals onto catalog risks
type SignalAnalyst interface {
	// Triage returns the risk mapping for a signal that carries none
	Triage(ctx context.Context, signal *model.Signal) (*model.SignalTriage, error)
}
