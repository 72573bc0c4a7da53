package model

import (
	"time"

	"github.com/prism-brain/prism/pkg/domain/types"
)

// Exposure is the calculated annual exposure for one process/risk pair
type Exposure struct {
	RiskID               types.RiskID `json:"risk_id"`
	RiskName             string       `json:"risk_name"`
	Domain               Domain       `json:"domain"`
	ProcessID            string       `json:"process_id"`
	ProcessName          string       `json:"process_name"`
	Criticality          float64      `json:"criticality"`
	Vulnerability        float64      `json:"vulnerability"`
	Resilience           float64      `json:"resilience"`
	Probability          float64      `json:"probability"`
	BaseExposureEUR      float64      `json:"base_exposure_eur"`
	CascadingExposureEUR float64      `json:"cascading_exposure_eur"`
	TotalExposureEUR     float64      `json:"total_exposure_eur"`
	ConfidenceLevel      string       `json:"confidence_level"`
}

// ExposureSummary aggregates an entire calculation run
type ExposureSummary struct {
	TotalBaseExposure      float64 `json:"total_base_exposure"`
	TotalCascadingExposure float64 `json:"total_cascading_exposure"`
	TotalOverallExposure   float64 `json:"total_overall_exposure"`
	TotalRisksAssessed     int     `json:"total_risks_assessed"`
	CascadingPercentage    float64 `json:"cascading_percentage"`
}

// DomainExposure aggregates exposure per risk domain
type DomainExposure struct {
	Domain        Domain  `json:"domain"`
	TotalExposure float64 `json:"total_exposure"`
	RiskCount     int     `json:"risk_count"`
}

// ProcessExposure aggregates exposure per client process
type ProcessExposure struct {
	ProcessID     string  `json:"process_id"`
	ProcessName   string  `json:"process_name"`
	TotalExposure float64 `json:"total_exposure"`
	RiskCount     int     `json:"risk_count"`
}

// CalculationResult is the response of the calculate operation
type CalculationResult struct {
	Exposures            []Exposure        `json:"exposures"`
	Summary              ExposureSummary   `json:"summary"`
	ByDomain             []DomainExposure  `json:"by_domain"`
	ByProcess            []ProcessExposure `json:"by_process"`
	CalculationTimestamp time.Time         `json:"calculation_timestamp"`
	ClientName           string            `json:"client_name"`
	Industry             string            `json:"industry"`
	Geography            string            `json:"geography"`
}
