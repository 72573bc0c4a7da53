package model

import "time"

// HealthStatus is the health check response
type HealthStatus struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	RisksLoaded       int       `json:"risks_loaded"`
	TotalUpdates      int       `json:"total_updates"`
	TotalSignals      int       `json:"total_signals"`
	CalculatorVersion string    `json:"calculator_version"`
}

// ServiceInfo is the root endpoint response
type ServiceInfo struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Status   string   `json:"status"`
	Features []string `json:"features"`
}

// DomainStats summarizes catalog risks of one domain
type DomainStats struct {
	Domain                 Domain           `json:"domain"`
	RiskCount              int              `json:"risk_count"`
	AvgProbabilityBaseline float64          `json:"avg_probability_baseline"`
	AvgProbabilityLive     float64          `json:"avg_probability_live"`
	Risks                  []DomainRiskStat `json:"risks"`
}

// DomainRiskStat is the per-risk line inside DomainStats
type DomainRiskStat struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	ProbabilityBaseline float64 `json:"probability_baseline"`
	ProbabilityLive     float64 `json:"probability_live"`
}
