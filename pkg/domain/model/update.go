package model

import (
	"time"

	"github.com/prism-brain/prism/pkg/domain/types"
)

// ProbabilityUpdate is the audit record for a single live probability change
type ProbabilityUpdate struct {
	ID                 types.UpdateID `json:"id"`
	RiskID             types.RiskID   `json:"risk_id"`
	Timestamp          time.Time      `json:"timestamp"`
	ProbabilityBefore  float64        `json:"probability_before"`
	ProbabilityAfter   float64        `json:"probability_after"`
	UpdateReason       string         `json:"update_reason"`
	Signals            []Signal       `json:"signals"`
	DataSourcesChecked []string       `json:"data_sources_checked"`
	ConfidenceImpact   string         `json:"confidence_impact,omitempty"`
}

// Change returns the probability delta applied by this update
func (u *ProbabilityUpdate) Change() float64 {
	return u.ProbabilityAfter - u.ProbabilityBefore
}

// RiskUpdateReport summarizes one risk change within an update run
type RiskUpdateReport struct {
	RiskID            types.RiskID `json:"risk_id"`
	RiskName          string       `json:"risk_name"`
	ProbabilityBefore float64      `json:"probability_before"`
	ProbabilityAfter  float64      `json:"probability_after"`
	Change            float64      `json:"change"`
	SignalsCount      int          `json:"signals_count"`
}

// UpdateRunResult is the report returned by a probability update run
type UpdateRunResult struct {
	Timestamp        time.Time          `json:"timestamp"`
	SignalsCollected int                `json:"signals_collected"`
	RisksUpdated     int                `json:"risks_updated"`
	SourcesChecked   []string           `json:"sources_checked"`
	Updates          []RiskUpdateReport `json:"updates"`
}
