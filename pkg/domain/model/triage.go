package model

import "github.com/prism-brain/prism/pkg/domain/types"

// SignalTriage is the result of mapping an unclassified signal onto
// catalog risks
type SignalTriage struct {
	Relevant  bool           `json:"relevant"`
	RiskIDs   []types.RiskID `json:"risk_ids"`
	Severity  SignalSeverity `json:"severity"`
	Rationale string         `json:"rationale,omitempty"`
}
