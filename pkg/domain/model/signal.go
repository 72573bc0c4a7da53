package model

import (
	"time"

	"github.com/prism-brain/prism/pkg/domain/types"
)

// SignalType represents the kind of external observation
type SignalType string

const (
	SignalTypeAlert   SignalType = "alert"
	SignalTypeMention SignalType = "mention"
	SignalTypeEvent   SignalType = "event"
	SignalTypeTrend   SignalType = "trend"
)

// SignalSeverity represents how strongly a signal should move a probability
type SignalSeverity string

const (
	SeverityLow      SignalSeverity = "low"
	SeverityMedium   SignalSeverity = "medium"
	SeverityHigh     SignalSeverity = "high"
	SeverityCritical SignalSeverity = "critical"
)

// Multiplier bounds for a single signal
const (
	MultiplierMin = 0.5
	MultiplierMax = 3.0
)

// Signal is an external observation affecting one or more risk probabilities
type Signal struct {
	Source      string         `json:"source"`
	SignalType  SignalType     `json:"signal_type"`
	Severity    SignalSeverity `json:"severity"`
	Multiplier  float64        `json:"multiplier"`
	Description string         `json:"description"`
	URL         string         `json:"url,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	RiskIDs     []types.RiskID `json:"risk_ids"`
}

// DefaultMultiplier maps a severity to its default probability multiplier
func (s SignalSeverity) DefaultMultiplier() float64 {
	switch s {
	case SeverityLow:
		return 1.05
	case SeverityMedium:
		return 1.10
	case SeverityHigh:
		return 1.15
	case SeverityCritical:
		return 1.25
	default:
		return 1.0
	}
}

// ClampMultiplier bounds a multiplier to the valid range
func ClampMultiplier(m float64) float64 {
	if m < MultiplierMin {
		return MultiplierMin
	}
	if m > MultiplierMax {
		return MultiplierMax
	}
	return m
}

// Normalize fills the default multiplier and enforces bounds
func (s *Signal) Normalize() {
	if s.Multiplier == 0 {
		s.Multiplier = s.Severity.DefaultMultiplier()
	}
	s.Multiplier = ClampMultiplier(s.Multiplier)
}
