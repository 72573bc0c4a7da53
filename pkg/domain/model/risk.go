package model

import (
	"time"

	"github.com/prism-brain/prism/pkg/domain/types"
)

// Domain represents the risk domain classification
type Domain string

const (
	DomainPhysical    Domain = "Physical"
	DomainStructural  Domain = "Structural"
	DomainDigital     Domain = "Digital"
	DomainOperational Domain = "Operational"
)

// IsValid checks if the domain is one of the known classifications
func (d Domain) IsValid() bool {
	switch d {
	case DomainPhysical, DomainStructural, DomainDigital, DomainOperational:
		return true
	default:
		return false
	}
}

// Risk represents a catalog risk with live probability tracking
type Risk struct {
	ID                  types.RiskID `json:"id"`
	Name                string       `json:"name"`
	Domain              Domain       `json:"domain"`
	Description         string       `json:"description"`
	ProbabilityBaseline float64      `json:"probability_baseline"`
	ProbabilityLive     float64      `json:"probability_live"`
	ConfidenceLevel     string       `json:"confidence_level"`
	LastUpdated         time.Time    `json:"last_updated"`
	Sources             []string     `json:"sources"`
	UpdateCount         int          `json:"update_count"`
}

// ChangeFromBaseline returns the absolute drift of the live probability
func (r *Risk) ChangeFromBaseline() float64 {
	return r.ProbabilityLive - r.ProbabilityBaseline
}

// ChangePercent returns the relative drift of the live probability.
// Zero baseline yields zero to keep the response shape stable.
func (r *Risk) ChangePercent() float64 {
	if r.ProbabilityBaseline <= 0 {
		return 0
	}
	return (r.ProbabilityLive - r.ProbabilityBaseline) / r.ProbabilityBaseline * 100
}

// ClampProbability bounds a probability to the valid 0-100 range
func ClampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// LiveRisk is the API representation of a risk with drift fields
type LiveRisk struct {
	ID                  types.RiskID `json:"id"`
	Name                string       `json:"name"`
	Domain              Domain       `json:"domain"`
	Description         string       `json:"description"`
	ProbabilityBaseline float64      `json:"probability_baseline"`
	ProbabilityLive     float64      `json:"probability_live"`
	ChangeFromBaseline  float64      `json:"change_from_baseline"`
	ChangePercent       float64      `json:"change_percent"`
	ConfidenceLevel     string       `json:"confidence_level"`
	LastUpdated         time.Time    `json:"last_updated"`
	UpdateCount         int          `json:"update_count"`
	Sources             []string     `json:"sources"`
}

// ToLive converts a Risk to its API representation
func (r *Risk) ToLive() LiveRisk {
	return LiveRisk{
		ID:                  r.ID,
		Name:                r.Name,
		Domain:              r.Domain,
		Description:         r.Description,
		ProbabilityBaseline: r.ProbabilityBaseline,
		ProbabilityLive:     r.ProbabilityLive,
		ChangeFromBaseline:  r.ChangeFromBaseline(),
		ChangePercent:       r.ChangePercent(),
		ConfidenceLevel:     r.ConfidenceLevel,
		LastUpdated:         r.LastUpdated,
		UpdateCount:         r.UpdateCount,
		Sources:             r.Sources,
	}
}
