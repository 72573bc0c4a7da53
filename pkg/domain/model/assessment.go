package model

import "github.com/prism-brain/prism/pkg/domain/types"

// CriticalityTier classifies how much a process matters to the client
type CriticalityTier string

const (
	TierCritical      CriticalityTier = "Critical"
	TierVeryImportant CriticalityTier = "Very Important"
	TierImportant     CriticalityTier = "Important"
	TierNeutral       CriticalityTier = "Neutral"
	TierMinor         CriticalityTier = "Minor"
	TierNotApplicable CriticalityTier = "Not Applicable"
)

// Process is a client business process under assessment
type Process struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Category             string          `json:"category"`
	Description          string          `json:"description"`
	CriticalityTier      CriticalityTier `json:"criticality_tier"`
	CriticalityEURPerDay float64         `json:"criticality_eur_per_day"`
}

// Assessment scores one process against one catalog risk
type Assessment struct {
	ProcessID     string       `json:"process_id"`
	RiskID        types.RiskID `json:"risk_id"`
	Vulnerability float64      `json:"vulnerability"`
	Resilience    float64      `json:"resilience"`
}

// Dependency links an upstream process to a downstream one
type Dependency struct {
	UpstreamProcessID   string  `json:"upstream_process_id"`
	DownstreamProcessID string  `json:"downstream_process_id"`
	DependencyStrength  float64 `json:"dependency_strength"`
	Description         string  `json:"description,omitempty"`
}

// ClientData is a full client assessment submission
type ClientData struct {
	ProjectID        string       `json:"project_id"`
	ClientName       string       `json:"client_name"`
	Industry         string       `json:"industry"`
	Geography        string       `json:"geography"`
	ProjectStartDate string       `json:"project_start_date"`
	Processes        []Process    `json:"processes"`
	Assessments      []Assessment `json:"assessments"`
	Dependencies     []Dependency `json:"dependencies,omitempty"`
}

// CalculationRequest is the payload of the calculate operation
type CalculationRequest struct {
	ClientData   ClientData `json:"client_data"`
	UseCascading bool       `json:"use_cascading"`
}
