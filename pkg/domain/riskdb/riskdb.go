package riskdb

import (
	_ "embed"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

//go:embed baseline.toml
var baselineTOML []byte

type catalogEntry struct {
	ID                  string   `toml:"id"`
	Name                string   `toml:"name"`
	Domain              string   `toml:"domain"`
	Description         string   `toml:"description"`
	ProbabilityBaseline float64  `toml:"probability_baseline"`
	ConfidenceLevel     string   `toml:"confidence_level"`
	Sources             []string `toml:"sources"`
}

type catalog struct {
	Risks []catalogEntry `toml:"risks"`
}

// Baseline returns the embedded risk catalog. Live probabilities start at
// the baseline; last_updated is set to now.
func Baseline(now time.Time) ([]*model.Risk, error) {
	var c catalog
	if err := toml.Unmarshal(baselineTOML, &c); err != nil {
		return nil, goerr.Wrap(err, "failed to parse baseline risk catalog")
	}

	risks := make([]*model.Risk, 0, len(c.Risks))
	for _, e := range c.Risks {
		domain := model.Domain(e.Domain)
		if !domain.IsValid() {
			return nil, goerr.New("invalid domain in baseline catalog",
				goerr.V("risk_id", e.ID),
				goerr.V("domain", e.Domain),
			)
		}

		risks = append(risks, &model.Risk{
			ID:                  types.RiskID(e.ID),
			Name:                e.Name,
			Domain:              domain,
			Description:         e.Description,
			ProbabilityBaseline: e.ProbabilityBaseline,
			ProbabilityLive:     e.ProbabilityBaseline,
			ConfidenceLevel:     e.ConfidenceLevel,
			LastUpdated:         now,
			Sources:             e.Sources,
		})
	}

	return risks, nil
}
