package riskdb_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/riskdb"
)

func TestBaseline(t *testing.T) {
	now := time.Now()
	risks, err := riskdb.Baseline(now)
	gt.NoError(t, err)
	gt.Equal(t, len(risks), 13)

	byID := make(map[string]*model.Risk)
	for _, r := range risks {
		byID[r.ID.String()] = r
	}

	grid := byID["P1.1"]
	gt.V(t, grid).NotNil()
	gt.Equal(t, grid.Domain, model.DomainPhysical)
	gt.Equal(t, grid.ProbabilityBaseline, 12.0)
	gt.Equal(t, grid.ProbabilityLive, 12.0)
	gt.Equal(t, grid.UpdateCount, 0)
	gt.Equal(t, grid.LastUpdated, now)

	ics := byID["D1.1"]
	gt.V(t, ics).NotNil()
	gt.Equal(t, ics.Domain, model.DomainDigital)
	gt.Equal(t, ics.ProbabilityBaseline, 55.0)
	gt.Equal(t, ics.ConfidenceLevel, "High")
	gt.Equal(t, ics.Sources, []string{"CISA", "Dragos"})

	counts := map[model.Domain]int{}
	for _, r := range risks {
		counts[r.Domain]++
	}
	gt.Equal(t, counts[model.DomainPhysical], 4)
	gt.Equal(t, counts[model.DomainStructural], 2)
	gt.Equal(t, counts[model.DomainDigital], 4)
	gt.Equal(t, counts[model.DomainOperational], 3)
}
