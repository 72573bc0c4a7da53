package source

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const (
	usgsBaseURL  = "https://earthquake.usgs.gov"
	usgsFeedPath = "/earthquakes/feed/v1.0/summary/significant_week.geojson"

	// Quakes below this magnitude rarely threaten grid infrastructure.
	usgsMinMagnitude   = 6.0
	usgsMajorMagnitude = 7.0
	usgsMaxSignals     = 3
)

// USGS collects significant seismic events from the USGS earthquake feed
type USGS struct {
	cfg config
}

type usgsFeed struct {
	Features []struct {
		Properties struct {
			Mag   float64 `json:"mag"`
			Place string  `json:"place"`
			Time  int64   `json:"time"`
			URL   string  `json:"url"`
		} `json:"properties"`
	} `json:"features"`
}

// NewUSGS creates the USGS earthquake collector
func NewUSGS(opts ...Option) *USGS {
	return &USGS{cfg: newConfig(usgsBaseURL, opts...)}
}

// Name returns the source label
func (u *USGS) Name() string { return "USGS" }

// Collect fetches significant earthquakes from the past week. A quiet week
// yields no signals.
func (u *USGS) Collect(ctx context.Context) ([]model.Signal, error) {
	var feed usgsFeed
	if err := fetchJSON(ctx, u.cfg.httpClient, u.cfg.baseURL+usgsFeedPath, &feed); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch earthquake feed")
	}

	var signals []model.Signal
	for _, feature := range feed.Features {
		props := feature.Properties
		if props.Mag < usgsMinMagnitude {
			continue
		}
		severity := model.SeverityMedium
		if props.Mag >= usgsMajorMagnitude {
			severity = model.SeverityHigh
		}
		signals = append(signals, model.Signal{
			Source:      u.Name(),
			SignalType:  model.SignalTypeEvent,
			Severity:    severity,
			Description: fmt.Sprintf("M%.1f earthquake %s", props.Mag, props.Place),
			URL:         props.URL,
			Timestamp:   time.UnixMilli(props.Time).UTC(),
			RiskIDs:     []types.RiskID{"P1.1"},
		})
		if len(signals) >= usgsMaxSignals {
			break
		}
	}
	return signals, nil
}

var _ interfaces.Collector = (*USGS)(nil)
