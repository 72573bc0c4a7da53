package source

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const (
	weatherBaseURL     = "https://api.openweathermap.org"
	weatherPath        = "/data/2.5/weather"
	weatherDefaultCity = "Munich,DE"

	// Thresholds in degrees Celsius for the extreme heat risk.
	weatherExtremeTemp  = 40.0
	weatherElevatedTemp = 35.0
)

// Weather collects extreme heat events from the OpenWeather current
// weather API
type Weather struct {
	apiKey string
	cfg    config
}

type weatherReport struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Name string `json:"name"`
}

// NewWeather creates the OpenWeather collector. The city defaults to the
// primary operations site and can be overridden with WithCity.
func NewWeather(apiKey string, opts ...Option) *Weather {
	cfg := newConfig(weatherBaseURL, opts...)
	if cfg.city == "" {
		cfg.city = weatherDefaultCity
	}
	return &Weather{apiKey: apiKey, cfg: cfg}
}

// Name returns the source label
func (w *Weather) Name() string { return "OpenWeatherMap" }

// Collect reports a signal when the current temperature crosses the extreme
// heat thresholds. Normal conditions yield no signals.
func (w *Weather) Collect(ctx context.Context) ([]model.Signal, error) {
	query := url.Values{
		"q":     {w.cfg.city},
		"appid": {w.apiKey},
		"units": {"metric"},
	}

	var report weatherReport
	if err := fetchJSON(ctx, w.cfg.httpClient, w.cfg.baseURL+weatherPath+"?"+query.Encode(), &report); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch weather report", goerr.V("city", w.cfg.city))
	}

	temp := report.Main.Temp
	if temp < weatherElevatedTemp {
		return nil, nil
	}

	severity := model.SeverityMedium
	multiplier := 1.08
	if temp >= weatherExtremeTemp {
		severity = model.SeverityHigh
		multiplier = 0 // defaulted from severity
	}

	return []model.Signal{{
		Source:      w.Name(),
		SignalType:  model.SignalTypeEvent,
		Severity:    severity,
		Multiplier:  multiplier,
		Description: fmt.Sprintf("Temperature of %.1f°C recorded in %s", temp, report.Name),
		Timestamp:   time.Now().UTC(),
		RiskIDs:     []types.RiskID{"P3.1"},
	}}, nil
}

var _ interfaces.Collector = (*Weather)(nil)
