package config

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/infra/source"
)

// Sources holds signal collector configuration
type Sources struct {
	Enabled           []string
	OpenWeatherAPIKey string `masq:"secret"`
	WeatherCity       string
	NewsQuery         string
	Geography         string
	UpdateInterval    time.Duration
}

// Flags returns CLI flags for signal source configuration
func (c *Sources) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "sources",
			Usage:       "Signal sources to enable (cisa, usgs, weather, gdelt, news)",
			Value:       []string{"cisa", "usgs", "weather", "gdelt", "news"},
			Destination: &c.Enabled,
			Sources:     cli.EnvVars("PRISM_SOURCES"),
		},
		&cli.StringFlag{
			Name:        "openweather-api-key",
			Usage:       "OpenWeather API key (empty disables the weather collector)",
			Destination: &c.OpenWeatherAPIKey,
			Sources:     cli.EnvVars("PRISM_OPENWEATHER_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "weather-city",
			Usage:       "City monitored by the weather collector",
			Destination: &c.WeatherCity,
			Sources:     cli.EnvVars("PRISM_WEATHER_CITY"),
		},
		&cli.StringFlag{
			Name:        "news-query",
			Usage:       "Search query for the news collector",
			Destination: &c.NewsQuery,
			Sources:     cli.EnvVars("PRISM_NEWS_QUERY"),
		},
		&cli.StringFlag{
			Name:        "geography",
			Usage:       "Geography label attached to news signals",
			Destination: &c.Geography,
			Sources:     cli.EnvVars("PRISM_GEOGRAPHY"),
		},
		&cli.DurationFlag{
			Name:        "update-interval",
			Usage:       "Interval between probability update runs (0 disables the scheduler)",
			Value:       time.Hour,
			Destination: &c.UpdateInterval,
			Sources:     cli.EnvVars("PRISM_UPDATE_INTERVAL"),
		},
	}
}

// Configure creates the enabled signal collectors
func (c *Sources) Configure() ([]interfaces.Collector, error) {
	enabled := make(map[string]bool, len(c.Enabled))
	for _, name := range c.Enabled {
		enabled[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var collectors []interfaces.Collector
	for name := range enabled {
		switch name {
		case "cisa", "usgs", "weather", "gdelt", "news":
		default:
			return nil, goerr.New("unknown signal source", goerr.V("source", name))
		}
	}

	if enabled["cisa"] {
		collectors = append(collectors, source.NewCISA())
	}
	if enabled["usgs"] {
		collectors = append(collectors, source.NewUSGS())
	}
	if enabled["weather"] && c.OpenWeatherAPIKey != "" {
		var opts []source.Option
		if c.WeatherCity != "" {
			opts = append(opts, source.WithCity(c.WeatherCity))
		}
		collectors = append(collectors, source.NewWeather(c.OpenWeatherAPIKey, opts...))
	}
	if enabled["gdelt"] {
		collectors = append(collectors, source.NewGDELT())
	}
	if enabled["news"] {
		var opts []source.Option
		if c.NewsQuery != "" {
			opts = append(opts, source.WithQuery(c.NewsQuery))
		}
		if c.Geography != "" {
			opts = append(opts, source.WithGeography(c.Geography))
		}
		collectors = append(collectors, source.NewNews(opts...))
	}
	return collectors, nil
}
