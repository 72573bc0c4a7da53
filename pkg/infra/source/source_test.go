package source_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
	"github.com/prism-brain/prism/pkg/infra/source"
)

func jsonServer(t *testing.T, path, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCISACollect(t *testing.T) {
	recent := time.Now().UTC().Format("2006-01-02")
	old := time.Now().UTC().Add(-30 * 24 * time.Hour).Format("2006-01-02")

	srv := jsonServer(t, "/known_exploited_vulnerabilities.json", fmt.Sprintf(`{
		"title": "CISA Catalog of Known Exploited Vulnerabilities",
		"count": 3,
		"vulnerabilities": [
			{"cveID": "CVE-2026-1111", "dateAdded": %q, "knownRansomwareCampaignUse": "Known"},
			{"cveID": "CVE-2026-2222", "dateAdded": %q, "knownRansomwareCampaignUse": "Unknown"},
			{"cveID": "CVE-2025-3333", "dateAdded": %q, "knownRansomwareCampaignUse": "Known"}
		]
	}`, recent, recent, old))

	collector := source.NewCISA(source.WithBaseURL(srv.URL))
	gt.Equal(t, collector.Name(), "CISA")

	signals, err := collector.Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 2)

	gt.Equal(t, signals[0].Severity, model.SeverityCritical)
	gt.Equal(t, signals[0].SignalType, model.SignalTypeAlert)
	gt.Equal(t, signals[0].RiskIDs, []types.RiskID{"D1.1", "D1.2"})
	gt.True(t, strings.Contains(signals[0].Description, "1 exploited"))

	gt.Equal(t, signals[1].Severity, model.SeverityHigh)
	gt.Equal(t, signals[1].RiskIDs, []types.RiskID{"D3.1"})
}

func TestCISACollectQuiet(t *testing.T) {
	old := time.Now().UTC().Add(-30 * 24 * time.Hour).Format("2006-01-02")
	srv := jsonServer(t, "/known_exploited_vulnerabilities.json", fmt.Sprintf(`{
		"count": 1,
		"vulnerabilities": [{"cveID": "CVE-2025-0001", "dateAdded": %q}]
	}`, old))

	signals, err := source.NewCISA(source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 0)
}

func TestCISACollectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := source.NewCISA(source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.Error(t, err)
}

func TestUSGSCollect(t *testing.T) {
	now := time.Now().UTC().UnixMilli()
	srv := jsonServer(t, "/earthquakes/feed/v1.0/summary/significant_week.geojson", fmt.Sprintf(`{
		"features": [
			{"properties": {"mag": 7.2, "place": "off the coast of Honshu, Japan", "time": %d, "url": "https://earthquake.usgs.gov/eq/1"}},
			{"properties": {"mag": 6.1, "place": "central Chile", "time": %d, "url": "https://earthquake.usgs.gov/eq/2"}},
			{"properties": {"mag": 5.4, "place": "southern Greece", "time": %d, "url": "https://earthquake.usgs.gov/eq/3"}}
		]
	}`, now, now, now))

	signals, err := source.NewUSGS(source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 2)
	gt.Equal(t, signals[0].Severity, model.SeverityHigh)
	gt.True(t, strings.Contains(signals[0].Description, "M7.2"))
	gt.Equal(t, signals[1].Severity, model.SeverityMedium)
	gt.Equal(t, signals[1].RiskIDs, []types.RiskID{"P1.1"})
}

func TestUSGSCollectQuietWeek(t *testing.T) {
	srv := jsonServer(t, "/earthquakes/feed/v1.0/summary/significant_week.geojson", `{"features": []}`)

	signals, err := source.NewUSGS(source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 0)
}

func TestWeatherCollectHeatWave(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"main": {"temp": 41.3}, "name": "Seville"}`)
	}))
	t.Cleanup(srv.Close)

	collector := source.NewWeather("test-key", source.WithBaseURL(srv.URL), source.WithCity("Seville,ES"))
	signals, err := collector.Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 1)
	gt.Equal(t, signals[0].Severity, model.SeverityHigh)
	gt.Equal(t, signals[0].Multiplier, 0.0)
	gt.Equal(t, signals[0].RiskIDs, []types.RiskID{"P3.1"})
	gt.True(t, strings.Contains(signals[0].Description, "41.3"))
	gt.True(t, strings.Contains(gotQuery, "appid=test-key"))
}

func TestWeatherCollectElevated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"main": {"temp": 36.0}, "name": "Munich"}`)
	}))
	t.Cleanup(srv.Close)

	signals, err := source.NewWeather("test-key", source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 1)
	gt.Equal(t, signals[0].Severity, model.SeverityMedium)
	gt.Equal(t, signals[0].Multiplier, 1.08)
}

func TestWeatherCollectNormal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"main": {"temp": 22.5}, "name": "Munich"}`)
	}))
	t.Cleanup(srv.Close)

	signals, err := source.NewWeather("test-key", source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 0)
}

func TestGDELTCollectSurge(t *testing.T) {
	var articles []string
	for i := 0; i < 60; i++ {
		articles = append(articles, fmt.Sprintf(`{"title": "disruption report %d"}`, i))
	}
	srv := jsonServer(t, "/api/v2/doc/doc", `{"articles": [`+strings.Join(articles, ",")+`]}`)

	signals, err := source.NewGDELT(source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 1)
	gt.Equal(t, signals[0].Severity, model.SeverityMedium)
	gt.Equal(t, signals[0].SignalType, model.SignalTypeTrend)
	gt.Equal(t, signals[0].RiskIDs, []types.RiskID{"O1.1", "O3.1"})
}

func TestGDELTCollectBaseline(t *testing.T) {
	srv := jsonServer(t, "/api/v2/doc/doc", `{"articles": [{"title": "minor note"}]}`)

	signals, err := source.NewGDELT(source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 0)
}

func TestNewsCollect(t *testing.T) {
	now := time.Now().UTC()
	var items strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&items, `<item><title>tariff headline %d</title><pubDate>%s</pubDate></item>`,
			i, now.Add(-time.Duration(i)*time.Hour).Format(time.RFC1123))
	}
	// Stale item outside the lookback window
	fmt.Fprintf(&items, `<item><title>old story</title><pubDate>%s</pubDate></item>`,
		now.Add(-48*time.Hour).Format(time.RFC1123))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel>%s</channel></rss>`, items.String())
	}))
	t.Cleanup(srv.Close)

	signals, err := source.NewNews(source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 1)
	gt.Equal(t, signals[0].Severity, model.SeverityMedium)
	gt.Equal(t, signals[0].SignalType, model.SignalTypeMention)
	gt.Equal(t, signals[0].RiskIDs, []types.RiskID{"S1.1"})
	gt.True(t, strings.Contains(signals[0].Description, "12 headlines"))
	gt.True(t, strings.Contains(signals[0].Description, "(Global)"))
}

func TestNewsCollectSparse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel></channel></rss>`)
	}))
	t.Cleanup(srv.Close)

	signals, err := source.NewNews(source.WithBaseURL(srv.URL)).Collect(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, len(signals), 0)
}
