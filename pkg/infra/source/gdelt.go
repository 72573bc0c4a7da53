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
	gdeltBaseURL = "https://api.gdeltproject.org"
	gdeltPath    = "/api/v2/doc/doc"
	gdeltQuery   = `"supply chain disruption"`

	// Article volume thresholds over the 24h query window.
	gdeltElevatedArticles = 20
	gdeltSurgeArticles    = 50
)

// GDELT collects supply chain disruption coverage volume from the GDELT
// document API
type GDELT struct {
	cfg config
}

type gdeltResponse struct {
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Domain string `json:"domain"`
	} `json:"articles"`
}

// NewGDELT creates the GDELT collector
func NewGDELT(opts ...Option) *GDELT {
	return &GDELT{cfg: newConfig(gdeltBaseURL, opts...)}
}

// Name returns the source label
func (g *GDELT) Name() string { return "GDELT" }

// Collect reports a trend signal when global news coverage of supply chain
// disruptions is elevated. Baseline coverage yields no signals.
func (g *GDELT) Collect(ctx context.Context) ([]model.Signal, error) {
	query := url.Values{
		"query":      {gdeltQuery},
		"mode":       {"artlist"},
		"format":     {"json"},
		"timespan":   {"24h"},
		"maxrecords": {"75"},
	}

	var resp gdeltResponse
	if err := fetchJSON(ctx, g.cfg.httpClient, g.cfg.baseURL+gdeltPath+"?"+query.Encode(), &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch GDELT articles")
	}

	count := len(resp.Articles)
	if count < gdeltElevatedArticles {
		return nil, nil
	}

	severity := model.SeverityLow
	if count >= gdeltSurgeArticles {
		severity = model.SeverityMedium
	}

	return []model.Signal{{
		Source:      g.Name(),
		SignalType:  model.SignalTypeTrend,
		Severity:    severity,
		Description: fmt.Sprintf("%d articles on supply chain disruptions in global news over the past 24 hours", count),
		Timestamp:   time.Now().UTC(),
		RiskIDs:     []types.RiskID{"O1.1", "O3.1"},
	}}, nil
}

var _ interfaces.Collector = (*GDELT)(nil)
