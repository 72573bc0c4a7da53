package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const (
	newsBaseURL  = "https://news.google.com"
	newsPath     = "/rss/search"
	newsQuery    = `"trade war" tariffs US China`
	newsLookback = 24 * time.Hour

	// Headline volume thresholds over the lookback window.
	newsElevatedItems = 3
	newsSurgeItems    = 10
)

// News collects trade tension coverage from the Google News RSS feed
type News struct {
	cfg config
}

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// NewNews creates the Google News collector
func NewNews(opts ...Option) *News {
	cfg := newConfig(newsBaseURL, opts...)
	if cfg.query == "" {
		cfg.query = newsQuery
	}
	if cfg.geography == "" {
		cfg.geography = "Global"
	}
	return &News{cfg: cfg}
}

// Name returns the source label
func (n *News) Name() string { return "Google News" }

// Collect reports a mention signal when trade war coverage is elevated over
// the past day. Sparse coverage yields no signals.
func (n *News) Collect(ctx context.Context) ([]model.Signal, error) {
	query := url.Values{
		"q":  {n.cfg.query},
		"hl": {"en-US"},
	}

	body, err := fetch(ctx, n.cfg.httpClient, n.cfg.baseURL+newsPath+"?"+query.Encode())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch news feed")
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse news feed")
	}

	now := time.Now().UTC()
	cutoff := now.Add(-newsLookback)

	var count int
	for _, item := range feed.Channel.Items {
		published, err := time.Parse(time.RFC1123, item.PubDate)
		if err != nil {
			// Some entries use a numeric zone offset.
			published, err = time.Parse(time.RFC1123Z, item.PubDate)
			if err != nil {
				continue
			}
		}
		if !published.Before(cutoff) {
			count++
		}
	}

	if count < newsElevatedItems {
		return nil, nil
	}

	severity := model.SeverityLow
	if count >= newsSurgeItems {
		severity = model.SeverityMedium
	}

	return []model.Signal{{
		Source:      n.Name(),
		SignalType:  model.SignalTypeMention,
		Severity:    severity,
		Description: fmt.Sprintf("%d headlines on trade tensions in the past 24 hours (%s)", count, n.cfg.geography),
		Timestamp:   now,
		RiskIDs:     []types.RiskID{"S1.1"},
	}}, nil
}

var _ interfaces.Collector = (*News)(nil)
