package api

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"scottish-predictor/internal/ingest"
)

const (
	DefaultSPFLBaseURL = "https://spfl.co.uk"
	requestsPerMinute  = 30
	requestTimeout     = 10 * time.Second
	maxRetries         = 3
)

// tablePaths maps league keys to their table pages.
var tablePaths = map[string]string{
	"premiership":  "/league/premiership/table",
	"championship": "/league/championship/table",
	"league1":      "/league/league-one/table",
	"league2":      "/league/league-two/table",
}

// LeagueKeys lists the league keys FetchTable accepts.
func LeagueKeys() []string {
	return slices.Sorted(maps.Keys(tablePaths))
}

// SPFLClient fetches league tables and published stats files.
type SPFLClient struct {
	baseURL string
	client  *RateLimitedClient
}

// NewSPFLClient creates a client for baseURL. A nil client gets the default
// rate limit and timeout.
func NewSPFLClient(baseURL string, client *RateLimitedClient) *SPFLClient {
	if baseURL == "" {
		baseURL = DefaultSPFLBaseURL
	}
	if client == nil {
		client = NewRateLimitedClient(requestsPerMinute, requestTimeout, maxRetries)
	}
	return &SPFLClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// FetchTable downloads and parses the table page for a league key. Team
// names are returned as the site spells them.
func (c *SPFLClient) FetchTable(ctx context.Context, key string) ([]ingest.TableRow, error) {
	path, ok := tablePaths[key]
	if !ok {
		return nil, fmt.Errorf("unknown league key %q", key)
	}

	body, err := c.client.Get(ctx, c.baseURL+path, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("fetching %s table: %w", key, err)
	}

	rows, err := ingest.ParseTableHTML(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s table: %w", key, err)
	}
	return rows, nil
}

// FetchStatsFile downloads a published stats document.
func (c *SPFLClient) FetchStatsFile(ctx context.Context, url string) (ingest.StatsFile, error) {
	body, err := c.client.Get(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return ingest.StatsFile{}, fmt.Errorf("fetching stats file: %w", err)
	}
	return ingest.DecodeStatsFile(bytes.NewReader(body))
}
