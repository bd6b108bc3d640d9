// Package statsclient fetches SRT relay stats documents over HTTP.
package statsclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/ports"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client issues one GET per Fetch. It never retries and sets no timeout of
// its own; callers bound a fetch through the context or the http.Client.
type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) ports.StatsSource {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient}
}

// Fetch returns domain.ErrStatsUnavailable for transport failures and
// domain.ErrMalformedStats when the body is not a stats document. The status
// code is not inspected.
func (c *Client) Fetch(ctx context.Context, statsURL string) (*domain.StatsSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStatsUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStatsUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", domain.ErrStatsUnavailable, err)
	}

	var snapshot domain.StatsSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedStats, err)
	}
	return &snapshot, nil
}
