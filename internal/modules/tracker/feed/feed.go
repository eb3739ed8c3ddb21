// Package feed retrieves and parses the NASA OEM ephemeris document that
// carries ISS state vectors.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"iss-tracker/internal/modules/tracker/types"
)

// ErrFetchFailed reports that the upstream feed was unreachable or answered
// with a non-2xx status. It is distinct from parse outcomes so callers can
// tell "could not get the document" from "document had no usable data".
var ErrFetchFailed = errors.New("failed to fetch ephemeris feed")

// Client fetches the OEM document over plain HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and parses the feed, returning the records in feed order.
func (c *Client) Fetch(ctx context.Context) ([]types.StateVector, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream status %d", ErrFetchFailed, resp.StatusCode)
	}

	return ParseOEM(resp.Body)
}
