package nagios

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
)

const maxSnapshotBytes = 16 << 20

// Client fetches servicestatus snapshots from a Nagios XI API.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Fetch performs a single GET against the region endpoint. The returned
// snapshot is the response body, unmodified. Errors wrap
// inspection.ErrMonitoringUnavailable and never contain the api key.
func (c *Client) Fetch(ctx context.Context, address string, region inspection.RegionProfile) (inspection.Snapshot, error) {
	u, err := url.Parse(region.EndpointURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid endpoint for %s", inspection.ErrMonitoringUnavailable, region.Label)
	}
	q := u.Query()
	q.Set("apikey", region.Credential)
	q.Set("pretty", "1")
	q.Set("address", address)
	u.RawQuery = q.Encode()

	endpoint := redact(u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s", inspection.ErrMonitoringUnavailable, endpoint)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error embeds the full URL including the api key
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%w: GET %s: %w", inspection.ErrMonitoringUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: GET %s: status %d", inspection.ErrMonitoringUnavailable, endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", inspection.ErrMonitoringUnavailable, endpoint, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: GET %s: response is not valid JSON", inspection.ErrMonitoringUnavailable, endpoint)
	}
	return inspection.Snapshot(body), nil
}

// redact returns the URL without query string or user info.
func redact(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.User = nil
	c.Fragment = ""
	return c.String()
}
