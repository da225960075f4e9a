// package services defines HTTP clients for the feed, comment, and media APIs
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/rmp/internal/shared"
	"golang.org/x/time/rate"
)

// client holds what every JSON API client needs.
type client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newClient(baseURL, userAgent string, httpClient *http.Client, limiter *rate.Limiter) client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return client{baseURL: baseURL, userAgent: userAgent, httpClient: httpClient, limiter: limiter}
}

// getJSON performs a rate-limited GET and decodes the body into result.
//
// Transport failures and non-2xx statuses are returned as [*shared.FetchError].
// Errors name the endpoint without its query string, which may carry credentials.
func (c client) getJSON(ctx context.Context, endpoint string, params url.Values, result any) error {
	endpointURL := c.baseURL + endpoint
	apiURL := endpointURL
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &shared.FetchError{URL: endpointURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return &shared.FetchError{URL: endpointURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &shared.FetchError{URL: endpointURL, Status: resp.StatusCode}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response from %s: %v", shared.ErrFetchFailed, endpointURL, err)
		}
	}
	return nil
}

// PerMinute converts a requests-per-minute budget into a limiter; zero or less disables limiting.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(float64(n)/60.0), 1)
}
