// Package menu retrieves structured menu data and composes the spoken and
// visual renderings of a menu response.
package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/soyeahso/obiefood/internal/domain"
	"github.com/soyeahso/obiefood/internal/logging"
)

// Fetcher retrieves the menu for a (date, meal) pair. dateParam is the
// YYYY/MM/DD request form from domain.ResolvedDate.
type Fetcher interface {
	Fetch(ctx context.Context, dateParam, meal string) (domain.Menu, error)
}

// HTTPFetcher fetches menu JSON over HTTP. Transient failures are retried
// with backoff here; callers treat any returned error as final.
type HTTPFetcher struct {
	baseURL string
	client  *retryablehttp.Client
	log     *logging.Logger
}

// NewHTTPFetcher creates a fetcher against the given base URL
// (e.g. "https://menus.example.edu/obfood").
func NewHTTPFetcher(baseURL string, timeout time.Duration, log *logging.Logger) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	return &HTTPFetcher{
		baseURL: baseURL,
		client:  client,
		log:     log.Sub("menu.fetch"),
	}
}

// Fetch GETs {base}/{YYYY/MM/DD}/{meal}.json and decodes the cafe-keyed
// payload, preserving section order.
func (f *HTTPFetcher) Fetch(ctx context.Context, dateParam, meal string) (domain.Menu, error) {
	url := fmt.Sprintf("%s/%s/%s.json", f.baseURL, dateParam, meal)
	f.log.Debug().Str("url", url).Msg("fetching menu")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Menu{}, fmt.Errorf("menu request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Menu{}, fmt.Errorf("menu fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.Menu{}, fmt.Errorf("menu fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Menu{}, fmt.Errorf("menu fetch: reading body: %w", err)
	}

	var m domain.Menu
	if err := json.Unmarshal(body, &m); err != nil {
		f.log.Warn().Err(err).Str("url", url).Msg("malformed menu payload")
		return domain.Menu{}, fmt.Errorf("menu payload: %w", err)
	}
	return m, nil
}
