package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const httpTimeout = 10 * time.Second

// UpstreamError classifies any failure of a provider call: transport errors,
// timeouts, non-success statuses, and payloads that do not match the expected
// shape. Refresh cycles abort on it without touching the existing cache.
type UpstreamError struct {
	Op  string // "currencies" or "hierarchy"
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s call: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client talks to the flight-data provider's reference endpoints.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

const providerDefaultURL = "https://partners.api.skyscanner.net/apiservices/v3"

// NewClient constructs a Client against the production provider URL.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: providerDefaultURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL, apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// doGet performs an authenticated GET and decodes the JSON response into dst.
func (c *Client) doGet(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}

	return nil
}

type currenciesResponse struct {
	Currencies []Currency `json:"currencies"`
}

// ListCurrencies retrieves the provider's supported currency list.
func (c *Client) ListCurrencies(ctx context.Context) ([]Currency, error) {
	endpoint := c.baseURL + "/culture/currencies"

	var raw currenciesResponse
	if err := c.doGet(ctx, endpoint, &raw); err != nil {
		return nil, &UpstreamError{Op: "currencies", Err: err}
	}

	// A decodable body without the currencies collection is still malformed.
	if raw.Currencies == nil {
		return nil, &UpstreamError{Op: "currencies", Err: fmt.Errorf("payload has no currencies collection")}
	}

	return raw.Currencies, nil
}

type hierarchyResponse struct {
	Places map[string]Place `json:"places"`
}

// ListPlaceHierarchy retrieves the full place hierarchy for a locale, keyed
// by opaque place ID.
func (c *Client) ListPlaceHierarchy(ctx context.Context, locale string) (map[string]Place, error) {
	endpoint := c.baseURL + "/geo/hierarchy/flights/" + url.PathEscape(locale)

	var raw hierarchyResponse
	if err := c.doGet(ctx, endpoint, &raw); err != nil {
		return nil, &UpstreamError{Op: "hierarchy", Err: err}
	}

	if raw.Places == nil {
		return nil, &UpstreamError{Op: "hierarchy", Err: fmt.Errorf("payload has no places collection")}
	}

	return raw.Places, nil
}
