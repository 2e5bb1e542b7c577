package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sentra-ops/incident-triage/internal/domain"
	"github.com/sentra-ops/incident-triage/internal/observability"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client implements domain.RegionResolver using the Nominatim reverse
// geocoding API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Nominatim client. An empty baseURL selects the public
// OSM instance.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// ResolveRegion converts coordinates into a jurisdiction label via reverse
// geocoding. An empty result with a nil error means the provider had no
// place data for the coordinates.
func (c *Client) ResolveRegion(ctx context.Context, lat, lng float64) (domain.RegionResult, error) {
	params := url.Values{
		"format": {"jsonv2"},
		"lat":    {fmt.Sprintf("%.6f", lat)},
		"lon":    {fmt.Sprintf("%.6f", lng)},
		"zoom":   {"10"},
	}
	fullURL := c.baseURL + "/reverse?" + params.Encode()

	start := time.Now()
	result, err := c.doRequest(ctx, fullURL)
	c.metrics.RegionAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.RegionRequests.WithLabelValues("error").Inc()
	case result.Label == "":
		c.metrics.RegionRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.RegionRequests.WithLabelValues("success").Inc()
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.RegionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.RegionResult{}, fmt.Errorf("create request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "incident-triage/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RegionResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.RegionResult{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var place response
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return domain.RegionResult{}, fmt.Errorf("decode response: %w", err)
	}

	return domain.RegionResult{
		Label:      place.label(),
		Confidence: place.Importance,
	}, nil
}

// Nominatim API response types.

type response struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
	Address     address `json:"address"`
}

type address struct {
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	County        string `json:"county"`
	StateDistrict string `json:"state_district"`
	State         string `json:"state"`
}

// label picks the most specific populated place name available.
func (r response) label() string {
	a := r.Address
	for _, candidate := range []string{a.City, a.Town, a.Village, a.County, a.StateDistrict, a.State} {
		if candidate != "" {
			return candidate
		}
	}
	return r.Name
}
