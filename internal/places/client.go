package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultRadiusMeters = 10000
	defaultBaseURL      = "https://maps.googleapis.com"
	textSearchPath      = "/maps/api/place/textsearch/json"
	nearbySearchPath    = "/maps/api/place/nearbysearch/json"
	placeType           = "restaurant"
)

var (
	// ErrMissingAPIKey indicates no provider credential is configured.
	ErrMissingAPIKey = errors.New("places: api key is not configured")
	// ErrNoQuery indicates neither a text query nor a coordinate pair was supplied.
	ErrNoQuery = errors.New("places: no search input provided")
	// ErrProviderStatus indicates the provider answered with a non-success HTTP status.
	ErrProviderStatus = errors.New("places: provider returned non-success status")
)

// ClientConfig bundles configuration required to instantiate a Client.
type ClientConfig struct {
	APIKey     string
	Radius     int
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Query describes the two accepted search inputs. A text query takes
// precedence when both are present.
type Query struct {
	Text      string
	Latitude  *float64
	Longitude *float64
}

// Client wraps the external places-search provider. Results are returned
// verbatim with no local filtering, dedup, caching, or retries.
type Client struct {
	apiKey     string
	radius     int
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a Client, applying defaults for unset optional fields.
// A missing API key is reported per call rather than at construction so the
// service can boot without a credential.
func NewClient(cfg ClientConfig) *Client {
	radius := cfg.Radius
	if radius <= 0 {
		radius = defaultRadiusMeters
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		radius:     radius,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Search issues exactly one provider request and returns the result list
// verbatim as raw JSON.
func (c *Client) Search(ctx context.Context, query Query) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint, err := c.searchEndpoint(query)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrProviderStatus, response.StatusCode)
	}

	var payload struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("places: decode provider response: %w", err)
	}
	if len(payload.Results) == 0 {
		return json.RawMessage("[]"), nil
	}
	return payload.Results, nil
}

func (c *Client) searchEndpoint(query Query) (string, error) {
	values := url.Values{}
	values.Set("type", placeType)
	values.Set("key", c.apiKey)

	switch {
	case strings.TrimSpace(query.Text) != "":
		values.Set("query", strings.TrimSpace(query.Text))
		return c.baseURL + textSearchPath + "?" + values.Encode(), nil
	case query.Latitude != nil && query.Longitude != nil:
		values.Set("radius", strconv.Itoa(c.radius))
		values.Set("location", fmt.Sprintf("%v,%v", *query.Latitude, *query.Longitude))
		return c.baseURL + nearbySearchPath + "?" + values.Encode(), nil
	default:
		return "", ErrNoQuery
	}
}
