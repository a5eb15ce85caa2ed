package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultBaseURL   = "https://api.exchangerate-api.com"
	defaultReference = "USD"
	latestRatesPath  = "/v4/latest/"
)

// ErrProviderStatus indicates the provider answered with a non-success HTTP status.
var ErrProviderStatus = errors.New("currency: provider returned non-success status")

// ClientConfig bundles configuration required to instantiate a Client.
type ClientConfig struct {
	BaseURL    string
	Reference  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client fetches exchange-rate tables and normalizes submitted prices into a
// fixed reference currency.
type Client struct {
	baseURL    string
	reference  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a Client, applying defaults for unset optional fields.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	reference := strings.ToUpper(strings.TrimSpace(cfg.Reference))
	if reference == "" {
		reference = defaultReference
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
		baseURL:    baseURL,
		reference:  reference,
		httpClient: httpClient,
		logger:     logger,
	}
}

type rateTablePayload struct {
	Provider string             `json:"provider"`
	Base     string             `json:"base"`
	Rates    map[string]float64 `json:"rates"`
}

// Convert normalizes amount from the submitted currency into the reference
// currency using the provider's current rate table. Content-level problems
// (malformed body, absent or non-positive reference rate) fall back to the
// original amount; transport failures and non-success statuses return an error.
func (c *Client) Convert(ctx context.Context, code string, amount float64) (float64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" || normalized == c.reference {
		return amount, nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+latestRatesPath+normalized, nil)
	if err != nil {
		return 0, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %d", ErrProviderStatus, response.StatusCode)
	}

	var payload rateTablePayload
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		c.logger.Warn("malformed rate table, keeping original price",
			zap.String("currency", normalized),
			zap.Error(err))
		return amount, nil
	}

	rate, ok := payload.Rates[c.reference]
	if !ok || rate <= 0 {
		c.logger.Warn("reference rate absent from table, keeping original price",
			zap.String("currency", normalized),
			zap.String("reference", c.reference))
		return amount, nil
	}

	return amount * rate, nil
}
