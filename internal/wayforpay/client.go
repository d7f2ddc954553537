package wayforpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL is the production gateway endpoint.
const DefaultAPIURL = "https://api.wayforpay.com/api"

// ErrGatewayUnavailable wraps transport-level failures talking to the
// gateway. Callers treat it as retryable.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Client is a thin HTTP client for the gateway's merchant API.
type Client struct {
	apiURL string
	http   *http.Client
}

// NewClient instantiates the gateway client with sane defaults.
func NewClient(apiURL string, httpClient *http.Client) (*Client, error) {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{apiURL: apiURL, http: httpClient}, nil
}

// CreateInvoice posts a signed CREATE_INVOICE request and returns the
// gateway's reply. The request must already carry its merchantSignature.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResponse, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("wayforpay client not configured")
	}
	if strings.TrimSpace(req.MerchantSignature) == "" {
		return nil, errors.New("invoice request is unsigned")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode invoice request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build invoice request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %s", ErrGatewayUnavailable, resp.Status)
	}
	var decoded InvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGatewayUnavailable, err)
	}
	if decoded.ReasonCode != ReasonCodeOK {
		return nil, fmt.Errorf("gateway refused invoice: %s (%s)", decoded.Reason, decoded.ReasonCode)
	}
	if strings.TrimSpace(decoded.InvoiceURL) == "" {
		return nil, errors.New("gateway response missing invoice URL")
	}
	return &decoded, nil
}
