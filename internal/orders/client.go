package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/creatorly/storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// APIError is a boundary rejection with a shopper-readable message.
// Transport failures are plain errors, not APIErrors.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

// Client talks to the order API: order creation and read-only tracking.
type Client struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
}

// Create POSTs the order payload for the given store. A non-2xx status
// comes back as *APIError carrying the boundary's message.
func (c *Client) Create(ctx context.Context, storeID string, order domain.OrderRequest) (*domain.OrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/stores/%s/orders", c.baseURL, url.PathEscape(storeID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    boundaryMessage(data, "Order creation failed"),
		}
	}

	var out domain.OrderResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	return &out, nil
}

// boundaryMessage pulls the message field out of an error body, falling
// back when the body is not the expected shape.
func boundaryMessage(data []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fallback
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return fallback
}
