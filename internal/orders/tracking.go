package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/creatorly/storefront/internal/domain"
)

// ErrOrderNotFound covers boundary 4xx responses on a tracking lookup; the
// wrapped message is shopper-readable. Transport-level failures are
// reported separately.
var ErrOrderNotFound = errors.New("order not found")

// Track looks up an order by email and order number. Read-only, a single
// round trip, no retry.
func (c *Client) Track(ctx context.Context, email, orderNumber string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("email", email)
	params.Set("orderNumber", orderNumber)

	endpoint := fmt.Sprintf("%s/orders/track?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tracking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracking request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tracking response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, boundaryMessage(data, "Order not found"))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tracking request failed with status %d", resp.StatusCode)
	}

	var out struct {
		Order *domain.Order `json:"order"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode tracking response: %w", err)
	}
	if out.Order == nil {
		return nil, fmt.Errorf("tracking response is missing the order")
	}
	return out.Order, nil
}
