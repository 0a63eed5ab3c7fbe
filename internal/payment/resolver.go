package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/creatorly/storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

// Resolution is the ranked set of usable payment options for one
// (currency, country, amount) combination.
type Resolution struct {
	Methods     []domain.PaymentMethod `json:"methods"`
	Recommended *domain.PaymentMethod  `json:"recommended"`
}

func NewResolver(baseURL string, timeout time.Duration) *Resolver {
	return &Resolver{
		baseURL: baseURL,
		httpc: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

// Resolver fetches ranked payment methods from the payment-methods API.
// It never fails outright: any boundary problem yields the built-in
// fallback processor, so checkout always has at least one selectable
// method. Safe to call repeatedly as inputs change.
type Resolver struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
	sfg     singleflight.Group // collapses concurrent identical lookups
}

func (r *Resolver) Resolve(ctx context.Context, currency, country string, amount float64) *Resolution {
	key := fmt.Sprintf("%s|%s|%.2f", currency, country, amount)
	v, _, _ := r.sfg.Do(key, func() (interface{}, error) {
		res, err := r.fetch(ctx, currency, country, amount)
		if err != nil {
			log.Printf("payment methods fetch failed, using fallback: %v", err)
			return fallbackResolution(currency, country), nil
		}
		return res, nil
	})
	return v.(*Resolution)
}

func (r *Resolver) fetch(ctx context.Context, currency, country string, amount float64) (*Resolution, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	params := url.Values{}
	if currency != "" {
		params.Set("currency", currency)
	}
	if country != "" {
		params.Set("country", country)
	}
	if amount > 0 {
		params.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	}

	endpoint := fmt.Sprintf("%s/payment-methods?%s", r.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build payment methods request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment methods request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment methods request failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read payment methods response: %w", err)
	}

	var out Resolution
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode payment methods response: %w", err)
	}
	if len(out.Methods) == 0 {
		return nil, fmt.Errorf("payment methods response is empty")
	}
	if out.Recommended == nil {
		out.Recommended = pickRecommended(out.Methods)
	}
	return &out, nil
}

// pickRecommended prefers the server-flagged method, then the lowest
// priority number.
func pickRecommended(methods []domain.PaymentMethod) *domain.PaymentMethod {
	best := 0
	for i := range methods {
		if methods[i].IsRecommended {
			return &methods[i]
		}
		if methods[i].Priority < methods[best].Priority {
			best = i
		}
	}
	return &methods[best]
}

// fallbackResolution is the offline default: a processor assumed
// universally available so a resolver outage never blocks checkout.
func fallbackResolution(currency, country string) *Resolution {
	if currency == "" {
		currency = "NGN"
	}
	if country == "" {
		country = "NG"
	}
	method := domain.PaymentMethod{
		Processor: "paystack",
		Name:      "Paystack",
		Priority:  1,
		Methods:   []string{"card", "bank_transfer", "mobile_money"},
		Features:  []string{"secure", "instant_settlement"},
		Fees: domain.FeeModel{
			Percentage: 1.5,
			Fixed:      0,
			Currency:   currency,
		},
		Description:         "Secure payment processing",
		SupportedCurrencies: []string{currency},
		SupportedRegions:    []string{country},
		IsRecommended:       true,
	}
	return &Resolution{
		Methods:     []domain.PaymentMethod{method},
		Recommended: &method,
	}
}
