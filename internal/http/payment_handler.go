package http

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

type PaymentMethodsHandler struct {
	resolver MethodResolver
	timeout  time.Duration
}

func NewPaymentMethodsHandler(resolver MethodResolver, timeout time.Duration) *PaymentMethodsHandler {
	return &PaymentMethodsHandler{
		resolver: resolver,
		timeout:  timeout,
	}
}

// ListMethods never fails: the resolver substitutes its built-in fallback
// on any boundary problem.
func (h *PaymentMethodsHandler) ListMethods(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	currency := q.Get("currency")
	if currency == "" {
		currency = "NGN"
	}
	country := q.Get("country")
	if country == "" {
		country = "NG"
	}
	amount, _ := strconv.ParseFloat(q.Get("amount"), 64)

	res := h.resolver.Resolve(ctx, currency, country, amount)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"currency":    currency,
		"country":     country,
		"amount":      amount,
		"methods":     res.Methods,
		"recommended": res.Recommended,
	})
}
