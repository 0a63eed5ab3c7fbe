package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/creatorly/storefront/internal/cart"
	"github.com/creatorly/storefront/internal/checkout"
	"github.com/creatorly/storefront/internal/domain"
	"github.com/creatorly/storefront/internal/events"
	"github.com/creatorly/storefront/internal/orders"
	"github.com/creatorly/storefront/internal/payment"
)

// MethodResolver is the payment-method lookup the checkout flow uses to
// auto-select a recommended processor when the shopper has not picked one.
type MethodResolver interface {
	Resolve(ctx context.Context, currency, country string, amount float64) *payment.Resolution
}

type CheckoutHandler struct {
	stores   *cart.Stores
	orders   checkout.OrderCreator
	resolver MethodResolver
	events   events.Publisher
	storeID  string
	timeout  time.Duration
}

func NewCheckoutHandler(stores *cart.Stores, creator checkout.OrderCreator, resolver MethodResolver, pub events.Publisher, storeID string, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		stores:   stores,
		orders:   creator,
		resolver: resolver,
		events:   pub,
		storeID:  storeID,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	Customer             domain.Customer       `json:"customer"`
	ShippingAddress      domain.Address        `json:"shippingAddress"`
	BillingAddress       domain.Address        `json:"billingAddress"`
	CustomerNotes        string                `json:"customerNotes"`
	UseShippingAsBilling *bool                 `json:"useShippingAsBilling"`
	Currency             string                `json:"currency"`
	PaymentMethod        *domain.PaymentMethod `json:"paymentMethod"`
}

type CheckoutFailureDTO struct {
	Error  string               `json:"error"`
	Code   string               `json:"code"`
	Fields checkout.FieldErrors `json:"fields,omitempty"`
}

type CheckoutSuccessDTO struct {
	RedirectURL string `json:"redirectUrl"`
}

// Submit materializes a checkout form from the request body, runs the full
// state machine and either hands back the payment redirect URL or the
// field and form errors that blocked submission.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := h.stores.ForSlot(sessionID)
	form := checkout.NewForm(store, h.orders, h.storeID,
		checkout.WithEvents(h.events, sessionID))

	// Currency first: switching it rewrites both countries, which the
	// payload's explicit values may then override.
	if req.Currency != "" {
		form.SetCurrency(req.Currency)
	}
	form.SetCustomer(req.Customer)
	form.SetShippingAddress(req.ShippingAddress)
	if req.UseShippingAsBilling != nil {
		form.SetUseShippingAsBilling(*req.UseShippingAsBilling)
	}
	if !form.Details().UseShippingAsBilling {
		form.SetBillingAddress(req.BillingAddress)
	}
	form.SetNotes(req.CustomerNotes)

	method := req.PaymentMethod
	if method == nil {
		res := h.resolver.Resolve(ctx, form.Currency(),
			checkout.CountryForCurrency(form.Currency()),
			domain.Subtotal(store.Load(ctx)))
		method = res.Recommended
	}
	form.SelectPaymentMethod(method)

	redirectURL, err := form.Submit(ctx)
	if err != nil {
		h.respondSubmitFailure(w, form, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutSuccessDTO{RedirectURL: redirectURL})
}

func (h *CheckoutHandler) respondSubmitFailure(w http.ResponseWriter, form *checkout.Form, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondJSON(w, http.StatusBadRequest, CheckoutFailureDTO{
			Error: form.GeneralError(),
			Code:  "empty_cart",
		})
	case errors.Is(err, checkout.ErrValidationFailed):
		msg := form.GeneralError()
		if msg == "" {
			msg = "Please fix the errors below"
		}
		respondJSON(w, http.StatusUnprocessableEntity, CheckoutFailureDTO{
			Error:  msg,
			Code:   "validation_failed",
			Fields: form.FieldErrors(),
		})
	default:
		status := http.StatusBadGateway
		var apiErr *orders.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
		respondJSON(w, status, CheckoutFailureDTO{
			Error: form.GeneralError(),
			Code:  "order_creation_failed",
		})
	}
}
