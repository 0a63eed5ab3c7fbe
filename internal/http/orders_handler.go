package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/creatorly/storefront/internal/domain"
	"github.com/creatorly/storefront/internal/orders"
)

// OrderTracker is the read-only tracking boundary.
type OrderTracker interface {
	Track(ctx context.Context, email, orderNumber string) (*domain.Order, error)
}

type OrdersHandler struct {
	tracker OrderTracker
	timeout time.Duration
}

func NewOrdersHandler(tracker OrderTracker, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		tracker: tracker,
		timeout: timeout,
	}
}

// GET /api/v1/orders/track?email=&orderNumber=
func (h *OrdersHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	email := q.Get("email")
	orderNumber := q.Get("orderNumber")
	if email == "" || orderNumber == "" {
		respondError(w, http.StatusBadRequest, "missing_params", "email and orderNumber are required")
		return
	}

	order, err := h.tracker.Track(ctx, email, orderNumber)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order_not_found", notFoundMessage(err))
			return
		}
		respondError(w, http.StatusBadGateway, "tracking_unavailable", "Failed to track order. Please try again.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// notFoundMessage surfaces the boundary's own text when it added one.
func notFoundMessage(err error) string {
	msg := err.Error()
	prefix := orders.ErrOrderNotFound.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return "Order not found"
}
