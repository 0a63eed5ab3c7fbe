package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/creatorly/storefront/internal/cart"
	"github.com/creatorly/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	stores  *cart.Stores
	timeout time.Duration
}

func NewCartHandler(stores *cart.Stores, timeout time.Duration) *CartHandler {
	return &CartHandler{
		stores:  stores,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID   string  `json:"productId"`
	VariantID   string  `json:"variantId,omitempty"`
	Quantity    int     `json:"quantity"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	VariantName string  `json:"variantName,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  float64           `json:"subtotal"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	store := h.stores.ForSlot(sessionID)
	respondCart(w, http.StatusOK, store.Load(ctx))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	store := h.stores.ForSlot(sessionID)
	err := store.Add(ctx, domain.LineItem{
		ProductID:   req.ProductID,
		VariantID:   req.VariantID,
		Quantity:    req.Quantity,
		Title:       req.Title,
		Price:       req.Price,
		Image:       req.Image,
		VariantName: req.VariantName,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondCart(w, http.StatusCreated, store.Load(ctx))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	variantID := r.URL.Query().Get("variant")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// Zero and below remove the line, mirroring the minus control on a
	// quantity of one.
	store := h.stores.ForSlot(sessionID)
	if err := store.SetQuantity(ctx, productID, variantID, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondCart(w, http.StatusOK, store.Load(ctx))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	variantID := r.URL.Query().Get("variant")

	store := h.stores.ForSlot(sessionID)
	if err := store.Remove(ctx, productID, variantID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondCart(w, http.StatusOK, store.Load(ctx))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	store := h.stores.ForSlot(sessionID)
	if err := store.Clear(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondCart(w, http.StatusOK, store.Load(ctx))
}

func respondCart(w http.ResponseWriter, status int, items []domain.LineItem) {
	if items == nil {
		items = []domain.LineItem{}
	}
	respondJSON(w, status, CartResponseDTO{
		Items:     items,
		ItemCount: domain.ItemCount(items),
		Subtotal:  domain.Subtotal(items),
	})
}
