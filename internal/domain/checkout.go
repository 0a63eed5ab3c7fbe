package domain

type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type Address struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type FeeModel struct {
	Percentage float64 `json:"percentage"`
	Fixed      float64 `json:"fixed"`
	Currency   string  `json:"currency"`
}

// PaymentMethod describes one processor option as returned by the
// payment-methods API. Lower priority means preferred.
type PaymentMethod struct {
	Processor           string   `json:"processor"`
	Name                string   `json:"name"`
	Priority            int      `json:"priority"`
	Methods             []string `json:"methods"`
	Features            []string `json:"features,omitempty"`
	Fees                FeeModel `json:"fees"`
	Icon                string   `json:"icon,omitempty"`
	Description         string   `json:"description,omitempty"`
	SupportedCurrencies []string `json:"supportedCurrencies"`
	SupportedRegions    []string `json:"supportedRegions"`
	IsRecommended       bool     `json:"isRecommended"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest is the payload POSTed to /stores/{storeId}/orders.
type OrderRequest struct {
	Items                []OrderItem `json:"items"`
	Customer             Customer    `json:"customer"`
	ShippingAddress      Address     `json:"shippingAddress"`
	BillingAddress       Address     `json:"billingAddress"`
	CustomerNotes        string      `json:"customerNotes"`
	UseShippingAsBilling bool        `json:"useShippingAsBilling"`
}

// PaymentInit carries the hosted-payment-page handoff returned on a
// successful order creation. AuthorizationURL is the contract: a success
// response without it is treated as a failure.
type PaymentInit struct {
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode,omitempty"`
	Reference        string `json:"reference,omitempty"`
}

type OrderResponse struct {
	Message     string       `json:"message,omitempty"`
	OrderNumber string       `json:"orderNumber,omitempty"`
	Payment     *PaymentInit `json:"payment,omitempty"`
}

type TrackedItem struct {
	ProductID   string  `json:"productId"`
	Title       string  `json:"title"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	VariantName string  `json:"variantName,omitempty"`
}

// Order is the read-only view returned by the tracking API.
type Order struct {
	ID                string        `json:"id"`
	OrderNumber       string        `json:"orderNumber"`
	Status            string        `json:"status"`
	Total             float64       `json:"total"`
	Currency          string        `json:"currency"`
	CustomerEmail     string        `json:"customerEmail"`
	CreatedAt         string        `json:"createdAt"`
	ShippingAddress   Address       `json:"shippingAddress"`
	Items             []TrackedItem `json:"items"`
	TrackingNumber    string        `json:"trackingNumber,omitempty"`
	EstimatedDelivery string        `json:"estimatedDelivery,omitempty"`
}
