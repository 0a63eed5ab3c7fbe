package checkout

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/creatorly/storefront/internal/domain"
	"github.com/creatorly/storefront/internal/events"
	"github.com/creatorly/storefront/internal/orders"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrValidationFailed  = errors.New("checkout form failed validation")
	ErrPaymentInitFailed = errors.New("payment initialization failed")
)

const DefaultCurrency = "NGN"

// currencyCountries derives the address country from the selected
// currency. Unknown currencies fall back to the default region.
var currencyCountries = map[string]string{
	"NGN": "NG",
	"USD": "US",
	"GBP": "GB",
	"EUR": "EU",
	"GHS": "GH",
	"KES": "KE",
}

func CountryForCurrency(currency string) string {
	if country, ok := currencyCountries[strings.ToUpper(currency)]; ok {
		return country
	}
	return "NG"
}

// Cart is the slice of the cart store the form needs. The form never
// touches the persisted slot directly.
type Cart interface {
	Load(ctx context.Context) []domain.LineItem
	Clear(ctx context.Context) error
}

// OrderCreator is the order-creation boundary.
type OrderCreator interface {
	Create(ctx context.Context, storeID string, order domain.OrderRequest) (*domain.OrderResponse, error)
}

// Details is everything the form collects besides currency and payment
// method.
type Details struct {
	Customer             domain.Customer
	ShippingAddress      domain.Address
	BillingAddress       domain.Address
	CustomerNotes        string
	UseShippingAsBilling bool
}

type Option func(*Form)

// WithEvents publishes an order-submitted event after each confirmed
// handoff. Publish failures never affect the shopper-facing outcome.
func WithEvents(pub events.Publisher, sessionID string) Option {
	return func(f *Form) {
		f.events = pub
		f.sessionID = sessionID
	}
}

func NewForm(cart Cart, creator OrderCreator, storeID string, opts ...Option) *Form {
	f := &Form{
		cart:     cart,
		orders:   creator,
		storeID:  storeID,
		status:   StatusCollecting,
		currency: DefaultCurrency,
		errs:     make(FieldErrors),
	}
	f.details.UseShippingAsBilling = true
	country := CountryForCurrency(f.currency)
	f.details.ShippingAddress.Country = country
	f.details.BillingAddress.Country = country
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Form collects, validates and submits one checkout. Not safe for
// concurrent use; it models a single shopper's form.
type Form struct {
	cart    Cart
	orders  OrderCreator
	storeID string

	events    events.Publisher
	sessionID string

	status   Status
	details  Details
	currency string
	method   *domain.PaymentMethod
	errs     FieldErrors
	general  string
}

func (f *Form) Status() Status                        { return f.status }
func (f *Form) Details() Details                      { return f.details }
func (f *Form) Currency() string                      { return f.currency }
func (f *Form) SelectedMethod() *domain.PaymentMethod { return f.method }
func (f *Form) FieldErrors() FieldErrors              { return f.errs }
func (f *Form) GeneralError() string                  { return f.general }

// SetCustomerField updates one customer field and clears its error
// immediately, without waiting for a resubmit.
func (f *Form) SetCustomerField(field, value string) {
	switch field {
	case "email":
		f.details.Customer.Email = value
	case "firstName":
		f.details.Customer.FirstName = value
	case "lastName":
		f.details.Customer.LastName = value
	case "phone":
		f.details.Customer.Phone = value
	default:
		return
	}
	f.clearError("customer." + field)
}

// SetAddressField updates one field of the shipping or billing address and
// clears its error.
func (f *Form) SetAddressField(section, field, value string) {
	var addr *domain.Address
	switch section {
	case "shippingAddress":
		addr = &f.details.ShippingAddress
	case "billingAddress":
		addr = &f.details.BillingAddress
	default:
		return
	}
	switch field {
	case "address":
		addr.Address = value
	case "city":
		addr.City = value
	case "state":
		addr.State = value
	case "postalCode":
		addr.PostalCode = value
	case "country":
		addr.Country = value
	default:
		return
	}
	f.clearError(section + "." + field)
}

func (f *Form) SetCustomer(c domain.Customer) {
	f.SetCustomerField("email", c.Email)
	f.SetCustomerField("firstName", c.FirstName)
	f.SetCustomerField("lastName", c.LastName)
	f.SetCustomerField("phone", c.Phone)
}

func (f *Form) SetShippingAddress(a domain.Address) {
	f.setAddress("shippingAddress", a)
}

func (f *Form) SetBillingAddress(a domain.Address) {
	f.setAddress("billingAddress", a)
}

func (f *Form) setAddress(section string, a domain.Address) {
	f.SetAddressField(section, "address", a.Address)
	f.SetAddressField(section, "city", a.City)
	f.SetAddressField(section, "state", a.State)
	f.SetAddressField(section, "postalCode", a.PostalCode)
	if a.Country != "" {
		f.SetAddressField(section, "country", a.Country)
	}
}

func (f *Form) SetNotes(notes string) {
	f.details.CustomerNotes = notes
	f.edited()
}

func (f *Form) SetUseShippingAsBilling(use bool) {
	f.details.UseShippingAsBilling = use
	if use {
		for field := range f.errs {
			if strings.HasPrefix(field, "billingAddress.") {
				delete(f.errs, field)
			}
		}
	}
	f.edited()
}

// SetCurrency switches the purchase currency. A previously chosen payment
// method may not be valid for the new currency, so the selection resets,
// and both addresses' countries re-derive from the currency, overwriting
// any manual entry.
func (f *Form) SetCurrency(currency string) {
	f.currency = strings.ToUpper(currency)
	country := CountryForCurrency(f.currency)
	f.details.ShippingAddress.Country = country
	f.details.BillingAddress.Country = country
	f.method = nil
	f.edited()
}

func (f *Form) SelectPaymentMethod(method *domain.PaymentMethod) {
	f.method = method
	if method != nil {
		f.general = ""
	}
	f.edited()
}

// Submit runs the full protocol: empty-cart guard, validation, order
// creation, and on a confirmed handoff clears the cart and returns the
// payment redirect URL. Every failure leaves the cart and the collected
// fields intact.
func (f *Form) Submit(ctx context.Context) (string, error) {
	items := f.cart.Load(ctx)
	if len(items) == 0 {
		f.general = "Your cart is empty"
		return "", ErrEmptyCart
	}

	f.transition(StatusValidating)
	errs := Validate(f.details)
	if f.method == nil {
		f.general = "Please select a payment method"
	}
	if len(errs) > 0 || f.method == nil {
		f.errs = errs
		f.transition(StatusFailed)
		return "", ErrValidationFailed
	}
	f.errs = errs

	f.transition(StatusSubmitting)
	resp, err := f.orders.Create(ctx, f.storeID, f.buildOrderRequest(items))
	if err != nil {
		f.general = submitFailureMessage(err)
		f.transition(StatusFailed)
		return "", err
	}

	if resp.Payment == nil || resp.Payment.AuthorizationURL == "" {
		// The HTTP call succeeded but the contract requires a redirect URL.
		f.general = "Payment initialization failed"
		f.transition(StatusFailed)
		return "", ErrPaymentInitFailed
	}

	// The only path that clears the cart.
	if err := f.cart.Clear(ctx); err != nil {
		log.Printf("clear cart after checkout error: %v", err)
	}
	f.publishSubmitted(ctx, items, resp.OrderNumber)

	f.transition(StatusRedirecting)
	return resp.Payment.AuthorizationURL, nil
}

func (f *Form) buildOrderRequest(items []domain.LineItem) domain.OrderRequest {
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	billing := f.details.BillingAddress
	if f.details.UseShippingAsBilling {
		billing = f.details.ShippingAddress
	}

	return domain.OrderRequest{
		Items:                orderItems,
		Customer:             f.details.Customer,
		ShippingAddress:      f.details.ShippingAddress,
		BillingAddress:       billing,
		CustomerNotes:        f.details.CustomerNotes,
		UseShippingAsBilling: f.details.UseShippingAsBilling,
	}
}

func (f *Form) publishSubmitted(ctx context.Context, items []domain.LineItem, orderNumber string) {
	if f.events == nil {
		return
	}
	evt := events.OrderSubmitted{
		SessionID:   f.sessionID,
		OrderNumber: orderNumber,
		TotalAmount: domain.Subtotal(items),
		Currency:    f.currency,
		SubmittedAt: time.Now().UTC(),
	}
	for _, item := range items {
		evt.Items = append(evt.Items, domain.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	if err := f.events.Publish(ctx, evt); err != nil {
		log.Printf("publish order submitted event error: %v", err)
	}
}

func submitFailureMessage(err error) string {
	var apiErr *orders.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Checkout failed. Please try again."
}

func (f *Form) clearError(field string) {
	delete(f.errs, field)
	f.edited()
}

// edited returns a failed form to collecting; errors stay attached until
// their fields change.
func (f *Form) edited() {
	if f.status == StatusFailed {
		f.status = StatusCollecting
	}
}

func (f *Form) transition(next Status) {
	if !CanTransitionTo(f.status, next) {
		log.Printf("illegal checkout transition %s -> %s", f.status, next)
		return
	}
	f.status = next
}
