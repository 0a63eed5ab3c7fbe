package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/creatorly/storefront/internal/cart"
	"github.com/creatorly/storefront/internal/domain"
	"github.com/creatorly/storefront/internal/events"
	"github.com/creatorly/storefront/internal/orders"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCart struct {
	items   []domain.LineItem
	cleared bool
}

func (m *mockCart) Load(context.Context) []domain.LineItem {
	if m.cleared {
		return nil
	}
	return m.items
}

func (m *mockCart) Clear(context.Context) error {
	m.cleared = true
	return nil
}

type mockOrders struct {
	calls       int
	lastStoreID string
	lastOrder   domain.OrderRequest
	resp        *domain.OrderResponse
	err         error
}

func (m *mockOrders) Create(_ context.Context, storeID string, order domain.OrderRequest) (*domain.OrderResponse, error) {
	m.calls++
	m.lastStoreID = storeID
	m.lastOrder = order
	return m.resp, m.err
}

type mockPublisher struct {
	events []events.OrderSubmitted
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, evt events.OrderSubmitted) error {
	m.events = append(m.events, evt)
	return m.err
}

func sampleCart() *mockCart {
	return &mockCart{items: []domain.LineItem{
		{ProductID: "p1", VariantID: "v1", Quantity: 2, Price: 1000, Title: "T"},
	}}
}

func sampleMethod() *domain.PaymentMethod {
	return &domain.PaymentMethod{
		Processor:     "paystack",
		Name:          "Paystack",
		Priority:      1,
		IsRecommended: true,
	}
}

func successResponse(url string) *domain.OrderResponse {
	return &domain.OrderResponse{
		OrderNumber: "ORD-1001",
		Payment:     &domain.PaymentInit{AuthorizationURL: url},
	}
}

// fillValid populates every required field with passing values.
func fillValid(f *Form) {
	d := validDetails()
	f.SetCustomer(d.Customer)
	f.SetShippingAddress(d.ShippingAddress)
	f.SelectPaymentMethod(sampleMethod())
}

func TestSubmit_EmptyCart_NeverContactsBoundary(t *testing.T) {
	creator := &mockOrders{resp: successResponse("https://pay.example/abc")}
	form := NewForm(&mockCart{}, creator, "aceman")
	fillValid(form)

	_, err := form.Submit(context.Background())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, creator.calls)
	assert.Equal(t, "Your cart is empty", form.GeneralError())
}

func TestSubmit_InvalidField_NeverContactsBoundary(t *testing.T) {
	creator := &mockOrders{resp: successResponse("https://pay.example/abc")}
	form := NewForm(sampleCart(), creator, "aceman")
	fillValid(form)
	form.SetCustomerField("email", "not-an-email")

	_, err := form.Submit(context.Background())

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, 0, creator.calls)
	assert.Equal(t, StatusFailed, form.Status())
	assert.Contains(t, form.FieldErrors(), "customer.email")
}

func TestSubmit_MissingPaymentMethod_FormLevelError(t *testing.T) {
	creator := &mockOrders{resp: successResponse("https://pay.example/abc")}
	form := NewForm(sampleCart(), creator, "aceman")
	d := validDetails()
	form.SetCustomer(d.Customer)
	form.SetShippingAddress(d.ShippingAddress)
	// No payment method selected.

	_, err := form.Submit(context.Background())

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, 0, creator.calls)
	assert.Equal(t, "Please select a payment method", form.GeneralError())
	assert.Empty(t, form.FieldErrors())
}

func TestSelectPaymentMethod_ClearsGeneralError(t *testing.T) {
	form := NewForm(sampleCart(), &mockOrders{}, "aceman")
	d := validDetails()
	form.SetCustomer(d.Customer)
	form.SetShippingAddress(d.ShippingAddress)
	_, _ = form.Submit(context.Background())
	require.NotEmpty(t, form.GeneralError())

	form.SelectPaymentMethod(sampleMethod())
	assert.Empty(t, form.GeneralError())
}

func TestSetCurrency_ResetsMethodAndCountries(t *testing.T) {
	form := NewForm(sampleCart(), &mockOrders{}, "aceman")
	fillValid(form)
	form.SetAddressField("shippingAddress", "country", "FR") // manual entry
	form.SetAddressField("billingAddress", "country", "DE")
	require.NotNil(t, form.SelectedMethod())

	form.SetCurrency("GBP")

	assert.Nil(t, form.SelectedMethod())
	assert.Equal(t, "GB", form.Details().ShippingAddress.Country)
	assert.Equal(t, "GB", form.Details().BillingAddress.Country)
}

func TestSetCurrency_UnknownFallsBackToDefaultRegion(t *testing.T) {
	form := NewForm(sampleCart(), &mockOrders{}, "aceman")

	form.SetCurrency("XXX")

	assert.Equal(t, "NG", form.Details().ShippingAddress.Country)
}

func TestFieldEdit_ClearsErrorImmediately(t *testing.T) {
	form := NewForm(sampleCart(), &mockOrders{}, "aceman")
	fillValid(form)
	form.SetCustomerField("email", "broken")
	_, err := form.Submit(context.Background())
	require.ErrorIs(t, err, ErrValidationFailed)
	require.Contains(t, form.FieldErrors(), "customer.email")
	require.Equal(t, StatusFailed, form.Status())

	form.SetCustomerField("email", "fixed@example.com")

	assert.NotContains(t, form.FieldErrors(), "customer.email")
	assert.Equal(t, StatusCollecting, form.Status())
}

func TestSubmit_BoundaryError_PreservesCart(t *testing.T) {
	shopperCart := sampleCart()
	creator := &mockOrders{err: &orders.APIError{StatusCode: 422, Message: "Insufficient stock"}}
	form := NewForm(shopperCart, creator, "aceman")
	fillValid(form)

	_, err := form.Submit(context.Background())

	require.Error(t, err)
	assert.False(t, shopperCart.cleared)
	assert.Len(t, shopperCart.Load(context.Background()), 1)
	assert.Equal(t, StatusFailed, form.Status())
	assert.Equal(t, "Insufficient stock", form.GeneralError())
}

func TestSubmit_TransportError_GenericMessage(t *testing.T) {
	shopperCart := sampleCart()
	creator := &mockOrders{err: errors.New("dial tcp: connection refused")}
	form := NewForm(shopperCart, creator, "aceman")
	fillValid(form)

	_, err := form.Submit(context.Background())

	require.Error(t, err)
	assert.False(t, shopperCart.cleared)
	assert.Equal(t, "Checkout failed. Please try again.", form.GeneralError())
}

func TestSubmit_SuccessWithoutRedirect_PreservesCart(t *testing.T) {
	shopperCart := sampleCart()
	creator := &mockOrders{resp: &domain.OrderResponse{Message: "Order created"}}
	form := NewForm(shopperCart, creator, "aceman")
	fillValid(form)

	_, err := form.Submit(context.Background())

	assert.ErrorIs(t, err, ErrPaymentInitFailed)
	assert.False(t, shopperCart.cleared)
	assert.Equal(t, StatusFailed, form.Status())
	assert.Equal(t, "Payment initialization failed", form.GeneralError())
}

func TestSubmit_Success_ClearsCartAndReturnsRedirect(t *testing.T) {
	shopperCart := sampleCart()
	creator := &mockOrders{resp: successResponse("https://pay.example/abc")}
	form := NewForm(shopperCart, creator, "aceman")
	fillValid(form)

	redirectURL, err := form.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", redirectURL)
	assert.True(t, shopperCart.cleared)
	assert.Equal(t, StatusRedirecting, form.Status())
	assert.True(t, form.Status().IsTerminal())

	require.Equal(t, 1, creator.calls)
	assert.Equal(t, "aceman", creator.lastStoreID)
	require.Len(t, creator.lastOrder.Items, 1)
	assert.Equal(t, domain.OrderItem{ProductID: "p1", VariantID: "v1", Quantity: 2}, creator.lastOrder.Items[0])
}

func TestSubmit_ShippingUsedAsBilling(t *testing.T) {
	creator := &mockOrders{resp: successResponse("https://pay.example/abc")}
	form := NewForm(sampleCart(), creator, "aceman")
	fillValid(form)

	_, err := form.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, creator.lastOrder.ShippingAddress, creator.lastOrder.BillingAddress)
	assert.True(t, creator.lastOrder.UseShippingAsBilling)
}

func TestSubmit_DistinctBillingAddress(t *testing.T) {
	creator := &mockOrders{resp: successResponse("https://pay.example/abc")}
	form := NewForm(sampleCart(), creator, "aceman")
	fillValid(form)
	billing := domain.Address{
		Address:    "3 Allen Ave",
		City:       "Ikeja",
		State:      "Lagos",
		PostalCode: "100271",
		Country:    "NG",
	}
	form.SetUseShippingAsBilling(false)
	form.SetBillingAddress(billing)

	_, err := form.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, billing, creator.lastOrder.BillingAddress)
	assert.False(t, creator.lastOrder.UseShippingAsBilling)
}

func TestSubmit_PublishesOrderEvent(t *testing.T) {
	pub := &mockPublisher{}
	creator := &mockOrders{resp: successResponse("https://pay.example/abc")}
	form := NewForm(sampleCart(), creator, "aceman", WithEvents(pub, "session-1"))
	fillValid(form)

	_, err := form.Submit(context.Background())

	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	evt := pub.events[0]
	assert.Equal(t, "session-1", evt.SessionID)
	assert.Equal(t, "ORD-1001", evt.OrderNumber)
	assert.Equal(t, 2000.0, evt.TotalAmount)
	assert.Equal(t, "NGN", evt.Currency)
}

func TestSubmit_PublishFailureDoesNotAffectOutcome(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	creator := &mockOrders{resp: successResponse("https://pay.example/abc")}
	shopperCart := sampleCart()
	form := NewForm(shopperCart, creator, "aceman", WithEvents(pub, "session-1"))
	fillValid(form)

	redirectURL, err := form.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", redirectURL)
	assert.True(t, shopperCart.cleared)
}

// The full flow against a real store: the persisted slot is emptied only
// by a confirmed handoff.
func TestSubmit_EndToEndWithPersistedCart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	store := cart.NewStore(cart.NewRedisStorage(client, "session-1"))
	require.NoError(t, store.Add(ctx, domain.LineItem{
		ProductID: "p1", VariantID: "v1", Quantity: 2, Price: 1000, Title: "T",
	}))

	// First attempt fails at the boundary: the slot must survive.
	failing := &mockOrders{err: &orders.APIError{StatusCode: 422, Message: "Out of stock"}}
	form := NewForm(store, failing, "aceman")
	fillValid(form)
	_, err := form.Submit(ctx)
	require.Error(t, err)
	require.Len(t, store.Load(ctx), 1)

	// Second attempt succeeds: the slot is wiped.
	creator := &mockOrders{resp: successResponse("https://pay.example/abc")}
	form = NewForm(store, creator, "aceman")
	fillValid(form)
	redirectURL, err := form.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", redirectURL)
	assert.Empty(t, store.Load(ctx))
}
