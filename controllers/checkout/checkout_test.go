package checkoutControllers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Killzin1000/tarsi-sweet-hub/controllers/delivery"
	"github.com/Killzin1000/tarsi-sweet-hub/controllers/payment"
	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

type fakeCart struct {
	lines   []models.CartLine
	cleared bool
}

func (f *fakeCart) Get(ctx context.Context, ownerID string) (*models.Cart, float64, error) {
	subtotal := 0.0
	for _, l := range f.lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
	}
	return &models.Cart{OwnerID: ownerID, Lines: f.lines}, subtotal, nil
}

func (f *fakeCart) Clear(ctx context.Context, ownerID string) error {
	f.cleared = true
	f.lines = nil
	return nil
}

type fakeOrders struct {
	created     []*models.Order
	entries     []*models.LedgerEntry
	coupons     map[string]*models.Coupon
	points      map[string]int
	stamps      map[string]int
	deliveryIDs map[string]string
	createErr   error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		coupons:     map[string]*models.Coupon{},
		points:      map[string]int{},
		stamps:      map[string]int{},
		deliveryIDs: map[string]string{},
	}
}

func (f *fakeOrders) CreateOrder(ctx context.Context, order *models.Order, entry *models.LedgerEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = "order-1"
	entry.OrderID = &order.ID
	f.created = append(f.created, order)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeOrders) FindCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	return f.coupons[code], nil
}

func (f *fakeOrders) CreditLoyaltyPoints(ctx context.Context, customerID string, points int) error {
	f.points[customerID] += points
	f.stamps[customerID]++
	return nil
}

func (f *fakeOrders) SetDeliveryID(ctx context.Context, orderID, deliveryID string) error {
	f.deliveryIDs[orderID] = deliveryID
	return nil
}

type fakePayments struct {
	result *paymentControllers.Result
	err    error
	calls  []paymentControllers.CreateRequest
}

func (f *fakePayments) Create(ctx context.Context, req paymentControllers.CreateRequest) (*paymentControllers.Result, error) {
	f.calls = append(f.calls, req)
	return f.result, f.err
}

type fakeCourier struct {
	delivery *deliveryControllers.Delivery
	err      error
	calls    int
	quoteID  string
}

func (f *fakeCourier) Dispatch(ctx context.Context, dest deliveryControllers.FullAddress, r deliveryControllers.Recipient, details, quoteID string) (*deliveryControllers.Delivery, error) {
	f.calls++
	f.quoteID = quoteID
	return f.delivery, f.err
}

var shipDest = deliveryControllers.FullAddress{
	Street: "Avenida Paulista", Number: "1000", District: "Bela Vista",
	City: "São Paulo", Region: "SP", PostalCode: "01310100",
}

var testQuoteSecret = []byte("quote-test-secret")

func validQuote(fee float64) *deliveryControllers.Quote {
	q := &deliveryControllers.Quote{
		ID:                 "dqt_1",
		Fee:                fee,
		ExpiresAt:          time.Now().Add(10 * time.Minute),
		AddressFingerprint: shipDest.Fingerprint(),
	}
	q.Sign(testQuoteSecret)
	return q
}

func newAssembler(cart *fakeCart, orders *fakeOrders, pay *fakePayments, courier *fakeCourier) *Assembler {
	return &Assembler{Cart: cart, Orders: orders, Payments: pay, Courier: courier, QuoteSecret: testQuoteSecret}
}

func TestSubmitPickupTotals(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{ProductID: "p1", ProductName: "Trufas Sortidas", UnitPrice: 45.00, Quantity: 1}}}
	orders := newFakeOrders()
	a := newAssembler(cart, orders, &fakePayments{}, &fakeCourier{})

	result, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID:    "maria",
		DeliveryType:  DeliveryPickup,
		PaymentMethod: models.PaymentMethodOnPickup,
	})
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, 45.00, order.Total)
	assert.Equal(t, 0.0, order.DeliveryFee)
	assert.Equal(t, 45, order.PointsEarned)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Equal(t, models.PaymentOnSite, order.PaymentStanding)
	assert.True(t, cart.cleared)
	assert.Equal(t, 45, orders.points["maria"])
	assert.Equal(t, 1, orders.stamps["maria"], "one loyalty stamp per order")

	// one credit ledger entry for the order total
	require.Len(t, orders.entries, 1)
	assert.Equal(t, models.LedgerCredit, orders.entries[0].Kind)
	assert.Equal(t, 45.00, orders.entries[0].Amount)
}

func TestSubmitShipTotalsAndDispatch(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{ProductID: "p2", ProductName: "Bolo de Aniversário", UnitPrice: 120.00, Quantity: 1}}}
	orders := newFakeOrders()
	courier := &fakeCourier{delivery: &deliveryControllers.Delivery{ID: "del_1", Status: "pending"}}
	a := newAssembler(cart, orders, &fakePayments{}, courier)

	result, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID:    "maria",
		DeliveryType:  DeliveryShip,
		Address:       &shipDest,
		Quote:         validQuote(15.00),
		Recipient:     deliveryControllers.Recipient{Name: "Maria", Phone: "11987654321"},
		PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, 135.00, order.Total)
	assert.Equal(t, 15.00, order.DeliveryFee)
	assert.Equal(t, 135, order.PointsEarned)
	require.NotNil(t, order.DeliveryAddress)
	assert.Contains(t, *order.DeliveryAddress, "Avenida Paulista, 1000")

	assert.Equal(t, 1, courier.calls)
	assert.Equal(t, "dqt_1", courier.quoteID)
	assert.Equal(t, "del_1", orders.deliveryIDs["order-1"])
}

func TestSubmitApprovedPaymentCreatesOrderOnce(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{UnitPrice: 45.00, Quantity: 1}}}
	orders := newFakeOrders()
	pay := &fakePayments{result: &paymentControllers.Result{Status: paymentControllers.StatusApproved, ProviderID: "12345"}}
	a := newAssembler(cart, orders, pay, &fakeCourier{})

	result, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID:    "maria",
		DeliveryType:  DeliveryPickup,
		PaymentMethod: models.PaymentMethodCard,
		Card:          CardData{Token: "tok_1", MethodID: "visa"},
	})
	require.NoError(t, err)

	require.Len(t, orders.created, 1, "order assembler invoked exactly once")
	assert.True(t, cart.cleared)
	assert.Equal(t, models.PaymentConfirmed, result.Order.PaymentStanding)
	require.NotNil(t, result.Order.PaymentID)
	assert.Equal(t, "12345", *result.Order.PaymentID)

	// the charged amount is the server-computed total
	require.Len(t, pay.calls, 1)
	assert.Equal(t, 45.00, pay.calls[0].Amount)
}

func TestSubmitRejectedPaymentKeepsCart(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{UnitPrice: 45.00, Quantity: 1}}}
	orders := newFakeOrders()
	pay := &fakePayments{result: &paymentControllers.Result{
		Status: paymentControllers.StatusRejected, Detail: "cc_rejected_bad_filled_security_code",
	}}
	a := newAssembler(cart, orders, pay, &fakeCourier{})

	_, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryPickup,
		PaymentMethod: models.PaymentMethodCard, Card: CardData{Token: "tok_1"},
	})

	var rejected *PaymentRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "cc_rejected_bad_filled_security_code", rejected.Detail)
	assert.Empty(t, orders.created, "no order on rejection")
	assert.False(t, cart.cleared, "cart retained for retry")
}

func TestSubmitPendingPixPersistsAwaitingOrder(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{UnitPrice: 45.00, Quantity: 1}}}
	orders := newFakeOrders()
	pay := &fakePayments{result: &paymentControllers.Result{
		Status: paymentControllers.StatusPending, ProviderID: "67890",
		QRCode: "00020126pix", QRCodeBase64: "aW1n",
	}}
	a := newAssembler(cart, orders, pay, &fakeCourier{})

	result, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryPickup,
		PaymentMethod: models.PaymentMethodPix,
	})
	require.NoError(t, err)

	require.Len(t, orders.created, 1, "order persisted even though payment is unconfirmed")
	assert.Equal(t, models.PaymentAwaiting, result.Order.PaymentStanding)
	assert.Equal(t, models.OrderStatusNew, result.Order.Status)
	assert.True(t, cart.cleared, "cart cleared despite unconfirmed payment")

	// QR payload surfaced for the customer
	require.NotNil(t, result.Payment)
	assert.Equal(t, "00020126pix", result.Payment.QRCode)
	assert.Equal(t, "aW1n", result.Payment.QRCodeBase64)

	// pix defaults the provider method id
	require.Len(t, pay.calls, 1)
	assert.Equal(t, "pix", pay.calls[0].MethodID)
}

func TestSubmitProviderFailureTreatedAsRejected(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{UnitPrice: 45.00, Quantity: 1}}}
	orders := newFakeOrders()
	pay := &fakePayments{err: errors.New("connection reset")}
	a := newAssembler(cart, orders, pay, &fakeCourier{})

	_, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryPickup,
		PaymentMethod: models.PaymentMethodCard, Card: CardData{Token: "tok"},
	})

	var rejected *PaymentRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Empty(t, rejected.Detail, "side-channel failures carry no provider detail")
	assert.Empty(t, orders.created)
	assert.False(t, cart.cleared)
}

func TestSubmitEmptyCart(t *testing.T) {
	a := newAssembler(&fakeCart{}, newFakeOrders(), &fakePayments{}, &fakeCourier{})
	_, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryPickup, PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitShipRequiresAddressAndValidQuote(t *testing.T) {
	newCart := func() *fakeCart {
		return &fakeCart{lines: []models.CartLine{{UnitPrice: 45.00, Quantity: 1}}}
	}

	a := newAssembler(newCart(), newFakeOrders(), &fakePayments{}, &fakeCourier{})
	_, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryShip, PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrMissingAddress)

	// quote made for a different address must be refused
	a = newAssembler(newCart(), newFakeOrders(), &fakePayments{}, &fakeCourier{})
	staleQuote := validQuote(15.00)
	staleQuote.AddressFingerprint = "something-else"
	_, err = a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryShip,
		Address: &shipDest, Quote: staleQuote, PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrInvalidQuote)

	// expired quote, properly signed so expiry itself is what fails
	a = newAssembler(newCart(), newFakeOrders(), &fakePayments{}, &fakeCourier{})
	expired := validQuote(15.00)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	expired.Sign(testQuoteSecret)
	_, err = a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryShip,
		Address: &shipDest, Quote: expired, PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrInvalidQuote)
}

func TestSubmitForgedQuoteRejected(t *testing.T) {
	newCart := func() *fakeCart {
		return &fakeCart{lines: []models.CartLine{{UnitPrice: 45.00, Quantity: 1}}}
	}

	// a client can compute the address fingerprint, but not the signature
	orders := newFakeOrders()
	a := newAssembler(newCart(), orders, &fakePayments{}, &fakeCourier{})
	forged := &deliveryControllers.Quote{
		ID:                 "dqt_forged",
		Fee:                -1000.00,
		ExpiresAt:          time.Now().Add(10 * time.Minute),
		AddressFingerprint: shipDest.Fingerprint(),
	}
	_, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryShip,
		Address: &shipDest, Quote: forged, PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrInvalidQuote)
	assert.Empty(t, orders.created, "no order from a forged quote")
	assert.Empty(t, orders.entries, "no ledger entry from a forged quote")

	// a genuinely-signed quote still never carries a negative fee
	orders = newFakeOrders()
	a = newAssembler(newCart(), orders, &fakePayments{}, &fakeCourier{})
	_, err = a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryShip,
		Address: &shipDest, Quote: validQuote(-1000.00), PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrInvalidQuote)
	assert.Empty(t, orders.created)

	// tampering with the fee after signing breaks the signature
	orders = newFakeOrders()
	a = newAssembler(newCart(), orders, &fakePayments{}, &fakeCourier{})
	tampered := validQuote(15.00)
	tampered.Fee = 0.01
	_, err = a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryShip,
		Address: &shipDest, Quote: tampered, PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrInvalidQuote)
	assert.Empty(t, orders.created)
}

func TestSubmitFallbackQuoteIsAccepted(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{UnitPrice: 45.00, Quantity: 1}}}
	orders := newFakeOrders()
	courier := &fakeCourier{delivery: &deliveryControllers.Delivery{ID: "del_2"}}
	a := newAssembler(cart, orders, &fakePayments{}, courier)

	fallback := &deliveryControllers.Quote{
		Fee: deliveryControllers.DefaultDeliveryFee, Fallback: true,
		AddressFingerprint: shipDest.Fingerprint(),
	}
	fallback.Sign(testQuoteSecret)
	result, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryShip,
		Address: &shipDest, Quote: fallback, PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err, "provider outage must not block checkout")
	assert.Equal(t, 60.00, result.Order.Total) // 45 + default 15
	assert.Empty(t, courier.quoteID, "fallback quotes have no provider id to redeem")
}

func TestSubmitCouponLayeredOnSubtotal(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{UnitPrice: 100.00, Quantity: 1}}}
	orders := newFakeOrders()
	pct := 10
	orders.coupons["DESCONTO10"] = &models.Coupon{Code: "DESCONTO10", PercentOff: &pct, Active: true}
	a := newAssembler(cart, orders, &fakePayments{}, &fakeCourier{})

	// lower-case input is normalized before lookup
	result, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryPickup,
		PaymentMethod: models.PaymentMethodCash, CouponCode: "desconto10",
	})
	require.NoError(t, err)
	assert.Equal(t, 90.00, result.Order.Total)
	assert.Equal(t, 90, result.Order.PointsEarned)

	a = newAssembler(&fakeCart{lines: []models.CartLine{{UnitPrice: 100.00, Quantity: 1}}}, newFakeOrders(), &fakePayments{}, &fakeCourier{})
	_, err = a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryPickup,
		PaymentMethod: models.PaymentMethodCash, CouponCode: "NOPE",
	})
	assert.ErrorIs(t, err, ErrUnknownCoupon)
}

func TestSubmitDispatchFailureDoesNotUndoOrder(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{UnitPrice: 45.00, Quantity: 1}}}
	orders := newFakeOrders()
	courier := &fakeCourier{err: errors.New("courier api down")}
	a := newAssembler(cart, orders, &fakePayments{}, courier)

	result, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryShip,
		Address: &shipDest, Quote: validQuote(15.00), PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err, "dispatch failure is non-fatal")
	require.Len(t, orders.created, 1)
	assert.NotEmpty(t, result.Warning)
	assert.Nil(t, result.Order.DeliveryID)
	assert.True(t, cart.cleared)
}

func TestSubmitBroadcastsNewOrder(t *testing.T) {
	cart := &fakeCart{lines: []models.CartLine{{UnitPrice: 45.00, Quantity: 1}}}
	a := newAssembler(cart, newFakeOrders(), &fakePayments{}, &fakeCourier{})

	var broadcast []models.Order
	a.Broadcast = func(o models.Order) { broadcast = append(broadcast, o) }

	_, err := a.Submit(context.Background(), SubmitRequest{
		CustomerID: "maria", DeliveryType: DeliveryPickup, PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)
	require.Len(t, broadcast, 1)
	assert.Equal(t, "order-1", broadcast[0].ID)
}
