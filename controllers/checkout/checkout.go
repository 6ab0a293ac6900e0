package checkoutControllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Killzin1000/tarsi-sweet-hub/controllers/delivery"
	"github.com/Killzin1000/tarsi-sweet-hub/controllers/payment"
	"github.com/Killzin1000/tarsi-sweet-hub/models"
	"github.com/Killzin1000/tarsi-sweet-hub/pricing"
)

type DeliveryType string

const (
	DeliveryPickup DeliveryType = "pickup"
	DeliveryShip   DeliveryType = "ship"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrMissingAddress = errors.New("shipping requires a resolved delivery address")
	ErrInvalidQuote   = errors.New("delivery quote is missing, expired or no longer matches the address")
	ErrUnknownCoupon  = errors.New("coupon not found")
)

// PaymentRejectedError carries the provider's detail code verbatim so the
// customer can see why the charge failed and retry with another instrument.
type PaymentRejectedError struct {
	Detail string
}

func (e *PaymentRejectedError) Error() string {
	if e.Detail == "" {
		return "payment rejected"
	}
	return "payment rejected: " + e.Detail
}

// CartStore is the slice of the cart the assembler needs.
type CartStore interface {
	Get(ctx context.Context, ownerID string) (*models.Cart, float64, error)
	Clear(ctx context.Context, ownerID string) error
}

// OrderRepository persists the order. CreateOrder must write the order row,
// its items and the ledger credit in one transaction. CreditLoyaltyPoints
// also stamps the customer's loyalty card, one stamp per order.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order, entry *models.LedgerEntry) error
	FindCoupon(ctx context.Context, code string) (*models.Coupon, error)
	CreditLoyaltyPoints(ctx context.Context, customerID string, points int) error
	SetDeliveryID(ctx context.Context, orderID, deliveryID string) error
}

type PaymentClient interface {
	Create(ctx context.Context, req paymentControllers.CreateRequest) (*paymentControllers.Result, error)
}

type CourierClient interface {
	Dispatch(ctx context.Context, dest deliveryControllers.FullAddress, recipient deliveryControllers.Recipient, orderDetails, quoteID string) (*deliveryControllers.Delivery, error)
}

// Assembler runs the checkout sequence: price, charge, persist, dispatch.
type Assembler struct {
	Cart     CartStore
	Orders   OrderRepository
	Payments PaymentClient
	Courier  CourierClient
	// Broadcast publishes the new order to status watchers; nil to disable.
	Broadcast func(models.Order)
	Now       func() time.Time
	// QuoteSecret is the key delivery quotes were signed with; submitted
	// quotes must verify against it.
	QuoteSecret []byte
}

type CardData struct {
	Token        string `json:"token"`
	MethodID     string `json:"method_id"`
	Installments int    `json:"installments"`
}

type SubmitRequest struct {
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	DeliveryType  DeliveryType
	Address       *deliveryControllers.FullAddress
	Quote         *deliveryControllers.Quote
	Recipient     deliveryControllers.Recipient
	PaymentMethod models.PaymentMethod
	Card          CardData
	CouponCode    string
	Note          string
	RequestedTime *time.Time
}

type SubmitResult struct {
	Order   *models.Order              `json:"order"`
	Payment *paymentControllers.Result `json:"payment,omitempty"`
	Warning string                     `json:"warning,omitempty"`
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Submit runs one checkout attempt. Steps are strictly sequential; on a
// rejected payment nothing is persisted and the cart is kept. Once the order
// row exists the cart is cleared unconditionally, and courier dispatch
// failures do not undo the order.
func (a *Assembler) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	cart, subtotal, err := a.Cart.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Coupon is layered on top of the subtotal before the delivery fee.
	if req.CouponCode != "" {
		coupon, err := a.Orders.FindCoupon(ctx, pricing.NormalizeCouponCode(req.CouponCode))
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, ErrUnknownCoupon
		}
		subtotal, err = pricing.ApplyCoupon(subtotal, coupon, a.now())
		if err != nil {
			return nil, err
		}
	}

	var fee float64
	var deliveryAddress *string
	if req.DeliveryType == DeliveryShip {
		if req.Address == nil {
			return nil, ErrMissingAddress
		}
		// The quote arrives from the request body: the signature proves it
		// was issued here and that no field, the fee included, was touched.
		if req.Quote == nil || !req.Quote.Valid(*req.Address, a.now()) || !req.Quote.Verify(a.QuoteSecret) {
			return nil, ErrInvalidQuote
		}
		fee = req.Quote.Fee
		addr := req.Address.String()
		deliveryAddress = &addr
	}

	total := pricing.Total(subtotal, fee)
	points := pricing.LoyaltyPoints(total)

	standing := models.PaymentOnSite
	var paymentResult *paymentControllers.Result
	var paymentID *string

	if req.PaymentMethod == models.PaymentMethodCard || req.PaymentMethod == models.PaymentMethodPix {
		methodID := req.Card.MethodID
		if req.PaymentMethod == models.PaymentMethodPix && methodID == "" {
			methodID = "pix"
		}
		paymentResult, err = a.Payments.Create(ctx, paymentControllers.CreateRequest{
			Amount:       total, // computed here, never taken from the client
			Description:  "Pedido Tarsi Sweet",
			Token:        req.Card.Token,
			MethodID:     methodID,
			Installments: req.Card.Installments,
			PayerEmail:   req.CustomerEmail,
			PayerName:    req.CustomerName,
		})
		if err != nil {
			// Rejected for the customer, but logged apart from real
			// declines for diagnosis.
			log.Printf("checkout: payment provider failure: %v", err)
			return nil, &PaymentRejectedError{}
		}
		switch paymentResult.Status {
		case paymentControllers.StatusRejected:
			return nil, &PaymentRejectedError{Detail: paymentResult.Detail}
		case paymentControllers.StatusApproved:
			standing = models.PaymentConfirmed
		case paymentControllers.StatusPending:
			standing = models.PaymentAwaiting
		}
		paymentID = &paymentResult.ProviderID
	}

	order := &models.Order{
		CustomerID:      req.CustomerID,
		Status:          models.OrderStatusNew,
		Total:           total,
		DeliveryFee:     fee,
		PaymentMethod:   req.PaymentMethod,
		PaymentStanding: standing,
		DeliveryAddress: deliveryAddress,
		RequestedTime:   req.RequestedTime,
		PointsEarned:    points,
		PaymentID:       paymentID,
	}
	if req.Note != "" {
		order.Note = &req.Note
	}
	for _, line := range cart.Lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	method := req.PaymentMethod
	entry := &models.LedgerEntry{
		Kind:          models.LedgerCredit,
		Amount:        total,
		Description:   "Pedido", // repository fills in the short order id
		PaymentMethod: &method,
	}

	if err := a.Orders.CreateOrder(ctx, order, entry); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	// From here the order exists: the cart is cleared no matter what, and
	// the remaining steps only log on failure.
	if err := a.Cart.Clear(ctx, req.CustomerID); err != nil {
		log.Printf("checkout: failed to clear cart for %s: %v", req.CustomerID, err)
	}
	if err := a.Orders.CreditLoyaltyPoints(ctx, req.CustomerID, points); err != nil {
		log.Printf("checkout: failed to credit %d points to %s: %v", points, req.CustomerID, err)
	}

	result := &SubmitResult{Order: order, Payment: paymentResult}

	if req.DeliveryType == DeliveryShip && a.Courier != nil {
		quoteID := ""
		if !req.Quote.Fallback {
			quoteID = req.Quote.ID
		}
		details := fmt.Sprintf("Pedido #%.8s", order.ID)
		dispatched, err := a.Courier.Dispatch(ctx, *req.Address, req.Recipient, details, quoteID)
		if err != nil {
			// Dispatch is best-effort; staff coordinate delivery by hand
			// when the courier API is down.
			log.Printf("checkout: courier dispatch failed for order %s: %v", order.ID, err)
			result.Warning = "delivery could not be scheduled automatically"
		} else {
			order.DeliveryID = &dispatched.ID
			if err := a.Orders.SetDeliveryID(ctx, order.ID, dispatched.ID); err != nil {
				log.Printf("checkout: failed to record delivery id for order %s: %v", order.ID, err)
			}
		}
	}

	if a.Broadcast != nil {
		a.Broadcast(*order)
	}
	return result, nil
}
