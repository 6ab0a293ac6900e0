package checkoutControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Killzin1000/tarsi-sweet-hub/controllers/delivery"
	"github.com/Killzin1000/tarsi-sweet-hub/models"
	"github.com/Killzin1000/tarsi-sweet-hub/pricing"
)

type submitInput struct {
	DeliveryType  DeliveryType                     `json:"delivery_type" binding:"required,oneof=pickup ship"`
	Address       *deliveryControllers.FullAddress `json:"address,omitempty"`
	Quote         *deliveryControllers.Quote       `json:"quote,omitempty"`
	Recipient     deliveryControllers.Recipient    `json:"recipient"`
	PaymentMethod models.PaymentMethod             `json:"payment_method" binding:"required,oneof=pix cash card pay_on_pickup"`
	Card          CardData                         `json:"card"`
	CouponCode    string                           `json:"coupon_code"`
	Note          string                           `json:"note"`
	RequestedTime *time.Time                       `json:"requested_time,omitempty"`
	CustomerName  string                           `json:"customer_name"`
	CustomerEmail string                           `json:"customer_email"`
}

// POST /checkout
// On a pending (Pix) outcome the response carries the QR payload; the
// client's "I have paid" button just navigates to order tracking, the
// order is already persisted as awaiting payment.
func SubmitHandler(assembler *Assembler) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input submitInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := assembler.Submit(c.Request.Context(), SubmitRequest{
			CustomerID:    userIDVal.(string),
			CustomerName:  input.CustomerName,
			CustomerEmail: input.CustomerEmail,
			DeliveryType:  input.DeliveryType,
			Address:       input.Address,
			Quote:         input.Quote,
			Recipient:     input.Recipient,
			PaymentMethod: input.PaymentMethod,
			Card:          input.Card,
			CouponCode:    input.CouponCode,
			Note:          input.Note,
			RequestedTime: input.RequestedTime,
		})

		var rejected *PaymentRejectedError
		switch {
		case errors.As(err, &rejected):
			// Cart is retained; the customer retries with another instrument.
			c.JSON(http.StatusPaymentRequired, gin.H{"error": rejected.Error(), "detail": rejected.Detail})
		case errors.Is(err, ErrEmptyCart),
			errors.Is(err, ErrMissingAddress),
			errors.Is(err, ErrInvalidQuote),
			errors.Is(err, ErrUnknownCoupon),
			errors.Is(err, pricing.ErrCouponInactive),
			errors.Is(err, pricing.ErrCouponExpired),
			errors.Is(err, pricing.ErrBelowMinimum):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusCreated, result)
		}
	}
}
