// Package pricing computes cart totals, coupon discounts and loyalty points.
// All arithmetic goes through shopspring/decimal so repeated float sums
// cannot drift; results come back as two-decimal floats for storage.
package pricing

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

var (
	ErrCouponInactive   = errors.New("coupon is not active")
	ErrCouponExpired    = errors.New("coupon has expired")
	ErrBelowMinimum     = errors.New("cart subtotal is below the coupon minimum")
	ErrCouponNoDiscount = errors.New("coupon has neither percent nor flat discount")
)

// Subtotal sums unitPrice x quantity over all cart lines.
func Subtotal(lines []models.CartLine) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		line := decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
		sum = sum.Add(line)
	}
	f, _ := sum.Round(2).Float64()
	return f
}

// NormalizeCouponCode upper-cases and trims a user-entered code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ApplyCoupon returns the subtotal after discount. Percent discount wins when
// both are set; a flat discount never takes the subtotal below zero.
func ApplyCoupon(subtotal float64, coupon *models.Coupon, now time.Time) (float64, error) {
	if coupon == nil {
		return subtotal, nil
	}
	if !coupon.Active {
		return 0, ErrCouponInactive
	}
	if coupon.ExpiresOn != nil && now.After(*coupon.ExpiresOn) {
		return 0, ErrCouponExpired
	}
	if coupon.MinimumSpend != nil && subtotal < *coupon.MinimumSpend {
		return 0, ErrBelowMinimum
	}

	sub := decimal.NewFromFloat(subtotal)
	switch {
	case coupon.PercentOff != nil:
		pct := decimal.NewFromInt(int64(*coupon.PercentOff)).Div(decimal.NewFromInt(100))
		sub = sub.Sub(sub.Mul(pct))
	case coupon.FlatOff != nil:
		sub = sub.Sub(decimal.NewFromFloat(*coupon.FlatOff))
		if sub.IsNegative() {
			sub = decimal.Zero
		}
	default:
		return 0, ErrCouponNoDiscount
	}

	f, _ := sub.Round(2).Float64()
	return f, nil
}

// Total adds the delivery fee on top of the (possibly discounted) subtotal.
func Total(subtotal, deliveryFee float64) float64 {
	f, _ := decimal.NewFromFloat(subtotal).Add(decimal.NewFromFloat(deliveryFee)).Round(2).Float64()
	return f
}

// LoyaltyPoints is the floor of the total in whole currency units.
func LoyaltyPoints(total float64) int {
	return int(decimal.NewFromFloat(total).Floor().IntPart())
}
