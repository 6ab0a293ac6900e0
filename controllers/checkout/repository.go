package checkoutControllers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

// CreateOrder writes the order, its items and the ledger credit atomically.
// A failed step rolls everything back; an order never exists without its
// items or its credit entry.
func (r *gormOrderRepository) CreateOrder(ctx context.Context, order *models.Order, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		entry.OrderID = &order.ID
		entry.Description = fmt.Sprintf("Pedido #%.8s", order.ID)
		return tx.Create(entry).Error
	})
}

func (r *gormOrderRepository) FindCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// CreditLoyaltyPoints adds the order's points and advances the loyalty card
// by one stamp. A fully discounted order earns no points but still a stamp.
func (r *gormOrderRepository) CreditLoyaltyPoints(ctx context.Context, customerID string, points int) error {
	return r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]interface{}{
			"loyalty_points": gorm.Expr("loyalty_points + ?", points),
			"stamps":         gorm.Expr("stamps + 1"),
		}).Error
}

func (r *gormOrderRepository) SetDeliveryID(ctx context.Context, orderID, deliveryID string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("delivery_id", deliveryID).Error
}
