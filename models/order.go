package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentMethod string

const (
	// Order statuses, in the sequence staff move them through
	OrderStatusNew            OrderStatus = "new"              // Placed by the customer
	OrderStatusAccepted       OrderStatus = "accepted"         // Accepted by the bakery
	OrderStatusInProduction   OrderStatus = "in_production"    // Being prepared
	OrderStatusReady          OrderStatus = "ready"            // Ready for pickup/dispatch
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery" // Courier on the way
	OrderStatusDelivered      OrderStatus = "delivered"        // Customer received the order
	OrderStatusCancelled      OrderStatus = "cancelled"        // Cancelled before completion

	PaymentMethodPix      PaymentMethod = "pix"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodOnPickup PaymentMethod = "pay_on_pickup"
)

type PaymentStanding string

const (
	PaymentAwaiting  PaymentStanding = "awaiting_payment" // asynchronous instrument, unconfirmed
	PaymentConfirmed PaymentStanding = "paid"
	PaymentOnSite    PaymentStanding = "on_site" // cash / pay on pickup, settled in person
)

// IsTerminal reports whether no further status changes are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type Order struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID      string          `gorm:"not null;index" json:"customer_id"`
	Customer        Customer        `gorm:"foreignKey:CustomerID" json:"customer"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Status          OrderStatus     `gorm:"type:VARCHAR(20);default:'new'" json:"status"`
	Total           float64         `gorm:"not null" json:"total"`
	DeliveryFee     float64         `json:"delivery_fee"`
	PaymentMethod   PaymentMethod   `gorm:"type:VARCHAR(20);not null" json:"payment_method"`
	PaymentStanding PaymentStanding `gorm:"type:VARCHAR(20);default:'on_site'" json:"payment_standing"`
	DeliveryAddress *string         `json:"delivery_address,omitempty"`
	RequestedTime   *time.Time      `json:"requested_time,omitempty"`
	Note            *string         `json:"note,omitempty"`
	PointsEarned    int             `json:"points_earned"`
	// Provider references, set when the order went through card/Pix payment
	// or was handed to the courier.
	PaymentID  *string   `json:"payment_id,omitempty"`
	DeliveryID *string   `json:"delivery_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem snapshots the unit price at order time; it is never mutated
// when the live product price changes.
type OrderItem struct {
	ID        string  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   string  `gorm:"type:uuid;index" json:"order_id"`
	ProductID string  `gorm:"type:uuid" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
