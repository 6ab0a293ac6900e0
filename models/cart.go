package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	OwnerID   string     `gorm:"uniqueIndex" json:"owner_id"` // one cart per customer or guest
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartLine is one "add to cart" action. Adding the same product twice makes
// two lines; lines are never merged. Price is captured at add time.
type CartLine struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	CartID      uint      `gorm:"index" json:"cart_id"`
	ProductID   string    `gorm:"type:uuid" json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"added_at"`
}

func (l *CartLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
