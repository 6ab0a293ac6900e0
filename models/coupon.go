package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coupon carries either a percentage discount or a flat one; at least one of
// PercentOff/FlatOff must be set. Codes are stored upper-cased.
type Coupon struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string     `gorm:"unique;not null" json:"code"`
	PercentOff   *int       `json:"percent_off,omitempty"`
	FlatOff      *float64   `json:"flat_off,omitempty"`
	MinimumSpend *float64   `json:"minimum_spend,omitempty"`
	ExpiresOn    *time.Time `json:"expires_on,omitempty"`
	Active       bool       `gorm:"default:true" json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
