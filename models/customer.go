package models

import "time"

// Customer is the storefront profile. Identity itself (login, sessions) lives
// outside this service; the ID here matches the subject of the JWT.
type Customer struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	LoyaltyPoints int       `gorm:"default:0" json:"loyalty_points"`
	Stamps        int       `gorm:"default:0" json:"stamps"`
	Orders        []Order   `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GuestSession backs anonymous carts; expired sessions are ignored by auth.
type GuestSession struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}
