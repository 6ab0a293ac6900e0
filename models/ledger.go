package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerKind string

const (
	LedgerCredit LedgerKind = "credit" // money in
	LedgerDebit  LedgerKind = "debit"  // money out
)

// LedgerEntry is the bakery's cash book. Entries are append-only: staff add
// manual credits/debits, and checkout records one credit per completed order.
type LedgerEntry struct {
	ID            string         `gorm:"type:uuid;primaryKey" json:"id"`
	Kind          LedgerKind     `gorm:"type:VARCHAR(10);not null" json:"kind"`
	Amount        float64        `gorm:"not null" json:"amount"`
	Description   string         `gorm:"not null" json:"description"`
	PaymentMethod *PaymentMethod `gorm:"type:VARCHAR(20)" json:"payment_method,omitempty"`
	OrderID       *string        `gorm:"type:uuid" json:"order_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
