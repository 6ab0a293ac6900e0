package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Category    string  `gorm:"not null;index" json:"category"`
	Price       float64 `gorm:"not null" json:"price"`
	ImageURL    string  `json:"image_url"`
	// Products are deactivated, never deleted, so old orders keep their reference.
	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
