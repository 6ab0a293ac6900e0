package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is a raw-material stock line managed from the back-office.
type Ingredient struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Quantity  float64   `gorm:"not null;default:0" json:"quantity"`
	Unit      string    `gorm:"not null" json:"unit"` // kg, g, un, ...
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Recipe links a product to the ingredients consumed per unit produced.
// Used to deduct stock when an order is accepted.
type Recipe struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID    string     `gorm:"type:uuid;not null;index" json:"product_id"`
	IngredientID string     `gorm:"type:uuid;not null" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient"`
	QuantityUsed float64    `gorm:"not null" json:"quantity_used"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
