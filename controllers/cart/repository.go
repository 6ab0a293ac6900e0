package cartControllers

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
)

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns the GORM-backed cart persistence.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetOrCreate(ctx context.Context, ownerID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Preload("Lines").Where("owner_id = ?", ownerID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{OwnerID: ownerID}
		if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *gormRepository) AppendLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *gormRepository) SaveLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *gormRepository) DeleteLine(ctx context.Context, cartID uint, lineID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ? AND id = ?", cartID, lineID).Delete(&models.CartLine{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) ClearLines(ctx context.Context, cartID uint) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartLine{}).Error
}
