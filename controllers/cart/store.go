package cartControllers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Killzin1000/tarsi-sweet-hub/models"
	"github.com/Killzin1000/tarsi-sweet-hub/pricing"
)

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrBadQuantity  = errors.New("quantity must be at least 1")
)

// Repository is the load/persist boundary of the cart. The GORM
// implementation lives in repository.go; tests use an in-memory fake.
type Repository interface {
	GetOrCreate(ctx context.Context, ownerID string) (*models.Cart, error)
	AppendLine(ctx context.Context, line *models.CartLine) error
	SaveLine(ctx context.Context, line *models.CartLine) error
	DeleteLine(ctx context.Context, cartID uint, lineID string) (bool, error)
	ClearLines(ctx context.Context, cartID uint) error
}

// Store holds one cart per owner (customer or guest session).
type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Get returns the cart lines and their subtotal.
func (s *Store) Get(ctx context.Context, ownerID string) (*models.Cart, float64, error) {
	cart, err := s.repo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	return cart, pricing.Subtotal(cart.Lines), nil
}

// Add appends a new line. Every call makes a distinct line, even for a
// product already in the cart; the unit price is captured now and not
// refreshed afterwards.
func (s *Store) Add(ctx context.Context, ownerID string, product models.Product, quantity int) (*models.CartLine, error) {
	if quantity < 1 {
		return nil, ErrBadQuantity
	}
	cart, err := s.repo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	line := &models.CartLine{
		ID:          uuid.NewString(),
		CartID:      cart.CartID,
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    quantity,
		AddedAt:     time.Now(),
	}
	if err := s.repo.AppendLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateQuantity applies a delta, clamped so the quantity never drops below
// 1. Decrementing a quantity-1 line is a no-op, not a removal.
func (s *Store) UpdateQuantity(ctx context.Context, ownerID, lineID string, delta int) (*models.CartLine, error) {
	cart, err := s.repo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Lines {
		line := &cart.Lines[i]
		if line.ID != lineID {
			continue
		}
		newQty := line.Quantity + delta
		if newQty < 1 {
			newQty = 1
		}
		if newQty == line.Quantity {
			return line, nil
		}
		line.Quantity = newQty
		if err := s.repo.SaveLine(ctx, line); err != nil {
			return nil, err
		}
		return line, nil
	}
	return nil, ErrLineNotFound
}

// Remove deletes one line.
func (s *Store) Remove(ctx context.Context, ownerID, lineID string) error {
	cart, err := s.repo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteLine(ctx, cart.CartID, lineID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLineNotFound
	}
	return nil
}

// Clear empties the cart; called unconditionally after a successful order.
func (s *Store) Clear(ctx context.Context, ownerID string) error {
	cart, err := s.repo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return err
	}
	return s.repo.ClearLines(ctx, cart.CartID)
}
