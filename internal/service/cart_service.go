package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mebelmart-backend/internal/domain"
	"mebelmart-backend/internal/repository"
)

// CartService owns the per-user cart document. Every mutation goes through
// CartRepository.Update so concurrent writers on one user never lose
// each other's changes, and every mutation recomputes the cart total.
type CartService struct {
	repo repository.CartRepository
	now  func() time.Time
}

func NewCartService(repo repository.CartRepository) *CartService {
	return &CartService{repo: repo, now: time.Now}
}

type AddItemInput struct {
	ProductID string
	Quantity  int
	Price     float64
	Product   domain.ProductSnapshot
}

func (s *CartService) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationError("userId is required")
	}
	c, err := s.repo.FindOrCreate(ctx, userID, s.now())
	if err != nil {
		return nil, storageError(err)
	}
	return c, nil
}

// AddItem merges quantity of a product into the cart, creating the cart on
// first use. A repeated product keeps one line whose subtotal is repriced
// at the latest unit price.
func (s *CartService) AddItem(ctx context.Context, userID string, in AddItemInput) (*domain.Cart, error) {
	switch {
	case strings.TrimSpace(userID) == "":
		return nil, validationError("userId is required")
	case strings.TrimSpace(in.ProductID) == "":
		return nil, validationError("productId is required")
	case in.Quantity < 1:
		return nil, validationError("quantity must be a positive integer")
	case in.Price < 0:
		return nil, validationError("price must not be negative")
	}
	snapshot := in.Product
	if snapshot.ID == "" {
		snapshot.ID = in.ProductID
	}

	c, err := s.repo.Update(ctx, userID, true, func(c *domain.Cart) error {
		now := s.now()
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.Merge(in.ProductID, in.Quantity, in.Price, snapshot)
		c.Recalculate(now)
		return nil
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return c, nil
}

// RemoveItem drops the first item whose id or product id equals itemID.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	c, err := s.repo.Update(ctx, userID, false, func(c *domain.Cart) error {
		if !c.Remove(itemID) {
			return notFoundError("item not found in cart")
		}
		c.Recalculate(s.now())
		return nil
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return c, nil
}

func (s *CartService) DeleteCart(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return s.translate(err)
	}
	return nil
}

// Replace stores a caller-built cart as the user's cart. Item subtotals and
// the total are recomputed from quantity and unit price.
func (s *CartService) Replace(ctx context.Context, c domain.Cart) (*domain.Cart, error) {
	if strings.TrimSpace(c.UserID) == "" {
		return nil, validationError("userId is required")
	}
	items := make([]domain.CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		switch {
		case strings.TrimSpace(item.ProductID) == "":
			return nil, validationError("every item needs a productId")
		case item.Quantity < 1:
			return nil, validationError("quantity must be a positive integer")
		case item.Price < 0:
			return nil, validationError("price must not be negative")
		}
		if item.ID.IsZero() {
			item.ID = primitive.NewObjectID()
		}
		if item.Product.ID == "" {
			item.Product.ID = item.ProductID
		}
		item.Subtotal = float64(item.Quantity) * item.Price
		items = append(items, item)
	}

	now := s.now()
	cart := domain.Cart{UserID: c.UserID, Items: items, CreatedAt: now}
	cart.Recalculate(now)
	if err := s.repo.Replace(ctx, &cart); err != nil {
		return nil, s.translate(err)
	}
	return &cart, nil
}

func (s *CartService) translate(err error) error {
	var svcErr *Error
	switch {
	case errors.As(err, &svcErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return notFoundError("cart not found")
	case errors.Is(err, repository.ErrVersionConflict):
		return conflictError("cart was modified concurrently, retry the request")
	default:
		return storageError(err)
	}
}
