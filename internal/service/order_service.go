package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mebelmart-backend/internal/domain"
	"mebelmart-backend/internal/repository"
)

const defaultStatus = "pending"

// OrderService stores orders exactly as the client priced them; totals are
// not recomputed from the cart or the catalog.
type OrderService struct {
	repo       repository.OrderRepository
	now        func() time.Time
	newOrderID func() string
}

func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{repo: repo, now: time.Now, newOrderID: uuid.NewString}
}

func (s *OrderService) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if strings.TrimSpace(o.UserID) == "" {
		return nil, validationError("userId is required")
	}
	if len(o.Items) == 0 {
		return nil, validationError("order must contain at least one item")
	}
	if o.OrderID == "" {
		o.OrderID = s.newOrderID()
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = defaultStatus
	}
	if o.OrderStatus == "" {
		o.OrderStatus = defaultStatus
	}
	o.ID = primitive.NilObjectID
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt

	if err := s.repo.Create(ctx, &o); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("orderId already exists")
		}
		return nil, storageError(err)
	}
	return &o, nil
}

// ListAll returns every order, newest first.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, storageError(err)
	}
	return orders, nil
}

// ListByUser returns the user's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationError("userId is required")
	}
	orders, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	return orders, nil
}

// UpdateStatus sets orderStatus to any non-empty value; transitions are not
// checked.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, validationError("invalid order id")
	}
	if strings.TrimSpace(status) == "" {
		return nil, validationError("status is required")
	}
	o, err := s.repo.UpdateStatus(ctx, oid, status, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("order not found")
	}
	if err != nil {
		return nil, storageError(err)
	}
	return o, nil
}
