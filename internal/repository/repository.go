package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mebelmart-backend/internal/domain"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrVersionConflict is returned when a cart kept changing underneath
	// an update until the retry budget ran out.
	ErrVersionConflict = errors.New("concurrent cart modification")
)

type UserRepository interface {
	// Create fails with ErrDuplicate when the username or email is taken.
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// List returns every user without the password hash.
	List(ctx context.Context) ([]domain.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	// Delete removes the product and returns what was stored.
	Delete(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// CartMutation edits a cart in place. Returning an error aborts the update
// and nothing is written.
type CartMutation func(c *domain.Cart) error

// CartRepository stores one cart per user id. Update is the concurrency
// contract: fn runs against the latest stored cart and its result is
// written only if no other writer touched the cart in between.
type CartRepository interface {
	FindOrCreate(ctx context.Context, userID string, now time.Time) (*domain.Cart, error)
	// Update applies fn atomically. With upsert a missing cart starts empty
	// (zero CreatedAt), otherwise a missing cart yields ErrNotFound.
	Update(ctx context.Context, userID string, upsert bool, fn CartMutation) (*domain.Cart, error)
	// Replace stores c as the user's cart, overwriting any existing one.
	Replace(ctx context.Context, c *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

type OrderRepository interface {
	// Create fails with ErrDuplicate when the orderId is taken.
	Create(ctx context.Context, o *domain.Order) error
	// List returns orders newest first; an empty userID lists all users.
	List(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, now time.Time) (*domain.Order, error)
}
