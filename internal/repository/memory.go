package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mebelmart-backend/internal/domain"
)

// MemoryStore keeps all four collections in process memory. It backs the
// "memory" storage driver and the tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]domain.User
	products map[primitive.ObjectID]domain.Product
	carts    map[string]*domain.Cart
	orders   map[primitive.ObjectID]domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[primitive.ObjectID]domain.User),
		products: make(map[primitive.ObjectID]domain.Product),
		carts:    make(map[string]*domain.Cart),
		orders:   make(map[primitive.ObjectID]domain.Order),
	}
}

func (m *MemoryStore) Users() *MemoryUsers       { return &MemoryUsers{store: m} }
func (m *MemoryStore) Products() *MemoryProducts { return &MemoryProducts{store: m} }
func (m *MemoryStore) Carts() *MemoryCarts       { return &MemoryCarts{store: m} }
func (m *MemoryStore) Orders() *MemoryOrders     { return &MemoryOrders{store: m} }

// Users

type MemoryUsers struct{ store *MemoryStore }

var _ UserRepository = (*MemoryUsers)(nil)

func (r *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.store.users[u.ID] = *u
	return nil
}

func (r *MemoryUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsers) List(ctx context.Context) ([]domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		out = append(out, u.Sanitized())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Products

type MemoryProducts struct{ store *MemoryStore }

var _ ProductRepository = (*MemoryProducts)(nil)

func (r *MemoryProducts) Create(ctx context.Context, p *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.store.products[p.ID] = *p
	return nil
}

func (r *MemoryProducts) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProducts) Update(ctx context.Context, p *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[p.ID]; !ok {
		return ErrNotFound
	}
	r.store.products[p.ID] = *p
	return nil
}

func (r *MemoryProducts) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.store.products, id)
	return &p, nil
}

func (r *MemoryProducts) List(ctx context.Context) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

// Carts

type MemoryCarts struct{ store *MemoryStore }

var _ CartRepository = (*MemoryCarts)(nil)

func (r *MemoryCarts) FindOrCreate(ctx context.Context, userID string, now time.Time) (*domain.Cart, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.carts[userID]
	if !ok {
		c = domain.NewCart(userID, now)
		c.ID = primitive.NewObjectID()
		c.Version = 1
		r.store.carts[userID] = c
	}
	return c.Clone(), nil
}

func (r *MemoryCarts) Update(ctx context.Context, userID string, upsert bool, fn CartMutation) (*domain.Cart, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var work *domain.Cart
	if c, ok := r.store.carts[userID]; ok {
		work = c.Clone()
	} else if upsert {
		work = &domain.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: []domain.CartItem{}}
	} else {
		return nil, ErrNotFound
	}
	if err := fn(work); err != nil {
		return nil, err
	}
	work.Version++
	r.store.carts[userID] = work
	return work.Clone(), nil
}

func (r *MemoryCarts) Replace(ctx context.Context, c *domain.Cart) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := c.Clone()
	if existing, ok := r.store.carts[c.UserID]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.Version = existing.Version + 1
	} else {
		if stored.ID.IsZero() {
			stored.ID = primitive.NewObjectID()
		}
		stored.Version = 1
	}
	r.store.carts[c.UserID] = stored
	c.ID, c.Version, c.CreatedAt = stored.ID, stored.Version, stored.CreatedAt
	return nil
}

func (r *MemoryCarts) Delete(ctx context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.carts[userID]; !ok {
		return ErrNotFound
	}
	delete(r.store.carts, userID)
	return nil
}

// Orders

type MemoryOrders struct{ store *MemoryStore }

var _ OrderRepository = (*MemoryOrders)(nil)

func (r *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.orders {
		if existing.OrderID == o.OrderID {
			return ErrDuplicate
		}
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	r.store.orders[o.ID] = cp
	return nil
}

func (r *MemoryOrders) List(ctx context.Context, userID string) ([]domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Order, 0)
	for _, o := range r.store.orders {
		if userID != "" && o.UserID != userID {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, now time.Time) (*domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.OrderStatus = status
	o.UpdatedAt = now
	r.store.orders[id] = o
	return &o, nil
}
