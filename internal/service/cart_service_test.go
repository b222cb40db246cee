package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mebelmart-backend/internal/domain"
	"mebelmart-backend/internal/repository"
)

func setupCS(t *testing.T) *CartService {
	t.Helper()
	return NewCartService(repository.NewMemoryStore().Carts())
}

func add(t *testing.T, cs *CartService, userID, productID string, qty int, price float64) *domain.Cart {
	t.Helper()
	c, err := cs.AddItem(context.Background(), userID, AddItemInput{
		ProductID: productID,
		Quantity:  qty,
		Price:     price,
		Product:   domain.ProductSnapshot{ID: productID, Name: "name-" + productID, Price: price},
	})
	require.NoError(t, err, "add %s", productID)
	return c
}

func sumSubtotals(c *domain.Cart) float64 {
	total := 0.0
	for _, it := range c.Items {
		total += it.Subtotal
	}
	return total
}

func TestCart_AddSameProductUsesLatestPrice(t *testing.T) {
	cs := setupCS(t)
	add(t, cs, "u1", "p1", 2, 100)
	c := add(t, cs, "u1", "p1", 3, 120)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, 360.0, c.Items[0].Subtotal)
	assert.Equal(t, 360.0, c.Total)
}

func TestCart_GetOrCreateIsLazy(t *testing.T) {
	ctx := context.Background()
	cs := setupCS(t)
	c, err := cs.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Empty(t, c.Items)
	assert.Zero(t, c.Total)

	again, err := cs.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
}

func TestCart_RemoveItem(t *testing.T) {
	ctx := context.Background()
	cs := setupCS(t)
	add(t, cs, "u1", "p1", 1, 10)
	c := add(t, cs, "u1", "p2", 2, 20)

	c, err := cs.RemoveItem(ctx, "u1", c.Items[0].ID.Hex())
	require.NoError(t, err, "remove by item id")
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)
	assert.Equal(t, 40.0, c.Total)

	c, err = cs.RemoveItem(ctx, "u1", "p2")
	require.NoError(t, err, "remove by product id")
	assert.Empty(t, c.Items)
	assert.Zero(t, c.Total)
}

func TestCart_RemoveMissingItemLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	cs := setupCS(t)
	before := add(t, cs, "u1", "p1", 1, 10)

	_, err := cs.RemoveItem(ctx, "u1", "nope")
	require.ErrorIs(t, err, ErrNotFound)

	after, err := cs.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, after.Items, 1)
	assert.Equal(t, before.Total, after.Total)
	assert.True(t, after.UpdatedAt.Equal(before.UpdatedAt))
}

func TestCart_RemoveWithoutCart(t *testing.T) {
	cs := setupCS(t)
	_, err := cs.RemoveItem(context.Background(), "ghost", "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCart_DeleteThenGetOrCreateIsFresh(t *testing.T) {
	ctx := context.Background()
	cs := setupCS(t)
	add(t, cs, "u1", "p1", 4, 25)

	require.NoError(t, cs.DeleteCart(ctx, "u1"))
	assert.ErrorIs(t, cs.DeleteCart(ctx, "u1"), ErrNotFound, "second delete")

	c, err := cs.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Zero(t, c.Total)
}

func TestCart_AddItemValidation(t *testing.T) {
	ctx := context.Background()
	cs := setupCS(t)
	cases := []struct {
		name   string
		userID string
		in     AddItemInput
	}{
		{"no user", "", AddItemInput{ProductID: "p1", Quantity: 1, Price: 1}},
		{"no product", "u1", AddItemInput{Quantity: 1, Price: 1}},
		{"zero quantity", "u1", AddItemInput{ProductID: "p1", Quantity: 0, Price: 1}},
		{"negative quantity", "u1", AddItemInput{ProductID: "p1", Quantity: -2, Price: 1}},
		{"negative price", "u1", AddItemInput{ProductID: "p1", Quantity: 1, Price: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cs.AddItem(ctx, tc.userID, tc.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCart_TotalMatchesSubtotalsAfterRandomOps(t *testing.T) {
	ctx := context.Background()
	cs := setupCS(t)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		var c *domain.Cart
		if rng.Intn(3) == 0 {
			cur, err := cs.GetOrCreate(ctx, "u1")
			require.NoError(t, err)
			if len(cur.Items) == 0 {
				continue
			}
			c, err = cs.RemoveItem(ctx, "u1", cur.Items[rng.Intn(len(cur.Items))].ProductID)
			require.NoError(t, err)
		} else {
			pid := fmt.Sprintf("p%d", rng.Intn(5))
			c = add(t, cs, "u1", pid, 1+rng.Intn(4), float64(rng.Intn(1000)))
		}
		require.Equal(t, sumSubtotals(c), c.Total, "step %d", i)
		seen := map[string]bool{}
		for _, it := range c.Items {
			require.False(t, seen[it.ProductID], "step %d: duplicate line for %s", i, it.ProductID)
			seen[it.ProductID] = true
		}
	}
}

func TestCart_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	cs := setupCS(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cs.AddItem(context.Background(), "u1", AddItemInput{ProductID: "p1", Quantity: 2, Price: 5})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := cs.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 40, c.Items[0].Quantity)
	assert.Equal(t, 200.0, c.Total)
}

func TestCart_Replace(t *testing.T) {
	ctx := context.Background()
	cs := setupCS(t)
	add(t, cs, "u1", "old", 1, 1)

	c, err := cs.Replace(ctx, domain.Cart{
		UserID: "u1",
		Items: []domain.CartItem{
			{ProductID: "p1", Quantity: 2, Price: 10, Subtotal: 999},
			{ProductID: "p2", Quantity: 1, Price: 5},
		},
		Total: 12345,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, c.Total)
	assert.Equal(t, 20.0, c.Items[0].Subtotal)
	assert.False(t, c.Items[0].ID.IsZero())

	got, err := cs.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "p1", got.Items[0].ProductID)

	_, err = cs.Replace(ctx, domain.Cart{})
	assert.ErrorIs(t, err, ErrValidation)
}

type failingCarts struct{ err error }

func (f failingCarts) FindOrCreate(context.Context, string, time.Time) (*domain.Cart, error) {
	return nil, f.err
}
func (f failingCarts) Update(context.Context, string, bool, repository.CartMutation) (*domain.Cart, error) {
	return nil, f.err
}
func (f failingCarts) Replace(context.Context, *domain.Cart) error { return f.err }
func (f failingCarts) Delete(context.Context, string) error        { return f.err }

func TestCart_StorageFailures(t *testing.T) {
	ctx := context.Background()
	cs := NewCartService(failingCarts{err: errors.New("connection reset")})
	_, err := cs.GetOrCreate(ctx, "u1")
	assert.ErrorIs(t, err, ErrStorage)

	cs = NewCartService(failingCarts{err: repository.ErrVersionConflict})
	_, err = cs.AddItem(ctx, "u1", AddItemInput{ProductID: "p1", Quantity: 1})
	assert.ErrorIs(t, err, ErrConflict)
}
