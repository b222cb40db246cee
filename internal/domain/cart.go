package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewCart returns an empty cart for userID.
func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Merge adds quantity of productID at unitPrice. An existing line for the
// same product keeps its snapshot, gains the quantity and is repriced at
// unitPrice; otherwise a new line is appended.
func (c *Cart) Merge(productID string, quantity int, unitPrice float64, snapshot ProductSnapshot) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.Items[i].Price = unitPrice
			c.Items[i].Subtotal = float64(c.Items[i].Quantity) * unitPrice
			return
		}
	}
	c.Items = append(c.Items, CartItem{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Product:   snapshot,
		Quantity:  quantity,
		Price:     unitPrice,
		Subtotal:  float64(quantity) * unitPrice,
	})
}

// Remove deletes the first item whose own id or product id equals key.
func (c *Cart) Remove(key string) bool {
	for i, item := range c.Items {
		if item.ID.Hex() == key || item.ProductID == key {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Recalculate sets Total to the sum of item subtotals and stamps UpdatedAt.
func (c *Cart) Recalculate(now time.Time) {
	total := 0.0
	for _, item := range c.Items {
		total += item.Subtotal
	}
	c.Total = total
	c.UpdatedAt = now
}

// Clone returns a deep copy of c.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = append([]CartItem(nil), c.Items...)
	if cp.Items == nil {
		cp.Items = []CartItem{}
	}
	return &cp
}
