package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username    string             `bson:"username" json:"username"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password,omitempty" json:"-"`
	Role        Role               `bson:"role" json:"role"`
	FullName    string             `bson:"fullName" json:"fullName"`
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	Address     string             `bson:"address" json:"address"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Sanitized returns a copy of u without the password hash.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Price       float64            `bson:"price" json:"price"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image" json:"image"`
	Stock       int                `bson:"stock" json:"stock"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductSnapshot is copied into a cart item when it is added and is never
// refreshed from the catalog afterwards.
type ProductSnapshot struct {
	ID    string  `bson:"_id" json:"_id"`
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
	Image string  `bson:"image" json:"image"`
}

type CartItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	ProductID string             `bson:"productId" json:"productId"`
	Product   ProductSnapshot    `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    string             `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	Total     float64            `bson:"total" json:"total"`
	Version   int64              `bson:"version" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type OrderItem struct {
	ProductID   string  `bson:"productId" json:"productId"`
	ProductName string  `bson:"productName" json:"productName"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	Price       float64 `bson:"price" json:"price"`
	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
}

type ShippingAddress struct {
	FullName    string `bson:"fullName" json:"fullName"`
	PhoneNumber string `bson:"phoneNumber" json:"phoneNumber"`
	Address     string `bson:"address" json:"address"`
	City        string `bson:"city" json:"city"`
	PostalCode  string `bson:"postalCode" json:"postalCode"`
}

// Order items are frozen at creation; only OrderStatus changes afterwards.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderID         string             `bson:"orderId" json:"orderId"`
	UserID          string             `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus     string             `bson:"orderStatus" json:"orderStatus"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
