package httpapi

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"mebelmart-backend/internal/domain"
)

// number accepts a JSON number or a numeric string, so "750000" and
// 750000 both bind.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%s is not a number", b)
	}
	*n = number(f)
	return nil
}

func (n *number) floatPtr() *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

func (n *number) intPtr() (*int, error) {
	if n == nil {
		return nil, nil
	}
	f := float64(*n)
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", f)
	}
	if f < float64(math.MinInt) || f >= float64(math.MaxInt) {
		return nil, fmt.Errorf("%v is out of range", f)
	}
	i := int(f)
	return &i, nil
}

type registerReq struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Role        string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type snapshotReq struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Price number `json:"price"`
	Image string `json:"image"`
}

func (r snapshotReq) toDomain() domain.ProductSnapshot {
	return domain.ProductSnapshot{ID: r.ID, Name: r.Name, Price: float64(r.Price), Image: r.Image}
}

type addItemReq struct {
	ProductID string      `json:"productId" binding:"required"`
	Quantity  int         `json:"quantity" binding:"required"`
	Price     *number     `json:"price" binding:"required"`
	Product   snapshotReq `json:"product"`
}

type cartItemReq struct {
	ProductID string      `json:"productId"`
	Product   snapshotReq `json:"product"`
	Quantity  int         `json:"quantity"`
	Price     number      `json:"price"`
}

type createCartReq struct {
	UserID string        `json:"userId" binding:"required"`
	Items  []cartItemReq `json:"items"`
}

func (r createCartReq) toDomain() domain.Cart {
	items := make([]domain.CartItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.CartItem{
			ProductID: it.ProductID,
			Product:   it.Product.toDomain(),
			Quantity:  it.Quantity,
			Price:     float64(it.Price),
		})
	}
	return domain.Cart{UserID: r.UserID, Items: items}
}

type orderItemReq struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

type createOrderReq struct {
	OrderID         string                 `json:"orderId"`
	UserID          string                 `json:"userId" binding:"required"`
	Items           []orderItemReq         `json:"items" binding:"required"`
	TotalAmount     float64                `json:"totalAmount"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentStatus   string                 `json:"paymentStatus"`
	OrderStatus     string                 `json:"orderStatus"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

func (r createOrderReq) toDomain() domain.Order {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem(it))
	}
	return domain.Order{
		OrderID:         r.OrderID,
		UserID:          r.UserID,
		Items:           items,
		TotalAmount:     r.TotalAmount,
		ShippingAddress: r.ShippingAddress,
		PaymentStatus:   r.PaymentStatus,
		OrderStatus:     r.OrderStatus,
		PaymentMethod:   r.PaymentMethod,
	}
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

type productReq struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Price       *number `json:"price"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Stock       *number `json:"stock"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
