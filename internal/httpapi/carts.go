package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mebelmart-backend/internal/service"
)

func (s *Server) getCart(c *gin.Context) {
	cart, err := s.svc.Carts.GetOrCreate(c.Request.Context(), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) createCart(c *gin.Context) {
	var req createCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid input", err)
		return
	}
	cart, err := s.svc.Carts.Replace(c.Request.Context(), req.toDomain())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid input", err)
		return
	}
	cart, err := s.svc.Carts.AddItem(c.Request.Context(), c.Param("userId"), service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Price:     float64(*req.Price),
		Product:   req.Product.toDomain(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (s *Server) removeCartItem(c *gin.Context) {
	cart, err := s.svc.Carts.RemoveItem(c.Request.Context(), c.Param("userId"), c.Param("itemId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed from cart", "cart": cart})
}

func (s *Server) deleteCart(c *gin.Context) {
	if err := s.svc.Carts.DeleteCart(c.Request.Context(), c.Param("userId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart deleted"})
}
