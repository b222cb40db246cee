package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mebelmart-backend/internal/service"
)

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid input", err)
		return
	}
	o, err := s.svc.Orders.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		fail(c, err)
		return
	}
	if s.opts.ClearCartOnOrder {
		err := s.svc.Carts.DeleteCart(c.Request.Context(), o.UserID)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			log.Printf("clear cart of %s after order %s: %v", o.UserID, o.OrderID, err)
		}
	}
	c.JSON(http.StatusCreated, o)
}

func (s *Server) listAllOrders(c *gin.Context) {
	orders, err := s.svc.Orders.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) listUserOrders(c *gin.Context) {
	orders, err := s.svc.Orders.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required", err)
		return
	}
	o, err := s.svc.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
