package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mebelmart-backend/internal/service"
)

func (s *Server) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid input", err)
		return
	}
	err := s.svc.Users.Register(c.Request.Context(), service.RegisterInput(req))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid input", err)
		return
	}
	res, err := s.svc.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.svc.Users.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) me(c *gin.Context) {
	u, err := s.svc.Users.Get(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
