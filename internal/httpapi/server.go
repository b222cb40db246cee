package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mebelmart-backend/internal/auth"
	"mebelmart-backend/internal/service"
)

const ctxUserID = "userId"

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type Services struct {
	Users    *service.UserService
	Products *service.ProductService
	Carts    *service.CartService
	Orders   *service.OrderService
}

type Options struct {
	AllowOrigins     []string
	MaxUploadBytes   int64
	ClearCartOnOrder bool
}

type Server struct {
	engine *gin.Engine
	svc    Services
	tokens TokenParser
	opts   Options
}

func NewServer(svc Services, tokens TokenParser, opts Options) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(opts.AllowOrigins)))
	r.MaxMultipartMemory = opts.MaxUploadBytes
	s := &Server{engine: r, svc: svc, tokens: tokens, opts: opts}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	users := api.Group("/users")
	users.POST("/register", s.register)
	users.POST("/login", s.login)
	users.GET("", s.listUsers)
	users.GET("/me", s.requireAuth, s.me)

	carts := api.Group("/carts")
	carts.POST("", s.createCart)
	carts.GET("/:userId", s.getCart)
	carts.POST("/:userId", s.addCartItem)
	carts.DELETE("/:userId/items/:itemId", s.removeCartItem)
	carts.DELETE("/:userId", s.deleteCart)

	orders := api.Group("/orders")
	orders.POST("", s.createOrder)
	orders.GET("/all", s.listAllOrders)
	orders.GET("/:userId", s.listUserOrders)
	orders.PUT("/:id/status", s.updateOrderStatus)

	products := api.Group("/products")
	products.GET("", s.listProducts)
	products.POST("", s.createProduct)
	products.PUT("/:id", s.updateProduct)
	products.DELETE("/:id", s.deleteProduct)
	products.POST("/:id/image", s.uploadProductImage)
	products.GET("/:id/image", s.getProductImage)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (s *Server) requireAuth(c *gin.Context) {
	tokenStr, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || tokenStr == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
		return
	}
	claims, err := s.tokens.Parse(tokenStr)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token", "error": err.Error()})
		return
	}
	c.Set(ctxUserID, claims.UserID)
	c.Next()
}

func badRequest(c *gin.Context, msg string, err error) {
	body := gin.H{"message": msg}
	if err != nil {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// fail writes err as {"message", "error"?} with the status of its kind.
func fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	body := gin.H{"message": err.Error()}
	var se *service.Error
	if errors.As(err, &se) {
		body["message"] = se.Message
		if se.Err != nil {
			body["error"] = se.Err.Error()
		}
	}
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, body)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
