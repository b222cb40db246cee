package httpapi

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"mebelmart-backend/internal/service"
)

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.svc.Products.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid input", err)
		return
	}
	stock, err := req.Stock.intPtr()
	if err != nil {
		badRequest(c, "invalid stock", err)
		return
	}
	in := service.ProductInput{
		Name:        deref(req.Name),
		Category:    deref(req.Category),
		Price:       req.Price.floatPtr(),
		Description: deref(req.Description),
		Image:       deref(req.Image),
	}
	if stock != nil {
		in.Stock = *stock
	}
	p, err := s.svc.Products.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid input", err)
		return
	}
	stock, err := req.Stock.intPtr()
	if err != nil {
		badRequest(c, "invalid stock", err)
		return
	}
	p, err := s.svc.Products.Update(c.Request.Context(), c.Param("id"), service.ProductPatch{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price.floatPtr(),
		Description: req.Description,
		Image:       req.Image,
		Stock:       stock,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	p, err := s.svc.Products.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully", "product": p})
}

func (s *Server) uploadProductImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image file is required", err)
		return
	}
	src, err := file.Open()
	if err != nil {
		badRequest(c, "could not read upload", err)
		return
	}
	defer src.Close()

	p, err := s.svc.Products.SetImage(c.Request.Context(), c.Param("id"), src, file.Filename)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getProductImage(c *gin.Context) {
	f, err := s.svc.Products.GetImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Body.Close()

	contentType := mime.TypeByExtension(filepath.Ext(f.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, f.Size, contentType, f.Body, nil)
}
