package service

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mebelmart-backend/internal/domain"
	"mebelmart-backend/internal/filestore"
	"mebelmart-backend/internal/repository"
)

// ImageStore holds uploaded product images by file name.
type ImageStore interface {
	Put(name string, r io.Reader) error
	Open(name string) (*filestore.File, error)
	Remove(name string) error
}

// ProductService is the catalog: product CRUD plus image upload/download.
type ProductService struct {
	repo   repository.ProductRepository
	images ImageStore
	now    func() time.Time
}

func NewProductService(repo repository.ProductRepository, images ImageStore) *ProductService {
	return &ProductService{repo: repo, images: images, now: time.Now}
}

// ProductInput is a new product. Price is a pointer so that a missing price
// can be told apart from a free one.
type ProductInput struct {
	Name        string
	Category    string
	Price       *float64
	Description string
	Image       string
	Stock       int
}

// ProductPatch lists the fields to overwrite; nil fields keep the stored value.
type ProductPatch struct {
	Name        *string
	Category    *string
	Price       *float64
	Description *string
	Image       *string
	Stock       *int
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return products, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, validationError("name is required")
	case strings.TrimSpace(in.Category) == "":
		return nil, validationError("category is required")
	case in.Price == nil:
		return nil, validationError("price is required")
	}
	if err := checkPriceStock(*in.Price, in.Stock); err != nil {
		return nil, err
	}
	now := s.now()
	p := domain.Product{
		Name:        in.Name,
		Category:    in.Category,
		Price:       *in.Price,
		Description: in.Description,
		Image:       in.Image,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, storageError(err)
	}
	return &p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, validationError("name must not be empty")
		}
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		if strings.TrimSpace(*patch.Category) == "" {
			return nil, validationError("category must not be empty")
		}
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if err := checkPriceStock(p.Price, p.Stock); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, productError(err)
	}
	return p, nil
}

// Delete removes the product and returns what was stored. Carts and orders
// that reference it are left alone.
func (s *ProductService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := parseProductID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return nil, productError(err)
	}
	return p, nil
}

// SetImage stores data as "<id><ext>" and points the product at it.
func (s *ProductService) SetImage(ctx context.Context, id string, data io.Reader, originalFilename string) (*domain.Product, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := p.ID.Hex() + imageExt(originalFilename)
	if err := s.images.Put(name, data); err != nil {
		return nil, storageError(err)
	}
	previous := p.Image
	p.Image = name
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		// a file the stored product still names is not an orphan
		if name != previous {
			if rmErr := s.images.Remove(name); rmErr != nil {
				log.Printf("remove orphan image %s: %v", name, rmErr)
			}
		}
		return nil, productError(err)
	}
	return p, nil
}

// GetImage opens the product's image. The caller closes the returned body.
func (s *ProductService) GetImage(ctx context.Context, id string) (*filestore.File, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Image == "" {
		return nil, notFoundError("image not found")
	}
	f, err := s.images.Open(p.Image)
	if errors.Is(err, filestore.ErrNotFound) || errors.Is(err, filestore.ErrInvalidName) {
		return nil, notFoundError("image not found")
	}
	if err != nil {
		return nil, storageError(err)
	}
	return f, nil
}

func (s *ProductService) get(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := parseProductID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, productError(err)
	}
	return p, nil
}

func parseProductID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, validationError("invalid product id")
	}
	return oid, nil
}

func checkPriceStock(price float64, stock int) error {
	if price < 0 {
		return validationError("price must not be negative")
	}
	if stock < 0 {
		return validationError("stock must not be negative")
	}
	return nil
}

func productError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError("product not found")
	}
	return storageError(err)
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

func imageExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}
