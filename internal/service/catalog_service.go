package service

import (
	"context"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/repository"
)

// CatalogService reads the shared master catalog.
type CatalogService struct {
	catalog repository.CatalogRepository
}

func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) Categories(ctx context.Context) ([]entity.Category, error) {
	return s.catalog.Categories(ctx)
}

// Products lists catalog products, optionally narrowed to a category.
func (s *CatalogService) Products(ctx context.Context, categoryID int64) ([]entity.Product, error) {
	return s.catalog.Products(ctx, categoryID)
}

func (s *CatalogService) Product(ctx context.Context, productID int64) (*entity.Product, error) {
	return s.catalog.Product(ctx, productID)
}
