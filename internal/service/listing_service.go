package service

import (
	"context"
	"fmt"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/repository"
)

// ListingService aggregates competing seller listings for a product.
type ListingService struct {
	listings repository.ListingRepository
}

func NewListingService(listings repository.ListingRepository) *ListingService {
	return &ListingService{listings: listings}
}

// ListingsFor returns every in-stock offer for a product, cheapest
// first with listing id breaking price ties. An empty result means no
// seller currently stocks the product and is not an error.
func (s *ListingService) ListingsFor(ctx context.Context, productID int64) ([]entity.Offer, error) {
	return s.listings.OffersForProduct(ctx, productID)
}

// BestOffer returns the cheapest in-stock offer for a product.
func (s *ListingService) BestOffer(ctx context.Context, productID int64) (*entity.Offer, error) {
	offers, err := s.listings.OffersForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, fmt.Errorf("no offers for product %d: %w", productID, entity.ErrNotFound)
	}
	return &offers[0], nil
}
