package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/repository"
)

// SellerService manages a seller's own listings. Every mutation is
// scoped to the owning seller.
type SellerService struct {
	listings repository.ListingRepository
}

func NewSellerService(listings repository.ListingRepository) *SellerService {
	return &SellerService{listings: listings}
}

// Listings returns the seller's inventory joined with product names.
func (s *SellerService) Listings(ctx context.Context, sellerID int64) ([]entity.SellerListing, error) {
	return s.listings.SellerListings(ctx, sellerID)
}

// CreateListing puts a product on sale for the seller.
func (s *SellerService) CreateListing(ctx context.Context, sellerID, productID int64, price decimal.Decimal, stock int) (*entity.Listing, error) {
	if !price.IsPositive() {
		return nil, entity.ErrInvalidPrice
	}
	if stock < 0 {
		return nil, entity.ErrInvalidStock
	}

	listing := &entity.Listing{
		SellerID:  sellerID,
		ProductID: productID,
		Price:     price,
		Stock:     stock,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	slog.Info("Listing created", "listing_id", listing.ID, "seller_id", sellerID, "product_id", productID)
	return listing, nil
}

// UpdatePrice sets a new price on the seller's listing.
func (s *SellerService) UpdatePrice(ctx context.Context, sellerID, listingID int64, price decimal.Decimal) error {
	if !price.IsPositive() {
		return entity.ErrInvalidPrice
	}
	return s.listings.UpdatePrice(ctx, sellerID, listingID, price)
}

// UpdateStock sets an absolute stock level on the seller's listing.
func (s *SellerService) UpdateStock(ctx context.Context, sellerID, listingID int64, stock int) error {
	if stock < 0 {
		return entity.ErrInvalidStock
	}
	return s.listings.UpdateStock(ctx, sellerID, listingID, stock)
}

// DeleteListing removes the seller's listing.
func (s *SellerService) DeleteListing(ctx context.Context, sellerID, listingID int64) error {
	return s.listings.Delete(ctx, sellerID, listingID)
}
