package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/repository"
)

// CartService maintains each customer's pending purchase intent.
type CartService struct {
	carts repository.CartRepository
}

func NewCartService(carts repository.CartRepository) *CartService {
	return &CartService{carts: carts}
}

// AddToCart adds quantity of a listing to the customer's cart,
// accumulating onto any existing entry for the same listing. Stock is
// deliberately not checked here: the cart records intent, and stock is
// validated at checkout where it actually matters.
func (s *CartService) AddToCart(ctx context.Context, customerID, listingID int64, quantity int) error {
	if quantity <= 0 {
		return entity.ErrInvalidQuantity
	}

	if err := s.carts.AddItem(ctx, customerID, listingID, quantity); err != nil {
		return err
	}

	slog.Info("Added item to cart", "customer_id", customerID, "listing_id", listingID, "quantity", quantity)
	return nil
}

// ViewCart returns the cart joined against current listing state, with
// per-line subtotals and the running total computed fresh on each view.
func (s *CartService) ViewCart(ctx context.Context, customerID int64) (*entity.CartView, error) {
	lines, err := s.carts.Lines(ctx, customerID)
	if err != nil {
		return nil, err
	}

	view := &entity.CartView{Lines: lines, Total: decimal.Zero}
	for _, l := range lines {
		view.Total = view.Total.Add(l.Subtotal)
	}
	return view, nil
}

// RemoveFromCart deletes one cart entry.
func (s *CartService) RemoveFromCart(ctx context.Context, customerID, listingID int64) error {
	return s.carts.RemoveItem(ctx, customerID, listingID)
}
