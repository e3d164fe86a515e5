package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/messaging"
	"github.com/hypeculture/marketplace/internal/repository"
)

// TopicOrderPlaced carries OrderPlaced events to downstream consumers.
const TopicOrderPlaced = "orders.placed"

// CheckoutService turns cart intent into durable orders. The flow is
// split in two so no transaction stays open across user interaction:
// Prepare validates the cart and captures prices without mutating
// anything; PlaceOrder commits the captured snapshot atomically, with
// stock re-checked inside the transaction.
type CheckoutService struct {
	carts     repository.CartRepository
	orders    repository.OrderRepository
	publisher messaging.Publisher
}

func NewCheckoutService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	publisher messaging.Publisher,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		publisher: publisher,
	}
}

// Prepare loads the customer's cart as one snapshot, checks every line
// against current stock and computes the order total at current
// prices. Nothing is mutated. An empty cart yields an empty summary,
// not an error.
func (s *CheckoutService) Prepare(ctx context.Context, customerID int64) (*entity.CheckoutSummary, error) {
	items, err := s.carts.Snapshot(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	summary := &entity.CheckoutSummary{Total: decimal.Zero}
	for _, it := range items {
		if it.Quantity > it.Stock {
			return nil, &entity.InsufficientStockError{ListingID: it.ListingID, Available: it.Stock}
		}
		summary.Lines = append(summary.Lines, entity.OrderLine{
			ListingID: it.ListingID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
		subtotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		summary.Total = summary.Total.Add(subtotal)
	}
	return summary, nil
}

// PlaceOrder commits a prepared summary: shipping address, order
// header, order items at the prices captured by Prepare, stock
// decrements and cart clear, all in one transaction. Stock may have
// moved since Prepare, so the commit re-validates it; a loss there
// surfaces as InsufficientStockError with everything rolled back. Any
// other commit failure comes back as CheckoutFailedError, and the cart
// is left exactly as it was.
func (s *CheckoutService) PlaceOrder(ctx context.Context, customerID int64, summary *entity.CheckoutSummary, addr entity.Address) (*entity.Order, error) {
	if summary.Empty() {
		return nil, entity.ErrEmptyCart
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	draft := &entity.OrderDraft{
		CustomerID: customerID,
		Address:    addr,
		Lines:      summary.Lines,
		Total:      summary.Total,
	}

	order, err := s.orders.CommitOrder(ctx, draft)
	if err != nil {
		var stockErr *entity.InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, err
		}
		return nil, &entity.CheckoutFailedError{Cause: err}
	}

	slog.Info("Order placed", "order_id", order.ID, "customer_id", customerID, "total", order.Total)

	// The order is durable at this point; a publish failure must not
	// undo it.
	event := entity.OrderPlaced{
		OrderID:    order.ID,
		CustomerID: customerID,
		Lines:      summary.Lines,
		Total:      order.Total,
		PlacedAt:   order.PlacedAt,
	}
	if err := s.publisher.PublishEvent(ctx, TopicOrderPlaced, fmt.Sprintf("%d", order.ID), event); err != nil {
		slog.Error("Failed to publish OrderPlaced event", "order_id", order.ID, "err", err)
	}

	return order, nil
}

// Checkout runs Prepare and PlaceOrder back to back, for callers that
// collected the shipping address up front.
func (s *CheckoutService) Checkout(ctx context.Context, customerID int64, addr entity.Address) (*entity.Order, error) {
	summary, err := s.Prepare(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if summary.Empty() {
		return nil, entity.ErrEmptyCart
	}
	return s.PlaceOrder(ctx, customerID, summary, addr)
}
