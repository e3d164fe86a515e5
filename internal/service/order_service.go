package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/messaging"
	"github.com/hypeculture/marketplace/internal/repository"
)

// TopicOrderConfirmed carries OrderConfirmed events.
const TopicOrderConfirmed = "orders.confirmed"

// OrderService reads order history and drives the post-checkout
// confirmation flow.
type OrderService struct {
	orders    repository.OrderRepository
	publisher messaging.Publisher
}

func NewOrderService(orders repository.OrderRepository, publisher messaging.Publisher) *OrderService {
	return &OrderService{orders: orders, publisher: publisher}
}

// OrdersFor returns a customer's orders, most recent first, each with
// its shipping address. Line items are resolved per order via
// OrderItems.
func (s *OrderService) OrdersFor(ctx context.Context, customerID int64) ([]entity.Order, error) {
	return s.orders.OrdersForCustomer(ctx, customerID)
}

// OrderItems returns the line items of one order.
func (s *OrderService) OrderItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	return s.orders.OrderItems(ctx, orderID)
}

// RecentOrders returns the latest orders across all customers, for the
// back office.
func (s *OrderService) RecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orders.FindRecent(ctx, limit)
}

// HandleOrderPlaced is triggered by the message broker when an order
// is placed. It moves the order to confirmed and announces that.
func (s *OrderService) HandleOrderPlaced(ctx context.Context, event *entity.OrderPlaced) error {
	slog.Info("Confirming order", "order_id", event.OrderID)

	if err := s.orders.SetStatus(ctx, event.OrderID, entity.StatusConfirmed); err != nil {
		return fmt.Errorf("failed to confirm order %d: %w", event.OrderID, err)
	}

	confirmed := entity.OrderConfirmed{
		OrderID:     event.OrderID,
		ConfirmedAt: time.Now(),
	}
	if err := s.publisher.PublishEvent(ctx, TopicOrderConfirmed, fmt.Sprintf("%d", event.OrderID), confirmed); err != nil {
		slog.Error("Failed to publish OrderConfirmed", "order_id", event.OrderID, "err", err)
	}

	slog.Info("Order confirmed", "order_id", event.OrderID)
	return nil
}
