package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a domain event.
type Event interface {
	EventType() string
}

// OrderPlaced is published after a checkout transaction commits.
type OrderPlaced struct {
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id"`
	Lines      []OrderLine     `json:"lines"`
	Total      decimal.Decimal `json:"total_amount"`
	PlacedAt   time.Time       `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderConfirmed is published once the confirmation consumer has
// verified a placed order.
type OrderConfirmed struct {
	OrderID     int64     `json:"order_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

func (e OrderConfirmed) EventType() string { return "OrderConfirmed" }
