package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates an OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// CommitOrder runs the whole checkout mutation in one transaction.
// Stock validation happened earlier, outside any transaction, so it is
// repeated here as a conditional decrement: "subtract N where stock >=
// N". Zero rows affected means another checkout got there first and
// the entire transaction rolls back, which is what keeps stock from
// ever going negative.
func (r *orderRepository) CommitOrder(ctx context.Context, draft *entity.OrderDraft) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	addr := draft.Address
	addr.UserID = draft.CustomerID
	err = tx.QueryRowContext(ctx,
		"INSERT INTO addresses (user_id, address_line1, city, state, postal_code) VALUES ($1, $2, $3, $4, $5) RETURNING address_id",
		addr.UserID, addr.Line1, addr.City, addr.State, addr.PostalCode,
	).Scan(&addr.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert address: %w", err)
	}

	order := &entity.Order{
		CustomerID: draft.CustomerID,
		AddressID:  addr.ID,
		Total:      draft.Total,
		Status:     entity.StatusPlaced,
		ShipTo:     addr,
	}
	err = tx.QueryRowContext(ctx,
		"INSERT INTO orders (customer_id, address_id, total_amount, order_status) VALUES ($1, $2, $3, $4) RETURNING order_id, order_date",
		order.CustomerID, order.AddressID, order.Total, order.Status,
	).Scan(&order.ID, &order.PlacedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, line := range draft.Lines {
		// Price comes from the captured snapshot, not a re-read.
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, inventory_id, quantity, price_per_unit) VALUES ($1, $2, $3, $4)",
			order.ID, line.ListingID, line.Quantity, line.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE inventory SET stock_quantity = stock_quantity - $1 WHERE inventory_id = $2 AND stock_quantity >= $1",
			line.Quantity, line.ListingID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			var available int
			err := tx.QueryRowContext(ctx,
				"SELECT stock_quantity FROM inventory WHERE inventory_id = $1",
				line.ListingID,
			).Scan(&available)
			if err != nil && err != sql.ErrNoRows {
				return nil, fmt.Errorf("failed to read remaining stock: %w", err)
			}
			return nil, &entity.InsufficientStockError{ListingID: line.ListingID, Available: available}
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cart WHERE customer_id = $1", draft.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}

func (r *orderRepository) OrdersForCustomer(ctx context.Context, customerID int64) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.order_id, o.customer_id, o.address_id, o.total_amount, o.order_status, o.order_date,
		       a.address_line1, a.city, a.state, a.postal_code
		FROM orders o
		JOIN addresses a ON o.address_id = a.address_id
		WHERE o.customer_id = $1
		ORDER BY o.order_date DESC, o.order_id DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows, true)
}

func (r *orderRepository) OrderItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.order_id, oi.inventory_id, p.product_name, u.first_name || ' ' || u.last_name,
		       oi.quantity, oi.price_per_unit
		FROM order_items oi
		JOIN inventory i ON oi.inventory_id = i.inventory_id
		JOIN products p ON i.product_id = p.product_id
		JOIN users u ON i.seller_id = u.user_id
		WHERE oi.order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.OrderID, &it.ListingID, &it.ProductName, &it.SellerName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *orderRepository) SetStatus(ctx context.Context, orderID int64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET order_status = $1 WHERE order_id = $2",
		status, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("order %d: %w", orderID, entity.ErrNotFound)
	}
	return nil
}

func (r *orderRepository) FindRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, customer_id, address_id, total_amount, order_status, order_date
		FROM orders
		ORDER BY order_date DESC, order_id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows, false)
}

func scanOrders(rows *sql.Rows, withAddress bool) ([]entity.Order, error) {
	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		dest := []any{&o.ID, &o.CustomerID, &o.AddressID, &o.Total, &o.Status, &o.PlacedAt}
		if withAddress {
			dest = append(dest, &o.ShipTo.Line1, &o.ShipTo.City, &o.ShipTo.State, &o.ShipTo.PostalCode)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if withAddress {
			o.ShipTo.ID = o.AddressID
			o.ShipTo.UserID = o.CustomerID
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
