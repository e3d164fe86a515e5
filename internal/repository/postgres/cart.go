package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/repository"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a CartRepository backed by Postgres.
func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) AddItem(ctx context.Context, customerID, listingID int64, quantity int) error {
	// Re-adding the same listing accumulates instead of duplicating;
	// the (customer_id, inventory_id) unique constraint drives the
	// upsert.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart (customer_id, inventory_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, inventory_id)
		DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity`,
		customerID, listingID, quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) Lines(ctx context.Context, customerID int64) ([]entity.CartLine, error) {
	// Subtotals come from the listing's current price, so a seller's
	// price change is visible until checkout captures it.
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.inventory_id, p.product_name, u.first_name || ' ' || u.last_name,
		       i.price, c.quantity, (i.price * c.quantity) AS subtotal
		FROM cart c
		JOIN inventory i ON c.inventory_id = i.inventory_id
		JOIN products p ON i.product_id = p.product_id
		JOIN users u ON i.seller_id = u.user_id
		WHERE c.customer_id = $1
		ORDER BY c.cart_id`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	var lines []entity.CartLine
	for rows.Next() {
		var l entity.CartLine
		if err := rows.Scan(&l.ListingID, &l.ProductName, &l.SellerName, &l.UnitPrice, &l.Quantity, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *cartRepository) Snapshot(ctx context.Context, customerID int64) ([]entity.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.inventory_id, c.quantity, i.price, i.stock_quantity
		FROM cart c
		JOIN inventory i ON c.inventory_id = i.inventory_id
		WHERE c.customer_id = $1
		ORDER BY c.cart_id`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot cart: %w", err)
	}
	defer rows.Close()

	var items []entity.CartItem
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.ListingID, &it.Quantity, &it.UnitPrice, &it.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *cartRepository) RemoveItem(ctx context.Context, customerID, listingID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM cart WHERE customer_id = $1 AND inventory_id = $2",
		customerID, listingID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("cart item for listing %d: %w", listingID, entity.ErrNotFound)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, customerID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart WHERE customer_id = $1", customerID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
