package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed inserts demo users, categories, products and listings if the
// catalog is empty.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	_, err := db.Exec(`
		INSERT INTO users (first_name, last_name, email, user_role) VALUES
			('Ava', 'Customer', 'ava@example.com', 'customer'),
			('Marcus', 'Kicks', 'marcus@kicks.example.com', 'seller'),
			('Lena', 'Soles', 'lena@soles.example.com', 'seller'),
			('Admin', 'User', 'admin@example.com', 'admin');

		INSERT INTO categories (category_name) VALUES
			('Running'), ('Basketball'), ('Lifestyle');

		INSERT INTO products (product_name, brand, category_id) VALUES
			('Air Zoom Pegasus 41', 'Nike', 1),
			('Gel-Kayano 31', 'ASICS', 1),
			('LeBron XXII', 'Nike', 2),
			('Samba OG', 'Adidas', 3),
			('New Balance 550', 'New Balance', 3);

		INSERT INTO inventory (seller_id, product_id, price, stock_quantity) VALUES
			(2, 1, 139.99, 25),
			(3, 1, 129.99, 10),
			(2, 2, 164.95, 12),
			(3, 3, 199.99, 8),
			(2, 4, 99.99, 40),
			(3, 4, 94.50, 5),
			(3, 5, 119.99, 18);
	`)
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	slog.Info("Seeded demo catalog and listings")
	return nil
}
