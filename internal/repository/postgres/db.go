package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			user_role TEXT NOT NULL DEFAULT 'customer'
		);

		CREATE TABLE IF NOT EXISTS categories (
			category_id BIGSERIAL PRIMARY KEY,
			category_name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS products (
			product_id BIGSERIAL PRIMARY KEY,
			product_name TEXT NOT NULL,
			brand TEXT NOT NULL DEFAULT '',
			category_id BIGINT NOT NULL REFERENCES categories(category_id)
		);

		CREATE TABLE IF NOT EXISTS inventory (
			inventory_id BIGSERIAL PRIMARY KEY,
			seller_id BIGINT NOT NULL REFERENCES users(user_id),
			product_id BIGINT NOT NULL REFERENCES products(product_id),
			price NUMERIC(10,2) NOT NULL CHECK (price > 0),
			stock_quantity INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0)
		);

		CREATE TABLE IF NOT EXISTS cart (
			cart_id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES users(user_id),
			inventory_id BIGINT NOT NULL REFERENCES inventory(inventory_id),
			quantity INT NOT NULL CHECK (quantity > 0),
			UNIQUE (customer_id, inventory_id)
		);

		CREATE TABLE IF NOT EXISTS addresses (
			address_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			address_line1 TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			postal_code TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS orders (
			order_id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES users(user_id),
			address_id BIGINT NOT NULL REFERENCES addresses(address_id),
			total_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
			order_status TEXT NOT NULL DEFAULT 'placed',
			order_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			order_id BIGINT NOT NULL REFERENCES orders(order_id),
			inventory_id BIGINT NOT NULL REFERENCES inventory(inventory_id),
			quantity INT NOT NULL CHECK (quantity > 0),
			price_per_unit NUMERIC(10,2) NOT NULL,
			PRIMARY KEY (order_id, inventory_id)
		);
	`)
	return err
}
