package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/repository"
)

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a CatalogRepository backed by Postgres.
func NewCatalogRepository(db *sql.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Categories(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT category_id, category_name FROM categories ORDER BY category_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *catalogRepository) Products(ctx context.Context, categoryID int64) ([]entity.Product, error) {
	query := "SELECT product_id, product_name, brand, category_id FROM products"
	args := []any{}
	if categoryID > 0 {
		query += " WHERE category_id = $1"
		args = append(args, categoryID)
	}
	query += " ORDER BY product_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *catalogRepository) Product(ctx context.Context, productID int64) (*entity.Product, error) {
	var p entity.Product
	err := r.db.QueryRowContext(ctx,
		"SELECT product_id, product_name, brand, category_id FROM products WHERE product_id = $1",
		productID,
	).Scan(&p.ID, &p.Name, &p.Brand, &p.CategoryID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", productID, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}
