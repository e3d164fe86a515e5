package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/repository"
)

type listingRepository struct {
	db *sql.DB
}

// NewListingRepository creates a ListingRepository backed by Postgres.
func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) OffersForProduct(ctx context.Context, productID int64) ([]entity.Offer, error) {
	// Price ascending, listing id as the deterministic tie-breaker.
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.inventory_id, i.seller_id, u.first_name || ' ' || u.last_name, i.product_id, i.price, i.stock_quantity
		FROM inventory i
		JOIN users u ON i.seller_id = u.user_id
		WHERE i.product_id = $1 AND i.stock_quantity > 0
		ORDER BY i.price ASC, i.inventory_id ASC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []entity.Offer
	for rows.Next() {
		var o entity.Offer
		if err := rows.Scan(&o.ListingID, &o.SellerID, &o.SellerName, &o.ProductID, &o.Price, &o.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *listingRepository) SellerListings(ctx context.Context, sellerID int64) ([]entity.SellerListing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.inventory_id, i.product_id, p.product_name, i.price, i.stock_quantity
		FROM inventory i
		JOIN products p ON i.product_id = p.product_id
		WHERE i.seller_id = $1
		ORDER BY i.inventory_id`,
		sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query seller listings: %w", err)
	}
	defer rows.Close()

	var listings []entity.SellerListing
	for rows.Next() {
		var l entity.SellerListing
		if err := rows.Scan(&l.ListingID, &l.ProductID, &l.ProductName, &l.Price, &l.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan seller listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO inventory (seller_id, product_id, price, stock_quantity) VALUES ($1, $2, $3, $4) RETURNING inventory_id",
		listing.SellerID, listing.ProductID, listing.Price, listing.Stock,
	).Scan(&listing.ID)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

func (r *listingRepository) UpdatePrice(ctx context.Context, sellerID, listingID int64, price decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE inventory SET price = $1 WHERE inventory_id = $2 AND seller_id = $3",
		price, listingID, sellerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing price: %w", err)
	}
	return requireRow(res, listingID)
}

func (r *listingRepository) UpdateStock(ctx context.Context, sellerID, listingID int64, stock int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE inventory SET stock_quantity = $1 WHERE inventory_id = $2 AND seller_id = $3",
		stock, listingID, sellerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing stock: %w", err)
	}
	return requireRow(res, listingID)
}

func (r *listingRepository) Delete(ctx context.Context, sellerID, listingID int64) error {
	// Scoping by seller_id keeps sellers out of each other's listings.
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM inventory WHERE inventory_id = $1 AND seller_id = $2",
		listingID, sellerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return requireRow(res, listingID)
}

func requireRow(res sql.Result, listingID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("listing %d: %w", listingID, entity.ErrNotFound)
	}
	return nil
}
