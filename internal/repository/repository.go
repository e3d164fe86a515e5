package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/hypeculture/marketplace/internal/entity"
)

// CatalogRepository reads the shared master catalog. The core never
// mutates it.
type CatalogRepository interface {
	Categories(ctx context.Context) ([]entity.Category, error)
	// Products lists catalog products; categoryID 0 means all.
	Products(ctx context.Context, categoryID int64) ([]entity.Product, error)
	Product(ctx context.Context, productID int64) (*entity.Product, error)
}

// ListingRepository handles persistence for seller listings.
type ListingRepository interface {
	// OffersForProduct returns in-stock listings for a product,
	// cheapest first, ties broken by listing id ascending. An empty
	// slice means no seller currently stocks the product.
	OffersForProduct(ctx context.Context, productID int64) ([]entity.Offer, error)
	SellerListings(ctx context.Context, sellerID int64) ([]entity.SellerListing, error)
	// Create inserts a listing and fills in its id.
	Create(ctx context.Context, listing *entity.Listing) error
	UpdatePrice(ctx context.Context, sellerID, listingID int64, price decimal.Decimal) error
	UpdateStock(ctx context.Context, sellerID, listingID int64, stock int) error
	Delete(ctx context.Context, sellerID, listingID int64) error
}

// CartRepository handles persistence for cart entries. A customer has
// at most one entry per listing.
type CartRepository interface {
	// AddItem upserts: an existing (customer, listing) entry has its
	// quantity incremented, otherwise a new entry is created.
	AddItem(ctx context.Context, customerID, listingID int64, quantity int) error
	// Lines joins the cart against current listing state for display.
	Lines(ctx context.Context, customerID int64) ([]entity.CartLine, error)
	// Snapshot pairs each cart entry with its listing's current price
	// and stock, the input to checkout validation.
	Snapshot(ctx context.Context, customerID int64) ([]entity.CartItem, error)
	RemoveItem(ctx context.Context, customerID, listingID int64) error
	Clear(ctx context.Context, customerID int64) error
}

// OrderRepository handles persistence for orders.
type OrderRepository interface {
	// CommitOrder executes the entire checkout mutation as one atomic
	// unit: address, order header, order items at captured prices,
	// conditional stock decrements and cart clear. Stock is re-checked
	// inside the transaction; any failure rolls everything back.
	CommitOrder(ctx context.Context, draft *entity.OrderDraft) (*entity.Order, error)
	// OrdersForCustomer returns a customer's orders, most recent
	// first, each joined with its shipping address.
	OrdersForCustomer(ctx context.Context, customerID int64) ([]entity.Order, error)
	OrderItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error)
	SetStatus(ctx context.Context, orderID int64, status string) error
	// FindRecent returns the latest orders across all customers.
	FindRecent(ctx context.Context, limit int) ([]entity.Order, error)
}
