package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. An order is created as "placed" and moves to
// "confirmed" once the confirmation consumer has processed it.
const (
	StatusPlaced    = "placed"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
)

// Category is a catalog category, e.g. "Running" or "Basketball".
type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"category_name"`
}

// Product is an entry in the shared master catalog. Products are
// immutable once cataloged; sellers list them via Listings.
type Product struct {
	ID         int64  `json:"product_id"`
	Name       string `json:"product_name"`
	Brand      string `json:"brand"`
	CategoryID int64  `json:"category_id"`
}

// Listing is a seller's offer to sell a product: their price and the
// stock they hold. Stock never goes below zero; the only writers are
// the owning seller and the checkout commit.
type Listing struct {
	ID        int64           `json:"listing_id"`
	SellerID  int64           `json:"seller_id"`
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock_quantity"`
}

// Offer is a listing joined with display data, as shown to a customer
// comparing sellers for one product.
type Offer struct {
	ListingID  int64           `json:"listing_id"`
	SellerID   int64           `json:"seller_id"`
	SellerName string          `json:"seller_name"`
	ProductID  int64           `json:"product_id"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock_quantity"`
}

// SellerListing is a listing joined with its product name, as shown on
// the seller's own inventory page.
type SellerListing struct {
	ListingID   int64           `json:"listing_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock_quantity"`
}

// CartLine is one cart row joined with current listing state. Subtotal
// is computed from the listing's current price at read time, so seller
// price changes show up until checkout captures them.
type CartLine struct {
	ListingID   int64           `json:"listing_id"`
	ProductName string          `json:"product_name"`
	SellerName  string          `json:"seller_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CartView is a customer's full cart with its running total.
type CartView struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// CartItem is a cart row paired with its listing's current price and
// stock, the shape the checkout snapshot works from.
type CartItem struct {
	ListingID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Stock     int
}

// Address is a shipping address snapshot. One row is created per
// checkout and owned by the order that references it.
type Address struct {
	ID         int64  `json:"address_id"`
	UserID     int64  `json:"user_id"`
	Line1      string `json:"address_line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// Validate reports ErrIncompleteShippingInfo if any required field is
// blank.
func (a Address) Validate() error {
	for _, f := range []string{a.Line1, a.City, a.State, a.PostalCode} {
		if isBlank(f) {
			return ErrIncompleteShippingInfo
		}
	}
	return nil
}

// Order is a durable order header. Total is computed once at checkout
// and never recomputed.
type Order struct {
	ID         int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id"`
	AddressID  int64           `json:"address_id"`
	Total      decimal.Decimal `json:"total_amount"`
	Status     string          `json:"order_status"`
	PlacedAt   time.Time       `json:"order_date"`
	ShipTo     Address         `json:"shipping_address"`
}

// OrderItem is one order line. UnitPrice is the price captured at
// checkout; later listing price changes do not touch it.
type OrderItem struct {
	OrderID     int64           `json:"order_id"`
	ListingID   int64           `json:"listing_id"`
	ProductName string          `json:"product_name"`
	SellerName  string          `json:"seller_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price_per_unit"`
}

// OrderLine is a quantity of a listing at a captured unit price, the
// unit the checkout summary and commit work in.
type OrderLine struct {
	ListingID int64           `json:"listing_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CheckoutSummary is the validated cart snapshot a checkout commits
// from: the lines with their captured prices and the total they sum to.
type CheckoutSummary struct {
	Lines []OrderLine     `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// Empty reports whether there is nothing to check out.
func (s *CheckoutSummary) Empty() bool {
	return s == nil || len(s.Lines) == 0
}

// OrderDraft is everything the commit transaction needs to persist an
// order: the customer, the shipping address, the captured lines and
// the total computed from them.
type OrderDraft struct {
	CustomerID int64
	Address    Address
	Lines      []OrderLine
	Total      decimal.Decimal
}
