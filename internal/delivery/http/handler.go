package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/service"
)

// Handler exposes the core operations over HTTP. Identity arrives in
// the X-User-ID header; authentication happens upstream.
type Handler struct {
	catalog  *service.CatalogService
	listings *service.ListingService
	carts    *service.CartService
	checkout *service.CheckoutService
	orders   *service.OrderService
	sellers  *service.SellerService
}

func NewHandler(
	catalog *service.CatalogService,
	listings *service.ListingService,
	carts *service.CartService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	sellers *service.SellerService,
) *Handler {
	return &Handler{
		catalog:  catalog,
		listings: listings,
		carts:    carts,
		checkout: checkout,
		orders:   orders,
		sellers:  sellers,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", h.handleCategories)
	mux.HandleFunc("GET /api/products", h.handleProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleProduct)
	mux.HandleFunc("GET /api/products/{id}/offers", h.handleOffers)
	mux.HandleFunc("GET /api/products/{id}/offers/best", h.handleBestOffer)

	mux.HandleFunc("GET /api/cart", h.handleViewCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddToCart)
	mux.HandleFunc("DELETE /api/cart/items/{listingID}", h.handleRemoveFromCart)

	mux.HandleFunc("POST /api/checkout/preview", h.handleCheckoutPreview)
	mux.HandleFunc("POST /api/checkout", h.handleCheckout)

	mux.HandleFunc("GET /api/orders", h.handleOrders)
	mux.HandleFunc("GET /api/orders/{id}/items", h.handleOrderItems)

	mux.HandleFunc("GET /api/seller/listings", h.handleSellerListings)
	mux.HandleFunc("POST /api/seller/listings", h.handleCreateListing)
	mux.HandleFunc("PATCH /api/seller/listings/{id}", h.handleUpdateListing)
	mux.HandleFunc("DELETE /api/seller/listings/{id}", h.handleDeleteListing)

	mux.HandleFunc("GET /api/admin/orders", h.handleRecentOrders)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid category_id", http.StatusBadRequest)
			return
		}
		categoryID = id
	}

	products, err := h.catalog.Products(r.Context(), categoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.catalog.Product(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleOffers(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	offers, err := h.listings.ListingsFor(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	if offers == nil {
		offers = []entity.Offer{}
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *Handler) handleBestOffer(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	offer, err := h.listings.BestOffer(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (h *Handler) handleViewCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := userID(w, r)
	if !ok {
		return
	}

	view, err := h.carts.ViewCart(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if view.Lines == nil {
		view.Lines = []entity.CartLine{}
	}
	writeJSON(w, http.StatusOK, view)
}

type addToCartRequest struct {
	ListingID int64 `json:"listing_id"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := userID(w, r)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.carts.AddToCart(r.Context(), customerID, req.ListingID, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := userID(w, r)
	if !ok {
		return
	}
	listingID, ok := pathID(w, r, "listingID")
	if !ok {
		return
	}

	if err := h.carts.RemoveFromCart(r.Context(), customerID, listingID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCheckoutPreview(w http.ResponseWriter, r *http.Request) {
	customerID, ok := userID(w, r)
	if !ok {
		return
	}

	summary, err := h.checkout.Prepare(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if summary.Empty() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "empty_cart"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type checkoutRequest struct {
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	customerID, ok := userID(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	addr := entity.Address{
		Line1:      req.AddressLine1,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
	}

	order, err := h.checkout.Checkout(r.Context(), customerID, addr)
	if errors.Is(err, entity.ErrEmptyCart) {
		// Nothing to process is a distinct outcome, not a failure.
		writeJSON(w, http.StatusOK, map[string]string{"status": "empty_cart"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"order_id":     order.ID,
		"total_amount": order.Total,
		"status":       order.Status,
	})
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	customerID, ok := userID(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.OrdersFor(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleOrderItems(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	items, err := h.orders.OrderItems(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []entity.OrderItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleSellerListings(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := userID(w, r)
	if !ok {
		return
	}

	listings, err := h.sellers.Listings(r.Context(), sellerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if listings == nil {
		listings = []entity.SellerListing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

type createListingRequest struct {
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock_quantity"`
}

func (h *Handler) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := userID(w, r)
	if !ok {
		return
	}

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	listing, err := h.sellers.CreateListing(r.Context(), sellerID, req.ProductID, req.Price, req.Stock)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

type updateListingRequest struct {
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock_quantity"`
}

func (h *Handler) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := userID(w, r)
	if !ok {
		return
	}
	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Price == nil && req.Stock == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	if req.Price != nil {
		if err := h.sellers.UpdatePrice(r.Context(), sellerID, listingID, *req.Price); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Stock != nil {
		if err := h.sellers.UpdateStock(r.Context(), sellerID, listingID, *req.Stock); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := userID(w, r)
	if !ok {
		return
	}
	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sellers.DeleteListing(r.Context(), sellerID, listingID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRecentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.RecentOrders(r.Context(), 50)
	if err != nil {
		writeError(w, err)
		return
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	v := r.Header.Get("X-User-ID")
	if v == "" {
		http.Error(w, "missing X-User-ID header", http.StatusUnauthorized)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid X-User-ID header", http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var stockErr *entity.InsufficientStockError
	var checkoutErr *entity.CheckoutFailedError

	switch {
	case errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrInvalidPrice),
		errors.Is(err, entity.ErrInvalidStock),
		errors.Is(err, entity.ErrIncompleteShippingInfo):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      stockErr.Error(),
			"listing_id": stockErr.ListingID,
			"available":  stockErr.Available,
		})
	case errors.As(err, &checkoutErr):
		slog.Error("Checkout failed", "err", checkoutErr.Cause)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "checkout failed, no changes were made"})
	default:
		slog.Error("Request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// EnableCORS is middleware to allow a browser frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
