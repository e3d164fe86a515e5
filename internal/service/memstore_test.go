package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hypeculture/marketplace/internal/entity"
	"github.com/hypeculture/marketplace/internal/repository"
)

// memStore is an in-memory stand-in for the Postgres repositories with
// the same commit semantics: one lock around the whole order commit,
// conditional stock decrements, all-or-nothing rollback.
type memStore struct {
	mu           sync.Mutex
	listings     map[int64]*entity.Listing
	productNames map[int64]string
	sellerNames  map[int64]string
	cart         map[int64]map[int64]int // customer -> listing -> quantity
	cartOrder    map[int64][]int64       // insertion order per customer
	orders       []entity.Order
	items        map[int64][]entity.OrderItem
	addresses    []entity.Address
	nextListing  int64
	nextOrder    int64
	nextAddress  int64
	commitErr    error // injected commit-time failure
}

var (
	_ repository.ListingRepository = (*memStore)(nil)
	_ repository.CartRepository    = (*memStore)(nil)
	_ repository.OrderRepository   = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		listings:     make(map[int64]*entity.Listing),
		productNames: make(map[int64]string),
		sellerNames:  make(map[int64]string),
		cart:         make(map[int64]map[int64]int),
		cartOrder:    make(map[int64][]int64),
		items:        make(map[int64][]entity.OrderItem),
	}
}

func (m *memStore) addListing(l entity.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID > m.nextListing {
		m.nextListing = l.ID
	}
	m.listings[l.ID] = &l
}

func (m *memStore) stock(listingID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.listings[listingID]; ok {
		return l.Stock
	}
	return -1
}

func (m *memStore) cartQuantity(customerID, listingID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart[customerID][listingID]
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) addressCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.addresses)
}

// --- ListingRepository ---

func (m *memStore) OffersForProduct(ctx context.Context, productID int64) ([]entity.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var offers []entity.Offer
	for _, l := range m.listings {
		if l.ProductID != productID || l.Stock <= 0 {
			continue
		}
		offers = append(offers, entity.Offer{
			ListingID:  l.ID,
			SellerID:   l.SellerID,
			SellerName: m.sellerNames[l.SellerID],
			ProductID:  l.ProductID,
			Price:      l.Price,
			Stock:      l.Stock,
		})
	}
	sort.Slice(offers, func(i, j int) bool {
		if c := offers[i].Price.Cmp(offers[j].Price); c != 0 {
			return c < 0
		}
		return offers[i].ListingID < offers[j].ListingID
	})
	return offers, nil
}

func (m *memStore) SellerListings(ctx context.Context, sellerID int64) ([]entity.SellerListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var listings []entity.SellerListing
	for _, l := range m.listings {
		if l.SellerID != sellerID {
			continue
		}
		listings = append(listings, entity.SellerListing{
			ListingID:   l.ID,
			ProductID:   l.ProductID,
			ProductName: m.productNames[l.ProductID],
			Price:       l.Price,
			Stock:       l.Stock,
		})
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].ListingID < listings[j].ListingID })
	return listings, nil
}

func (m *memStore) Create(ctx context.Context, listing *entity.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextListing++
	listing.ID = m.nextListing
	copied := *listing
	m.listings[copied.ID] = &copied
	return nil
}

func (m *memStore) UpdatePrice(ctx context.Context, sellerID, listingID int64, price decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[listingID]
	if !ok || l.SellerID != sellerID {
		return fmt.Errorf("listing %d: %w", listingID, entity.ErrNotFound)
	}
	l.Price = price
	return nil
}

func (m *memStore) UpdateStock(ctx context.Context, sellerID, listingID int64, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[listingID]
	if !ok || l.SellerID != sellerID {
		return fmt.Errorf("listing %d: %w", listingID, entity.ErrNotFound)
	}
	l.Stock = stock
	return nil
}

func (m *memStore) Delete(ctx context.Context, sellerID, listingID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[listingID]
	if !ok || l.SellerID != sellerID {
		return fmt.Errorf("listing %d: %w", listingID, entity.ErrNotFound)
	}
	delete(m.listings, l.ID)
	return nil
}

// --- CartRepository ---

func (m *memStore) AddItem(ctx context.Context, customerID, listingID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cart[customerID] == nil {
		m.cart[customerID] = make(map[int64]int)
	}
	if _, exists := m.cart[customerID][listingID]; !exists {
		m.cartOrder[customerID] = append(m.cartOrder[customerID], listingID)
	}
	m.cart[customerID][listingID] += quantity
	return nil
}

func (m *memStore) Lines(ctx context.Context, customerID int64) ([]entity.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lines []entity.CartLine
	for _, listingID := range m.cartOrder[customerID] {
		qty, ok := m.cart[customerID][listingID]
		if !ok {
			continue
		}
		l := m.listings[listingID]
		lines = append(lines, entity.CartLine{
			ListingID:   listingID,
			ProductName: m.productNames[l.ProductID],
			SellerName:  m.sellerNames[l.SellerID],
			UnitPrice:   l.Price,
			Quantity:    qty,
			Subtotal:    l.Price.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return lines, nil
}

func (m *memStore) Snapshot(ctx context.Context, customerID int64) ([]entity.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []entity.CartItem
	for _, listingID := range m.cartOrder[customerID] {
		qty, ok := m.cart[customerID][listingID]
		if !ok {
			continue
		}
		l := m.listings[listingID]
		items = append(items, entity.CartItem{
			ListingID: listingID,
			Quantity:  qty,
			UnitPrice: l.Price,
			Stock:     l.Stock,
		})
	}
	return items, nil
}

func (m *memStore) RemoveItem(ctx context.Context, customerID, listingID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cart[customerID][listingID]; !ok {
		return fmt.Errorf("cart item for listing %d: %w", listingID, entity.ErrNotFound)
	}
	delete(m.cart[customerID], listingID)
	return nil
}

func (m *memStore) Clear(ctx context.Context, customerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCartLocked(customerID)
	return nil
}

func (m *memStore) clearCartLocked(customerID int64) {
	delete(m.cart, customerID)
	delete(m.cartOrder, customerID)
}

// --- OrderRepository ---

func (m *memStore) CommitOrder(ctx context.Context, draft *entity.OrderDraft) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.commitErr != nil {
		return nil, m.commitErr
	}

	// Conditional decrements; undo on any failure so the commit is
	// all-or-nothing like the real transaction.
	applied := make(map[int64]int)
	undo := func() {
		for id, qty := range applied {
			m.listings[id].Stock += qty
		}
	}
	for _, line := range draft.Lines {
		l, ok := m.listings[line.ListingID]
		if !ok {
			undo()
			return nil, &entity.InsufficientStockError{ListingID: line.ListingID, Available: 0}
		}
		if l.Stock < line.Quantity {
			undo()
			return nil, &entity.InsufficientStockError{ListingID: line.ListingID, Available: l.Stock}
		}
		l.Stock -= line.Quantity
		applied[line.ListingID] += line.Quantity
	}

	m.nextAddress++
	addr := draft.Address
	addr.ID = m.nextAddress
	addr.UserID = draft.CustomerID
	m.addresses = append(m.addresses, addr)

	m.nextOrder++
	order := entity.Order{
		ID:         m.nextOrder,
		CustomerID: draft.CustomerID,
		AddressID:  addr.ID,
		Total:      draft.Total,
		Status:     entity.StatusPlaced,
		PlacedAt:   time.Now(),
		ShipTo:     addr,
	}
	m.orders = append(m.orders, order)

	for _, line := range draft.Lines {
		l := m.listings[line.ListingID]
		m.items[order.ID] = append(m.items[order.ID], entity.OrderItem{
			OrderID:     order.ID,
			ListingID:   line.ListingID,
			ProductName: m.productNames[l.ProductID],
			SellerName:  m.sellerNames[l.SellerID],
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	m.clearCartLocked(draft.CustomerID)
	return &order, nil
}

func (m *memStore) OrdersForCustomer(ctx context.Context, customerID int64) ([]entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var orders []entity.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (m *memStore) OrderItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.OrderItem(nil), m.items[orderID]...), nil
}

func (m *memStore) SetStatus(ctx context.Context, orderID int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.orders {
		if m.orders[i].ID == orderID {
			m.orders[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("order %d: %w", orderID, entity.ErrNotFound)
}

func (m *memStore) FindRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := append([]entity.Order(nil), m.orders...)
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	topic string
	key   string
	event any
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) events(topic string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.published {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
