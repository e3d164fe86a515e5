package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypeculture/marketplace/internal/entity"
)

func TestAddToCartAccumulates(t *testing.T) {
	store := newMemStore()
	store.addListing(entity.Listing{ID: 1, SellerID: 10, ProductID: 7, Price: dec("80"), Stock: 20})

	svc := NewCartService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddToCart(ctx, 1, 1, 2))
	require.NoError(t, svc.AddToCart(ctx, 1, 1, 3))

	view, err := svc.ViewCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1, "re-adding the same listing must not duplicate the entry")
	assert.Equal(t, 5, view.Lines[0].Quantity)
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	store := newMemStore()
	store.addListing(entity.Listing{ID: 1, SellerID: 10, ProductID: 7, Price: dec("80"), Stock: 20})

	svc := NewCartService(store)
	ctx := context.Background()

	for _, qty := range []int{0, -1, -100} {
		err := svc.AddToCart(ctx, 1, 1, qty)
		assert.ErrorIs(t, err, entity.ErrInvalidQuantity, "quantity %d", qty)
	}
	assert.Equal(t, 0, store.cartQuantity(1, 1))
}

func TestAddToCartIgnoresStock(t *testing.T) {
	// Stock is validated at checkout, not at add time; the cart
	// records intent regardless of what other customers are doing.
	store := newMemStore()
	store.addListing(entity.Listing{ID: 1, SellerID: 10, ProductID: 7, Price: dec("80"), Stock: 1})

	svc := NewCartService(store)

	require.NoError(t, svc.AddToCart(context.Background(), 1, 1, 5))
	assert.Equal(t, 5, store.cartQuantity(1, 1))
}

func TestViewCartComputesFreshSubtotals(t *testing.T) {
	store := newMemStore()
	store.productNames[7] = "Samba OG"
	store.sellerNames[10] = "Lena Soles"
	store.addListing(entity.Listing{ID: 1, SellerID: 10, ProductID: 7, Price: dec("50"), Stock: 20})
	store.addListing(entity.Listing{ID: 2, SellerID: 10, ProductID: 8, Price: dec("30"), Stock: 20})

	svc := NewCartService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddToCart(ctx, 1, 1, 2))
	require.NoError(t, svc.AddToCart(ctx, 1, 2, 1))

	view, err := svc.ViewCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.True(t, view.Lines[0].Subtotal.Equal(dec("100")))
	assert.True(t, view.Lines[1].Subtotal.Equal(dec("30")))
	assert.True(t, view.Total.Equal(dec("130")))

	// A seller price change shows up on the next view; nothing is
	// locked in until checkout.
	require.NoError(t, store.UpdatePrice(ctx, 10, 1, dec("60")))

	view, err = svc.ViewCart(ctx, 1)
	require.NoError(t, err)
	assert.True(t, view.Lines[0].Subtotal.Equal(dec("120")))
	assert.True(t, view.Total.Equal(dec("150")))
}

func TestCartsAreIndependentPerCustomer(t *testing.T) {
	store := newMemStore()
	store.addListing(entity.Listing{ID: 1, SellerID: 10, ProductID: 7, Price: dec("80"), Stock: 20})

	svc := NewCartService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddToCart(ctx, 1, 1, 2))
	require.NoError(t, svc.AddToCart(ctx, 2, 1, 7))

	assert.Equal(t, 2, store.cartQuantity(1, 1))
	assert.Equal(t, 7, store.cartQuantity(2, 1))
}

func TestRemoveFromCart(t *testing.T) {
	store := newMemStore()
	store.addListing(entity.Listing{ID: 1, SellerID: 10, ProductID: 7, Price: dec("80"), Stock: 20})

	svc := NewCartService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddToCart(ctx, 1, 1, 2))
	require.NoError(t, svc.RemoveFromCart(ctx, 1, 1))
	assert.Equal(t, 0, store.cartQuantity(1, 1))

	err := svc.RemoveFromCart(ctx, 1, 1)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
