package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/RoyceAzure/lab/storefront/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemWithinStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	pen := testutil.CreateProduct(t, env.store, "pen", "2.50", 10)

	require.NoError(t, env.cart.AddItem(ctx, alice, pen.ID, 3))
	cart, err := env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)

	// 已存在的明細累加
	require.NoError(t, env.cart.AddItem(ctx, alice, pen.ID, 7))
	cart, err = env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 10, cart.Lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("25.00").Equal(cart.Lines[0].Subtotal))
	assert.True(t, decimal.RequireFromString("25.00").Equal(cart.Total))
}

func TestAddItemBeyondStockLeavesCartUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	pen := testutil.CreateProduct(t, env.store, "pen", "1.00", 3)

	err := env.cart.AddItem(ctx, alice, pen.ID, 4)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	require.NoError(t, env.cart.AddItem(ctx, alice, pen.ID, 2))
	err = env.cart.AddItem(ctx, alice, pen.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	cart, err := env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	pen := testutil.CreateProduct(t, env.store, "pen", "1.00", 3)

	assert.ErrorIs(t, env.cart.AddItem(ctx, alice, pen.ID, 0), apperr.ErrValidation)
	assert.ErrorIs(t, env.cart.AddItem(ctx, alice, pen.ID, -1), apperr.ErrValidation)
	assert.ErrorIs(t, env.cart.AddItem(ctx, alice, 9999, 1), apperr.ErrValidation)

	require.NoError(t, env.store.SetProductActive(ctx, pen.ID, false))
	assert.ErrorIs(t, env.cart.AddItem(ctx, alice, pen.ID, 1), apperr.ErrValidation)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	pen := testutil.CreateProduct(t, env.store, "pen", "1.00", 5)
	ink := testutil.CreateProduct(t, env.store, "ink", "3.00", 5)

	require.NoError(t, env.cart.AddItem(ctx, alice, pen.ID, 2))
	require.NoError(t, env.cart.AddItem(ctx, alice, ink.ID, 1))

	// 覆寫而非累加
	require.NoError(t, env.cart.UpdateItem(ctx, alice, pen.ID, 4))
	assert.ErrorIs(t, env.cart.UpdateItem(ctx, alice, pen.ID, 6), apperr.ErrInsufficientStock)

	cart, err := env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	// 最新加入的在前
	assert.Equal(t, ink.ID, cart.Lines[0].ProductID)
	assert.Equal(t, 4, cart.Lines[1].Quantity)

	require.NoError(t, env.cart.UpdateItem(ctx, alice, ink.ID, 0))
	require.NoError(t, env.cart.UpdateItem(ctx, alice, ink.ID, 0))
	require.NoError(t, env.cart.RemoveItem(ctx, alice, pen.ID))
	require.NoError(t, env.cart.RemoveItem(ctx, alice, pen.ID))

	cart, err = env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.True(t, cart.Total.IsZero())
}

func TestCartUpdateItemNotInCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	pen := testutil.CreateProduct(t, env.store, "pen", "1.00", 5)

	assert.ErrorIs(t, env.cart.UpdateItem(ctx, alice, pen.ID, 2), apperr.ErrNotFound)

	cart, err := env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartSubtotalFollowsCurrentPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	pen := testutil.CreateProduct(t, env.store, "pen", "1.00", 5)

	require.NoError(t, env.cart.AddItem(ctx, alice, pen.ID, 2))
	pen.Price = decimal.RequireFromString("1.75")
	require.NoError(t, env.store.UpdateProduct(ctx, pen))

	cart, err := env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.50").Equal(cart.Lines[0].Subtotal))
}

func TestCartIsolatedPerUserAndClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	bob := env.customer(t, "bob")
	pen := testutil.CreateProduct(t, env.store, "pen", "1.00", 5)

	require.NoError(t, env.cart.AddItem(ctx, alice, pen.ID, 1))
	require.NoError(t, env.cart.AddItem(ctx, bob, pen.ID, 2))
	require.NoError(t, env.cart.Clear(ctx, alice))

	cart, err := env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	cart, err = env.cart.ListItems(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestCartRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pen := testutil.CreateProduct(t, env.store, "pen", "1.00", 5)

	assert.ErrorIs(t, env.cart.AddItem(ctx, guard.Guest(), pen.ID, 1), apperr.ErrNotAuthenticated)
	_, err := env.cart.ListItems(ctx, guard.Guest())
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)
}
