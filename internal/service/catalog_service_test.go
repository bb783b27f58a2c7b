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

func TestCatalogAdminLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	books, err := env.catalog.CreateCategory(ctx, env.admin, CategoryInput{Name: "Books", Description: "paper"})
	require.NoError(t, err)

	novel, err := env.catalog.CreateProduct(ctx, env.admin, ProductInput{
		Name:       "Novel",
		Price:      decimal.RequireFromString("12.999"),
		Stock:      4,
		CategoryID: &books.ID,
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("13.00").Equal(novel.Price))

	// 訪客可以瀏覽
	products, err := env.catalog.ListProducts(ctx, guard.Guest())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Books", products[0].CategoryName)

	got, err := env.catalog.GetProduct(ctx, guard.Guest(), novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)

	updated, err := env.catalog.UpdateProduct(ctx, env.admin, novel.ID, ProductInput{
		Name:  "Novel 2nd",
		Price: decimal.NewFromInt(15),
		Stock: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, "Novel 2nd", updated.Name)
	assert.Nil(t, updated.CategoryID)

	require.NoError(t, env.catalog.DeactivateProduct(ctx, env.admin, novel.ID))
	_, err = env.catalog.GetProduct(ctx, guard.Guest(), novel.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	products, err = env.catalog.ListProducts(ctx, guard.Guest())
	require.NoError(t, err)
	assert.Empty(t, products)

	require.NoError(t, env.catalog.DeactivateCategory(ctx, env.admin, books.ID))
	categories, err := env.catalog.ListCategories(ctx, guard.Guest())
	require.NoError(t, err)
	assert.Empty(t, categories)

	_, err = env.catalog.CreateProduct(ctx, env.admin, ProductInput{Name: "x", Price: decimal.NewFromInt(1), CategoryID: &books.ID})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCatalogValidationAndAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")

	_, err := env.catalog.CreateProduct(ctx, alice, ProductInput{Name: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
	_, err = env.catalog.CreateProduct(ctx, guard.Guest(), ProductInput{Name: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	_, err = env.catalog.CreateProduct(ctx, env.admin, ProductInput{Name: " ", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = env.catalog.CreateProduct(ctx, env.admin, ProductInput{Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = env.catalog.CreateProduct(ctx, env.admin, ProductInput{Name: "x", Price: decimal.NewFromInt(1), Stock: -2})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	missing := uint(404)
	_, err = env.catalog.CreateProduct(ctx, env.admin, ProductInput{Name: "x", Price: decimal.NewFromInt(1), CategoryID: &missing})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.catalog.UpdateProduct(ctx, env.admin, 404, ProductInput{Name: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, env.catalog.DeactivateProduct(ctx, env.admin, 404), apperr.ErrNotFound)
	assert.ErrorIs(t, env.catalog.DeactivateCategory(ctx, env.admin, 404), apperr.ErrNotFound)

	inactive := false
	hidden, err := env.catalog.CreateProduct(ctx, env.admin, ProductInput{Name: "hidden", Price: decimal.NewFromInt(1), Active: &inactive})
	require.NoError(t, err)
	assert.False(t, hidden.Active)
	products, err := env.catalog.ListProducts(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCatalogRestockProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	pen := testutil.CreateProduct(t, env.store, "pen", "1.00", 2)

	product, err := env.catalog.RestockProduct(ctx, env.admin, pen.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, product.Stock)
	assert.Equal(t, 7, env.stockOf(t, pen.ID))

	_, err = env.catalog.RestockProduct(ctx, env.admin, pen.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = env.catalog.RestockProduct(ctx, env.admin, 9999, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = env.catalog.RestockProduct(ctx, alice, pen.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
	_, err = env.catalog.RestockProduct(ctx, guard.Guest(), pen.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	assert.Equal(t, 7, env.stockOf(t, pen.ID))
}
