package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// NewTestDB 每個測試一個獨立的 sqlite 檔，測試結束自動關閉
func NewTestDB(t testing.TB) *db.UnifiedDBImpl {
	t.Helper()
	conn, err := db.GetSqliteConn(filepath.Join(t.TempDir(), "storefront.db"), nil)
	require.NoError(t, err)

	unified := db.NewUnifiedDB(conn)
	require.NoError(t, unified.InitMigrate())
	t.Cleanup(func() {
		_ = unified.Close()
	})
	return unified
}

func CreateUser(t testing.TB, store db.UnifiedDB, name string, role model.Role) *model.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), &model.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	})
	require.NoError(t, err)
	return user
}

func CreateProduct(t testing.TB, store db.UnifiedDB, name, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
	require.NoError(t, store.CreateProduct(context.Background(), product))
	return product
}
