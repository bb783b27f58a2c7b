package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/logger"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/RoyceAzure/lab/storefront/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	a := testutil.CreateProduct(t, env.store, "A", "5.00", 10)
	b := testutil.CreateProduct(t, env.store, "B", "10.00", 3)

	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 2))
	require.NoError(t, env.cart.AddItem(ctx, alice, b.ID, 1))

	order, err := env.orders.PlaceOrder(ctx, alice)
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("20.00").Equal(order.Total))

	assert.Equal(t, 8, env.stockOf(t, a.ID))
	assert.Equal(t, 2, env.stockOf(t, b.ID))

	cart, err := env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	assert.Equal(t, []uint{order.ID}, env.publisher.placed)
	assert.Equal(t, 1, env.cache.calls)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")

	_, err := env.orders.PlaceOrder(ctx, alice)
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)

	orders, err := env.orders.ListOrdersForUser(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, env.publisher.placed)
}

func TestPlaceOrderRollsBackWhenStockShrinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	a := testutil.CreateProduct(t, env.store, "A", "5.00", 10)
	b := testutil.CreateProduct(t, env.store, "B", "10.00", 5)

	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 2))
	require.NoError(t, env.cart.AddItem(ctx, alice, b.ID, 5))

	// 加入購物車後庫存被其他訂單買走
	require.NoError(t, env.store.DeductProductStock(ctx, b.ID, 3))

	_, err := env.orders.PlaceOrder(ctx, alice)
	assert.ErrorIs(t, err, apperr.ErrOrderCommitFailed)

	assert.Equal(t, 10, env.stockOf(t, a.ID))
	assert.Equal(t, 2, env.stockOf(t, b.ID))

	all, err := env.orders.ListAllOrders(ctx, env.admin)
	require.NoError(t, err)
	assert.Empty(t, all)

	cart, err := env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
	assert.Empty(t, env.publisher.placed)
}

func TestPlaceOrderInactiveProductAborts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	a := testutil.CreateProduct(t, env.store, "A", "5.00", 10)

	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 1))
	require.NoError(t, env.store.SetProductActive(ctx, a.ID, false))

	_, err := env.orders.PlaceOrder(ctx, alice)
	assert.ErrorIs(t, err, apperr.ErrOrderCommitFailed)
	assert.Equal(t, 10, env.stockOf(t, a.ID))
}

// checkoutSpyStore 包住真正的 store，交易內記錄扣庫存順序
// clearCartBeforeDelete 模擬同一使用者的另一筆下單已先提交並清空購物車
type checkoutSpyStore struct {
	db.UnifiedDB
	clearCartBeforeDelete bool
	deducted              []uint
}

func (s *checkoutSpyStore) ExecTx(ctx context.Context, fn func(tx db.UnifiedDB) error) error {
	return s.UnifiedDB.ExecTx(ctx, func(tx db.UnifiedDB) error {
		return fn(&checkoutSpyTx{UnifiedDB: tx, parent: s})
	})
}

type checkoutSpyTx struct {
	db.UnifiedDB
	parent *checkoutSpyStore
}

func (t *checkoutSpyTx) DeductProductStock(ctx context.Context, productID uint, quantity int) error {
	t.parent.deducted = append(t.parent.deducted, productID)
	return t.UnifiedDB.DeductProductStock(ctx, productID, quantity)
}

func (t *checkoutSpyTx) DeleteCartItems(ctx context.Context, userID uint, productIDs []uint) (int64, error) {
	if t.parent.clearCartBeforeDelete {
		if _, err := t.UnifiedDB.ClearCart(ctx, userID); err != nil {
			return 0, err
		}
	}
	return t.UnifiedDB.DeleteCartItems(ctx, userID, productIDs)
}

func TestPlaceOrderAbortsWhenCartAlreadyCheckedOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	a := testutil.CreateProduct(t, env.store, "A", "5.00", 10)
	b := testutil.CreateProduct(t, env.store, "B", "10.00", 10)
	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 2))
	require.NoError(t, env.cart.AddItem(ctx, alice, b.ID, 1))

	spy := &checkoutSpyStore{UnifiedDB: env.store, clearCartBeforeDelete: true}
	orders := NewOrderService(spy, env.publisher, env.cache, logger.Nop())

	_, err := orders.PlaceOrder(ctx, alice)
	assert.ErrorIs(t, err, apperr.ErrOrderCommitFailed)

	assert.Equal(t, 10, env.stockOf(t, a.ID))
	assert.Equal(t, 10, env.stockOf(t, b.ID))
	all, err := env.orders.ListAllOrders(ctx, env.admin)
	require.NoError(t, err)
	assert.Empty(t, all)
	cart, err := env.cart.ListItems(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
	assert.Empty(t, env.publisher.placed)
	assert.Zero(t, env.cache.calls)
}

func TestPlaceOrderDeductsStockInProductOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	a := testutil.CreateProduct(t, env.store, "A", "1.00", 10)
	b := testutil.CreateProduct(t, env.store, "B", "2.00", 10)
	c := testutil.CreateProduct(t, env.store, "C", "3.00", 10)
	// 購物車最新加入的排最前，列出順序為 b, c, a
	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 1))
	require.NoError(t, env.cart.AddItem(ctx, alice, c.ID, 1))
	require.NoError(t, env.cart.AddItem(ctx, alice, b.ID, 1))

	spy := &checkoutSpyStore{UnifiedDB: env.store}
	orders := NewOrderService(spy, env.publisher, env.cache, logger.Nop())

	order, err := orders.PlaceOrder(ctx, alice)
	require.NoError(t, err)
	require.Len(t, order.OrderItems, 3)
	assert.Equal(t, []uint{a.ID, b.ID, c.ID}, spy.deducted)
	assert.Equal(t, 9, env.stockOf(t, c.ID))
}

// sqlite 連線池固定為 1，兩筆下單實際上依序執行
// 這裡驗證的是條件式扣庫存讓第二筆失敗，不是交易交錯時的行為
func TestConcurrentOrdersForLastUnit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	last := testutil.CreateProduct(t, env.store, "last", "9.99", 1)

	buyers := []guard.Identity{env.customer(t, "alice"), env.customer(t, "bob")}
	for _, buyer := range buyers {
		require.NoError(t, env.cart.AddItem(ctx, buyer, last.ID, 1))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(buyers))
	start := make(chan struct{})
	for i, buyer := range buyers {
		wg.Add(1)
		go func(i int, buyer guard.Identity) {
			defer wg.Done()
			<-start
			_, errs[i] = env.orders.PlaceOrder(ctx, buyer)
		}(i, buyer)
	}
	close(start)
	wg.Wait()

	succeeded, failed := 0, 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrOrderCommitFailed)
		failed++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, env.stockOf(t, last.ID))

	all, err := env.orders.ListAllOrders(ctx, env.admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOrderTotalIsFrozen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	a := testutil.CreateProduct(t, env.store, "A", "3.30", 10)
	b := testutil.CreateProduct(t, env.store, "B", "1.15", 10)

	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 3))
	require.NoError(t, env.cart.AddItem(ctx, alice, b.ID, 2))
	placed, err := env.orders.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	a.Price = decimal.RequireFromString("99.00")
	require.NoError(t, env.store.UpdateProduct(ctx, a))

	detail, err := env.orders.GetOrderDetail(ctx, alice, placed.ID)
	require.NoError(t, err)
	require.Len(t, detail.OrderItems, 2)

	sum := decimal.Zero
	for _, item := range detail.OrderItems {
		sum = sum.Add(item.Subtotal)
		assert.True(t, item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Equal(item.Subtotal))
	}
	assert.True(t, sum.Equal(detail.Total))
	assert.True(t, decimal.RequireFromString("12.20").Equal(detail.Total))
	for _, item := range detail.OrderItems {
		if item.ProductID == a.ID {
			assert.Equal(t, "A", item.ProductName)
			assert.True(t, decimal.RequireFromString("3.30").Equal(item.UnitPrice))
		}
	}
}

func TestGetOrderDetailOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	bob := env.customer(t, "bob")
	a := testutil.CreateProduct(t, env.store, "A", "1.00", 10)

	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 1))
	placed, err := env.orders.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	_, err = env.orders.GetOrderDetail(ctx, bob, placed.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = env.orders.GetOrderDetail(ctx, alice, placed.ID+100)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = env.orders.GetOrderDetail(ctx, guard.Guest(), placed.ID)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	order, err := env.orders.GetOrder(ctx, env.admin, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, order.UserID)
	_, err = env.orders.GetOrder(ctx, bob, placed.ID)
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
}

func TestOrderListsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	bob := env.customer(t, "bob")
	a := testutil.CreateProduct(t, env.store, "A", "1.00", 10)
	b := testutil.CreateProduct(t, env.store, "B", "2.00", 10)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.orders.now = func() time.Time { return clock }

	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 1))
	first, err := env.orders.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 1))
	require.NoError(t, env.cart.AddItem(ctx, alice, b.ID, 1))
	second, err := env.orders.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	require.NoError(t, env.cart.AddItem(ctx, bob, b.ID, 1))
	_, err = env.orders.PlaceOrder(ctx, bob)
	require.NoError(t, err)

	mine, err := env.orders.ListOrdersForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, 2, mine[0].ItemCount)
	assert.Equal(t, first.ID, mine[1].ID)

	all, err := env.orders.ListAllOrders(ctx, env.admin)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bob", all[0].UserName)

	_, err = env.orders.ListAllOrders(ctx, alice)
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.customer(t, "alice")
	a := testutil.CreateProduct(t, env.store, "A", "1.00", 10)

	require.NoError(t, env.cart.AddItem(ctx, alice, a.ID, 1))
	placed, err := env.orders.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	assert.ErrorIs(t, env.orders.UpdateStatus(ctx, alice, placed.ID, model.OrderStatusShipped), apperr.ErrAccessDenied)
	assert.ErrorIs(t, env.orders.UpdateStatus(ctx, env.admin, placed.ID, "lost"), apperr.ErrValidation)
	assert.ErrorIs(t, env.orders.UpdateStatus(ctx, env.admin, placed.ID+100, model.OrderStatusShipped), apperr.ErrNotFound)

	// 任意狀態之間都可以轉換
	for _, status := range []model.OrderStatus{
		model.OrderStatusCancelled, model.OrderStatusDelivered, model.OrderStatusPending, model.OrderStatusShipped,
	} {
		require.NoError(t, env.orders.UpdateStatus(ctx, env.admin, placed.ID, status))
		detail, err := env.orders.GetOrderDetail(ctx, alice, placed.ID)
		require.NoError(t, err)
		assert.Equal(t, status, detail.Status)
	}
	assert.Equal(t, model.OrderStatusShipped, env.publisher.changed[placed.ID])
}
