package service

import (
	"context"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/logger"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/RoyceAzure/lab/storefront/internal/testutil"
)

type fakePublisher struct {
	mu      sync.Mutex
	placed  []uint
	changed map[uint]model.OrderStatus
}

func (f *fakePublisher) PublishOrderPlaced(_ context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, order.ID)
	return nil
}

func (f *fakePublisher) PublishStatusChanged(_ context.Context, orderID uint, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.changed == nil {
		f.changed = map[uint]model.OrderStatus{}
	}
	f.changed[orderID] = status
	return nil
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

type testEnv struct {
	store     *db.UnifiedDBImpl
	catalog   *CatalogService
	cart      *CartService
	orders    *OrderService
	reports   *ReportService
	publisher *fakePublisher
	cache     *fakeInvalidator
	admin     guard.Identity
}

func newTestEnv(t *testing.T) *testEnv {
	store := testutil.NewTestDB(t)
	publisher := &fakePublisher{}
	cache := &fakeInvalidator{}
	adminUser := testutil.CreateUser(t, store, "admin", model.RoleAdmin)
	return &testEnv{
		store:     store,
		catalog:   NewCatalogService(store, store),
		cart:      NewCartService(store, store),
		orders:    NewOrderService(store, publisher, cache, logger.Nop()),
		reports:   NewReportService(store, nil),
		publisher: publisher,
		cache:     cache,
		admin:     guard.FromUser(adminUser),
	}
}

func (e *testEnv) customer(t *testing.T, name string) guard.Identity {
	return guard.FromUser(testutil.CreateUser(t, e.store, name, model.RoleCustomer))
}

func (e *testEnv) stockOf(t *testing.T, productID uint) int {
	p, err := e.store.GetProductByID(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product %d: %v", productID, err)
	}
	return p.Stock
}
