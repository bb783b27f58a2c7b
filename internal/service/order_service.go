package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	errCartEmpty   = errors.New("cart is empty")
	errCartChanged = errors.New("cart changed during checkout")
)

type IOrderService interface {
	PlaceOrder(ctx context.Context, id guard.Identity) (*model.Order, error)
	UpdateStatus(ctx context.Context, id guard.Identity, orderID uint, status model.OrderStatus) error
	ListOrdersForUser(ctx context.Context, id guard.Identity) ([]model.OrderSummary, error)
	ListAllOrders(ctx context.Context, id guard.Identity) ([]model.OrderSummary, error)
	GetOrderDetail(ctx context.Context, id guard.Identity, orderID uint) (*model.Order, error)
	GetOrder(ctx context.Context, id guard.Identity, orderID uint) (*model.Order, error)
}

// CatalogInvalidator 庫存異動後清除目錄快取
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

type OrderService struct {
	store     db.UnifiedDB
	publisher producer.OrderEventPublisher
	catalog   CatalogInvalidator
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewOrderService(store db.UnifiedDB, publisher producer.OrderEventPublisher, catalog CatalogInvalidator, logger *zerolog.Logger) *OrderService {
	if publisher == nil {
		publisher = producer.NoopPublisher{}
	}
	return &OrderService{
		store:     store,
		publisher: publisher,
		catalog:   catalog,
		logger:    logger,
		now:       time.Now,
	}
}

/*
下單
在同一個 transaction 內:
 1. 讀取購物車並以當下價格計算總額
 2. 建立訂單與明細快照
 3. 依 ProductID 排序後逐筆條件式扣庫存，任何一筆失敗整筆 rollback
 4. 單一 DELETE 移除已下單的購物車明細，刪除筆數不符代表購物車已被另一筆下單清掉，rollback

提交後才發送事件與清快取，失敗只記 log
*/
func (o *OrderService) PlaceOrder(ctx context.Context, id guard.Identity) (*model.Order, error) {
	if err := id.Require(guard.Shopping); err != nil {
		return nil, err
	}

	var order *model.Order
	err := o.store.ExecTx(ctx, func(tx db.UnifiedDB) error {
		items, err := tx.ListCartItems(ctx, id.UserID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errCartEmpty
		}

		order = buildOrder(id.UserID, items, o.now().UTC())
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		// 固定鎖定順序，避免兩筆訂單交錯鎖住同一組商品
		deductions := make([]model.OrderItem, len(order.OrderItems))
		copy(deductions, order.OrderItems)
		sort.Slice(deductions, func(i, j int) bool { return deductions[i].ProductID < deductions[j].ProductID })
		for _, item := range deductions {
			if err := tx.DeductProductStock(ctx, item.ProductID, item.Quantity); err != nil {
				return &stockError{productID: item.ProductID, err: err}
			}
		}

		productIDs := make([]uint, 0, len(items))
		for _, item := range items {
			productIDs = append(productIDs, item.ProductID)
		}
		deleted, err := tx.DeleteCartItems(ctx, id.UserID, productIDs)
		if err != nil {
			return err
		}
		if deleted != int64(len(items)) {
			return errCartChanged
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errCartEmpty) {
			return nil, apperr.New(apperr.EmptyCartCode, "cart is empty")
		}
		o.logger.Warn().Err(err).Uint("user_id", id.UserID).Msg("place order rollback")
		var se *stockError
		if errors.As(err, &se) {
			return nil, apperr.Wrap(apperr.OrderCommitFailedCode, err, se.message())
		}
		if errors.Is(err, errCartChanged) {
			return nil, apperr.Wrap(apperr.OrderCommitFailedCode, err, "cart was modified during checkout, order was not placed")
		}
		return nil, apperr.Wrap(apperr.OrderCommitFailedCode, err, "order could not be placed")
	}

	o.logger.Info().Uint("order_id", order.ID).Uint("user_id", id.UserID).Str("total", order.Total.StringFixed(2)).Msg("order placed")
	if err := o.publisher.PublishOrderPlaced(ctx, order); err != nil {
		o.logger.Error().Err(err).Uint("order_id", order.ID).Msg("publish order placed failed")
	}
	if o.catalog != nil {
		o.catalog.Invalidate(ctx)
	}
	return order, nil
}

// 購物車明細轉成訂單快照，Product 由購物車查詢時帶出
func buildOrder(userID uint, items []model.CartItem, now time.Time) *model.Order {
	order := &model.Order{
		UserID:     userID,
		Status:     model.OrderStatusPending,
		Total:      decimal.Zero,
		OrderItems: make([]model.OrderItem, 0, len(items)),
		CreatedAt:  now,
	}
	for _, item := range items {
		price := decimal.Zero
		name := ""
		if item.Product != nil {
			price = item.Product.Price
			name = item.Product.Name
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   price,
			Subtotal:    subtotal,
			ProductName: name,
		})
		order.Total = order.Total.Add(subtotal)
	}
	return order
}

type stockError struct {
	productID uint
	err       error
}

func (e *stockError) Error() string {
	return e.err.Error()
}

func (e *stockError) Unwrap() error {
	return e.err
}

func (e *stockError) message() string {
	if errors.Is(e.err, db.ErrProductStockNotEnough) {
		return "insufficient stock for one or more products, order was not placed"
	}
	return "order could not be placed"
}

// UpdateStatus 不限制狀態轉換方向
func (o *OrderService) UpdateStatus(ctx context.Context, id guard.Identity, orderID uint, status model.OrderStatus) error {
	if err := id.Require(guard.OrderAdmin); err != nil {
		return err
	}
	if !status.IsValid() {
		return apperr.Newf(apperr.ValidationCode, "invalid order status %q", status)
	}

	if err := o.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return apperr.Newf(apperr.NotFoundCode, "order %d not found", orderID)
		}
		return apperr.Wrap(apperr.InternalCode, err, "update order status failed")
	}

	o.logger.Info().Uint("order_id", orderID).Str("status", string(status)).Uint("admin_id", id.UserID).Msg("order status updated")
	if err := o.publisher.PublishStatusChanged(ctx, orderID, status); err != nil {
		o.logger.Error().Err(err).Uint("order_id", orderID).Msg("publish order status changed failed")
	}
	return nil
}

func (o *OrderService) ListOrdersForUser(ctx context.Context, id guard.Identity) ([]model.OrderSummary, error) {
	if err := id.Require(guard.Shopping); err != nil {
		return nil, err
	}
	orders, err := o.store.ListOrdersByUserID(ctx, id.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "list orders failed")
	}
	return orders, nil
}

func (o *OrderService) ListAllOrders(ctx context.Context, id guard.Identity) ([]model.OrderSummary, error) {
	if err := id.Require(guard.OrderAdmin); err != nil {
		return nil, err
	}
	orders, err := o.store.ListAllOrders(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "list orders failed")
	}
	return orders, nil
}

// GetOrderDetail 只能看自己的訂單，別人的訂單與不存在一律回 NotFound
func (o *OrderService) GetOrderDetail(ctx context.Context, id guard.Identity, orderID uint) (*model.Order, error) {
	if err := id.Require(guard.Shopping); err != nil {
		return nil, err
	}
	order, err := o.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != id.UserID {
		return nil, apperr.Newf(apperr.NotFoundCode, "order %d not found", orderID)
	}
	return order, nil
}

// GetOrder 後台查看任一訂單
func (o *OrderService) GetOrder(ctx context.Context, id guard.Identity, orderID uint) (*model.Order, error) {
	if err := id.Require(guard.OrderAdmin); err != nil {
		return nil, err
	}
	return o.getOrder(ctx, orderID)
}

func (o *OrderService) getOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := o.store.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return nil, apperr.Newf(apperr.NotFoundCode, "order %d not found", orderID)
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "get order failed")
	}
	return order, nil
}

var _ IOrderService = (*OrderService)(nil)
