package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrOrderNotFound = errors.New("order not found")

// 訂單只新增與改狀態，不提供刪除
type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create - 創建訂單與明細，明細的 OrderID 由此處回填
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	items := order.OrderItems
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error; err != nil {
		return err
	}
	order.OrderItems = items
	return nil
}

// Read - 根據ID查詢訂單，明細帶商品名稱
func (s *OrderRepo) GetOrderByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("order_items.*, products.name AS product_name").
				Joins("LEFT JOIN products ON products.id = order_items.product_id").
				Order("order_items.id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Read - 根據用戶ID查詢訂單，新到舊
func (s *OrderRepo) ListOrdersByUserID(ctx context.Context, userID uint) ([]model.OrderSummary, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return s.toSummaries(ctx, orders)
}

// Read - 查詢所有訂單，帶客戶名稱
func (s *OrderRepo) ListAllOrders(ctx context.Context) ([]model.OrderSummary, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return s.toSummaries(ctx, orders)
}

func (s *OrderRepo) toSummaries(ctx context.Context, orders []model.Order) ([]model.OrderSummary, error) {
	summaries := make([]model.OrderSummary, 0, len(orders))
	if len(orders) == 0 {
		return summaries, nil
	}

	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	counts, err := s.countItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		summary := model.OrderSummary{
			ID:        o.ID,
			UserID:    o.UserID,
			Total:     o.Total,
			Status:    o.Status,
			ItemCount: counts[o.ID],
			CreatedAt: o.CreatedAt,
		}
		if o.User != nil {
			summary.UserName = o.User.Name
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// 每張訂單的明細筆數
func (s *OrderRepo) countItems(ctx context.Context, orderIDs []uint) (map[uint]int, error) {
	var rows []struct {
		OrderID uint
		Cnt     int
	}
	err := s.db.WithContext(ctx).Model(&model.OrderItem{}).
		Select("order_id, COUNT(*) AS cnt").
		Where("order_id IN ?", orderIDs).
		Group("order_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.OrderID] = r.Cnt
	}
	return counts, nil
}

// Update - 更新訂單狀態
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, id uint, status model.OrderStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
