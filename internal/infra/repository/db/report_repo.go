package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportRepo struct {
	db *DbDao
}

func NewReportRepo(db *DbDao) *ReportRepo {
	return &ReportRepo{db: db}
}

// 訂單建立時間落在閉區間 [From, To]
func withinRange(tx *gorm.DB, column string, r *model.DateRange) *gorm.DB {
	if r == nil {
		return tx
	}
	return tx.Where(column+" >= ? AND "+column+" <= ?", r.From.UTC(), r.To.UTC())
}

// SalesByProduct 依商品加總數量與小計，銷售額高到低，包含已取消訂單
func (s *ReportRepo) SalesByProduct(ctx context.Context, r *model.DateRange) ([]model.ProductSales, error) {
	res := []model.ProductSales{}
	query := s.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id AS product_id, products.name AS name, " +
			"SUM(order_items.quantity) AS total_sold, SUM(order_items.subtotal) AS total_sales").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id")
	err := withinRange(query, "orders.created_at", r).
		Group("order_items.product_id, products.name").
		Order("total_sales DESC").
		Order("order_items.product_id ASC").
		Scan(&res).Error
	if err != nil {
		return nil, err
	}
	// sqlite 以浮點數加總 NUMERIC 欄位
	for i := range res {
		res[i].TotalSales = res[i].TotalSales.Round(2)
	}
	return res, nil
}

// OrdersInRange 報表依日曆日分組用，只取 total 與建立時間
func (s *ReportRepo) OrdersInRange(ctx context.Context, r *model.DateRange) ([]model.Order, error) {
	orders := []model.Order{}
	query := s.db.WithContext(ctx).Model(&model.Order{}).Select("id", "total", "status", "created_at")
	err := withinRange(query, "created_at", r).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (s *ReportRepo) CountOrders(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error
	return total, err
}

func (s *ReportRepo) CountOrdersByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&model.Order{}).Where("status = ?", status).Count(&total).Error
	return total, err
}

// SumSalesExcluding 加總訂單金額，排除指定狀態，沒有訂單時回傳 0
func (s *ReportRepo) SumSalesExcluding(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Select("SUM(total)").
		Where("status <> ?", status).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal.Round(2), nil
}
