package service

import (
	"context"
	"sort"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type IReportService interface {
	SalesByProduct(ctx context.Context, id guard.Identity, dateRange *model.DateRange) ([]model.ProductSales, error)
	SalesByPeriod(ctx context.Context, id guard.Identity, dateRange *model.DateRange) ([]model.PeriodSales, error)
	DashboardStats(ctx context.Context, id guard.Identity) (*model.DashboardStats, error)
}

type ReportService struct {
	store db.UnifiedDB
	// 日曆日分組使用的時區
	loc *time.Location
}

func NewReportService(store db.UnifiedDB, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{store: store, loc: loc}
}

func validateRange(dateRange *model.DateRange) error {
	if dateRange != nil && dateRange.From.After(dateRange.To) {
		return apperr.New(apperr.ValidationCode, "date range start must not be after its end")
	}
	return nil
}

// SalesByProduct 包含已取消訂單
func (r *ReportService) SalesByProduct(ctx context.Context, id guard.Identity, dateRange *model.DateRange) ([]model.ProductSales, error) {
	if err := id.Require(guard.Reporting); err != nil {
		return nil, err
	}
	if err := validateRange(dateRange); err != nil {
		return nil, err
	}
	sales, err := r.store.SalesByProduct(ctx, dateRange)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "sales by product failed")
	}
	return sales, nil
}

// SalesByPeriod 依日曆日分組，新日期在前
func (r *ReportService) SalesByPeriod(ctx context.Context, id guard.Identity, dateRange *model.DateRange) ([]model.PeriodSales, error) {
	if err := id.Require(guard.Reporting); err != nil {
		return nil, err
	}
	if err := validateRange(dateRange); err != nil {
		return nil, err
	}
	orders, err := r.store.OrdersInRange(ctx, dateRange)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "sales by period failed")
	}

	buckets := make(map[string]*model.PeriodSales)
	for _, o := range orders {
		day := o.CreatedAt.In(r.loc).Format(constants.DateLayout)
		b, ok := buckets[day]
		if !ok {
			b = &model.PeriodSales{Date: day, TotalSales: decimal.Zero}
			buckets[day] = b
		}
		b.TotalOrders++
		b.TotalSales = b.TotalSales.Add(o.Total)
	}

	res := make([]model.PeriodSales, 0, len(buckets))
	for _, b := range buckets {
		res = append(res, *b)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Date > res[j].Date
	})
	return res, nil
}

// DashboardStats 銷售總額排除已取消訂單
func (r *ReportService) DashboardStats(ctx context.Context, id guard.Identity) (*model.DashboardStats, error) {
	if err := id.Require(guard.Reporting); err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalProducts, err = r.store.CountActiveProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCategories, err = r.store.CountActiveCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = r.store.CountActiveUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = r.store.CountOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingOrders, err = r.store.CountOrdersByStatus(gctx, model.OrderStatusPending)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSales, err = r.store.SumSalesExcluding(gctx, model.OrderStatusCancelled)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "dashboard stats failed")
	}
	return stats, nil
}

var _ IReportService = (*ReportService)(nil)
