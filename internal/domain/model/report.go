package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// DateRange 閉區間 [From, To]
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange from/to 為 YYYY-MM-DD，兩者皆空代表不限區間
// 缺一邊時以開放端補齊，To 取當日最後一刻
func ParseDateRange(from, to string, loc *time.Location) (*DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	r := &DateRange{
		From: time.Unix(0, 0).UTC(),
		To:   time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
	}
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid from date %q", from)
		}
		r.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %q", to)
		}
		r.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return r, nil
}

type ProductSales struct {
	ProductID  uint            `json:"product_id"`
	Name       string          `json:"name"`
	TotalSold  int             `json:"total_sold"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type PeriodSales struct {
	Date        string          `json:"date"`
	TotalOrders int             `json:"total_orders"`
	TotalSales  decimal.Decimal `json:"total_sales"`
}

type DashboardStats struct {
	TotalProducts   int64           `json:"total_products"`
	TotalCategories int64           `json:"total_categories"`
	TotalUsers      int64           `json:"total_users"`
	TotalOrders     int64           `json:"total_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	TotalSales      decimal.Decimal `json:"total_sales"`
}
