package handler

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

type ReportHandler struct {
	reportService service.IReportService
	// from/to 日期參數以此時區解析，需與報表分組時區一致
	loc *time.Location
}

func NewReportHandler(reportService service.IReportService, loc *time.Location) *ReportHandler {
	if reportService == nil {
		panic("reportService cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{reportService: reportService, loc: loc}
}

// query string ?from=YYYY-MM-DD&to=YYYY-MM-DD，兩者皆可省略
func (h *ReportHandler) dateRange(r *http.Request) (*model.DateRange, error) {
	q := r.URL.Query()
	dateRange, err := model.ParseDateRange(q.Get("from"), q.Get("to"), h.loc)
	if err != nil {
		return nil, apperr.New(apperr.ValidationCode, err.Error())
	}
	return dateRange, nil
}

// GET /admin/reports/sales-by-product
func (h *ReportHandler) SalesByProduct(w http.ResponseWriter, r *http.Request) {
	dateRange, err := h.dateRange(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	sales, err := h.reportService.SalesByProduct(r.Context(), util.GetIdentityFromContext(r.Context()), dateRange)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, sales)
}

// GET /admin/reports/sales-by-period
func (h *ReportHandler) SalesByPeriod(w http.ResponseWriter, r *http.Request) {
	dateRange, err := h.dateRange(r)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	sales, err := h.reportService.SalesByPeriod(r.Context(), util.GetIdentityFromContext(r.Context()), dateRange)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, sales)
}

// GET /admin/reports/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportService.DashboardStats(r.Context(), util.GetIdentityFromContext(r.Context()))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, stats)
}
