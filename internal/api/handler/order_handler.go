package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

// PlaceOrder 將目前購物車結帳
//
// POST /orders
func (o *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	order, err := o.orderService.PlaceOrder(r.Context(), util.GetIdentityFromContext(r.Context()))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.CreatedJSON(w, order)
}

// GET /orders
func (o *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := o.orderService.ListOrdersForUser(r.Context(), util.GetIdentityFromContext(r.Context()))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, orders)
}

// GET /orders/{orderID}
func (o *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	order, err := o.orderService.GetOrderDetail(r.Context(), util.GetIdentityFromContext(r.Context()), orderID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, order)
}

// GET /admin/orders
func (o *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := o.orderService.ListAllOrders(r.Context(), util.GetIdentityFromContext(r.Context()))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, orders)
}

// GET /admin/orders/{orderID}
func (o *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	order, err := o.orderService.GetOrder(r.Context(), util.GetIdentityFromContext(r.Context()), orderID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, order)
}

// PUT /admin/orders/{orderID}/status
func (o *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.UpdateOrderStatusDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	id := util.GetIdentityFromContext(r.Context())
	if err := o.orderService.UpdateStatus(r.Context(), id, orderID, model.OrderStatus(req.Status)); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil)
}
