package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (c *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	cart, err := c.cartService.ListItems(r.Context(), util.GetIdentityFromContext(r.Context()))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, cart)
}

// POST /cart/items，同商品已存在時數量累加
func (c *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	id := util.GetIdentityFromContext(r.Context())
	if err := c.cartService.AddItem(r.Context(), id, req.ProductID, req.Quantity); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	c.List(w, r)
}

// PUT /cart/items/{productID}
func (c *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.UpdateCartItemDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	id := util.GetIdentityFromContext(r.Context())
	if err := c.cartService.UpdateItem(r.Context(), id, productID, req.Quantity); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	c.List(w, r)
}

// DELETE /cart/items/{productID}
func (c *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	if err := c.cartService.RemoveItem(r.Context(), util.GetIdentityFromContext(r.Context()), productID); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	c.List(w, r)
}

// DELETE /cart
func (c *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := c.cartService.Clear(r.Context(), util.GetIdentityFromContext(r.Context())); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil)
}
