package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

// CatalogHandler 前台瀏覽與後台商品、分類維護
type CatalogHandler struct {
	catalogService service.ICatalogService
}

func NewCatalogHandler(catalogService service.ICatalogService) *CatalogHandler {
	if catalogService == nil {
		panic("catalogService cannot be nil")
	}
	return &CatalogHandler{catalogService: catalogService}
}

// GET /products
func (c *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalogService.ListProducts(r.Context(), util.GetIdentityFromContext(r.Context()))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, products)
}

// GET /products/{productID}
func (c *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	product, err := c.catalogService.GetProduct(r.Context(), util.GetIdentityFromContext(r.Context()), productID)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, product)
}

// GET /categories
func (c *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.catalogService.ListCategories(r.Context(), util.GetIdentityFromContext(r.Context()))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, categories)
}

func toProductInput(req dto.ProductDTO) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Active:      req.Active,
	}
}

// POST /admin/products
func (c *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	product, err := c.catalogService.CreateProduct(r.Context(), util.GetIdentityFromContext(r.Context()), toProductInput(req))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.CreatedJSON(w, product)
}

// PUT /admin/products/{productID}
func (c *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.ProductDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	product, err := c.catalogService.UpdateProduct(r.Context(), util.GetIdentityFromContext(r.Context()), productID, toProductInput(req))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, product)
}

// DELETE /admin/products/{productID}，軟刪除
func (c *CatalogHandler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	if err := c.catalogService.DeactivateProduct(r.Context(), util.GetIdentityFromContext(r.Context()), productID); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil)
}

// POST /admin/products/{productID}/restock
func (c *CatalogHandler) RestockProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.RestockDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	product, err := c.catalogService.RestockProduct(r.Context(), util.GetIdentityFromContext(r.Context()), productID, req.Quantity)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, product)
}

// POST /admin/categories
func (c *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	category, err := c.catalogService.CreateCategory(r.Context(), util.GetIdentityFromContext(r.Context()), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.CreatedJSON(w, category)
}

// PUT /admin/categories/{categoryID}
func (c *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uintParam(r, "categoryID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.CategoryDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	category, err := c.catalogService.UpdateCategory(r.Context(), util.GetIdentityFromContext(r.Context()), categoryID, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, category)
}

// DELETE /admin/categories/{categoryID}
func (c *CatalogHandler) DeactivateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uintParam(r, "categoryID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	if err := c.catalogService.DeactivateCategory(r.Context(), util.GetIdentityFromContext(r.Context()), categoryID); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil)
}
