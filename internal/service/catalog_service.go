package service

import (
	"context"
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/shopspring/decimal"
)

type ICatalogService interface {
	ListProducts(ctx context.Context, id guard.Identity) ([]model.Product, error)
	GetProduct(ctx context.Context, id guard.Identity, productID uint) (*model.Product, error)
	ListCategories(ctx context.Context, id guard.Identity) ([]model.Category, error)

	CreateProduct(ctx context.Context, id guard.Identity, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id guard.Identity, productID uint, input ProductInput) (*model.Product, error)
	DeactivateProduct(ctx context.Context, id guard.Identity, productID uint) error
	RestockProduct(ctx context.Context, id guard.Identity, productID uint, quantity int) (*model.Product, error)
	CreateCategory(ctx context.Context, id guard.Identity, input CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id guard.Identity, categoryID uint, input CategoryInput) (*model.Category, error)
	DeactivateCategory(ctx context.Context, id guard.Identity, categoryID uint) error
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *uint
	ImageURL    string
	// nil 表示維持原狀，新增時預設上架
	Active *bool
}

type CategoryInput struct {
	Name        string
	Description string
	Active      *bool
}

type CatalogService struct {
	products   db.IProductRepository
	categories db.ICategoryRepository
}

// products/categories 可以是 cache aside 裝飾過的 repository
func NewCatalogService(products db.IProductRepository, categories db.ICategoryRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

func (c *CatalogService) ListProducts(ctx context.Context, id guard.Identity) ([]model.Product, error) {
	if err := id.Require(guard.CatalogRead); err != nil {
		return nil, err
	}
	products, err := c.products.ListActiveProducts(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "list products failed")
	}
	return products, nil
}

func (c *CatalogService) GetProduct(ctx context.Context, id guard.Identity, productID uint) (*model.Product, error) {
	if err := id.Require(guard.CatalogRead); err != nil {
		return nil, err
	}
	product, err := c.products.GetActiveProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return nil, apperr.Newf(apperr.NotFoundCode, "product %d not found", productID)
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "get product failed")
	}
	return product, nil
}

func (c *CatalogService) ListCategories(ctx context.Context, id guard.Identity) ([]model.Category, error) {
	if err := id.Require(guard.CatalogRead); err != nil {
		return nil, err
	}
	categories, err := c.categories.ListActiveCategories(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "list categories failed")
	}
	return categories, nil
}

func (c *CatalogService) validateProduct(ctx context.Context, input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return apperr.New(apperr.ValidationCode, "product name is required")
	}
	if input.Price.IsNegative() {
		return apperr.New(apperr.ValidationCode, "price must not be negative")
	}
	if input.Stock < 0 {
		return apperr.New(apperr.ValidationCode, "stock must not be negative")
	}
	if input.CategoryID != nil {
		category, err := c.categories.GetCategoryByID(ctx, *input.CategoryID)
		if err != nil {
			if errors.Is(err, db.ErrCategoryNotFound) {
				return apperr.Newf(apperr.ValidationCode, "category %d does not exist", *input.CategoryID)
			}
			return apperr.Wrap(apperr.InternalCode, err, "get category failed")
		}
		if !category.Active {
			return apperr.Newf(apperr.ValidationCode, "category %d is inactive", *input.CategoryID)
		}
	}
	return nil
}

func (c *CatalogService) CreateProduct(ctx context.Context, id guard.Identity, input ProductInput) (*model.Product, error) {
	if err := id.Require(guard.CatalogAdmin); err != nil {
		return nil, err
	}
	if err := c.validateProduct(ctx, &input); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
		Active:      true,
	}
	if err := c.products.CreateProduct(ctx, product); err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "create product failed")
	}
	// default:true 欄位在 Create 時無法寫入 false
	if input.Active != nil && !*input.Active {
		if err := c.products.SetProductActive(ctx, product.ID, false); err != nil {
			return nil, apperr.Wrap(apperr.InternalCode, err, "deactivate product failed")
		}
		product.Active = false
	}
	return product, nil
}

func (c *CatalogService) UpdateProduct(ctx context.Context, id guard.Identity, productID uint, input ProductInput) (*model.Product, error) {
	if err := id.Require(guard.CatalogAdmin); err != nil {
		return nil, err
	}
	if err := c.validateProduct(ctx, &input); err != nil {
		return nil, err
	}

	product, err := c.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return nil, apperr.Newf(apperr.NotFoundCode, "product %d not found", productID)
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "get product failed")
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price.Round(2)
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
	product.ImageURL = input.ImageURL
	if input.Active != nil {
		product.Active = *input.Active
	}
	if err := c.products.UpdateProduct(ctx, product); err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "update product failed")
	}
	return product, nil
}

// DeactivateProduct 軟刪除，歷史訂單仍可查到商品名稱
func (c *CatalogService) DeactivateProduct(ctx context.Context, id guard.Identity, productID uint) error {
	if err := id.Require(guard.CatalogAdmin); err != nil {
		return err
	}
	if err := c.products.SetProductActive(ctx, productID, false); err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return apperr.Newf(apperr.NotFoundCode, "product %d not found", productID)
		}
		return apperr.Wrap(apperr.InternalCode, err, "deactivate product failed")
	}
	return nil
}

// RestockProduct 進貨，庫存以相對增量更新，不覆蓋同時間下單造成的扣除
func (c *CatalogService) RestockProduct(ctx context.Context, id guard.Identity, productID uint, quantity int) (*model.Product, error) {
	if err := id.Require(guard.CatalogAdmin); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperr.New(apperr.ValidationCode, "restock quantity must be greater than zero")
	}
	if err := c.products.AddProductStock(ctx, productID, quantity); err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return nil, apperr.Newf(apperr.NotFoundCode, "product %d not found", productID)
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "restock product failed")
	}
	product, err := c.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "get product failed")
	}
	return product, nil
}

func (c *CatalogService) CreateCategory(ctx context.Context, id guard.Identity, input CategoryInput) (*model.Category, error) {
	if err := id.Require(guard.CatalogAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.New(apperr.ValidationCode, "category name is required")
	}

	category := &model.Category{Name: name, Description: input.Description, Active: true}
	if err := c.categories.CreateCategory(ctx, category); err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "create category failed")
	}
	if input.Active != nil && !*input.Active {
		if err := c.categories.SetCategoryActive(ctx, category.ID, false); err != nil {
			return nil, apperr.Wrap(apperr.InternalCode, err, "deactivate category failed")
		}
		category.Active = false
	}
	return category, nil
}

func (c *CatalogService) UpdateCategory(ctx context.Context, id guard.Identity, categoryID uint, input CategoryInput) (*model.Category, error) {
	if err := id.Require(guard.CatalogAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.New(apperr.ValidationCode, "category name is required")
	}

	category, err := c.categories.GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, db.ErrCategoryNotFound) {
			return nil, apperr.Newf(apperr.NotFoundCode, "category %d not found", categoryID)
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "get category failed")
	}
	category.Name = name
	category.Description = input.Description
	if input.Active != nil {
		category.Active = *input.Active
	}
	if err := c.categories.UpdateCategory(ctx, category); err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "update category failed")
	}
	return category, nil
}

func (c *CatalogService) DeactivateCategory(ctx context.Context, id guard.Identity, categoryID uint) error {
	if err := id.Require(guard.CatalogAdmin); err != nil {
		return err
	}
	if err := c.categories.SetCategoryActive(ctx, categoryID, false); err != nil {
		if errors.Is(err, db.ErrCategoryNotFound) {
			return apperr.Newf(apperr.NotFoundCode, "category %d not found", categoryID)
		}
		return apperr.Wrap(apperr.InternalCode, err, "deactivate category failed")
	}
	return nil
}

var _ ICatalogService = (*CatalogService)(nil)
