package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/shopspring/decimal"
)

type ICartService interface {
	AddItem(ctx context.Context, id guard.Identity, productID uint, quantity int) error
	UpdateItem(ctx context.Context, id guard.Identity, productID uint, quantity int) error
	RemoveItem(ctx context.Context, id guard.Identity, productID uint) error
	ListItems(ctx context.Context, id guard.Identity) (*model.Cart, error)
	Clear(ctx context.Context, id guard.Identity) error
}

/*
購物車只在異動當下檢查庫存，不預留庫存
真正的庫存保證在下單 transaction 內的條件式扣庫存
products 必須是直連 db 的 repository，不可經過目錄快取
*/
type CartService struct {
	carts    db.ICartRepository
	products db.IProductRepository
}

func NewCartService(carts db.ICartRepository, products db.IProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// 取得可購買商品，不存在或已下架視為輸入錯誤
func (c *CartService) purchasableProduct(ctx context.Context, productID uint) (*model.Product, error) {
	product, err := c.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return nil, apperr.Newf(apperr.ValidationCode, "product %d does not exist", productID)
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "get product failed")
	}
	if !product.Active {
		return nil, apperr.Newf(apperr.ValidationCode, "product %d is not available", productID)
	}
	return product, nil
}

func (c *CartService) AddItem(ctx context.Context, id guard.Identity, productID uint, quantity int) error {
	if err := id.Require(guard.Shopping); err != nil {
		return err
	}
	if quantity <= 0 {
		return apperr.New(apperr.ValidationCode, "quantity must be greater than zero")
	}

	product, err := c.purchasableProduct(ctx, productID)
	if err != nil {
		return err
	}
	if quantity > product.Stock {
		return apperr.Newf(apperr.InsufficientStockCode, "only %d of %s in stock", product.Stock, product.Name)
	}

	total := quantity
	existing, err := c.carts.GetCartItem(ctx, id.UserID, productID)
	switch {
	case err == nil:
		total += existing.Quantity
	case !errors.Is(err, db.ErrCartItemNotFound):
		return apperr.Wrap(apperr.InternalCode, err, "get cart item failed")
	}
	if total > product.Stock {
		return apperr.Newf(apperr.InsufficientStockCode, "only %d of %s in stock", product.Stock, product.Name)
	}

	if err := c.carts.UpsertCartItem(ctx, id.UserID, productID, total); err != nil {
		return apperr.Wrap(apperr.InternalCode, err, "add cart item failed")
	}
	return nil
}

// UpdateItem 直接設定購物車內既有項目的數量，<= 0 等同移除
// 商品不在購物車內時回傳 NotFound，不會新增項目
func (c *CartService) UpdateItem(ctx context.Context, id guard.Identity, productID uint, quantity int) error {
	if err := id.Require(guard.Shopping); err != nil {
		return err
	}
	if quantity <= 0 {
		return c.removeItem(ctx, id.UserID, productID)
	}

	product, err := c.purchasableProduct(ctx, productID)
	if err != nil {
		return err
	}
	if quantity > product.Stock {
		return apperr.Newf(apperr.InsufficientStockCode, "only %d of %s in stock", product.Stock, product.Name)
	}

	if err := c.carts.UpdateCartItemQuantity(ctx, id.UserID, productID, quantity); err != nil {
		if errors.Is(err, db.ErrCartItemNotFound) {
			return apperr.Newf(apperr.NotFoundCode, "product %d is not in the cart", productID)
		}
		return apperr.Wrap(apperr.InternalCode, err, "update cart item failed")
	}
	return nil
}

func (c *CartService) RemoveItem(ctx context.Context, id guard.Identity, productID uint) error {
	if err := id.Require(guard.Shopping); err != nil {
		return err
	}
	return c.removeItem(ctx, id.UserID, productID)
}

func (c *CartService) removeItem(ctx context.Context, userID, productID uint) error {
	if err := c.carts.DeleteCartItem(ctx, userID, productID); err != nil {
		return apperr.Wrap(apperr.InternalCode, err, "remove cart item failed")
	}
	return nil
}

func (c *CartService) ListItems(ctx context.Context, id guard.Identity) (*model.Cart, error) {
	if err := id.Require(guard.Shopping); err != nil {
		return nil, err
	}
	items, err := c.carts.ListCartItems(ctx, id.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "list cart items failed")
	}
	return model.NewCart(id.UserID, toCartLines(items)), nil
}

func (c *CartService) Clear(ctx context.Context, id guard.Identity) error {
	if err := id.Require(guard.Shopping); err != nil {
		return err
	}
	if _, err := c.carts.ClearCart(ctx, id.UserID); err != nil {
		return apperr.Wrap(apperr.InternalCode, err, "clear cart failed")
	}
	return nil
}

// 小計以當下價格計算
func toCartLines(items []model.CartItem) []model.CartLine {
	lines := make([]model.CartLine, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lines = append(lines, model.CartLine{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Price:     item.Product.Price,
			Stock:     item.Product.Stock,
			Quantity:  item.Quantity,
			Subtotal:  item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			AddedAt:   item.CreatedAt,
		})
	}
	return lines
}

var _ ICartService = (*CartService)(nil)
