package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductStockNotEnough 商品庫存不足或已下架
	ErrProductStockNotEnough = errors.New("product stock not enough")
)

type ProductDBRepo struct {
	db *DbDao
}

func NewProductDBRepo(db *DbDao) *ProductDBRepo {
	return &ProductDBRepo{db: db}
}

func (s *ProductDBRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

// GetProductByID 不過濾 active，後台與訂單明細使用
func (s *ProductDBRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetActiveProduct 只回傳上架中的商品，帶分類名稱
func (s *ProductDBRepo) GetActiveProduct(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := s.activeProductQuery(ctx).
		Where("products.id = ?", productID).
		Take(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Read - 上架商品，依名稱排序
func (s *ProductDBRepo) ListActiveProducts(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	err := s.activeProductQuery(ctx).
		Order("products.name ASC").
		Order("products.id ASC").
		Find(&products).Error
	return products, err
}

func (s *ProductDBRepo) activeProductQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.active = ?", true)
}

// Update - 更新商品
func (s *ProductDBRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	res := s.db.WithContext(ctx).Model(product).
		Select("name", "description", "price", "stock", "category_id", "image_url", "active").
		Updates(product)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// 軟刪除/重新上架
func (s *ProductDBRepo) SetProductActive(ctx context.Context, productID uint, active bool) error {
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

/*
扣庫存
條件式更新，庫存檢查與扣除在同一個 UPDATE 完成
同一商品的並發扣除由資料庫 row lock 排隊，後到者重新評估 WHERE 後影響 0 筆
*/
func (s *ProductDBRepo) DeductProductStock(ctx context.Context, productID uint, quantity int) error {
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND active = ? AND stock >= ?", productID, true, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrProductStockNotEnough
	}
	return nil
}

func (s *ProductDBRepo) AddProductStock(ctx context.Context, productID uint, quantity int) error {
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *ProductDBRepo) CountActiveProducts(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&model.Product{}).Where("active = ?", true).Count(&total).Error
	return total, err
}
