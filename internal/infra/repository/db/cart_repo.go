package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// 購物車直接落地在 db，所有讀寫立即可見，不經過快取
type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

func (s *CartRepo) GetCartItem(ctx context.Context, userID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// UpsertCartItem 以 (user_id, product_id) 為 key，數量直接覆寫為傳入值
func (s *CartRepo) UpsertCartItem(ctx context.Context, userID, productID uint, quantity int) error {
	item := model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&item).Error
}

// UpdateCartItemQuantity 只更新已存在的項目，不存在時回傳 ErrCartItemNotFound
func (s *CartRepo) UpdateCartItemQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	res := s.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// 不存在時不報錯
func (s *CartRepo) DeleteCartItem(ctx context.Context, userID, productID uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{}).Error
}

// ListCartItems 帶出商品即時資料，最新加入的排最前
func (s *CartRepo) ListCartItems(ctx context.Context, userID uint) ([]model.CartItem, error) {
	items := []model.CartItem{}
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

// DeleteCartItems 單一 DELETE 移除指定商品，回傳實際刪除筆數
// 呼叫端以筆數判斷購物車是否已被其他交易清空
func (s *CartRepo) DeleteCartItems(ctx context.Context, userID uint, productIDs []uint) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&model.CartItem{})
	return res.RowsAffected, res.Error
}

func (s *CartRepo) ClearCart(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{})
	return res.RowsAffected, res.Error
}
