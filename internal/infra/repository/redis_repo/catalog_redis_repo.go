package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("catalog cache miss")

// ICatalogRedisRepository 商品目錄快取，只存上架中的商品與分類
type ICatalogRedisRepository interface {
	GetProducts(ctx context.Context) ([]model.Product, error)
	SetProducts(ctx context.Context, products []model.Product) error
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	SetProduct(ctx context.Context, product *model.Product) error
	GetCategories(ctx context.Context) ([]model.Category, error)
	SetCategories(ctx context.Context, categories []model.Category) error
	// InvalidateProducts 清掉商品列表與單一商品快取
	InvalidateProducts(ctx context.Context) error
	InvalidateCategories(ctx context.Context) error
}

/*
結構:

	storefront:catalog:products        -> json([]Product)
	storefront:catalog:product:{id}    -> json(Product)
	storefront:catalog:categories      -> json([]Category)
*/
type CatalogRedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogRedisRepo(client *redis.Client, ttl time.Duration) *CatalogRedisRepo {
	return &CatalogRedisRepo{client: client, ttl: ttl}
}

func productListKey() string {
	return prefixKey("catalog", "products")
}

func productKey(productID uint) string {
	return prefixKey("catalog", "product", strconv.FormatUint(uint64(productID), 10))
}

func categoryListKey() string {
	return prefixKey("catalog", "categories")
}

func (s *CatalogRedisRepo) getJSON(ctx context.Context, key string, dest any) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (s *CatalogRedisRepo) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, raw, s.ttl).Err()
}

func (s *CatalogRedisRepo) GetProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := s.getJSON(ctx, productListKey(), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *CatalogRedisRepo) SetProducts(ctx context.Context, products []model.Product) error {
	return s.setJSON(ctx, productListKey(), products)
}

func (s *CatalogRedisRepo) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	if err := s.getJSON(ctx, productKey(productID), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *CatalogRedisRepo) SetProduct(ctx context.Context, product *model.Product) error {
	return s.setJSON(ctx, productKey(product.ID), product)
}

func (s *CatalogRedisRepo) GetCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.getJSON(ctx, categoryListKey(), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CatalogRedisRepo) SetCategories(ctx context.Context, categories []model.Category) error {
	return s.setJSON(ctx, categoryListKey(), categories)
}

// SCAN 找出所有單一商品 key 後一次刪除
func (s *CatalogRedisRepo) InvalidateProducts(ctx context.Context) error {
	keys := []string{productListKey()}
	var cursor uint64
	for {
		found, next, err := s.client.Scan(ctx, cursor, prefixKey("catalog", "product", "*"), 100).Result()
		if err != nil {
			return err
		}
		keys = append(keys, found...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *CatalogRedisRepo) InvalidateCategories(ctx context.Context) error {
	return s.client.Del(ctx, categoryListKey()).Err()
}

var _ ICatalogRedisRepository = (*CatalogRedisRepo)(nil)
