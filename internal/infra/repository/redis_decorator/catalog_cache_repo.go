package redis_decorator

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog"
)

/*
cache aside，只快取上架中的商品目錄讀取
寫入先落 db 再清快取，快取失敗只記 log，不影響主流程
購物車與下單的庫存檢查不可走這層
*/
type CacheAsideProductRepo struct {
	db.IProductRepository
	redis  redis_repo.ICatalogRedisRepository
	logger *zerolog.Logger
}

func NewCacheAsideProductRepo(repo db.IProductRepository, redis redis_repo.ICatalogRedisRepository, logger *zerolog.Logger) *CacheAsideProductRepo {
	return &CacheAsideProductRepo{IProductRepository: repo, redis: redis, logger: logger}
}

func (p *CacheAsideProductRepo) ListActiveProducts(ctx context.Context) ([]model.Product, error) {
	products, err := p.redis.GetProducts(ctx)
	if err == nil {
		return products, nil
	}
	if !errors.Is(err, redis_repo.ErrCacheMiss) {
		p.logger.Warn().Err(err).Msg("catalog cache read products failed")
	}

	products, err = p.IProductRepository.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.redis.SetProducts(ctx, products); err != nil {
		p.logger.Warn().Err(err).Msg("catalog cache write products failed")
	}
	return products, nil
}

func (p *CacheAsideProductRepo) GetActiveProduct(ctx context.Context, productID uint) (*model.Product, error) {
	product, err := p.redis.GetProduct(ctx, productID)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, redis_repo.ErrCacheMiss) {
		p.logger.Warn().Err(err).Uint("product_id", productID).Msg("catalog cache read product failed")
	}

	product, err = p.IProductRepository.GetActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := p.redis.SetProduct(ctx, product); err != nil {
		p.logger.Warn().Err(err).Uint("product_id", productID).Msg("catalog cache write product failed")
	}
	return product, nil
}

func (p *CacheAsideProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	if err := p.IProductRepository.CreateProduct(ctx, product); err != nil {
		return err
	}
	p.Invalidate(ctx)
	return nil
}

func (p *CacheAsideProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := p.IProductRepository.UpdateProduct(ctx, product); err != nil {
		return err
	}
	p.Invalidate(ctx)
	return nil
}

func (p *CacheAsideProductRepo) SetProductActive(ctx context.Context, productID uint, active bool) error {
	if err := p.IProductRepository.SetProductActive(ctx, productID, active); err != nil {
		return err
	}
	p.Invalidate(ctx)
	return nil
}

func (p *CacheAsideProductRepo) AddProductStock(ctx context.Context, productID uint, quantity int) error {
	if err := p.IProductRepository.AddProductStock(ctx, productID, quantity); err != nil {
		return err
	}
	p.Invalidate(ctx)
	return nil
}

// Invalidate 訂單成立後庫存改變，由 order service 呼叫
func (p *CacheAsideProductRepo) Invalidate(ctx context.Context) {
	if err := p.redis.InvalidateProducts(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("catalog cache invalidate products failed")
	}
}

type CacheAsideCategoryRepo struct {
	db.ICategoryRepository
	redis  redis_repo.ICatalogRedisRepository
	logger *zerolog.Logger
}

func NewCacheAsideCategoryRepo(repo db.ICategoryRepository, redis redis_repo.ICatalogRedisRepository, logger *zerolog.Logger) *CacheAsideCategoryRepo {
	return &CacheAsideCategoryRepo{ICategoryRepository: repo, redis: redis, logger: logger}
}

func (c *CacheAsideCategoryRepo) ListActiveCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := c.redis.GetCategories(ctx)
	if err == nil {
		return categories, nil
	}
	if !errors.Is(err, redis_repo.ErrCacheMiss) {
		c.logger.Warn().Err(err).Msg("catalog cache read categories failed")
	}

	categories, err = c.ICategoryRepository.ListActiveCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.redis.SetCategories(ctx, categories); err != nil {
		c.logger.Warn().Err(err).Msg("catalog cache write categories failed")
	}
	return categories, nil
}

func (c *CacheAsideCategoryRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := c.ICategoryRepository.CreateCategory(ctx, category); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CacheAsideCategoryRepo) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := c.ICategoryRepository.UpdateCategory(ctx, category); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CacheAsideCategoryRepo) SetCategoryActive(ctx context.Context, id uint, active bool) error {
	if err := c.ICategoryRepository.SetCategoryActive(ctx, id, active); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// 商品列表帶分類名稱，分類異動時兩者一起清
func (c *CacheAsideCategoryRepo) invalidate(ctx context.Context) {
	if err := c.redis.InvalidateCategories(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("catalog cache invalidate categories failed")
	}
	if err := c.redis.InvalidateProducts(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("catalog cache invalidate products failed")
	}
}

var (
	_ db.IProductRepository  = (*CacheAsideProductRepo)(nil)
	_ db.ICategoryRepository = (*CacheAsideCategoryRepo)(nil)
)
