package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	// 基礎操作
	InitMigrate() error
	// ExecTx fn 內拿到的 UnifiedDB 全部走同一個 transaction
	ExecTx(ctx context.Context, fn func(tx UnifiedDB) error) error

	IProductRepository
	ICategoryRepository
	IUserRepository
	ICartRepository
	IOrderRepository
	IReportRepository
}

// IProductRepository Product 相關操作介面
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID uint) (*model.Product, error)
	GetActiveProduct(ctx context.Context, productID uint) (*model.Product, error)
	ListActiveProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	SetProductActive(ctx context.Context, productID uint, active bool) error
	DeductProductStock(ctx context.Context, productID uint, quantity int) error
	AddProductStock(ctx context.Context, productID uint, quantity int) error
	CountActiveProducts(ctx context.Context) (int64, error)
}

type ICategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id uint) (*model.Category, error)
	ListActiveCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	SetCategoryActive(ctx context.Context, id uint, active bool) error
	CountActiveCategories(ctx context.Context) (int64, error)
}

// IUserRepository User 相關操作介面
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	PatchUserFields(ctx context.Context, id uint, updates map[string]interface{}) error
	CountActiveUsers(ctx context.Context) (int64, error)
}

type ICartRepository interface {
	GetCartItem(ctx context.Context, userID, productID uint) (*model.CartItem, error)
	UpsertCartItem(ctx context.Context, userID, productID uint, quantity int) error
	UpdateCartItemQuantity(ctx context.Context, userID, productID uint, quantity int) error
	DeleteCartItem(ctx context.Context, userID, productID uint) error
	DeleteCartItems(ctx context.Context, userID uint, productIDs []uint) (int64, error)
	ListCartItems(ctx context.Context, userID uint) ([]model.CartItem, error)
	ClearCart(ctx context.Context, userID uint) (int64, error)
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id uint) (*model.Order, error)
	ListOrdersByUserID(ctx context.Context, userID uint) ([]model.OrderSummary, error)
	ListAllOrders(ctx context.Context) ([]model.OrderSummary, error)
	UpdateOrderStatus(ctx context.Context, id uint, status model.OrderStatus) error
}

type IReportRepository interface {
	SalesByProduct(ctx context.Context, r *model.DateRange) ([]model.ProductSales, error)
	OrdersInRange(ctx context.Context, r *model.DateRange) ([]model.Order, error)
	CountOrders(ctx context.Context) (int64, error)
	CountOrdersByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	SumSalesExcluding(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error)
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	dbDao *DbDao
	*ProductDBRepo
	*CategoryRepo
	*UserRepo
	*CartRepo
	*OrderRepo
	*ReportRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	return newUnifiedDB(NewDbDao(db))
}

func newUnifiedDB(dbDao *DbDao) *UnifiedDBImpl {
	return &UnifiedDBImpl{
		dbDao:         dbDao,
		ProductDBRepo: NewProductDBRepo(dbDao),
		CategoryRepo:  NewCategoryRepo(dbDao),
		UserRepo:      NewUserRepo(dbDao),
		CartRepo:      NewCartRepo(dbDao),
		OrderRepo:     NewOrderRepo(dbDao),
		ReportRepo:    NewReportRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

func (u *UnifiedDBImpl) ExecTx(ctx context.Context, fn func(tx UnifiedDB) error) error {
	return u.dbDao.Transaction(ctx, func(tx *DbDao) error {
		return fn(newUnifiedDB(tx))
	})
}

func (u *UnifiedDBImpl) Close() error {
	return u.dbDao.Close()
}

var (
	_ UnifiedDB           = (*UnifiedDBImpl)(nil)
	_ IProductRepository  = (*ProductDBRepo)(nil)
	_ ICategoryRepository = (*CategoryRepo)(nil)
	_ IUserRepository     = (*UserRepo)(nil)
	_ ICartRepository     = (*CartRepo)(nil)
	_ IOrderRepository    = (*OrderRepo)(nil)
	_ IReportRepository   = (*ReportRepo)(nil)
)
