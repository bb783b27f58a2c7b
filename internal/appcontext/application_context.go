package appcontext

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_decorator"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/logger"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/token"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type ApplicationContext struct {
	Cf          *config.Config
	Logger      *zerolog.Logger
	DbDao       *db.UnifiedDBImpl
	RedisClient *redis.Client
	// 沒設定 KAFKA_BROKERS 時為 nil
	KafkaProducer producer.Producer
	TokenMaker    token.Maker
	Limiter       *ratelimit.TokenBucket

	productRepo  db.IProductRepository
	categoryRepo db.ICategoryRepository
	sessions     redis_repo.ISessionRedisRepository
	invalidator  service.CatalogInvalidator
	publisher    producer.OrderEventPublisher

	AuthService    service.IAuthService
	CatalogService service.ICatalogService
	CartService    service.ICartService
	OrderService   service.IOrderService
	ReportService  service.IReportService
}

func NewApplicationContext(ctx context.Context, cf *config.Config) (*ApplicationContext, error) {
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	app := ApplicationContext{
		Cf:     cf,
		Logger: logger.New(cf.Env, cf.LogLevel),
	}
	if err := app.Init(ctx); err != nil {
		// 已建立的連線需要釋放
		_ = app.Shutdown(context.Background())
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"database", app.setUpDb},
		{"redis", app.setUpRedis},
		{"kafka producer", app.setUpProducer},
		{"token maker", app.setUpTokenMaker},
		{"services", app.setUpServices},
		{"admin account", app.seedAdmin},
	}
	for _, step := range steps {
		app.Logger.Info().Str("step", step.name).Msg("start setup")
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("setup %s: %w", step.name, err)
		}
	}
	app.Limiter = ratelimit.NewTokenBucket(&ratelimit.LimiterConfig{
		Capacity: app.Cf.RateLimitCapacity,
		RatePS:   app.Cf.RateLimitPerSecond,
	})
	return nil
}

func (app *ApplicationContext) setUpDb(ctx context.Context) error {
	conn, err := db.Open(app.Cf, app.Logger)
	if err != nil {
		return err
	}
	app.DbDao = db.NewUnifiedDB(conn)
	if err := app.DbDao.InitMigrate(); err != nil {
		return err
	}
	app.productRepo = app.DbDao
	app.categoryRepo = app.DbDao
	return nil
}

// 沒設定 REDIS_ADDR 時目錄直接讀 db，登出無法撤銷 token
func (app *ApplicationContext) setUpRedis(ctx context.Context) error {
	if app.Cf.RedisAddr == "" {
		app.Logger.Warn().Msg("redis is not configured, catalog cache and token revocation are disabled")
		return nil
	}
	client, err := redis_repo.NewRedisClient(ctx, app.Cf.RedisAddr, app.Cf.RedisPassword, app.Cf.RedisDB)
	if err != nil {
		return err
	}
	app.RedisClient = client

	catalogCache := redis_repo.NewCatalogRedisRepo(client, app.Cf.CatalogCacheTTL)
	products := redis_decorator.NewCacheAsideProductRepo(app.DbDao, catalogCache, app.Logger)
	app.productRepo = products
	app.categoryRepo = redis_decorator.NewCacheAsideCategoryRepo(app.DbDao, catalogCache, app.Logger)
	app.invalidator = products
	app.sessions = redis_repo.NewSessionRedisRepo(client)
	return nil
}

func (app *ApplicationContext) setUpProducer(ctx context.Context) error {
	brokers := app.Cf.KafkaBrokerList()
	if len(brokers) == 0 {
		app.Logger.Warn().Msg("kafka is not configured, order events are discarded")
		app.publisher = producer.NoopPublisher{}
		return nil
	}
	p, err := producer.NewKafkaProducer(producer.Config{
		Brokers: brokers,
		Topic:   app.Cf.KafkaOrderTopic,
	}, app.Logger)
	if err != nil {
		return err
	}
	app.KafkaProducer = p
	app.publisher = producer.NewOrderProducer(p)
	return nil
}

func (app *ApplicationContext) setUpTokenMaker(ctx context.Context) error {
	maker, err := token.NewJWTMaker(app.Cf.AuthTokenKey)
	if err != nil {
		return err
	}
	app.TokenMaker = maker
	return nil
}

func (app *ApplicationContext) setUpServices(ctx context.Context) error {
	app.AuthService = service.NewAuthService(app.DbDao, service.NewBcryptVerifier(bcrypt.DefaultCost),
		app.TokenMaker, app.sessions, app.Cf.AccessTokenDuration, app.Logger)
	app.CatalogService = service.NewCatalogService(app.productRepo, app.categoryRepo)
	// 庫存檢查必須讀 db 即時資料，不經過目錄快取
	app.CartService = service.NewCartService(app.DbDao, app.DbDao)
	app.OrderService = service.NewOrderService(app.DbDao, app.publisher, app.invalidator, app.Logger)
	app.ReportService = service.NewReportService(app.DbDao, app.Cf.ReportLocation())
	return nil
}

func (app *ApplicationContext) seedAdmin(ctx context.Context) error {
	return app.AuthService.SeedAdmin(ctx, app.Cf.AdminEmail, app.Cf.AdminPassword)
}

// Shutdown 依建立的反向順序關閉外部連線
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	var errs []error
	if app.KafkaProducer != nil {
		if err := app.KafkaProducer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if app.DbDao != nil {
		if err := app.DbDao.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
