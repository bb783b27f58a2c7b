package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init跟read分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取  需要使用讀寫鎖
*/
var configSingleton *ConfigSingleton
var muonce sync.Once

const ConfigPathEnv = "STOREFRONT_CONFIG"

type ConfigSingleton struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	Env        string `mapstructure:"ENV"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DbDriver   string `mapstructure:"DB_DRIVER"`
	DbName     string `mapstructure:"POSTGRES_DB"`
	DbHost     string `mapstructure:"POSTGRES_HOST"`
	DbPort     string `mapstructure:"POSTGRES_PORT"`
	DbUser     string `mapstructure:"POSTGRES_USER"`
	DbPas      string `mapstructure:"POSTGRES_PASSWORD"`
	SqlitePath string `mapstructure:"SQLITE_PATH"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`

	AuthTokenKey        string        `mapstructure:"AUTH_TOKEN_KEY"`
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`

	RateLimitCapacity  int `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitPerSecond int `mapstructure:"RATE_LIMIT_PER_SECOND"`

	ReportTimezone string `mapstructure:"REPORT_TIMEZONE"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

// KafkaBrokerList 以逗號分隔的 broker 清單，空字串代表不啟用事件發送
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (c *Config) ReportLocation() *time.Location {
	if c.ReportTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) Validate() error {
	switch c.DbDriver {
	case "postgres":
		if c.DbHost == "" || c.DbName == "" {
			return fmt.Errorf("postgres driver requires POSTGRES_HOST and POSTGRES_DB")
		}
	case "sqlite":
		if c.SqlitePath == "" {
			return fmt.Errorf("sqlite driver requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DbDriver)
	}
	if len(c.AuthTokenKey) < 32 {
		return fmt.Errorf("AUTH_TOKEN_KEY must be at least 32 characters")
	}
	return nil
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	muonce.Do(func() {
		configSingleton = &ConfigSingleton{}
		path := os.Getenv(ConfigPathEnv)
		if path == "" {
			path = ".env"
		}
		cf, err := LoadConfig(path)
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		configSingleton.Config = cf

		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			cf, err := LoadConfig(path)
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			configSingleton.mu.Lock()
			configSingleton.Config = cf
			configSingleton.mu.Unlock()
		})
	})
}

func setDefaults() {
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CATALOG_CACHE_TTL", "30s")
	viper.SetDefault("KAFKA_ORDER_TOPIC", "storefront.orders")
	viper.SetDefault("ACCESS_TOKEN_DURATION", "24h")
	viper.SetDefault("RATE_LIMIT_CAPACITY", 100)
	viper.SetDefault("RATE_LIMIT_PER_SECOND", 20)
	viper.SetDefault("REPORT_TIMEZONE", "UTC")
}

/*
單純回傳錯誤  由外部決定要不要Fatal
檔案不存在時只使用環境變數與預設值
*/
func LoadConfig(path string) (*Config, error) {
	setDefaults()
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	// AutomaticEnv 只對已知 key 生效，Unmarshal 前需要先綁定
	for _, key := range []string{
		"ENV", "SERVER_PORT", "LOG_LEVEL", "DB_DRIVER", "POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "SQLITE_PATH", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"CATALOG_CACHE_TTL", "KAFKA_BROKERS", "KAFKA_ORDER_TOPIC", "AUTH_TOKEN_KEY", "ACCESS_TOKEN_DURATION",
		"RATE_LIMIT_CAPACITY", "RATE_LIMIT_PER_SECOND", "REPORT_TIMEZONE", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cf := &Config{}
	if err := viper.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}
