package db

import (
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func gormConfig(log *zerolog.Logger) *gorm.Config {
	return &gorm.Config{
		// 時間一律存 UTC，報表區間比較才一致
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(log),
	}
}

func GetDbConn(dbname, host, port, user, pas string, log *zerolog.Logger) (*gorm.DB, error) {
	// 資料來源名稱 (DSN)
	dsn := fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable TimeZone=UTC", user, pas, host, port, dbname)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, err
	}
	return db, nil
}

// GetSqliteConn 本機開發與測試用，sqlite 同時只允許一個 writer，連線池固定為 1
func GetSqliteConn(path string, log *zerolog.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func Open(cf *config.Config, log *zerolog.Logger) (*gorm.DB, error) {
	switch cf.DbDriver {
	case "sqlite":
		return GetSqliteConn(cf.SqlitePath, log)
	case "postgres", "":
		return GetDbConn(cf.DbName, cf.DbHost, cf.DbPort, cf.DbUser, cf.DbPas, log)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cf.DbDriver)
	}
}
