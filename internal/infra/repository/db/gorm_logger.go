package db

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/pkg/logger"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// zerologWriter 讓 gorm 的 slow query 與錯誤訊息走應用程式的 zerolog
type zerologWriter struct {
	log *zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Str("component", "gorm").Msgf(format, args...)
}

// newGormLogger 查無資料屬正常流程，不輸出
func newGormLogger(log *zerolog.Logger) gormlogger.Interface {
	if log == nil {
		log = logger.Nop()
	}
	return gormlogger.New(zerologWriter{log: log}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
