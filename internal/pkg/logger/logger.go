package logger

import (
	"io"
	"os"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/rs/zerolog"
)

// New 依環境建立 logger，debug/development 使用 console 格式，其餘輸出 JSON
func New(env string, level string) *zerolog.Logger {
	var w io.Writer = os.Stdout
	switch constants.ENV(env) {
	case constants.Debug, constants.Dev:
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w, level)
}

func NewWithWriter(w io.Writer, level string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "storefront").Logger()
	return &l
}

// Nop 測試或未設定 logger 時使用
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
