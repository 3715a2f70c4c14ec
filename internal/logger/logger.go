package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/saleswise/backend-go/internal/config"
)

func New(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if strings.ToLower(cfg.AppEnv) == "production" {
		// JSON format
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Human-readable format
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)

	slog.SetDefault(logger)

	return logger
}

// gormWriter forwards gorm's printf-style output to slog
type gormWriter struct {
	logger *slog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Info("🗄️ [Gorm] " + strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// NewGormLogger returns a gorm logger that writes through slog.
// SQL statements are only traced when LOG_LEVEL is DEBUG.
func NewGormLogger(cfg *config.Config, logger *slog.Logger) gormlogger.Interface {
	level := gormlogger.Silent
	switch {
	case cfg.LogLevel <= slog.LevelDebug:
		level = gormlogger.Info
	case cfg.LogLevel <= slog.LevelWarn:
		level = gormlogger.Warn
	}

	return gormlogger.New(gormWriter{logger: logger}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
