package main

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger строит production-логгер с уровнем из LOG_LEVEL (по умолчанию info)
// и полем "service" для структурированного логирования.
func newLogger(level, service string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	lvl, levelErr := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if levelErr != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if service != "" {
		logger = logger.With(zap.String("service", service))
	}
	if levelErr != nil {
		logger.Warn("invalid LOG_LEVEL, defaulting to info", zap.String("level", level))
	}
	return logger, nil
}
