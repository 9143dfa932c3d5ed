// Package logging builds the zap logger shared by the api and worker
// binaries. Development gets human readable console output, everything
// else logs JSON.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New(environment, level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	if environment == "development" {
		cfg.Encoding = "console"
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := cfg.Build()
	if err != nil {
		// zap only fails on bad config; fall back to a usable logger
		// instead of taking the process down before startup logging.
		return zap.NewNop()
	}
	return logger
}
