// Package logger holds the process wide zap logger
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the application logger, a no-op logger until Init is called
var Logger = zap.NewNop()

// Init builds the production JSON logger with the given level
//
// Accepted levels are the zap level names: debug, info, warn, error, dpanic, panic, fatal.
func Init(level string) error {
	l, err := New(level)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// New builds a production JSON logger without touching the global one
func New(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = Logger.Sync()
}
