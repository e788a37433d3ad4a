package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON zap.Logger at the given level (debug, info, warn, error)
// and installs it as the global logger.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if level == "" {
		level = "info"
	}
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(l)
	return l, nil
}

// L returns the global logger.
func L() *zap.Logger {
	return zap.L()
}

// Debug logs a debug message with consistent fields
// Fields: user_id=... action=... details=...
func Debug(userID int64, action, details string) {
	zap.L().Debug(action,
		zap.Int64("user_id", userID),
		zap.String("action", action),
		zap.String("details", details),
	)
}

// Info logs an operator-facing event for a user (0 for process-level events).
func Info(userID int64, action, details string) {
	zap.L().Info(action,
		zap.Int64("user_id", userID),
		zap.String("action", action),
		zap.String("details", details),
	)
}
