package logger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log         = zap.NewNop()
	once        sync.Once
	atom        = zap.NewAtomicLevel()
	buildLogger = func(cfg zap.Config) (*zap.Logger, error) { return cfg.Build(zap.AddCallerSkip(1)) }
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	AccountIDKey ContextKey = "account_id"
)

// Init initializes the process-wide logger. Until it is called every helper
// logs to a no-op logger.
func Init(env, level string) {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		if env == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		if level != "" {
			if lvl, err := zapcore.ParseLevel(level); err == nil {
				config.Level.SetLevel(lvl)
			}
		}

		l, err := buildLogger(config)
		if err != nil {
			panic(err)
		}
		log = l
		atom = config.Level
	})
}

// GetLogger returns the underlying zap logger
func GetLogger() *zap.Logger {
	return log
}

// Replace swaps the process-wide logger and returns a func that restores the
// previous one.
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}

// SetLevel changes the level of the running logger
func SetLevel(level zapcore.Level) {
	atom.SetLevel(level)
}

// Sync flushes buffered log entries
func Sync() error {
	return log.Sync()
}

// WithContext adds request_id and account_id from ctx to the logger
func WithContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return log
	}

	var fields []zap.Field
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if accountID, ok := ctx.Value(AccountIDKey).(uint64); ok && accountID != 0 {
		fields = append(fields, zap.Uint64("account_id", accountID))
	}

	if len(fields) > 0 {
		return log.With(fields...)
	}
	return log
}

// Info logs a message at InfoLevel
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// LogRequest logs an HTTP request details
func LogRequest(ctx context.Context, method, path string, status int, latency time.Duration, clientIP string) {
	WithContext(ctx).Info("HTTP Request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("client_ip", clientIP),
	)
}
