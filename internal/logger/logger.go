package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

func init() {
	// Usable before Init runs, e.g. from config loading.
	l, _ := zap.NewProduction(zap.AddCallerSkip(1))
	sugar = l.Sugar()
}

// Init replaces the default logger with one at the configured level.
func Init(level string) {
	cfg := zap.NewProductionConfig()
	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		sugar.Fatalf("logger init: %v", err)
	}
	sugar = l.Sugar()
}

func Debug(format string, args ...any) { sugar.Debugf(format, args...) }
func Info(format string, args ...any)  { sugar.Infof(format, args...) }
func Warn(format string, args ...any)  { sugar.Warnf(format, args...) }
func Error(format string, args ...any) { sugar.Errorf(format, args...) }
func Fatal(format string, args ...any) { sugar.Fatalf(format, args...) }

// Sync flushes buffered log entries; call on shutdown.
func Sync() { _ = sugar.Sync() }
