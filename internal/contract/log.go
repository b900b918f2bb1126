package contract

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerMu sync.RWMutex
	logger   = newConsoleLogger(zapcore.WarnLevel)
)

// newConsoleLogger builds a human-readable logger that writes to stderr.
// stdout is reserved for command output and the MCP protocol.
func newConsoleLogger(level zapcore.Level) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// InitLogger configures the package logger for the given level name
// (debug, info, warn, error).
func InitLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	SetLogger(newConsoleLogger(lvl))
	return nil
}

// SetLogger replaces the package logger. Tests use it to observe log output.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// Logger returns the package logger.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	l := Logger()
	l.Error(msg, zap.Error(err))
	_ = l.Sync()
	os.Exit(1)
}

// LogWarn logs a warning with its cause.
func LogWarn(msg string, err error) {
	Logger().Warn(msg, zap.Error(err))
}

// LogInfo logs an informational message with structured fields.
func LogInfo(msg string, fields ...zap.Field) {
	Logger().Info(msg, fields...)
}

// LogDebug logs a debug message with structured fields.
func LogDebug(msg string, fields ...zap.Field) {
	Logger().Debug(msg, fields...)
}
