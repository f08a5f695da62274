package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logger is silent until one of the Initialize functions replaces it
var logger = zap.NewNop()

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "QUOTEGEN_LOG_LEVEL"

// Log file rotation limits for interactive sessions
const (
	MaxLogSizeMB  = 5
	MaxLogBackups = 3
	MaxLogAgeDays = 14
)

// resolveLevel applies the env var fallback and maps the level name.
// ok is false when logging should stay silent.
func resolveLevel(level string) (zapcore.Level, bool) {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		return zapcore.InfoLevel, false
	}

	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		// Unknown level - use info as default when explicitly set to something
		return zapcore.InfoLevel, true
	}
}

// Initialize creates a console logger writing to stderr.
// If level is empty, it checks QUOTEGEN_LOG_LEVEL.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	zapLevel, enabled := resolveLevel(level)
	if !enabled {
		logger = zap.NewNop()
		return nil
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeToFile creates a JSON logger writing to a rotated file.
// The terminal UI owns stdout and stderr, so interactive sessions log here instead.
// The same silent-by-default rules as Initialize apply.
func InitializeToFile(level, path string) error {
	zapLevel, enabled := resolveLevel(level)
	if !enabled {
		logger = zap.NewNop()
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxLogSizeMB,
		MaxBackups: MaxLogBackups,
		MaxAge:     MaxLogAgeDays,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(writer),
		zap.NewAtomicLevelAt(zapLevel),
	)
	logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogRuntimeCall logs the outcome of one runtime operation.
// target is the model id or request id the call acted on, if any.
func LogRuntimeCall(op, target string, started time.Time, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Duration("duration", time.Since(started)),
	}
	if target != "" {
		fields = append(fields, zap.String("target", target))
	}

	if err != nil {
		Warn("Runtime call failed", append(fields, zap.Error(err))...)
		return
	}
	Debug("Runtime call completed", fields...)
}

// LogStreamFrame logs a websocket frame on a download or generate stream
func LogStreamFrame(stream, direction, frameType string, length int) {
	Debug("Stream frame",
		zap.String("stream", stream),
		zap.String("direction", direction),
		zap.String("frame_type", frameType),
		zap.Int("length", length),
	)
}

// LogConnection logs a connection event
func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogHTTPRequest logs an HTTP request served by the runtime daemon
func LogHTTPRequest(remoteAddr, method, path string, status int, duration time.Duration) {
	Info("HTTP request",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", status),
		zap.Duration("duration", duration),
	)
}

// LogStateChange logs a session state transition at debug level
func LogStateChange(event, status string, fields ...zap.Field) {
	Debug("Session state changed",
		append([]zap.Field{zap.String("event", event), zap.String("status", status)}, fields...)...,
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
