package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"firebase-kit/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
)

const (
	// Backends
	BackendLogrus = "logrus"
	BackendZap    = "zap"

	// Log formats
	FormatJSON = "json"
	FormatText = "text"

	envProduction = "production"
	envProd       = "prod"

	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp   = "2006-01-02 15:04:05"
)

// Logger defines the interface for structured logging operations
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// Options selects the logger backend, level and output format.
type Options struct {
	Backend string
	Level   string
	Format  string
	Output  io.Writer
}

// OptionsFromEnv reads LOG_BACKEND, LOG_LEVEL, LOG_FORMAT and ENVIRONMENT.
func OptionsFromEnv() Options {
	format := os.Getenv("LOG_FORMAT")
	if env := os.Getenv("ENVIRONMENT"); format == "" && (env == envProduction || env == envProd) {
		format = FormatJSON
	}
	return Options{
		Backend: os.Getenv("LOG_BACKEND"),
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  format,
	}
}

// NewLogger creates a logger configured from the environment
func NewLogger() Logger {
	return New(OptionsFromEnv())
}

// New creates a logger for the given options. Unknown backends fall back to logrus.
func New(opts Options) Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if strings.EqualFold(opts.Backend, BackendZap) {
		return newZapLogger(opts)
	}
	return newLogrusLogger(opts)
}

// LogrusLogger implements the Logger interface using logrus
type LogrusLogger struct {
	entry *logrus.Entry
}

func newLogrusLogger(opts Options) *LogrusLogger {
	l := logrus.New()
	l.SetLevel(parseLevel(opts.Level))
	l.SetOutput(opts.Output)

	if opts.Format == FormatJSON {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: textTimestamp,
		})
	}

	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *LogrusLogger) Info(args ...interface{}) { l.entry.Info(args...) }
func (l *LogrusLogger) Warn(args ...interface{}) { l.entry.Warn(args...) }
func (l *LogrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *LogrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *LogrusLogger) Infof(format string, args ...interface{}) { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warnf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// WithFields adds structured fields to the logger
func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithContext adds request scoped values stored under contextkeys
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(contextFields(ctx)))}
}

// WithComponent adds component name to the logger
func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{entry: l.entry.WithField("component", component)}
}

// contextFields extracts the known context values that are non-empty strings.
func contextFields(ctx context.Context) map[string]interface{} {
	fields := map[string]interface{}{}
	if ctx == nil {
		return fields
	}
	keys := []struct {
		key  interface{}
		name string
	}{
		{contextkeys.RequestIDKey, "request_id"},
		{contextkeys.UserIDKey, "user_id"},
		{contextkeys.CollectionKey, "collection"},
		{contextkeys.ComponentKey, "component"},
		{contextkeys.OperationKey, "operation"},
	}
	for _, k := range keys {
		if s, ok := ctx.Value(k.key).(string); ok && s != "" {
			fields[k.name] = s
		}
	}
	return fields
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// NopLogger discards everything. Handy as a default for optional loggers.
type NopLogger struct{}

func (NopLogger) Debug(args ...interface{}) {}
func (NopLogger) Info(args ...interface{}) {}
func (NopLogger) Warn(args ...interface{}) {}
func (NopLogger) Error(args ...interface{}) {}
func (NopLogger) Debugf(format string, args ...interface{}) {}
func (NopLogger) Infof(format string, args ...interface{}) {}
func (NopLogger) Warnf(format string, args ...interface{}) {}
func (NopLogger) Errorf(format string, args ...interface{}) {}
func (n NopLogger) WithFields(fields map[string]interface{}) Logger { return n }
func (n NopLogger) WithContext(ctx context.Context) Logger { return n }
func (n NopLogger) WithComponent(component string) Logger { return n }
