// Package logging backs the runtime.Logger interface with zap so the
// standalone server logs the same way the Nakama plugin does.
package logging

import (
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"
)

type zapLogger struct {
	z      *zap.Logger
	fields map[string]interface{}
}

// NewZapLogger wraps z. The wrapper skips its own frame when zap records callers.
func NewZapLogger(z *zap.Logger) runtime.Logger {
	return &zapLogger{z: z.WithOptions(zap.AddCallerSkip(1)), fields: map[string]interface{}{}}
}

// New builds a production JSON logger at the given level ("debug", "info", ...).
// The returned *zap.Logger should be synced on shutdown.
func New(level string) (runtime.Logger, *zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	z, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return NewZapLogger(z), z, nil
}

func (l *zapLogger) Debug(format string, v ...interface{}) {
	l.z.Debug(fmt.Sprintf(format, v...))
}

func (l *zapLogger) Info(format string, v ...interface{}) {
	l.z.Info(fmt.Sprintf(format, v...))
}

func (l *zapLogger) Warn(format string, v ...interface{}) {
	l.z.Warn(fmt.Sprintf(format, v...))
}

func (l *zapLogger) Error(format string, v ...interface{}) {
	l.z.Error(fmt.Sprintf(format, v...))
}

func (l *zapLogger) WithField(key string, v interface{}) runtime.Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

func (l *zapLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		merged[k] = v
		zf = append(zf, zap.Any(k, v))
	}
	return &zapLogger{z: l.z.With(zf...), fields: merged}
}

func (l *zapLogger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		out[k] = v
	}
	return out
}
