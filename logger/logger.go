package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured log attribute. It is a zap.Field so callers can mix
// the helpers below with zap's own constructors.
type Field = zap.Field

// Logger is a thin wrapper around zap.SugaredLogger that provides the
// three log levels we need throughout the codebase.
type Logger interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

func String(key, val string) Field { return zap.String(key, val) }
func Float64(key string, val float64) Field { return zap.Float64(key, val) }
func Int(key string, val int) Field { return zap.Int(key, val) }
func Bool(key string, val bool) Field { return zap.Bool(key, val) }
func Time(key string, val time.Time) Field { return zap.Time(key, val) }
func Err(err error) Field { return zap.Error(err) }

// zapLogger implements Logger using a SugaredLogger internally.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.sugar.Infow(msg, zapFieldsToMap(fields)...)
}
func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.sugar.Warnw(msg, zapFieldsToMap(fields)...)
}
func (l *zapLogger) Error(msg string, fields ...Field) {
	l.sugar.Errorw(msg, zapFieldsToMap(fields)...)
}

// NewZapLogger creates a production‑ready logger (JSON encoding, level INFO).
func NewZapLogger() (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: z.Sugar()}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

// Helper – flattens zap fields into the key/value list SugaredLogger expects.
// Passing the Field itself keeps zap's typed encoding.
func zapFieldsToMap(fields []Field) []interface{} {
	out := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		out = append(out, f)
	}
	return out
}
