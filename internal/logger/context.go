package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	fieldsKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithFields attaches fields that every logger obtained through FromCtx
// for this context will carry. Fields accumulate across calls.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	prev := fieldsFrom(ctx)
	merged := make([]zap.Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

func fieldsFrom(ctx context.Context) []zap.Field {
	f, _ := ctx.Value(fieldsKey).([]zap.Field)
	return f
}

// FromCtx returns the global logger enriched with the request id and any
// fields stored by WithFields.
func FromCtx(ctx context.Context) *zap.Logger {
	fields := fieldsFrom(ctx)
	if reqID := RequestIDFrom(ctx); reqID != "" {
		fields = append([]zap.Field{zap.String("request_id", reqID)}, fields...)
	}
	if len(fields) == 0 {
		return L()
	}
	return L().With(fields...)
}
