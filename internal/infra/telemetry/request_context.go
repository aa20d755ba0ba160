package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type operationContextKey struct{}

// OperationMeta identifies one client operation (a blocking call, a commit,
// a query) across all the HTTP exchanges it performs.
type OperationMeta struct {
	Operation string
	RequestID string
	TraceID   string
	SpanID    string
}

func (m OperationMeta) IsZero() bool {
	return m.RequestID == "" && m.TraceID == "" && m.SpanID == ""
}

func WithOperationMeta(ctx context.Context, meta OperationMeta) context.Context {
	if meta.IsZero() {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, operationContextKey{}, meta)
}

func OperationMetaFromContext(ctx context.Context) (OperationMeta, bool) {
	if ctx == nil {
		return OperationMeta{}, false
	}
	meta, ok := ctx.Value(operationContextKey{}).(OperationMeta)
	return meta, ok && !meta.IsZero()
}

func NewRequestID() string {
	return uuid.NewString()
}

func TraceSpanFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return "", ""
	}
	return spanCtx.TraceID().String(), spanCtx.SpanID().String()
}

// StartOperation tags ctx with a request id for operation. A nested call
// keeps the outer request id so one blocking call logs under a single id.
func StartOperation(ctx context.Context, operation string) (context.Context, OperationMeta) {
	if ctx == nil {
		ctx = context.Background()
	}
	requestID := ""
	if existing, ok := OperationMetaFromContext(ctx); ok {
		requestID = existing.RequestID
	}
	if requestID == "" {
		requestID = NewRequestID()
	}
	traceID, spanID := TraceSpanFromContext(ctx)
	meta := OperationMeta{
		Operation: operation,
		RequestID: requestID,
		TraceID:   traceID,
		SpanID:    spanID,
	}
	return WithOperationMeta(ctx, meta), meta
}

func OperationFields(meta OperationMeta) []zap.Field {
	if meta.IsZero() {
		return nil
	}
	fields := make([]zap.Field, 0, 4)
	if meta.Operation != "" {
		fields = append(fields, OperationField(meta.Operation))
	}
	if meta.RequestID != "" {
		fields = append(fields, RequestIDField(meta.RequestID))
	}
	if meta.TraceID != "" {
		fields = append(fields, TraceIDField(meta.TraceID))
	}
	if meta.SpanID != "" {
		fields = append(fields, SpanIDField(meta.SpanID))
	}
	return fields
}

// LoggerFor returns base annotated with the operation carried by ctx.
func LoggerFor(ctx context.Context, base *zap.Logger) *zap.Logger {
	logger := base
	if logger == nil {
		logger = zap.NewNop()
	}
	meta, ok := OperationMetaFromContext(ctx)
	if !ok {
		return logger
	}
	return logger.With(OperationFields(meta)...)
}
