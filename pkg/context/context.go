package ctxutil

import (
	"context"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/constants"
)

// Re-export ContextKey type
type ContextKey = constants.ContextKey

// Re-export context keys
const (
	RequestIDKey = constants.CtxKeyRequestID
	ClientIPKey  = constants.CtxKeyClientIP
	UserAgentKey = constants.CtxKeyUserAgent
	StartTimeKey = constants.CtxKeyStartTime
	ModuleKey    = constants.CtxKeyModule
	FunctionKey  = constants.CtxKeyFunction
	DatasetKey   = constants.CtxKeyDataset
)

// WithValue adds a value to context
func WithValue(ctx context.Context, key ContextKey, value interface{}) context.Context {
	return context.WithValue(ctx, key, value)
}

// WithRequestInfo stores the per-request identifiers used by the context logger.
func WithRequestInfo(ctx context.Context, requestID, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	ctx = context.WithValue(ctx, ClientIPKey, clientIP)
	ctx = context.WithValue(ctx, UserAgentKey, userAgent)
	if GetStartTime(ctx).IsZero() {
		ctx = context.WithValue(ctx, StartTimeKey, time.Now())
	}
	return ctx
}

// WithDataset tags the context with the dataset being queried.
func WithDataset(ctx context.Context, dataset string) context.Context {
	return context.WithValue(ctx, DatasetKey, dataset)
}

// WithFunction adds module/function info, as the repository and service layers do on entry.
func WithFunction(ctx context.Context, module, function string) context.Context {
	ctx = context.WithValue(ctx, ModuleKey, module)
	return context.WithValue(ctx, FunctionKey, function)
}

func stringValue(ctx context.Context, key ContextKey) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(key).(string); ok {
		return val
	}
	return ""
}

// Getter functions
func GetRequestID(ctx context.Context) string { return stringValue(ctx, RequestIDKey) }
func GetClientIP(ctx context.Context) string  { return stringValue(ctx, ClientIPKey) }
func GetUserAgent(ctx context.Context) string { return stringValue(ctx, UserAgentKey) }
func GetModule(ctx context.Context) string    { return stringValue(ctx, ModuleKey) }
func GetFunction(ctx context.Context) string  { return stringValue(ctx, FunctionKey) }
func GetDataset(ctx context.Context) string   { return stringValue(ctx, DatasetKey) }

func GetStartTime(ctx context.Context) time.Time {
	if ctx == nil {
		return time.Time{}
	}
	if val, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return val
	}
	return time.Time{}
}

// GetDuration calculates duration from start time
func GetDuration(ctx context.Context) time.Duration {
	startTime := GetStartTime(ctx)
	if !startTime.IsZero() {
		return time.Since(startTime)
	}
	return 0
}

// NewContextWithRequest creates context with handler module/function information
func NewContextWithRequest(ctx context.Context, module, function string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx = WithFunction(ctx, module, function)

	if GetStartTime(ctx).IsZero() {
		ctx = context.WithValue(ctx, StartTimeKey, time.Now())
	}

	return ctx
}
