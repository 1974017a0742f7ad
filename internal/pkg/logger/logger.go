package logger

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Init 配置全局 zerolog，所有服务在启动时调用一次
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", serviceName).Logger()
}

// Ctx 返回与当前请求绑定的 logger。
// 优先使用 context 中已注入的 logger；否则基于当前 Span 补充 trace_id，
// 保证日志与 Jaeger 链路可以互相关联。
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.HasTraceID() {
		l := log.With().Str("trace_id", spanCtx.TraceID().String()).Logger()
		return &l
	}
	return &log.Logger
}

// WithTrace 把带 trace_id 的 logger 注入 context，供下游 handler 使用
func WithTrace(ctx context.Context) context.Context {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.HasTraceID() {
		l := log.With().Str("trace_id", spanCtx.TraceID().String()).Logger()
		return l.WithContext(ctx)
	}
	return ctx
}
