package workerpresentation

import (
	"context"

	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext injects a delivery-scoped logger for background handlers.
// Dynamic fields only: event_id (generated if empty), trace_id/span_id when valid,
// plus caller-provided low-cardinality attributes such as "event" or "worker".
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	eventID string,
	sc trace.SpanContext,
	attrs map[string]string,
) context.Context {
	if base == nil {
		base = logctx.FromOr(ctx, observability.NopLogger())
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	fields := make([]observability.Field, 0, 3+len(attrs))
	fields = append(fields, observability.F("event_id", eventID))
	if sc.TraceID().IsValid() {
		fields = append(fields, observability.F("trace_id", sc.TraceID().String()))
	}
	if sc.SpanID().IsValid() {
		fields = append(fields, observability.F("span_id", sc.SpanID().String()))
	}
	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}

// EventDecorator adapts WithEventContext to the event bus hook. worker labels
// every delivery so logs from different consumers can be told apart.
func EventDecorator(base observability.Logger, worker string) func(ctx context.Context, eventID, eventName string, sc trace.SpanContext) context.Context {
	return func(ctx context.Context, eventID, eventName string, sc trace.SpanContext) context.Context {
		return WithEventContext(ctx, base, eventID, sc, map[string]string{
			"event":  eventName,
			"worker": worker,
		})
	}
}
