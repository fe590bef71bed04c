package workerpresentation

import (
	"context"
	"sync"
	"testing"

	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

type fieldLogger struct {
	mu     *sync.Mutex
	fields []observability.Field
	lines  *[]map[string]any
}

func newFieldLogger() *fieldLogger {
	return &fieldLogger{mu: &sync.Mutex{}, lines: &[]map[string]any{}}
}

func (l *fieldLogger) With(fields ...observability.Field) observability.Logger {
	return &fieldLogger{mu: l.mu, fields: append(append([]observability.Field(nil), l.fields...), fields...), lines: l.lines}
}

func (l *fieldLogger) log(fields ...observability.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := make(map[string]any)
	for _, f := range append(append([]observability.Field(nil), l.fields...), fields...) {
		line[f.Key] = f.Value
	}
	*l.lines = append(*l.lines, line)
}

func (l *fieldLogger) Debug(_ string, fields ...observability.Field) { l.log(fields...) }
func (l *fieldLogger) Info(_ string, fields ...observability.Field)  { l.log(fields...) }
func (l *fieldLogger) Warn(_ string, fields ...observability.Field)  { l.log(fields...) }
func (l *fieldLogger) Error(_ string, fields ...observability.Field) { l.log(fields...) }

func TestEventDecoratorBindsDeliveryFields(t *testing.T) {
	base := newFieldLogger()
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
	})

	ctx := EventDecorator(base, "reconciliation")(context.Background(), "evt-1", "order.inventory_unreserved", sc)
	logctx.From(ctx).Info("handled")

	lines := *base.lines
	assert.Len(t, lines, 1)
	assert.Equal(t, "evt-1", lines[0]["event_id"])
	assert.Equal(t, "order.inventory_unreserved", lines[0]["event"])
	assert.Equal(t, "reconciliation", lines[0]["worker"])
	assert.Equal(t, sc.TraceID().String(), lines[0]["trace_id"])
	assert.Equal(t, sc.SpanID().String(), lines[0]["span_id"])
}

func TestWithEventContextGeneratesIDAndSkipsInvalidTrace(t *testing.T) {
	base := newFieldLogger()

	ctx := WithEventContext(context.Background(), base, "", trace.SpanContext{}, map[string]string{"event_id": "ignored", "tenant": ""})
	logctx.From(ctx).Info("handled")

	line := (*base.lines)[0]
	assert.NotEmpty(t, line["event_id"])
	assert.NotEqual(t, "ignored", line["event_id"])
	assert.NotContains(t, line, "trace_id")
	assert.NotContains(t, line, "tenant")
}
