package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu      *sync.Mutex
	entries *[]entry
	bound   []observability.Field
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{mu: &sync.Mutex{}, entries: &[]entry{}}
}

func (l *captureLogger) With(fields ...observability.Field) observability.Logger {
	return &captureLogger{mu: l.mu, entries: l.entries, bound: append(append([]observability.Field(nil), l.bound...), fields...)}
}

func (l *captureLogger) record(msg string, fields []observability.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := map[string]any{}
	for _, f := range append(append([]observability.Field(nil), l.bound...), fields...) {
		m[f.Key] = f.Value
	}
	*l.entries = append(*l.entries, entry{msg: msg, fields: m})
}

func (l *captureLogger) Debug(msg string, fields ...observability.Field) { l.record(msg, fields) }
func (l *captureLogger) Info(msg string, fields ...observability.Field)  { l.record(msg, fields) }
func (l *captureLogger) Warn(msg string, fields ...observability.Field)  { l.record(msg, fields) }
func (l *captureLogger) Error(msg string, fields ...observability.Field) { l.record(msg, fields) }

type countingCounter struct {
	mu    sync.Mutex
	calls []map[string]string
}

func (c *countingCounter) Add(_ float64, labels ...observability.Label) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := map[string]string{}
	for _, l := range labels {
		m[l.Key] = l.Value
	}
	c.calls = append(c.calls, m)
}

func TestRunDoneLogsAndCounts(t *testing.T) {
	logger := newCaptureLogger()
	requests := &countingCounter{}
	in := Instruments{
		Log:      logger,
		Tracer:   observability.NopTracer(),
		Requests: requests,
		Duration: observability.NopHistogram(),
	}

	ctx, run := in.Begin(context.Background(), "order.place", "PlaceOrder", in.Log)
	run.Fail("OUT_OF_STOCK")
	run.With(observability.F("product_id", int64(7)))
	run.Done(ctx, errors.New("insufficient"))

	require.Len(t, *logger.entries, 1)
	got := (*logger.entries)[0]
	assert.Equal(t, "use_case_done", got.msg)
	assert.Equal(t, "error", got.fields["outcome"])
	assert.Equal(t, "OUT_OF_STOCK", got.fields["status"])
	assert.Equal(t, int64(7), got.fields["product_id"])
	assert.Equal(t, "insufficient", got.fields["error"])

	require.Len(t, requests.calls, 1)
	assert.Equal(t, map[string]string{"use_case": "order.place", "outcome": "error"}, requests.calls[0])
}

func TestNewInstrumentsToleratesNilObservability(t *testing.T) {
	in := NewInstruments(nil, "storefront")
	ctx, run := in.Begin(context.Background(), "x", "X", in.Log)
	assert.NotPanics(t, func() { run.Done(ctx, nil) })
}
