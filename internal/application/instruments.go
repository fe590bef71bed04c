package application

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanPrefix prefixes every use case span name.
const SpanPrefix = "UC."

// Instruments carries the logger, tracer and RED metrics a use case records.
type Instruments struct {
	Log      observability.Logger
	Tracer   observability.Tracer
	Requests observability.Counter   // usecase_requests_total{use_case,outcome}
	Duration observability.Histogram // usecase_duration_seconds{use_case}

	External         observability.Counter   // external_requests_total{peer,endpoint,outcome}
	ExternalDuration observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

// NewInstruments resolves a possibly nil Observability and binds the service field.
func NewInstruments(tel observability.Observability, service string) Instruments {
	tel = observability.Resolve(tel)
	metrics := tel.Metrics()
	return Instruments{
		Log:              tel.Logger().With(observability.F("service", service)),
		Tracer:           tel.Tracer(),
		Requests:         metrics.Counter(observability.MUsecaseRequests),
		Duration:         metrics.Histogram(observability.MUsecaseDuration),
		External:         metrics.Counter(observability.MExternalRequests),
		ExternalDuration: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// Run tracks one use case execution.
type Run struct {
	in      Instruments
	useCase string
	start   time.Time
	span    trace.Span
	Log     observability.Logger

	Outcome string
	Status  string
	fields  []observability.Field
}

// Begin starts the span and returns a context carrying it.
func (in Instruments) Begin(ctx context.Context, useCase, spanName string, logger observability.Logger, attrs ...attribute.KeyValue) (context.Context, *Run) {
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.Tracer.Start(ctx, SpanPrefix+spanName, attrs...)
	return ctx, &Run{
		in:      in,
		useCase: useCase,
		start:   time.Now(),
		span:    span,
		Log:     logger,
		Outcome: "success",
		Status:  "OK",
	}
}

func (r *Run) Span() trace.Span { return r.span }

// Fail sets the outcome to error with the given status code.
func (r *Run) Fail(status string) {
	r.Outcome, r.Status = "error", status
}

// With adds fields to the closing log line.
func (r *Run) With(fields ...observability.Field) {
	r.fields = append(r.fields, fields...)
}

// Done closes the span, records RED metrics and writes the use_case_done line.
func (r *Run) Done(ctx context.Context, err error) {
	lat := time.Since(r.start).Seconds()

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, r.Status)
		} else {
			r.span.SetStatus(codes.Ok, r.Status)
		}
		r.span.End()
	}

	if r.in.Requests != nil {
		r.in.Requests.Add(1,
			observability.L("use_case", r.useCase),
			observability.L("outcome", r.Outcome),
		)
	}
	if r.in.Duration != nil {
		r.in.Duration.Observe(lat, observability.L("use_case", r.useCase))
	}

	fields := []observability.Field{
		observability.F("outcome", r.Outcome),
		observability.F("status", r.Status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, r.fields...)
	if err != nil {
		fields = append(fields, observability.Err(err))
	}
	r.Log.Info("use_case_done", fields...)
}

// ObserveExternal records one call to a non-gateway peer such as the event bus.
func (in Instruments) ObserveExternal(peer, endpoint, outcome string, start time.Time) {
	if in.External != nil {
		in.External.Add(1,
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
	}
	if in.ExternalDuration != nil {
		in.ExternalDuration.Observe(time.Since(start).Seconds(),
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
		)
	}
}
