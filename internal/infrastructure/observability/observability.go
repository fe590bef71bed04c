// Package observability assembles the vendor-neutral observability ports from concrete adapters.
package observability

import (
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
)

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics observability.Metrics
}

type registeredMetrics struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m *registeredMetrics) Counter(name observability.MetricKey) observability.Counter {
	if m == nil || m.counters == nil {
		return observability.NopCounter()
	}
	if c, ok := m.counters[name]; ok && c != nil {
		return c
	}
	return observability.NopCounter()
}

func (m *registeredMetrics) Histogram(name observability.MetricKey) observability.Histogram {
	if m == nil || m.histograms == nil {
		return observability.NopHistogram()
	}
	if h, ok := m.histograms[name]; ok && h != nil {
		return h
	}
	return observability.NopHistogram()
}

// CounterDef describes a counter the storefront exports.
type CounterDef struct {
	Key    observability.MetricKey
	Help   string
	Labels []string
}

// HistogramDef describes a histogram the storefront exports.
type HistogramDef struct {
	Key     observability.MetricKey
	Help    string
	Buckets []float64
	Labels  []string
}

// Counters lists every counter registered at startup.
var Counters = []CounterDef{
	{Key: observability.MUsecaseRequests, Help: "Total number of use case invocations.", Labels: []string{"use_case", "outcome"}},
	{Key: observability.MHTTPRequests, Help: "Total number of HTTP requests served.", Labels: []string{"method", "route", "status"}},
	{Key: observability.MExternalRequests, Help: "Total number of gateway round trips to collaborating services.", Labels: []string{"peer", "endpoint", "outcome"}},
	{Key: observability.MReconciliationRecorded, Help: "Orders recorded for reconciliation after a partial failure.", Labels: []string{"store"}},
}

// Histograms lists every histogram registered at startup.
var Histograms = []HistogramDef{
	{Key: observability.MUsecaseDuration, Help: "Duration of use case execution in seconds.", Labels: []string{"use_case"}},
	{Key: observability.MHTTPRequestDuration, Help: "Duration of HTTP requests in seconds.", Labels: []string{"method", "route", "status"}},
	{Key: observability.MExternalRequestDuration, Help: "Duration of gateway round trips in seconds.", Labels: []string{"peer", "endpoint"}},
}

// New assembles an Observability backed by the tracer, logger and the instruments declared above.
// A nil registry yields no-op metrics.
func New(tracer observability.Tracer, logger observability.Logger, registry prometrics.Registry) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	var metrics observability.Metrics = observability.NopMetrics()
	if registry != nil {
		m := &registeredMetrics{
			counters:   make(map[observability.MetricKey]observability.Counter, len(Counters)),
			histograms: make(map[observability.MetricKey]observability.Histogram, len(Histograms)),
		}
		for _, def := range Counters {
			m.counters[def.Key] = registry.Counter(string(def.Key), def.Help, def.Labels...)
		}
		for _, def := range Histograms {
			m.histograms[def.Key] = registry.Histogram(string(def.Key), def.Help, def.Buckets, def.Labels...)
		}
		metrics = m
	}

	return &provider{
		tracer:  tracer,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *provider) Tracer() observability.Tracer {
	return p.tracer
}

func (p *provider) Logger() observability.Logger {
	return p.logger
}

func (p *provider) Metrics() observability.Metrics {
	if p.metrics == nil {
		return observability.NopMetrics()
	}
	return p.metrics
}
