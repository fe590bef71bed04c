// Package gateway implements the identity, catalog and order ports over HTTP/JSON.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application/ports"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const errorBodyReadLimit int64 = 1024

var errBaseURLRequired = errors.New("gateway: base url is required")

// StatusError carries a non-2xx response.
type StatusError struct {
	Peer       string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Peer, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Peer, e.Endpoint, e.StatusCode, e.Body)
}

// Client is the transport shared by the service clients: one round trip per
// call, guarded by a per-peer circuit breaker.
type Client struct {
	peer       string
	baseURL    string
	httpClient *http.Client
	breaker    *CircuitBreaker
	propagator propagation.TextMapPropagator

	log      observability.Logger
	tracer   observability.Tracer
	requests observability.Counter   // external_requests_total{peer,endpoint,outcome}
	duration observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBreaker replaces the default breaker; nil disables it.
func WithBreaker(cb *CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *Client) {
		if p != nil {
			c.propagator = p
		}
	}
}

// NewClient builds a client for peer rooted at baseURL (for example
// http://orders:8082/ead/api/orders).
func NewClient(peer, baseURL string, tel observability.Observability, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}

	tel = observability.Resolve(tel)
	metrics := tel.Metrics()
	c := &Client{
		peer:       peer,
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker:    NewCircuitBreaker(5, 30*time.Second),
		log:        tel.Logger().With(observability.F("component", "gateway"), observability.F("peer", peer)),
		tracer:     tel.Tracer(),
		requests:   metrics.Counter(observability.MExternalRequests),
		duration:   metrics.Histogram(observability.MExternalRequestDuration),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) Peer() string { return c.peer }

// call describes one round trip. notFound and rejected are the domain errors
// returned for 404 and 400/422 responses.
type call struct {
	method   string
	path     string
	endpoint string
	body     any
	out      any
	notFound error
	rejected error
}

func (c *Client) do(ctx context.Context, cl call) (err error) {
	ctx, span := c.tracer.Start(ctx, "GW."+c.peer+"."+cl.endpoint,
		attribute.String("peer.service", c.peer),
		attribute.String("http.request.method", cl.method),
		attribute.String("gateway.endpoint", cl.endpoint),
	)
	start := time.Now()
	outcome := "success"
	statusCode := 0

	defer func() {
		lat := time.Since(start).Seconds()
		c.requests.Add(1,
			observability.L("peer", c.peer),
			observability.L("endpoint", cl.endpoint),
			observability.L("outcome", outcome),
		)
		c.duration.Observe(lat,
			observability.L("peer", c.peer),
			observability.L("endpoint", cl.endpoint),
		)
		if statusCode != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			logctx.FromOr(ctx, c.log).Warn("gateway_call_failed",
				observability.F("peer", c.peer),
				observability.F("endpoint", cl.endpoint),
				observability.F("outcome", outcome),
				observability.F("status_code", statusCode),
				observability.F("latency_seconds", lat),
				observability.Err(err),
			)
		} else {
			span.SetStatus(codes.Ok, outcome)
		}
		span.End()
	}()

	var payload []byte
	if cl.body != nil {
		payload, err = json.Marshal(cl.body)
		if err != nil {
			outcome = "encode_error"
			return fmt.Errorf("%s %s: marshal request: %w", c.peer, cl.endpoint, err)
		}
	}

	// Only transport failures and 5xx count against the breaker; a 404 is a healthy peer.
	var clientErr error
	breakerErr := c.breaker.Execute(ctx, func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, rerr := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
		if rerr != nil {
			clientErr = fmt.Errorf("%s %s: build request: %w", c.peer, cl.endpoint, rerr)
			return nil
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		c.inject(ctx, req)

		resp, derr := c.httpClient.Do(req)
		if derr != nil {
			return fmt.Errorf("%w: %s %s: %w", ports.ErrUnavailable, c.peer, cl.endpoint, derr)
		}
		defer func() { _ = resp.Body.Close() }()
		statusCode = resp.StatusCode

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if cl.out == nil || resp.StatusCode == http.StatusNoContent {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			if jerr := json.NewDecoder(resp.Body).Decode(cl.out); jerr != nil {
				clientErr = fmt.Errorf("%s %s: decode response: %w", c.peer, cl.endpoint, jerr)
			}
			return nil
		}

		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		statusErr := &StatusError{
			Peer:       c.peer,
			Endpoint:   cl.endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
		switch {
		case resp.StatusCode == http.StatusNotFound && cl.notFound != nil:
			clientErr = fmt.Errorf("%w: %w", cl.notFound, statusErr)
			return nil
		case (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity) && cl.rejected != nil:
			clientErr = fmt.Errorf("%w: %w", cl.rejected, statusErr)
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: %w", ports.ErrUnavailable, statusErr)
		default:
			clientErr = statusErr
			return nil
		}
	})

	switch {
	case errors.Is(breakerErr, ErrCircuitOpen):
		outcome = "circuit_open"
		return fmt.Errorf("%w: %s %s: %w", ports.ErrUnavailable, c.peer, cl.endpoint, breakerErr)
	case errors.Is(breakerErr, context.DeadlineExceeded):
		outcome = "timeout"
		return breakerErr
	case breakerErr != nil:
		outcome = "error"
		return breakerErr
	case clientErr != nil:
		outcome = classify(clientErr, cl)
		return clientErr
	}
	return nil
}

func classify(err error, cl call) string {
	switch {
	case cl.notFound != nil && errors.Is(err, cl.notFound):
		return "not_found"
	case cl.rejected != nil && errors.Is(err, cl.rejected):
		return "rejected"
	default:
		return "error"
	}
}

func (c *Client) inject(ctx context.Context, req *http.Request) {
	p := c.propagator
	if p == nil {
		p = otel.GetTextMapPropagator()
	}
	p.Inject(ctx, propagation.HeaderCarrier(req.Header))
}
