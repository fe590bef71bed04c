package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const componentOutbox = "outbox"

var ErrClosed = errors.New("outbox: bus closed")

var _ domoutbox.Bus = (*Bus)(nil)

// Decorator prepares the handler context for one delivery, typically binding a
// logger with event and trace identifiers.
type Decorator func(ctx context.Context, eventID, eventName string, sc trace.SpanContext) context.Context

type envelope struct {
	id    string
	event domoutbox.Event
	span  trace.SpanContext
}

// Bus is an in-memory event bus. Events are lost on process exit; durable
// delivery would need the events persisted and dispatched from a worker.
type Bus struct {
	mu          sync.RWMutex
	subs        map[string][]domoutbox.Handler
	queue       chan envelope
	closed      bool
	done        chan struct{}
	startOnce   sync.Once
	stopOnce    sync.Once
	cancel      context.CancelFunc
	concurrency int
	timeout     time.Duration
	decorate    Decorator
	log         observability.Logger
	tracer      observability.Tracer
}

type Option func(*Bus)

func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan envelope, n)
		}
	}
}

// WithConcurrency caps concurrent handlers per event.
func WithConcurrency(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func WithDecorator(d Decorator) Option {
	return func(b *Bus) { b.decorate = d }
}

func NewBus(logger observability.Logger, tel observability.Observability, opts ...Option) *Bus {
	tel = observability.Resolve(tel)
	if logger == nil {
		logger = tel.Logger()
	}
	b := &Bus{
		subs:        make(map[string][]domoutbox.Handler),
		queue:       make(chan envelope, 1024),
		done:        make(chan struct{}),
		concurrency: 8,
		timeout:     30 * time.Second,
		log:         logger.With(observability.F("component", componentOutbox)),
		tracer:      tel.Tracer(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		b.cancel = cancel
		go b.dispatchLoop(bg)
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop refuses new events and waits for queued ones to be delivered, up to ctx's deadline.
func (b *Bus) Stop(ctx context.Context) error {
	var err error
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.queue)
		started := b.cancel != nil
		b.mu.Unlock()

		logger := logctx.FromOr(ctx, b.log)
		if started {
			select {
			case <-b.done:
			case <-ctx.Done():
				err = ctx.Err()
				logger.Warn("event_bus_drain_aborted", observability.Err(err))
			}
			b.cancel()
		}
		logger.Info("event_bus_stopped")
	})
	return err
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	env := envelope{id: uuid.NewString(), event: e, span: trace.SpanContextFromContext(ctx)}
	logger := logctx.FromOr(ctx, b.log).With(
		observability.F("event", e.EventName()),
		observability.F("event_id", env.id),
	)

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		logger.Warn("event_enqueue_rejected", observability.Err(ErrClosed))
		return ErrClosed
	}
	select {
	case b.queue <- env:
		logger.Debug("event_enqueued")
		return nil
	case <-ctx.Done():
		logger.Warn("event_enqueue_aborted", observability.Err(ctx.Err()))
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-b.queue:
			if !ok {
				return
			}
			b.fanout(ctx, env)
		}
	}
}

func (b *Bus) fanout(ctx context.Context, env envelope) {
	name := env.event.EventName()

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	baseLogger := b.log.With(
		observability.F("event", name),
		observability.F("event_id", env.id),
	)
	if len(handlers) == 0 {
		baseLogger.Debug("event_dropped_no_subscriber")
		return
	}

	ctx = context.WithoutCancel(ctx)
	if env.span.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, env.span)
	}
	ctx, span := b.tracer.Start(ctx, "EVT."+name, attribute.String("event", name), attribute.String("event.id", env.id))
	defer span.End()

	ctx = logctx.With(ctx, baseLogger)
	if b.decorate != nil {
		ctx = b.decorate(ctx, env.id, name, trace.SpanContextFromContext(ctx))
	}

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup
	var failed sync.Once

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					failed.Do(func() { span.SetStatus(codes.Error, "handler panic") })
					logctx.FromOr(ctx, baseLogger).Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()
			if err := h(hctx, env.event); err != nil {
				failed.Do(func() { span.SetStatus(codes.Error, "handler error") })
				span.RecordError(err)
				logctx.FromOr(hctx, baseLogger).Warn("event_handler_error", observability.Err(err))
			}
		}()
	}

	wg.Wait()

	baseLogger.Debug("event_fanned_out", observability.F("handlers", len(handlers)))
}
