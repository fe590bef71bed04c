package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application/aggregation"
	appOrder "github.com/Zhima-Mochi/minishop-storefront/internal/application/order"
	"github.com/Zhima-Mochi/minishop-storefront/internal/application/ports"
	appRecon "github.com/Zhima-Mochi/minishop-storefront/internal/application/reconciliation"
	"github.com/Zhima-Mochi/minishop-storefront/internal/config"
	domRecon "github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/gateway"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/memory"
	infraObs "github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/redisstore"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/pkg/logging"
	httpPresentation "github.com/Zhima-Mochi/minishop-storefront/internal/presentation/http"
	workerPresentation "github.com/Zhima-Mochi/minishop-storefront/internal/presentation/worker"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	baseLogger, err := logging.NewLogger(logging.Options{
		Service: cfg.App.ServiceName,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		LogFile: cfg.App.LogFile,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	logger := zaplogger.New(logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID))

	shutdownTracing := oteltrace.Setup(sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	tel := infraObs.New(oteltrace.New(cfg.App.ServiceName), zaplogger.New(baseLogger), prometrics.New(registry, ""))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, inventory, orders, err := buildGateways(cfg, tel)
	if err != nil {
		return err
	}

	var healthOpts []httpPresentation.Option
	var recordRepo domRecon.Repository
	switch cfg.Reconciliation.Store {
	case config.StoreRedis:
		store, rerr := redisstore.New(ctx, redisstore.Options{
			URL:          cfg.Redis.URL,
			KeyPrefix:    cfg.Redis.KeyPrefix,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if rerr != nil {
			return fmt.Errorf("connect redis: %w", rerr)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Error("redis_close_error", observability.Err(cerr))
			}
		}()
		recordRepo = store
		healthOpts = append(healthOpts, httpPresentation.WithHealthCheck("redis", store.Ping))
	default:
		recordRepo = memory.NewReconciliationRepository()
	}

	bus := outbox.NewBus(logger, tel,
		outbox.WithQueueSize(cfg.Outbox.QueueSize),
		outbox.WithConcurrency(cfg.Outbox.Concurrency),
		outbox.WithHandlerTimeout(cfg.Outbox.HandlerTimeout),
		outbox.WithDecorator(workerPresentation.EventDecorator(logger, "reconciliation")),
	)
	appRecon.NewWorker(recordRepo, bus, cfg.Reconciliation.Store, tel).Start()
	bus.Start(ctx)

	callTimeout := cfg.Gateways.CallTimeout
	useCases := httpPresentation.UseCases{
		PlaceOrder:       appOrder.NewPlaceOrderUseCase(inventory, orders, bus, callTimeout, tel),
		TransitionStatus: appOrder.NewTransitionStatusUseCase(orders, callTimeout, tel),
		AggregateOrders:  aggregation.NewAggregateOrdersUseCase(orders, users, inventory, callTimeout, tel),
		OrdersForUser:    aggregation.NewOrdersForUserUseCase(orders, callTimeout, tel),
		ListRecords:      appRecon.NewListUseCase(recordRepo, tel),
		ResolveRecord:    appRecon.NewResolveUseCase(recordRepo, tel),
	}
	handler := httpPresentation.NewHandler(useCases, logger, tel,
		append(healthOpts, httpPresentation.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))...,
	)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http_server_start",
			observability.F("addr", server.Addr),
			observability.F("gateway_mode", cfg.Gateways.Mode),
			observability.F("reconciliation_store", cfg.Reconciliation.Store),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("http_server_error", observability.Err(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.Err(err))
	} else {
		logger.Info("http_server_stopped")
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		logger.Warn("event_bus_stop_error", observability.Err(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer_shutdown_error", observability.Err(err))
	}
	return nil
}

// buildGateways returns HTTP clients for the three collaborating services, or
// seeded in-memory stand-ins when the storefront runs on its own.
func buildGateways(cfg *config.Config, tel observability.Observability) (ports.IdentityGateway, ports.InventoryGateway, ports.OrderGateway, error) {
	if cfg.Gateways.Mode == config.GatewayModeMemory {
		return memory.NewIdentityGateway(memory.DemoUsers()...),
			memory.NewCatalogGateway(memory.DemoProducts()...),
			memory.NewOrderGateway(),
			nil
	}

	newClient := func(peer, baseURL string) (*gateway.Client, error) {
		return gateway.NewClient(peer, baseURL, tel,
			gateway.WithBreaker(gateway.NewCircuitBreaker(cfg.Gateways.BreakerMaxFailures, cfg.Gateways.BreakerResetTimeout)),
		)
	}
	identityClient, err := newClient("identity", cfg.Gateways.UsersBaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	catalogClient, err := newClient("catalog", cfg.Gateways.ProductsBaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	ordersClient, err := newClient("orders", cfg.Gateways.OrdersBaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return gateway.NewIdentityClient(identityClient),
		gateway.NewCatalogClient(catalogClient),
		gateway.NewOrdersClient(ordersClient),
		nil
}
