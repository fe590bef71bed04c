package aggregation

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	"github.com/Zhima-Mochi/minishop-storefront/internal/application/ports"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	aggregationService = "aggregation-service"
	useCaseAggregate   = "order.aggregate"
	useCaseListForUser = "order.list_for_user"
)

// AggregateOrdersUseCase builds the admin order view. The three collections are
// fetched concurrently with no shared snapshot, so they may reflect slightly
// different moments. Any failed fetch fails the whole call.
type AggregateOrdersUseCase struct {
	orders      ports.OrderGateway
	users       ports.IdentityGateway
	products    ports.InventoryGateway
	callTimeout time.Duration
	in          application.Instruments
}

func NewAggregateOrdersUseCase(
	orders ports.OrderGateway,
	users ports.IdentityGateway,
	products ports.InventoryGateway,
	callTimeout time.Duration,
	tel observability.Observability,
) *AggregateOrdersUseCase {
	return &AggregateOrdersUseCase{
		orders:      orders,
		users:       users,
		products:    products,
		callTimeout: callTimeout,
		in:          application.NewInstruments(tel, aggregationService),
	}
}

type AggregateOrdersInput struct{}

func (uc *AggregateOrdersUseCase) Execute(ctx context.Context, _ AggregateOrdersInput) (_ []EnrichedOrderLine, err error) {
	ctx, logger := logctx.Enrich(ctx, uc.in.Log, observability.F("use_case", useCaseAggregate))
	ctx, run := uc.in.Begin(ctx, useCaseAggregate, "AggregateOrders", logger)
	defer func() { run.Done(ctx, err) }()

	var (
		orders   []domorder.Order
		users    []identity.UserProfile
		products []catalog.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		callCtx, cancel := withCallTimeout(gctx, uc.callTimeout)
		defer cancel()
		var ferr error
		orders, ferr = uc.orders.ListOrders(callCtx)
		return ferr
	})
	g.Go(func() error {
		callCtx, cancel := withCallTimeout(gctx, uc.callTimeout)
		defer cancel()
		var ferr error
		users, ferr = uc.users.ListUsers(callCtx)
		return ferr
	})
	g.Go(func() error {
		callCtx, cancel := withCallTimeout(gctx, uc.callTimeout)
		defer cancel()
		var ferr error
		products, ferr = uc.products.ListProducts(callCtx)
		return ferr
	})
	if ferr := g.Wait(); ferr != nil {
		run.Fail("FETCH_FAILED")
		return nil, application.FromGateway(useCaseAggregate, ferr)
	}

	lines := Join(orders, users, products)
	run.With(
		observability.F("orders", len(orders)),
		observability.F("users", len(users)),
		observability.F("products", len(products)),
		observability.F("lines", len(lines)),
	)
	run.Span().SetAttributes(attribute.Int("aggregate.lines", len(lines)))
	return lines, nil
}

func withCallTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
