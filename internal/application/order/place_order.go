package order

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	"github.com/Zhima-Mochi/minishop-storefront/internal/application/ports"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService      = "order-service"
	useCasePlaceOrder = "order.place"
	publishPeer       = "outbox"
	publishTimeout    = 300 * time.Millisecond
)

type PlaceOrderInput struct {
	UserID    int64 `json:"userId" validate:"gt=0"`
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=1"`
}

type PlaceOrderResult struct {
	Order           *domorder.Order
	InventoryBefore int
	InventoryAfter  int
}

// PlaceOrderUseCase reads stock, creates the order, then writes the decremented
// count back. The read and the write are not atomic: two concurrent purchases of
// the same product can both read the same prior count and oversell. A failed
// write after a successful create is reported as KindPartialFailure and published
// for reconciliation; nothing is compensated automatically.
type PlaceOrderUseCase struct {
	inventory   ports.InventoryGateway
	orders      ports.OrderGateway
	publisher   domoutbox.Publisher
	callTimeout time.Duration
	in          application.Instruments
}

// NewPlaceOrderUseCase wires the gateways. callTimeout bounds every gateway call;
// zero leaves only the caller's deadline.
func NewPlaceOrderUseCase(
	inventory ports.InventoryGateway,
	orders ports.OrderGateway,
	publisher domoutbox.Publisher,
	callTimeout time.Duration,
	tel observability.Observability,
) *PlaceOrderUseCase {
	if publisher == nil {
		publisher = domoutbox.Discard
	}
	return &PlaceOrderUseCase{
		inventory:   inventory,
		orders:      orders,
		publisher:   publisher,
		callTimeout: callTimeout,
		in:          application.NewInstruments(tel, orderService),
	}
}

// Execute runs one purchase attempt. Calling it again after a GatewayUnavailable
// from CreateOrder may create a second order; there is no idempotency key.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderInput) (_ *PlaceOrderResult, err error) {
	ctx, logger := logctx.Enrich(ctx, uc.in.Log,
		observability.F("use_case", useCasePlaceOrder),
		observability.F("user_id", cmd.UserID),
		observability.F("product_id", cmd.ProductID),
		observability.F("quantity", cmd.Quantity),
	)
	ctx, run := uc.in.Begin(ctx, useCasePlaceOrder, "PlaceOrder", logger,
		attribute.Int64("order.user_id", cmd.UserID),
		attribute.Int64("order.product_id", cmd.ProductID),
		attribute.Int("order.quantity", cmd.Quantity),
	)
	defer func() { run.Done(ctx, err) }()
	span := run.Span()

	if verr := application.Validate(useCasePlaceOrder, cmd); verr != nil {
		run.Fail("VALIDATION_FAILED")
		return nil, verr
	}
	if cerr := ctx.Err(); cerr != nil {
		run.Fail("CONTEXT_CANCELED")
		return nil, application.NewError(application.KindGatewayUnavailable, useCasePlaceOrder, cerr)
	}

	callCtx, cancel := withCallTimeout(ctx, uc.callTimeout)
	product, gerr := uc.inventory.GetProduct(callCtx, cmd.ProductID)
	cancel()
	if gerr != nil {
		run.Fail("PRODUCT_LOAD_FAILED")
		return nil, application.FromGateway(useCasePlaceOrder, gerr)
	}
	run.With(
		observability.F("inventory_before", product.InventoryCount),
		observability.F("available", product.Available),
	)

	if !product.CanFulfil(cmd.Quantity) {
		run.Fail("OUT_OF_STOCK")
		return nil, application.NewError(application.KindOutOfStock, useCasePlaceOrder,
			&OutOfStockError{ProductID: product.ID, Requested: cmd.Quantity, Available: product.InventoryCount, Listed: product.Available})
	}

	item, ierr := domorder.NewItem(product.ID, cmd.Quantity, product.Price)
	if ierr != nil {
		run.Fail("ITEM_BUILD_FAILED")
		return nil, application.NewError(application.KindInternal, useCasePlaceOrder, ierr)
	}
	draft, derr := domorder.NewDraft(cmd.UserID, item)
	if derr != nil {
		run.Fail("DRAFT_BUILD_FAILED")
		return nil, application.NewError(application.KindValidation, useCasePlaceOrder, derr)
	}

	callCtx, cancel = withCallTimeout(ctx, uc.callTimeout)
	created, cerr := uc.orders.CreateOrder(callCtx, draft)
	cancel()
	if cerr != nil {
		run.Fail("ORDER_CREATE_FAILED")
		return nil, application.FromGateway(useCasePlaceOrder, cerr)
	}
	run.With(
		observability.F("order_id", created.ID),
		observability.F("order_number", created.Number),
	)
	span.AddEvent("order.created", trace.WithAttributes(
		attribute.Int64("order.id", created.ID),
		attribute.String("order.number", created.Number),
	))

	remaining := product.RemainingAfter(cmd.Quantity)
	callCtx, cancel = withCallTimeout(ctx, uc.callTimeout)
	serr := uc.inventory.SetInventoryCount(callCtx, product.ID, remaining)
	cancel()
	if serr != nil {
		run.Fail("INVENTORY_DECREMENT_FAILED")
		uc.publishUnreserved(ctx, run, domorder.NewInventoryUnreservedEvent(created, product.ID, cmd.Quantity, product.InventoryCount, serr))
		return nil, &application.Error{
			Kind:  application.KindPartialFailure,
			Op:    useCasePlaceOrder,
			Order: created,
			Err:   serr,
		}
	}

	run.With(observability.F("inventory_after", remaining))
	span.SetAttributes(
		attribute.Int64("order.id", created.ID),
		attribute.String("order.status", string(created.Status)),
	)
	return &PlaceOrderResult{
		Order:           created,
		InventoryBefore: product.InventoryCount,
		InventoryAfter:  remaining,
	}, nil
}

// publishUnreserved is best effort. The caller's deadline may already be spent, so
// the publish runs on a context detached from its cancellation.
func (uc *PlaceOrderUseCase) publishUnreserved(ctx context.Context, run *application.Run, evt domorder.InventoryUnreservedEvent) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	start := time.Now()
	outcome := "success"
	if err := uc.publisher.Publish(pubCtx, evt); err != nil {
		outcome = "error"
		run.Span().RecordError(err)
		run.Log.Warn("event_publish_failed",
			observability.F("event", evt.EventName()),
			observability.F("order_id", evt.OrderID),
			observability.Err(err),
		)
		run.With(observability.F("event_publish_error", err.Error()))
	}
	uc.in.ObserveExternal(publishPeer, evt.EventName(), outcome, start)
}

func withCallTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
