package aggregation

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	"github.com/Zhima-Mochi/minishop-storefront/internal/application/ports"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

type OrdersForUserInput struct {
	UserID int64 `json:"userId" validate:"gt=0"`
}

// OrdersForUserUseCase is the customer listing: one call to the order service,
// which filters by user. No join is performed.
type OrdersForUserUseCase struct {
	orders      ports.OrderGateway
	callTimeout time.Duration
	in          application.Instruments
}

func NewOrdersForUserUseCase(orders ports.OrderGateway, callTimeout time.Duration, tel observability.Observability) *OrdersForUserUseCase {
	return &OrdersForUserUseCase{
		orders:      orders,
		callTimeout: callTimeout,
		in:          application.NewInstruments(tel, aggregationService),
	}
}

func (uc *OrdersForUserUseCase) Execute(ctx context.Context, cmd OrdersForUserInput) (_ []domorder.Order, err error) {
	ctx, logger := logctx.Enrich(ctx, uc.in.Log,
		observability.F("use_case", useCaseListForUser),
		observability.F("user_id", cmd.UserID),
	)
	ctx, run := uc.in.Begin(ctx, useCaseListForUser, "OrdersForUser", logger,
		attribute.Int64("order.user_id", cmd.UserID),
	)
	defer func() { run.Done(ctx, err) }()

	if verr := application.Validate(useCaseListForUser, cmd); verr != nil {
		run.Fail("VALIDATION_FAILED")
		return nil, verr
	}

	callCtx, cancel := withCallTimeout(ctx, uc.callTimeout)
	defer cancel()
	orders, lerr := uc.orders.ListOrdersForUser(callCtx, cmd.UserID)
	if lerr != nil {
		run.Fail("FETCH_FAILED")
		return nil, application.FromGateway(useCaseListForUser, lerr)
	}
	run.With(observability.F("orders", len(orders)))
	return orders, nil
}
