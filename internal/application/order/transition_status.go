package order

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

const useCaseTransition = "order.transition_status"

type TransitionStatusInput struct {
	OrderID int64  `json:"orderId" validate:"gt=0"`
	Status  string `json:"status" validate:"required"`
}

type TransitionStatusResult struct {
	Order    *domorder.Order
	Status   domorder.Status
	Terminal bool
}

// TransitionStatusUseCase applies administrator-directed status overrides. Any of
// the recognised statuses may be set from any other; only unknown values are
// refused. Nothing is cached locally when the order service fails.
type TransitionStatusUseCase struct {
	orders      ports.OrderGateway
	callTimeout time.Duration
	in          application.Instruments
}

func NewTransitionStatusUseCase(orders ports.OrderGateway, callTimeout time.Duration, tel observability.Observability) *TransitionStatusUseCase {
	return &TransitionStatusUseCase{
		orders:      orders,
		callTimeout: callTimeout,
		in:          application.NewInstruments(tel, orderService),
	}
}

func (uc *TransitionStatusUseCase) Execute(ctx context.Context, cmd TransitionStatusInput) (_ *TransitionStatusResult, err error) {
	ctx, logger := logctx.Enrich(ctx, uc.in.Log,
		observability.F("use_case", useCaseTransition),
		observability.F("order_id", cmd.OrderID),
		observability.F("target_status", cmd.Status),
	)
	ctx, run := uc.in.Begin(ctx, useCaseTransition, "TransitionStatus", logger,
		attribute.Int64("order.id", cmd.OrderID),
	)
	defer func() { run.Done(ctx, err) }()

	if verr := application.Validate(useCaseTransition, cmd); verr != nil {
		run.Fail("VALIDATION_FAILED")
		return nil, verr
	}
	status, perr := domorder.ParseStatus(cmd.Status)
	if perr != nil {
		run.Fail("UNKNOWN_STATUS")
		return nil, application.NewError(application.KindValidation, useCaseTransition, perr)
	}

	callCtx, cancel := withCallTimeout(ctx, uc.callTimeout)
	updated, serr := uc.orders.SetStatus(callCtx, cmd.OrderID, status)
	cancel()
	if serr != nil {
		run.Fail("STATUS_PERSIST_FAILED")
		return nil, application.FromGateway(useCaseTransition, serr)
	}

	run.With(
		observability.F("status_applied", string(status)),
		observability.F("terminal", status.IsTerminal()),
	)
	run.Span().SetAttributes(attribute.String("order.status", string(status)))
	return &TransitionStatusResult{
		Order:    updated,
		Status:   status,
		Terminal: status.IsTerminal(),
	}, nil
}
