package reconciliation

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domrecon "github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const (
	reconciliationService = "reconciliation-service"
	useCaseList           = "reconciliation.list"
	useCaseResolve        = "reconciliation.resolve"
)

type ListInput struct {
	PendingOnly bool
}

type ListUseCase struct {
	repo domrecon.Repository
	in   application.Instruments
}

func NewListUseCase(repo domrecon.Repository, tel observability.Observability) *ListUseCase {
	return &ListUseCase{repo: repo, in: application.NewInstruments(tel, reconciliationService)}
}

// Execute returns pending records first, oldest first within each status.
func (uc *ListUseCase) Execute(ctx context.Context, cmd ListInput) (_ []*domrecon.Record, err error) {
	ctx, logger := logctx.Enrich(ctx, uc.in.Log, observability.F("use_case", useCaseList))
	ctx, run := uc.in.Begin(ctx, useCaseList, "ListReconciliations", logger)
	defer func() { run.Done(ctx, err) }()

	records, lerr := uc.repo.List(ctx)
	if lerr != nil {
		run.Fail("REPO_LIST_FAILED")
		return nil, application.NewError(application.KindInternal, useCaseList, lerr)
	}
	if cmd.PendingOnly {
		pending := records[:0]
		for _, r := range records {
			if r.Status == domrecon.StatusPending {
				pending = append(pending, r)
			}
		}
		records = pending
	}
	domrecon.Sort(records)
	run.With(observability.F("records", len(records)))
	return records, nil
}

type ResolveInput struct {
	OrderID int64  `json:"orderId" validate:"gt=0"`
	Note    string `json:"note" validate:"max=500"`
}

// ResolveUseCase marks a record handled by an operator. It does not touch the
// catalog; the operator is expected to have corrected inventory already.
type ResolveUseCase struct {
	repo domrecon.Repository
	now  func() time.Time
	in   application.Instruments
}

func NewResolveUseCase(repo domrecon.Repository, tel observability.Observability) *ResolveUseCase {
	return &ResolveUseCase{repo: repo, now: time.Now, in: application.NewInstruments(tel, reconciliationService)}
}

func (uc *ResolveUseCase) Execute(ctx context.Context, cmd ResolveInput) (_ *domrecon.Record, err error) {
	ctx, logger := logctx.Enrich(ctx, uc.in.Log,
		observability.F("use_case", useCaseResolve),
		observability.F("order_id", cmd.OrderID),
	)
	ctx, run := uc.in.Begin(ctx, useCaseResolve, "ResolveReconciliation", logger,
		attribute.Int64("order.id", cmd.OrderID),
	)
	defer func() { run.Done(ctx, err) }()

	if verr := application.Validate(useCaseResolve, cmd); verr != nil {
		run.Fail("VALIDATION_FAILED")
		return nil, verr
	}

	rec, gerr := uc.repo.Get(ctx, cmd.OrderID)
	if gerr != nil {
		run.Fail("RECORD_LOAD_FAILED")
		return nil, application.FromGateway(useCaseResolve, gerr)
	}
	if rerr := rec.Resolve(cmd.Note, uc.now()); rerr != nil {
		run.Fail("ALREADY_RESOLVED")
		return nil, application.NewError(application.KindValidation, useCaseResolve, rerr)
	}
	if uerr := uc.repo.Update(ctx, rec); uerr != nil {
		run.Fail("RECORD_UPDATE_FAILED")
		return nil, application.NewError(application.KindInternal, useCaseResolve, uerr)
	}
	return rec, nil
}
