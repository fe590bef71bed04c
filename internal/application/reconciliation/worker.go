package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	domrecon "github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const (
	workerService      = "reconciliation-worker"
	useCaseRecordEvent = "reconciliation.worker.inventory_unreserved"
)

// Worker turns inventory_unreserved events into pending reconciliation records.
type Worker struct {
	repo       domrecon.Repository
	subscriber domoutbox.Subscriber
	store      string
	now        func() time.Time

	in       application.Instruments
	recorded observability.Counter // reconciliation_records_total{store}
}

// NewWorker wires the repository; store labels the records counter.
func NewWorker(repo domrecon.Repository, subscriber domoutbox.Subscriber, store string, tel observability.Observability) *Worker {
	return &Worker{
		repo:       repo,
		subscriber: subscriber,
		store:      store,
		now:        time.Now,
		in:         application.NewInstruments(tel, workerService),
		recorded:   observability.Resolve(tel).Metrics().Counter(observability.MReconciliationRecorded),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.repo == nil {
		return
	}
	w.subscriber.Subscribe(domorder.InventoryUnreservedEvent{}.EventName(), w.HandleInventoryUnreserved)
}

func (w *Worker) HandleInventoryUnreserved(ctx context.Context, e domoutbox.Event) (err error) {
	evt, ok := e.(domorder.InventoryUnreservedEvent)
	if !ok {
		w.in.Requests.Add(1,
			observability.L("use_case", useCaseRecordEvent),
			observability.L("outcome", "ignored"),
		)
		return nil
	}

	ctx, logger := logctx.Enrich(ctx, w.in.Log,
		observability.F("use_case", useCaseRecordEvent),
		observability.F("event", e.EventName()),
		observability.F("order_id", evt.OrderID),
		observability.F("product_id", evt.ProductID),
	)
	ctx, run := w.in.Begin(ctx, useCaseRecordEvent, "InventoryUnreserved", logger,
		attribute.String("event", e.EventName()),
		attribute.Int64("order.id", evt.OrderID),
	)
	defer func() { run.Done(ctx, err) }()

	rec := &domrecon.Record{
		OrderID:           evt.OrderID,
		OrderNumber:       evt.OrderNumber,
		UserID:            evt.UserID,
		ProductID:         evt.ProductID,
		Quantity:          evt.Quantity,
		ExpectedInventory: evt.ExpectedInventory,
		TargetInventory:   evt.TargetInventory,
		Cause:             evt.Cause,
		Status:            domrecon.StatusPending,
		RecordedAt:        evt.OccurredAt,
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = w.now().UTC()
	}

	created, serr := w.repo.Save(ctx, rec)
	if serr != nil {
		run.Fail("RECORD_SAVE_FAILED")
		return fmt.Errorf("worker: save reconciliation record: %w", serr)
	}
	if !created {
		run.Status = "DUPLICATE_EVENT"
		return nil
	}

	w.recorded.Add(1, observability.L("store", w.store))
	logger.Warn("reconciliation_pending",
		observability.F("order_number", evt.OrderNumber),
		observability.F("target_inventory", evt.TargetInventory),
		observability.F("cause", evt.Cause),
	)
	return nil
}
