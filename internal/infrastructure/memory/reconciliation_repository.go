package memory

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"
)

type ReconciliationRepository struct {
	mu      sync.RWMutex
	records map[int64]*reconciliation.Record
}

func NewReconciliationRepository() *ReconciliationRepository {
	return &ReconciliationRepository{records: make(map[int64]*reconciliation.Record)}
}

func (r *ReconciliationRepository) Save(ctx context.Context, rec *reconciliation.Record) (bool, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.OrderID]; exists {
		return false, nil
	}
	r.records[rec.OrderID] = cloneRecord(rec)
	return true, nil
}

func (r *ReconciliationRepository) Get(ctx context.Context, orderID int64) (*reconciliation.Record, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[orderID]
	if !ok {
		return nil, reconciliation.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// List returns pending records first, each group oldest first.
func (r *ReconciliationRepository) List(ctx context.Context) ([]*reconciliation.Record, error) {
	_ = ctx

	r.mu.RLock()
	out := make([]*reconciliation.Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, cloneRecord(rec))
	}
	r.mu.RUnlock()

	reconciliation.Sort(out)
	return out, nil
}

func (r *ReconciliationRepository) Update(ctx context.Context, rec *reconciliation.Record) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.OrderID]; !ok {
		return reconciliation.ErrNotFound
	}
	r.records[rec.OrderID] = cloneRecord(rec)
	return nil
}

func cloneRecord(rec *reconciliation.Record) *reconciliation.Record {
	c := *rec
	if rec.ResolvedAt != nil {
		t := *rec.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}
