package reconciliation

import (
	"context"
	"errors"
	"sort"
	"time"
)

var (
	ErrNotFound        = errors.New("reconciliation: record not found")
	ErrAlreadyResolved = errors.New("reconciliation: record already resolved")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusResolved Status = "RESOLVED"
)

// Record tracks an order whose stock decrement never landed. Catalog inventory
// for ProductID is expected to be TargetInventory once an operator fixes it.
type Record struct {
	OrderID           int64
	OrderNumber       string
	UserID            int64
	ProductID         int64
	Quantity          int
	ExpectedInventory int
	TargetInventory   int
	Cause             string
	Status            Status
	RecordedAt        time.Time
	ResolvedAt        *time.Time
	Note              string
}

// Resolve marks the record done at the given time.
func (r *Record) Resolve(note string, at time.Time) error {
	if r.Status == StatusResolved {
		return ErrAlreadyResolved
	}
	r.Status = StatusResolved
	r.Note = note
	t := at.UTC()
	r.ResolvedAt = &t
	return nil
}

// Repository stores records keyed by OrderID. Save is insert-if-absent so a
// redelivered event does not reset a resolved record.
type Repository interface {
	Save(ctx context.Context, r *Record) (created bool, err error)
	Get(ctx context.Context, orderID int64) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Update(ctx context.Context, r *Record) error
}

// Sort orders records pending first, then by RecordedAt, then by OrderID.
func Sort(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if (a.Status == StatusPending) != (b.Status == StatusPending) {
			return a.Status == StatusPending
		}
		if !a.RecordedAt.Equal(b.RecordedAt) {
			return a.RecordedAt.Before(b.RecordedAt)
		}
		return a.OrderID < b.OrderID
	})
}
