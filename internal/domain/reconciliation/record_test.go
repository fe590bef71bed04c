package reconciliation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOnce(t *testing.T) {
	r := &Record{OrderID: 1, Status: StatusPending}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Resolve("restocked manually", at))
	assert.Equal(t, StatusResolved, r.Status)
	assert.Equal(t, "restocked manually", r.Note)
	require.NotNil(t, r.ResolvedAt)
	assert.True(t, r.ResolvedAt.Equal(at))

	assert.ErrorIs(t, r.Resolve("again", at), ErrAlreadyResolved)
}

func TestSortPendingFirstOldestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []*Record{
		{OrderID: 1, Status: StatusResolved, RecordedAt: base},
		{OrderID: 2, Status: StatusPending, RecordedAt: base.Add(time.Minute)},
		{OrderID: 3, Status: StatusPending, RecordedAt: base},
	}

	Sort(records)

	ids := []int64{records[0].OrderID, records[1].OrderID, records[2].OrderID}
	assert.Equal(t, []int64{3, 2, 1}, ids)
}
