package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failFn() error { return errBoom }
func okFn() error   { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, failFn), errBoom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, failFn), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failFn))
	require.NoError(t, cb.Execute(ctx, okFn))
	require.Error(t, cb.Execute(ctx, failFn))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Second)
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failFn))
	require.Equal(t, StateOpen, cb.State())

	now = now.Add(2 * time.Second)
	require.Error(t, cb.Execute(ctx, failFn))
	assert.Equal(t, StateOpen, cb.State(), "failed probe reopens")

	now = now.Add(2 * time.Second)
	require.NoError(t, cb.Execute(ctx, okFn))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerAllowsSingleProbe(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Second)
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failFn))
	now = now.Add(2 * time.Second)

	err := cb.Execute(ctx, func() error {
		assert.ErrorIs(t, cb.Execute(ctx, okFn), ErrCircuitOpen)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewCircuitBreaker(1, time.Second).Execute(ctx, okFn), context.Canceled)
}
