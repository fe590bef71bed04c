package zaplogger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
)

func TestLoggerCarriesFixedAndBoundFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core), observability.F("service", "storefront"))

	l.With(observability.F("order_id", int64(12))).Info("use_case_done",
		observability.F("outcome", "success"),
		observability.F("cause", errors.New("boom")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "use_case_done", entries[0].Message)
	assert.Equal(t, "storefront", ctx["service"])
	assert.Equal(t, int64(12), ctx["order_id"])
	assert.Equal(t, "success", ctx["outcome"])
	assert.Equal(t, "boom", ctx["cause"])
}
