package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, GatewayModeHTTP, cfg.Gateways.Mode)
	assert.Equal(t, "http://localhost:8080/ead/api/users", cfg.Gateways.UsersBaseURL)
	assert.Equal(t, "http://localhost:8081/ead/api/products", cfg.Gateways.ProductsBaseURL)
	assert.Equal(t, "http://localhost:8082/ead/api/orders", cfg.Gateways.OrdersBaseURL)
	assert.Equal(t, 5*time.Second, cfg.Gateways.CallTimeout)
	assert.Equal(t, 5, cfg.Gateways.BreakerMaxFailures)
	assert.Equal(t, StoreMemory, cfg.Reconciliation.Store)
	assert.Equal(t, ":8090", cfg.HTTP.Addr)
	assert.True(t, cfg.App.IsDev())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_GATEWAY_MODE", "MEMORY")
	t.Setenv("STOREFRONT_GATEWAY_CALL_TIMEOUT", "750ms")
	t.Setenv("STOREFRONT_RECONCILIATION_STORE", "redis")
	t.Setenv("STOREFRONT_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("STOREFRONT_APP_ENV", "prod")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, GatewayModeMemory, cfg.Gateways.Mode)
	assert.Equal(t, 750*time.Millisecond, cfg.Gateways.CallTimeout)
	assert.Equal(t, StoreRedis, cfg.Reconciliation.Store)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.False(t, cfg.App.IsDev())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown mode":      {"STOREFRONT_GATEWAY_MODE", "grpc"},
		"bad base url":      {"STOREFRONT_ORDERS_BASE_URL", "orders:8082"},
		"unknown store":     {"STOREFRONT_RECONCILIATION_STORE", "postgres"},
		"zero max failures": {"STOREFRONT_BREAKER_MAX_FAILURES", "0"},
		"bad duration":      {"STOREFRONT_GATEWAY_CALL_TIMEOUT", "soon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMemoryModeSkipsURLChecks(t *testing.T) {
	t.Setenv("STOREFRONT_GATEWAY_MODE", "memory")
	t.Setenv("STOREFRONT_USERS_BASE_URL", "not a url")

	_, err := Load()
	assert.NoError(t, err)
}
