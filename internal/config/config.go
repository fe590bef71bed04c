// Package config loads storefront settings from STOREFRONT_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	GatewayModeHTTP   = "http"
	GatewayModeMemory = "memory"

	StoreMemory = "memory"
	StoreRedis  = "redis"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App            AppConfig
	HTTP           HTTPConfig
	Gateways       GatewaysConfig
	Outbox         OutboxConfig
	Reconciliation ReconciliationConfig
	Redis          RedisConfig
}

// Load reads the environment and validates cross-field constraints.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env         string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	ServiceName string `envconfig:"STOREFRONT_SERVICE_NAME" default:"minishop-storefront"`
	LogLevel    string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFile     string `envconfig:"STOREFRONT_LOG_FILE"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type HTTPConfig struct {
	Addr            string        `envconfig:"STOREFRONT_HTTP_ADDR" default:":8090"`
	ReadTimeout     time.Duration `envconfig:"STOREFRONT_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"STOREFRONT_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type GatewaysConfig struct {
	Mode                string        `envconfig:"STOREFRONT_GATEWAY_MODE" default:"http"`
	UsersBaseURL        string        `envconfig:"STOREFRONT_USERS_BASE_URL" default:"http://localhost:8080/ead/api/users"`
	ProductsBaseURL     string        `envconfig:"STOREFRONT_PRODUCTS_BASE_URL" default:"http://localhost:8081/ead/api/products"`
	OrdersBaseURL       string        `envconfig:"STOREFRONT_ORDERS_BASE_URL" default:"http://localhost:8082/ead/api/orders"`
	CallTimeout         time.Duration `envconfig:"STOREFRONT_GATEWAY_CALL_TIMEOUT" default:"5s"`
	BreakerMaxFailures  int           `envconfig:"STOREFRONT_BREAKER_MAX_FAILURES" default:"5"`
	BreakerResetTimeout time.Duration `envconfig:"STOREFRONT_BREAKER_RESET_TIMEOUT" default:"30s"`
}

type OutboxConfig struct {
	QueueSize      int           `envconfig:"STOREFRONT_OUTBOX_QUEUE_SIZE" default:"1024"`
	Concurrency    int           `envconfig:"STOREFRONT_OUTBOX_CONCURRENCY" default:"8"`
	HandlerTimeout time.Duration `envconfig:"STOREFRONT_OUTBOX_HANDLER_TIMEOUT" default:"30s"`
}

type ReconciliationConfig struct {
	Store string `envconfig:"STOREFRONT_RECONCILIATION_STORE" default:"memory"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"STOREFRONT_REDIS_KEY_PREFIX" default:"storefront"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Gateways.Mode) {
	case GatewayModeHTTP:
		for name, raw := range map[string]string{
			"STOREFRONT_USERS_BASE_URL":    c.Gateways.UsersBaseURL,
			"STOREFRONT_PRODUCTS_BASE_URL": c.Gateways.ProductsBaseURL,
			"STOREFRONT_ORDERS_BASE_URL":   c.Gateways.OrdersBaseURL,
		} {
			if err := checkURL(raw); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	case GatewayModeMemory:
	default:
		return fmt.Errorf("STOREFRONT_GATEWAY_MODE: unsupported value %q", c.Gateways.Mode)
	}
	c.Gateways.Mode = strings.ToLower(c.Gateways.Mode)

	if c.Gateways.CallTimeout < 0 {
		return fmt.Errorf("STOREFRONT_GATEWAY_CALL_TIMEOUT must not be negative")
	}
	if c.Gateways.BreakerMaxFailures < 1 {
		return fmt.Errorf("STOREFRONT_BREAKER_MAX_FAILURES must be at least 1")
	}

	switch strings.ToLower(c.Reconciliation.Store) {
	case StoreMemory:
	case StoreRedis:
		if strings.TrimSpace(c.Redis.URL) == "" {
			return fmt.Errorf("STOREFRONT_REDIS_URL is required when the reconciliation store is redis")
		}
	default:
		return fmt.Errorf("STOREFRONT_RECONCILIATION_STORE: unsupported value %q", c.Reconciliation.Store)
	}
	c.Reconciliation.Store = strings.ToLower(c.Reconciliation.Store)
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
