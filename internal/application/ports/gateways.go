// Package ports declares the gateway capabilities the storefront core needs from
// the identity, catalog and order services. Each call is one network round trip.
package ports

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
)

// ErrUnavailable marks transport and 5xx failures.
var ErrUnavailable = errors.New("gateway: peer unavailable")

type IdentityGateway interface {
	GetUser(ctx context.Context, id int64) (*identity.UserProfile, error)
	ListUsers(ctx context.Context) ([]identity.UserProfile, error)
}

// InventoryGateway reads products and writes absolute inventory counts. The write
// is not conditional on the prior value.
type InventoryGateway interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	SetInventoryCount(ctx context.Context, id int64, count int) error
}

type OrderGateway interface {
	CreateOrder(ctx context.Context, draft domorder.Draft) (*domorder.Order, error)
	ListOrders(ctx context.Context) ([]domorder.Order, error)
	ListOrdersForUser(ctx context.Context, userID int64) ([]domorder.Order, error)
	SetStatus(ctx context.Context, orderID int64, status domorder.Status) (*domorder.Order, error)
}
