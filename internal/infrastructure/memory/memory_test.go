package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderGatewayCreateAssignsServerFields(t *testing.T) {
	ctx := context.Background()
	g := NewOrderGateway()

	item, err := domorder.NewItem(3, 2, decimal.NewFromInt(10))
	require.NoError(t, err)
	draft, err := domorder.NewDraft(9, item)
	require.NoError(t, err)

	first, err := g.CreateOrder(ctx, draft)
	require.NoError(t, err)
	second, err := g.CreateOrder(ctx, draft)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.NotEmpty(t, first.Number)
	assert.NotEqual(t, first.Number, second.Number)
	assert.Equal(t, domorder.StatusPlaced, first.Status)
	assert.True(t, first.Total.Equal(decimal.NewFromInt(20)))
	assert.False(t, first.CreatedAt.IsZero())
}

func TestOrderGatewayRejectsMalformedDraft(t *testing.T) {
	g := NewOrderGateway()
	_, err := g.CreateOrder(context.Background(), domorder.Draft{UserID: 1})
	assert.ErrorIs(t, err, domorder.ErrRejected)
}

func TestOrderGatewayListsAndFilters(t *testing.T) {
	ctx := context.Background()
	g := NewOrderGateway()
	g.Put(domorder.Order{ID: 5, UserID: 2, Status: domorder.StatusShipped})
	g.Put(domorder.Order{ID: 3, UserID: 1, Status: domorder.StatusPlaced})

	all, err := g.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(3), all[0].ID)

	mine, err := g.ListOrdersForUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(5), mine[0].ID)

	none, err := g.ListOrdersForUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderGatewaySetStatus(t *testing.T) {
	ctx := context.Background()
	g := NewOrderGateway()
	g.Put(domorder.Order{ID: 1, UserID: 1, Status: domorder.StatusDelivered})

	updated, err := g.SetStatus(ctx, 1, domorder.StatusPlaced)
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusPlaced, updated.Status)

	_, err = g.SetStatus(ctx, 2, domorder.StatusPlaced)
	assert.ErrorIs(t, err, domorder.ErrNotFound)

	_, err = g.SetStatus(ctx, 1, domorder.Status("LOST"))
	assert.ErrorIs(t, err, domorder.ErrUnknownStatus)
}

func TestCatalogGatewaySetInventoryCount(t *testing.T) {
	ctx := context.Background()
	g := NewCatalogGateway(catalog.Product{ID: 7, InventoryCount: 1, Available: true})

	require.NoError(t, g.SetInventoryCount(ctx, 7, 0))
	p, err := g.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, p.InventoryCount)
	assert.False(t, p.Available)

	assert.ErrorIs(t, g.SetInventoryCount(ctx, 8, 1), catalog.ErrNotFound)
	assert.ErrorIs(t, g.SetInventoryCount(ctx, 7, -1), catalog.ErrInvalidCount)

	_, err = g.GetProduct(ctx, 8)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCatalogGatewayReturnsCopies(t *testing.T) {
	ctx := context.Background()
	g := NewCatalogGateway(catalog.Product{ID: 1, InventoryCount: 4, Available: true})

	p, err := g.GetProduct(ctx, 1)
	require.NoError(t, err)
	p.InventoryCount = 0

	again, err := g.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, again.InventoryCount)
}

func TestIdentityGateway(t *testing.T) {
	ctx := context.Background()
	g := NewIdentityGateway(DemoUsers()...)

	u, err := g.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)

	_, err = g.GetUser(ctx, 42)
	assert.ErrorIs(t, err, identity.ErrNotFound)

	users, err := g.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestGatewaysHonourCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCatalogGateway().GetProduct(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = NewOrderGateway().ListOrders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = NewIdentityGateway().ListUsers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReconciliationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewReconciliationRepository()
	rec := &reconciliation.Record{OrderID: 4, Status: reconciliation.StatusPending, RecordedAt: time.Now().UTC()}

	created, err := repo.Save(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Save(ctx, rec)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.Get(ctx, 4)
	require.NoError(t, err)
	require.NoError(t, got.Resolve("fixed", time.Now()))
	require.NoError(t, repo.Update(ctx, got))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, reconciliation.StatusResolved, list[0].Status)

	_, err = repo.Get(ctx, 5)
	assert.ErrorIs(t, err, reconciliation.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &reconciliation.Record{OrderID: 5}), reconciliation.ErrNotFound)
}
