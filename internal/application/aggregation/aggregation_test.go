package aggregation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingUsers struct{ err error }

func (f failingUsers) GetUser(context.Context, int64) (*identity.UserProfile, error) {
	return nil, f.err
}

func (f failingUsers) ListUsers(context.Context) ([]identity.UserProfile, error) {
	return nil, f.err
}

func TestJoinSingleItemOrder(t *testing.T) {
	orders := []domorder.Order{{
		ID:     1,
		UserID: 9,
		Items:  []domorder.Item{{ProductID: 3, Quantity: 2, UnitPrice: decimal.NewFromInt(10)}},
		Total:  decimal.NewFromInt(20),
		Status: domorder.StatusPlaced,
	}}
	users := []identity.UserProfile{{ID: 9, FirstName: "A", LastName: "B"}}
	products := []catalog.Product{{ID: 3, Name: "Shoe"}}

	lines := Join(orders, users, products)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "A B", line.CustomerName)
	assert.Equal(t, "Shoe", line.ProductName)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.True(t, line.LineTotal.Equal(decimal.NewFromInt(20)))
	assert.True(t, line.HasItem)
}

func TestJoinZeroItemOrderYieldsOnePlaceholderLine(t *testing.T) {
	orders := []domorder.Order{{ID: 2, UserID: 9, Total: decimal.NewFromInt(0), Status: domorder.StatusCancelled}}
	users := []identity.UserProfile{{ID: 9, FirstName: "A", LastName: "B", Email: "a@b.c"}}

	lines := Join(orders, users, nil)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.False(t, line.HasItem)
	assert.Equal(t, NoItems, line.ProductName)
	assert.Equal(t, int64(0), line.ProductID)
	assert.Equal(t, 0, line.Quantity)
	assert.True(t, line.UnitPrice.IsZero())
	assert.Equal(t, domorder.StatusCancelled, line.Status)
	assert.True(t, line.OrderTotal.IsZero())
	assert.Equal(t, "a@b.c", line.CustomerEmail)
}

func TestJoinMissingUserAndProductUsePlaceholders(t *testing.T) {
	orders := []domorder.Order{{
		ID:     3,
		UserID: 404,
		Items:  []domorder.Item{{ProductID: 77, Quantity: 1, UnitPrice: decimal.NewFromInt(5)}},
	}}

	lines := Join(orders, nil, nil)
	require.Len(t, lines, 1)
	assert.Equal(t, Placeholder, lines[0].CustomerName)
	assert.Equal(t, Placeholder, lines[0].CustomerEmail)
	assert.Equal(t, UnknownProduct, lines[0].ProductName)
	assert.Empty(t, lines[0].ProductImage)
}

func TestJoinPartialProfiles(t *testing.T) {
	orders := []domorder.Order{{ID: 1, UserID: 1}, {ID: 2, UserID: 2}}
	users := []identity.UserProfile{
		{ID: 1, LastName: "Hopper"},
		{ID: 2, FirstName: "Ada"},
	}

	lines := Join(orders, users, nil)
	require.Len(t, lines, 2)
	assert.Equal(t, "N/A Hopper", lines[0].CustomerName)
	assert.Equal(t, Placeholder, lines[0].CustomerEmail)
	assert.Equal(t, "Ada", lines[1].CustomerName)
}

func TestJoinKeepsFetchOrderAndExpandsItems(t *testing.T) {
	orders := []domorder.Order{
		{ID: 9, UserID: 1, Items: []domorder.Item{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 3}}},
		{ID: 4, UserID: 1},
	}

	lines := Join(orders, nil, nil)
	require.Len(t, lines, 3)
	assert.Equal(t, []int64{9, 9, 4}, []int64{lines[0].OrderID, lines[1].OrderID, lines[2].OrderID})
	assert.Equal(t, int64(2), lines[1].ProductID)
}

func seededGateways() (*memory.OrderGateway, *memory.IdentityGateway, *memory.CatalogGateway) {
	orders := memory.NewOrderGateway()
	orders.Put(domorder.Order{
		ID:        1,
		Number:    "n-1",
		UserID:    9,
		Items:     []domorder.Item{{ProductID: 3, Quantity: 2, UnitPrice: decimal.NewFromInt(10)}},
		Total:     decimal.NewFromInt(20),
		Status:    domorder.StatusPlaced,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	orders.Put(domorder.Order{ID: 2, UserID: 10, Status: domorder.StatusPlaced})
	users := memory.NewIdentityGateway(identity.UserProfile{ID: 9, FirstName: "A", LastName: "B"})
	products := memory.NewCatalogGateway(catalog.Product{ID: 3, Name: "Shoe"})
	return orders, users, products
}

func TestAggregateOrdersUseCase(t *testing.T) {
	orders, users, products := seededGateways()
	uc := NewAggregateOrdersUseCase(orders, users, products, time.Second, nil)

	lines, err := uc.Execute(context.Background(), AggregateOrdersInput{})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "A B", lines[0].CustomerName)
	assert.Equal(t, "Shoe", lines[0].ProductName)
	assert.Equal(t, Placeholder, lines[1].CustomerName)
	assert.Equal(t, NoItems, lines[1].ProductName)
}

func TestAggregateOrdersFailsWholeCallOnAnyFetchError(t *testing.T) {
	orders, _, products := seededGateways()
	uc := NewAggregateOrdersUseCase(orders, failingUsers{err: errors.New("identity: 502")}, products, time.Second, nil)

	lines, err := uc.Execute(context.Background(), AggregateOrdersInput{})
	require.Error(t, err)
	assert.Nil(t, lines)
	assert.Equal(t, application.KindGatewayUnavailable, application.KindOf(err))
}

func TestOrdersForUser(t *testing.T) {
	orders, _, _ := seededGateways()
	uc := NewOrdersForUserUseCase(orders, time.Second, nil)

	got, err := uc.Execute(context.Background(), OrdersForUserInput{UserID: 9})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n-1", got[0].Number)

	none, err := uc.Execute(context.Background(), OrdersForUserInput{UserID: 11})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = uc.Execute(context.Background(), OrdersForUserInput{})
	assert.Equal(t, application.KindValidation, application.KindOf(err))
}
