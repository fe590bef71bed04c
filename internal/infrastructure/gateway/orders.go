package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application/ports"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
)

// OrdersClient talks to the orders resource of the order service.
type OrdersClient struct {
	c *Client
}

var _ ports.OrderGateway = (*OrdersClient)(nil)

func NewOrdersClient(c *Client) *OrdersClient {
	return &OrdersClient{c: c}
}

func (g *OrdersClient) CreateOrder(ctx context.Context, draft domorder.Draft) (*domorder.Order, error) {
	var dto orderDTO
	err := g.c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "create_order",
		body:     newCreateOrderDTO(draft),
		out:      &dto,
		rejected: domorder.ErrRejected,
	})
	if err != nil {
		return nil, err
	}
	o := dto.toDomain()
	return &o, nil
}

func (g *OrdersClient) ListOrders(ctx context.Context) ([]domorder.Order, error) {
	return g.list(ctx, "", "list_orders")
}

func (g *OrdersClient) ListOrdersForUser(ctx context.Context, userID int64) ([]domorder.Order, error) {
	return g.list(ctx, "/user/"+strconv.FormatInt(userID, 10), "list_orders_for_user")
}

func (g *OrdersClient) SetStatus(ctx context.Context, orderID int64, status domorder.Status) (*domorder.Order, error) {
	var dto orderDTO
	err := g.c.do(ctx, call{
		method:   http.MethodPatch,
		path:     "/" + strconv.FormatInt(orderID, 10),
		endpoint: "set_status",
		body:     statusPatch{Status: string(status)},
		out:      &dto,
		notFound: domorder.ErrNotFound,
		rejected: domorder.ErrUnknownStatus,
	})
	if err != nil {
		return nil, err
	}
	o := dto.toDomain()
	return &o, nil
}

func (g *OrdersClient) list(ctx context.Context, path, endpoint string) ([]domorder.Order, error) {
	var dtos []orderDTO
	err := g.c.do(ctx, call{
		method:   http.MethodGet,
		path:     path,
		endpoint: endpoint,
		out:      &dtos,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domorder.Order, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}
