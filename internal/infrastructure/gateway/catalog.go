package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application/ports"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
)

// CatalogClient talks to the products resource of the catalog service.
type CatalogClient struct {
	c *Client
}

var _ ports.InventoryGateway = (*CatalogClient)(nil)

func NewCatalogClient(c *Client) *CatalogClient {
	return &CatalogClient{c: c}
}

func (g *CatalogClient) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	var dto productDTO
	err := g.c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/" + strconv.FormatInt(id, 10),
		endpoint: "get_product",
		out:      &dto,
		notFound: catalog.ErrNotFound,
	})
	if err != nil {
		return nil, err
	}
	p := dto.toDomain()
	return &p, nil
}

func (g *CatalogClient) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var dtos []productDTO
	err := g.c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "list_products",
		out:      &dtos,
	})
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// SetInventoryCount writes an absolute count. The catalog does not check the
// prior value.
func (g *CatalogClient) SetInventoryCount(ctx context.Context, id int64, count int) error {
	return g.c.do(ctx, call{
		method:   http.MethodPatch,
		path:     "/" + strconv.FormatInt(id, 10),
		endpoint: "set_inventory",
		body:     inventoryPatch{InventoryCount: count},
		notFound: catalog.ErrNotFound,
		rejected: catalog.ErrInvalidCount,
	})
}
