package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
)

// CatalogGateway stands in for the catalog service. SetInventoryCount follows the
// service rule: a count of zero marks the product unavailable.
type CatalogGateway struct {
	mu       sync.RWMutex
	products map[int64]*catalog.Product
}

func NewCatalogGateway(seed ...catalog.Product) *CatalogGateway {
	g := &CatalogGateway{products: make(map[int64]*catalog.Product)}
	for _, p := range seed {
		g.Put(p)
	}
	return g
}

func (g *CatalogGateway) Put(p catalog.Product) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.products[p.ID] = &p
}

func (g *CatalogGateway) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	p, ok := g.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (g *CatalogGateway) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]catalog.Product, 0, len(g.products))
	for _, p := range g.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *CatalogGateway) SetInventoryCount(ctx context.Context, id int64, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if count < 0 {
		return catalog.ErrInvalidCount
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.products[id]
	if !ok {
		return catalog.ErrNotFound
	}
	p.ApplyCount(count)
	return nil
}
