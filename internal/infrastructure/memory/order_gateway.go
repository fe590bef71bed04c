package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/google/uuid"
)

// OrderGateway stands in for the order service. Ids are sequential, numbers are
// UUIDs and listings come back in creation order.
type OrderGateway struct {
	mu     sync.RWMutex
	orders map[int64]*domorder.Order
	nextID int64
	now    func() time.Time
}

func NewOrderGateway() *OrderGateway {
	return &OrderGateway{
		orders: make(map[int64]*domorder.Order),
		now:    time.Now,
	}
}

func (g *OrderGateway) CreateOrder(ctx context.Context, draft domorder.Draft) (*domorder.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if draft.UserID <= 0 || len(draft.Items) == 0 {
		return nil, domorder.ErrRejected
	}
	for _, it := range draft.Items {
		if _, err := domorder.NewItem(it.ProductID, it.Quantity, it.UnitPrice); err != nil {
			return nil, domorder.ErrRejected
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	o := &domorder.Order{
		ID:        g.nextID,
		Number:    uuid.NewString(),
		UserID:    draft.UserID,
		Items:     append([]domorder.Item(nil), draft.Items...),
		Total:     draft.Total(),
		Status:    domorder.StatusPlaced,
		CreatedAt: g.now().UTC(),
	}
	g.orders[o.ID] = o
	return cloneOrder(o), nil
}

func (g *OrderGateway) ListOrders(ctx context.Context) ([]domorder.Order, error) {
	return g.list(ctx, func(*domorder.Order) bool { return true })
}

func (g *OrderGateway) ListOrdersForUser(ctx context.Context, userID int64) ([]domorder.Order, error) {
	return g.list(ctx, func(o *domorder.Order) bool { return o.UserID == userID })
}

func (g *OrderGateway) SetStatus(ctx context.Context, orderID int64, status domorder.Status) (*domorder.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domorder.ErrUnknownStatus
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	o, ok := g.orders[orderID]
	if !ok {
		return nil, domorder.ErrNotFound
	}
	o.Status = status
	return cloneOrder(o), nil
}

// Put stores o as-is, replacing any order with the same id. Used for seeding.
func (g *OrderGateway) Put(o domorder.Order) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders[o.ID] = cloneOrder(&o)
	if o.ID > g.nextID {
		g.nextID = o.ID
	}
}

func (g *OrderGateway) list(ctx context.Context, keep func(*domorder.Order) bool) ([]domorder.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]domorder.Order, 0, len(g.orders))
	for _, o := range g.orders {
		if keep(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneOrder(o *domorder.Order) *domorder.Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]domorder.Item(nil), o.Items...)
	return &c
}
