package order

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/memory"
)

type countingInventory struct {
	*memory.CatalogGateway
	getCalls atomic.Int32
	setCalls atomic.Int32
	setErr   error
	blockSet bool
}

func (c *countingInventory) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	c.getCalls.Add(1)
	return c.CatalogGateway.GetProduct(ctx, id)
}

func (c *countingInventory) SetInventoryCount(ctx context.Context, id int64, count int) error {
	c.setCalls.Add(1)
	if c.blockSet {
		<-ctx.Done()
		return ctx.Err()
	}
	if c.setErr != nil {
		return c.setErr
	}
	return c.CatalogGateway.SetInventoryCount(ctx, id, count)
}

type countingOrders struct {
	*memory.OrderGateway
	createCalls    atomic.Int32
	setStatusCalls atomic.Int32
	createErr      error
	// lostReply persists the order but reports failure, like a response lost in transit.
	lostReply    error
	setStatusErr error
}

func (c *countingOrders) CreateOrder(ctx context.Context, draft domorder.Draft) (*domorder.Order, error) {
	c.createCalls.Add(1)
	if c.createErr != nil {
		return nil, c.createErr
	}
	o, err := c.OrderGateway.CreateOrder(ctx, draft)
	if err == nil && c.lostReply != nil {
		lost := c.lostReply
		c.lostReply = nil
		return nil, lost
	}
	return o, err
}

func (c *countingOrders) SetStatus(ctx context.Context, orderID int64, status domorder.Status) (*domorder.Order, error) {
	c.setStatusCalls.Add(1)
	if c.setStatusErr != nil {
		return nil, c.setStatusErr
	}
	return c.OrderGateway.SetStatus(ctx, orderID, status)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Events() []domoutbox.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domoutbox.Event(nil), p.events...)
}
