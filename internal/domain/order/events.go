package order

import "time"

// InventoryUnreservedEvent is emitted when an order was created but the stock
// decrement that should follow it failed or timed out.
type InventoryUnreservedEvent struct {
	OrderID           int64
	OrderNumber       string
	UserID            int64
	ProductID         int64
	Quantity          int
	ExpectedInventory int
	TargetInventory   int
	Cause             string
	OccurredAt        time.Time
}

func (InventoryUnreservedEvent) EventName() string { return "order.inventory_unreserved" }

func NewInventoryUnreservedEvent(o *Order, productID int64, quantity, expected int, cause error) InventoryUnreservedEvent {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	return InventoryUnreservedEvent{
		OrderID:           o.ID,
		OrderNumber:       o.Number,
		UserID:            o.UserID,
		ProductID:         productID,
		Quantity:          quantity,
		ExpectedInventory: expected,
		TargetInventory:   expected - quantity,
		Cause:             reason,
		OccurredAt:        time.Now().UTC(),
	}
}
