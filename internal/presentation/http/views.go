package httppresentation

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application/aggregation"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domrecon "github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"

	"github.com/shopspring/decimal"
)

// money renders at least two decimal places and never rounds.
func money(d decimal.Decimal) json.Number {
	if !d.Round(2).Equal(d) {
		return json.Number(d.String())
	}
	return json.Number(d.StringFixed(2))
}

type itemView struct {
	ProductID int64       `json:"productId"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
	Subtotal  json.Number `json:"subtotal"`
}

type orderView struct {
	ID          int64       `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	UserID      int64       `json:"userId"`
	Status      string      `json:"status"`
	Total       json.Number `json:"total"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	Items       []itemView  `json:"items"`
}

func newOrderView(o *domorder.Order) orderView {
	v := orderView{
		ID:          o.ID,
		OrderNumber: o.Number,
		UserID:      o.UserID,
		Status:      string(o.Status),
		Total:       money(o.Total),
		Items:       make([]itemView, 0, len(o.Items)),
	}
	if !o.CreatedAt.IsZero() {
		t := o.CreatedAt.UTC()
		v.CreatedAt = &t
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, itemView{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     money(it.UnitPrice),
			Subtotal:  money(it.Subtotal()),
		})
	}
	return v
}

type placeOrderView struct {
	Order           orderView `json:"order"`
	InventoryBefore int       `json:"inventoryBefore"`
	InventoryAfter  int       `json:"inventoryAfter"`
}

// lineView renders an enriched line. ProductID is a string so the empty-order
// row can carry the placeholder.
type lineView struct {
	OrderID       int64       `json:"orderId"`
	OrderNumber   string      `json:"orderNumber"`
	UserID        int64       `json:"userId"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	ProductID     string      `json:"productId"`
	ProductName   string      `json:"productName"`
	ProductImage  string      `json:"productImage,omitempty"`
	Quantity      int         `json:"quantity"`
	UnitPrice     json.Number `json:"unitPrice"`
	LineTotal     json.Number `json:"lineTotal"`
	Status        string      `json:"status"`
	OrderTotal    json.Number `json:"orderTotal"`
	CreatedAt     *time.Time  `json:"createdAt,omitempty"`
}

func newLineView(l aggregation.EnrichedOrderLine) lineView {
	v := lineView{
		OrderID:       l.OrderID,
		OrderNumber:   l.OrderNumber,
		UserID:        l.UserID,
		CustomerName:  l.CustomerName,
		CustomerEmail: l.CustomerEmail,
		ProductID:     aggregation.Placeholder,
		ProductName:   l.ProductName,
		ProductImage:  l.ProductImage,
		Status:        string(l.Status),
		UnitPrice:     money(l.UnitPrice),
		LineTotal:     money(l.LineTotal),
		OrderTotal:    money(l.OrderTotal),
	}
	if l.HasItem {
		v.ProductID = strconv.FormatInt(l.ProductID, 10)
		v.Quantity = l.Quantity
	}
	if !l.CreatedAt.IsZero() {
		t := l.CreatedAt.UTC()
		v.CreatedAt = &t
	}
	return v
}

type transitionView struct {
	Order    orderView `json:"order"`
	Status   string    `json:"status"`
	Terminal bool      `json:"terminal"`
}

type recordView struct {
	OrderID           int64      `json:"orderId"`
	OrderNumber       string     `json:"orderNumber"`
	UserID            int64      `json:"userId"`
	ProductID         int64      `json:"productId"`
	Quantity          int        `json:"quantity"`
	ExpectedInventory int        `json:"expectedInventory"`
	TargetInventory   int        `json:"targetInventory"`
	Cause             string     `json:"cause"`
	Status            string     `json:"status"`
	RecordedAt        time.Time  `json:"recordedAt"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
	Note              string     `json:"note,omitempty"`
}

func newRecordView(r *domrecon.Record) recordView {
	return recordView{
		OrderID:           r.OrderID,
		OrderNumber:       r.OrderNumber,
		UserID:            r.UserID,
		ProductID:         r.ProductID,
		Quantity:          r.Quantity,
		ExpectedInventory: r.ExpectedInventory,
		TargetInventory:   r.TargetInventory,
		Cause:             r.Cause,
		Status:            string(r.Status),
		RecordedAt:        r.RecordedAt,
		ResolvedAt:        r.ResolvedAt,
		Note:              r.Note,
	}
}

type errorView struct {
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	Retryable bool       `json:"retryable"`
	Order     *orderView `json:"order,omitempty"`
}
