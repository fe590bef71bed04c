package gateway

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

type userDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (u userDTO) toDomain() identity.UserProfile {
	return identity.UserProfile{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// productDTO accepts both "isAvailable" and "available". When neither is sent,
// availability follows the count.
type productDTO struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	InventoryCount *int            `json:"inventoryCount"`
	IsAvailable    *bool           `json:"isAvailable"`
	Available      *bool           `json:"available"`
	Image          string          `json:"image"`
}

func (p productDTO) toDomain() catalog.Product {
	out := catalog.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
	}
	if p.InventoryCount != nil {
		out.InventoryCount = *p.InventoryCount
	}
	switch {
	case p.IsAvailable != nil:
		out.Available = *p.IsAvailable
	case p.Available != nil:
		out.Available = *p.Available
	default:
		out.Available = out.InventoryCount > 0
	}
	return out
}

type inventoryPatch struct {
	InventoryCount int `json:"inventoryCount"`
}

type statusPatch struct {
	Status string `json:"status"`
}

// Prices go out as exact JSON numbers rather than float64.
type createItemDTO struct {
	ProductID int64       `json:"productId"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
}

type createOrderDTO struct {
	UserID int64           `json:"userId"`
	Items  []createItemDTO `json:"items"`
}

func newCreateOrderDTO(d domorder.Draft) createOrderDTO {
	items := make([]createItemDTO, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, createItemDTO{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     json.Number(it.UnitPrice.String()),
		})
	}
	return createOrderDTO{UserID: d.UserID, Items: items}
}

type orderItemDTO struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// orderDTO reads items from "orderItems", falling back to "items".
type orderDTO struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	UserID      int64           `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt"`
	OrderItems  []orderItemDTO  `json:"orderItems"`
	Items       []orderItemDTO  `json:"items"`
}

func (o orderDTO) toDomain() domorder.Order {
	src := o.OrderItems
	if len(src) == 0 {
		src = o.Items
	}
	items := make([]domorder.Item, 0, len(src))
	for _, it := range src {
		items = append(items, domorder.Item{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.Price})
	}
	status, err := domorder.ParseStatus(o.Status)
	if err != nil {
		status = domorder.Status(strings.ToUpper(strings.TrimSpace(o.Status)))
	}
	return domorder.Order{
		ID:        o.ID,
		Number:    o.OrderNumber,
		UserID:    o.UserID,
		Items:     items,
		Total:     o.TotalAmount,
		Status:    status,
		CreatedAt: parseTimestamp(o.CreatedAt),
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp reads zoned or zone-less ISO timestamps; zone-less values are UTC.
func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
