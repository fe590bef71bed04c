package aggregation

import (
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

const (
	Placeholder    = "N/A"
	UnknownProduct = "Unknown Product"
	NoItems        = "No items"
)

// EnrichedOrderLine is one (order, item) row joined with its customer and
// product. HasItem is false for the single row emitted for an empty order.
type EnrichedOrderLine struct {
	OrderID       int64
	OrderNumber   string
	UserID        int64
	CustomerName  string
	CustomerEmail string

	HasItem      bool
	ProductID    int64
	ProductName  string
	ProductImage string
	Quantity     int
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal

	Status     domorder.Status
	OrderTotal decimal.Decimal
	CreatedAt  time.Time
}

// Join emits one line per (order, item) in the order the collections were
// fetched. Missing users and products become placeholders.
func Join(orders []domorder.Order, users []identity.UserProfile, products []catalog.Product) []EnrichedOrderLine {
	usersByID := make(map[int64]identity.UserProfile, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	productsByID := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	lines := make([]EnrichedOrderLine, 0, len(orders))
	for _, o := range orders {
		base := EnrichedOrderLine{
			OrderID:     o.ID,
			OrderNumber: o.Number,
			UserID:      o.UserID,
			Status:      o.Status,
			OrderTotal:  o.Total,
			CreatedAt:   o.CreatedAt,
		}
		u, ok := usersByID[o.UserID]
		base.CustomerName, base.CustomerEmail = customer(u, ok)

		if len(o.Items) == 0 {
			line := base
			line.ProductName = NoItems
			line.UnitPrice = decimal.Zero
			line.LineTotal = decimal.Zero
			lines = append(lines, line)
			continue
		}

		for _, it := range o.Items {
			line := base
			line.HasItem = true
			line.ProductID = it.ProductID
			line.Quantity = it.Quantity
			line.UnitPrice = it.UnitPrice
			line.LineTotal = it.Subtotal()
			if p, ok := productsByID[it.ProductID]; ok {
				line.ProductName = p.Name
				line.ProductImage = p.Image
			} else {
				line.ProductName = UnknownProduct
			}
			lines = append(lines, line)
		}
	}
	return lines
}

func customer(u identity.UserProfile, found bool) (name, email string) {
	if !found {
		return Placeholder, Placeholder
	}
	first := u.FirstName
	if first == "" {
		first = Placeholder
	}
	name = strings.TrimSpace(first + " " + u.LastName)
	email = u.Email
	if email == "" {
		email = Placeholder
	}
	return name, email
}
