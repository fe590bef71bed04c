package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("order: unit price must be zero or greater")
	ErrInvalidProduct  = errors.New("order: product id is required")
	ErrInvalidUser     = errors.New("order: user id is required")
	ErrUnknownStatus   = errors.New("order: unknown status")
	// ErrRejected is returned when the order service refuses a request as malformed.
	ErrRejected = errors.New("order: request rejected by order service")
)

// Item is one purchased product line. UnitPrice is captured when the order is placed
// and never follows later catalog price changes.
type Item struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

func NewItem(productID int64, quantity int, unitPrice decimal.Decimal) (Item, error) {
	if productID <= 0 {
		return Item{}, ErrInvalidProduct
	}
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Item{}, ErrInvalidPrice
	}
	return Item{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice}, nil
}

// Subtotal is UnitPrice × Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the order service's record. Number is the opaque display identifier the
// order service assigns; Total is fixed at creation.
type Order struct {
	ID        int64
	Number    string
	UserID    int64
	Items     []Item
	Total     decimal.Decimal
	Status    Status
	CreatedAt time.Time
}

// Total sums the captured subtotals of items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Draft is the creation request sent to the order service.
type Draft struct {
	UserID int64
	Items  []Item
}

func NewDraft(userID int64, items ...Item) (Draft, error) {
	if userID <= 0 {
		return Draft{}, ErrInvalidUser
	}
	if len(items) == 0 {
		return Draft{}, ErrInvalidQuantity
	}
	return Draft{UserID: userID, Items: append([]Item(nil), items...)}, nil
}

// Total is the amount the order service is expected to persist for this draft.
func (d Draft) Total() decimal.Decimal {
	return Total(d.Items)
}

// TotalConsistent reports whether the stored total equals the sum of captured subtotals.
func (o *Order) TotalConsistent() bool {
	return o.Total.Equal(Total(o.Items))
}
