package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("catalog: product not found")
	ErrInvalidCount = errors.New("catalog: inventory count must be zero or greater")
)

// Product as the catalog service reports it. Available is false whenever the
// catalog recorded a non-positive InventoryCount.
type Product struct {
	ID             int64
	Name           string
	Description    string
	Price          decimal.Decimal
	InventoryCount int
	Available      bool
	Image          string
}

// CanFulfil reports whether qty units can be sold from this snapshot.
func (p *Product) CanFulfil(qty int) bool {
	return p.Available && qty > 0 && p.InventoryCount >= qty
}

// RemainingAfter is the absolute count to write back after selling qty units.
func (p *Product) RemainingAfter(qty int) int {
	return p.InventoryCount - qty
}

// ApplyCount mirrors the catalog rule for PATCH {inventoryCount}.
func (p *Product) ApplyCount(count int) {
	p.InventoryCount = count
	p.Available = count > 0
}
