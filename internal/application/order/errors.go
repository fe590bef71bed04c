package order

import "fmt"

// OutOfStockError describes the snapshot that refused a purchase.
type OutOfStockError struct {
	ProductID int64
	Requested int
	Available int
	Listed    bool
}

func (e *OutOfStockError) Error() string {
	if !e.Listed {
		return fmt.Sprintf("product %d is not available", e.ProductID)
	}
	return fmt.Sprintf("product %d has %d in stock, %d requested", e.ProductID, e.Available, e.Requested)
}
