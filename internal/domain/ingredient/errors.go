package ingredient

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/shared"
)

// InsufficientStockError is returned when a deduction asks for more than the
// whole ledger holds. It carries the figures so callers can report exactly
// how short the stock was.
type InsufficientStockError struct {
	IngredientName string
	Needed         decimal.Decimal
	Available      decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Required: %s, Available: %s",
		e.IngredientName, e.Needed.String(), e.Available.String())
}

// Is reports whether the target is the insufficient-stock sentinel, so
// errors.Is(err, shared.ErrInsufficientStock) matches
func (e *InsufficientStockError) Is(target error) bool {
	return target == shared.ErrInsufficientStock
}
