package ingredient

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/shared"
)

// Event types for the ingredient aggregate
const (
	EventTypeStockAdded    = "ingredient.stock_added"
	EventTypeStockDeducted = "ingredient.stock_deducted"
	EventTypeStockRestored = "ingredient.stock_restored"
	EventTypeBatchAdjusted = "ingredient.batch_adjusted"
)

const aggregateType = "Ingredient"

// StockAddedEvent is raised when stock enters the ledger
type StockAddedEvent struct {
	shared.BaseDomainEvent
	BatchID  uuid.UUID       `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   MovementReason  `json:"reason"`
}

// NewStockAddedEvent creates a stock added event
func NewStockAddedEvent(ingredientID, batchID uuid.UUID, quantity decimal.Decimal, reason MovementReason) *StockAddedEvent {
	return &StockAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdded, aggregateType, ingredientID),
		BatchID:         batchID,
		Quantity:        quantity,
		Reason:          reason,
	}
}

// StockDeductedEvent is raised when stock leaves the ledger
type StockDeductedEvent struct {
	shared.BaseDomainEvent
	Quantity decimal.Decimal `json:"quantity"`
}

// NewStockDeductedEvent creates a stock deducted event
func NewStockDeductedEvent(ingredientID uuid.UUID, quantity decimal.Decimal) *StockDeductedEvent {
	return &StockDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeducted, aggregateType, ingredientID),
		Quantity:        quantity,
	}
}

// StockRestoredEvent is raised when a cancelled order returns stock
type StockRestoredEvent struct {
	shared.BaseDomainEvent
	BatchID  uuid.UUID       `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewStockRestoredEvent creates a stock restored event
func NewStockRestoredEvent(ingredientID, batchID uuid.UUID, quantity decimal.Decimal) *StockRestoredEvent {
	return &StockRestoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRestored, aggregateType, ingredientID),
		BatchID:         batchID,
		Quantity:        quantity,
	}
}

// BatchAdjustedEvent is raised when an operator overrides a batch
type BatchAdjustedEvent struct {
	shared.BaseDomainEvent
	BatchID uuid.UUID `json:"batch_id"`
}

// NewBatchAdjustedEvent creates a batch adjusted event
func NewBatchAdjustedEvent(ingredientID, batchID uuid.UUID) *BatchAdjustedEvent {
	return &BatchAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchAdjusted, aggregateType, ingredientID),
		BatchID:         batchID,
	}
}
