package ingredient

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/shared"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	// MovementIn represents stock entering the ledger
	MovementIn MovementType = "in"
	// MovementOut represents stock leaving the ledger
	MovementOut MovementType = "out"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	return t == MovementIn || t == MovementOut
}

// MovementReason explains why a stock movement happened
type MovementReason string

const (
	// ReasonOrder is a deduction caused by fulfilling an order
	ReasonOrder MovementReason = "order"
	// ReasonManualAdjustment is an operator override of a batch quantity
	ReasonManualAdjustment MovementReason = "manual_adjustment"
	// ReasonExpired is a write-off of stock past its expiry date
	ReasonExpired MovementReason = "expired"
	// ReasonNewStock is the first stock recorded for an ingredient
	ReasonNewStock MovementReason = "new_stock"
	// ReasonRestock is stock merged into an existing batch
	ReasonRestock MovementReason = "restock"
	// ReasonNewBatch is stock that opened a new batch
	ReasonNewBatch MovementReason = "new_batch"
	// ReasonOrderCancellation is stock returned by a cancelled order
	ReasonOrderCancellation MovementReason = "order_cancellation"
)

// String returns the string representation of MovementReason
func (r MovementReason) String() string {
	return string(r)
}

// IsValid returns true if the movement reason is valid
func (r MovementReason) IsValid() bool {
	switch r {
	case ReasonOrder,
		ReasonManualAdjustment,
		ReasonExpired,
		ReasonNewStock,
		ReasonRestock,
		ReasonNewBatch,
		ReasonOrderCancellation:
		return true
	}
	return false
}

// StockMovement is an immutable audit record of a single batch-level stock
// change. Movements are append-only history: they are never read back to
// rebuild ledger state, the batch ledger itself stays authoritative.
// Ingredient name is denormalized so history survives ingredient deletion.
type StockMovement struct {
	shared.BaseEntity
	MovementType   MovementType    `gorm:"type:varchar(8);not null;index"`
	IngredientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientName string          `gorm:"type:varchar(255);not null"`
	BatchID        *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	PreviousStock  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	NewStock       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Reason         MovementReason  `gorm:"type:varchar(32);not null;index"`
	ReferenceID    *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the database table name
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a validated stock movement record
func NewStockMovement(
	movementType MovementType,
	reason MovementReason,
	ingredientID uuid.UUID,
	ingredientName string,
	batchID *uuid.UUID,
	quantity, previousStock, newStock decimal.Decimal,
	referenceID *uuid.UUID,
) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid movement type: "+movementType.String())
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid movement reason: "+reason.String())
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "movement quantity cannot be negative")
	}

	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		MovementType:   movementType,
		IngredientID:   ingredientID,
		IngredientName: ingredientName,
		BatchID:        batchID,
		Quantity:       quantity,
		PreviousStock:  previousStock,
		NewStock:       newStock,
		Reason:         reason,
		ReferenceID:    referenceID,
	}, nil
}
