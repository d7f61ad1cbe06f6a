package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/shared"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	// StatusPending is an order accepted but not yet fulfilled
	StatusPending OrderStatus = "pending"
	// StatusCompleted is an order whose stock has been deducted
	StatusCompleted OrderStatus = "completed"
	// StatusCancelled is an order whose stock has been returned
	StatusCancelled OrderStatus = "cancelled"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order records a fulfilled menu sale together with the exact batch-level
// stock it consumed. The UsedIngredients lines are the authoritative record
// for reversal: cancellation replays them in the opposite direction instead
// of recomputing from the recipe, which may have changed since.
type Order struct {
	shared.BaseAggregateRoot
	MenuID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	MenuName        string           `gorm:"type:varchar(255);not null"`
	Quantity        int              `gorm:"not null"`
	Status          OrderStatus      `gorm:"type:varchar(16);not null;default:'completed';index"`
	IngredientsUsed []UsedIngredient `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name
func (Order) TableName() string {
	return "orders"
}

// UsedIngredient is one batch-level consumption line of an order
type UsedIngredient struct {
	shared.BaseEntity
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientName string          `gorm:"type:varchar(255);not null"`
	Unit           string          `gorm:"type:varchar(50);not null"`
	BatchID        uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityUsed   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

// TableName returns the database table name
func (UsedIngredient) TableName() string {
	return "order_used_ingredients"
}

// NewOrder creates an order for the given menu. The menu name is copied so
// the order keeps its wording if the menu is renamed or deleted.
func NewOrder(menuID uuid.UUID, menuName string, quantity int) (*Order, error) {
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "order quantity must be at least 1")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MenuID:            menuID,
		MenuName:          menuName,
		Quantity:          quantity,
		Status:            StatusCompleted,
		IngredientsUsed:   make([]UsedIngredient, 0),
	}, nil
}

// RecordUsage appends a batch-level consumption line
func (o *Order) RecordUsage(ingredientID uuid.UUID, ingredientName, unit string, batchID uuid.UUID, quantityUsed decimal.Decimal) {
	o.IngredientsUsed = append(o.IngredientsUsed, UsedIngredient{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        o.ID,
		IngredientID:   ingredientID,
		IngredientName: ingredientName,
		Unit:           unit,
		BatchID:        batchID,
		QuantityUsed:   quantityUsed,
	})
}

// CanCancel returns true if the order is in a cancellable state
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusCompleted
}
