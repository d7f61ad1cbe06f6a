package ingredient

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/shared"
)

// Batch represents a dated lot of stock belonging to an ingredient.
// Expiry comparisons are made at calendar-day granularity.
type Batch struct {
	shared.BaseEntity
	IngredientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InitialQuantity decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	CurrentQuantity decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	ExpiryDate      time.Time       `gorm:"not null;index"`
	EntryDate       time.Time       `gorm:"not null"`
}

// TableName returns the database table name
func (Batch) TableName() string {
	return "ingredient_batches"
}

// NewBatch creates a new batch with equal initial and current quantity
func NewBatch(ingredientID uuid.UUID, quantity decimal.Decimal, expiryDate time.Time) *Batch {
	return &Batch{
		BaseEntity:      shared.NewBaseEntity(),
		IngredientID:    ingredientID,
		InitialQuantity: quantity,
		CurrentQuantity: quantity,
		ExpiryDate:      expiryDate,
		EntryDate:       time.Now(),
	}
}

// HasStock returns true if the batch has remaining quantity
func (b *Batch) HasStock() bool {
	return b.CurrentQuantity.GreaterThan(decimal.Zero)
}

// IsExpired returns true if the batch expiry date has passed
func (b *Batch) IsExpired() bool {
	return b.ExpiryDate.Before(time.Now())
}

// ExpiresWithin returns true if the batch expires within the given duration
func (b *Batch) ExpiresWithin(d time.Duration) bool {
	return b.ExpiryDate.Before(time.Now().Add(d))
}

// SameExpiryDay returns true if the batch expires on the given calendar day
func (b *Batch) SameExpiryDay(t time.Time) bool {
	return sameDay(b.ExpiryDate, t)
}

// Deduct reduces the current quantity, capped at what the batch holds.
// Returns the quantity actually deducted.
func (b *Batch) Deduct(quantity decimal.Decimal) decimal.Decimal {
	deducted := decimal.Min(quantity, b.CurrentQuantity)
	b.CurrentQuantity = b.CurrentQuantity.Sub(deducted)
	b.UpdatedAt = time.Now()
	return deducted
}

// Restock increases both initial and current quantity. Used when stock
// arrives for an existing batch and when a cancelled order returns stock.
func (b *Batch) Restock(quantity decimal.Decimal) {
	b.InitialQuantity = b.InitialQuantity.Add(quantity)
	b.CurrentQuantity = b.CurrentQuantity.Add(quantity)
	b.UpdatedAt = time.Now()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
