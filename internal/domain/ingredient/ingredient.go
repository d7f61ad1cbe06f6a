package ingredient

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/shared"
)

// Ingredient is the aggregate root for perishable stock. It owns an ordered
// ledger of batches and is the unit of consistency for every stock mutation:
// all deductions, restorations and adjustments go through the aggregate so the
// ledger invariants hold after each operation.
type Ingredient struct {
	shared.BaseAggregateRoot
	Name     string  `gorm:"type:varchar(255);not null;index"`
	Unit     string  `gorm:"type:varchar(50);not null"`
	Category string  `gorm:"type:varchar(100);not null;index"`
	Batches  []Batch `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name
func (Ingredient) TableName() string {
	return "ingredients"
}

// NewIngredient creates a new ingredient with an empty batch ledger
func NewIngredient(name, unit, category string) (*Ingredient, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	category = strings.TrimSpace(category)

	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "ingredient name is required")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "ingredient unit is required")
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "ingredient category is required")
	}

	return &Ingredient{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Unit:              unit,
		Category:          category,
		Batches:           make([]Batch, 0),
	}, nil
}

// Normalize restores the ledger invariants: batches with no remaining stock
// are pruned and the rest are sorted by expiry date ascending. The sort is
// stable, so batches sharing an expiry date keep their insertion order.
// Normalize is idempotent.
func (i *Ingredient) Normalize() {
	kept := i.Batches[:0]
	for _, b := range i.Batches {
		if b.CurrentQuantity.GreaterThan(decimal.Zero) {
			kept = append(kept, b)
		}
	}
	i.Batches = kept
	sort.SliceStable(i.Batches, func(a, b int) bool {
		return i.Batches[a].ExpiryDate.Before(i.Batches[b].ExpiryDate)
	})
}

// TotalQuantity returns the sum of current quantity across all batches
func (i *Ingredient) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, b := range i.Batches {
		total = total.Add(b.CurrentQuantity)
	}
	return total
}

// FindBatchByExpiry returns the batch expiring on the same calendar day as
// the given date, or nil if none exists
func (i *Ingredient) FindBatchByExpiry(date time.Time) *Batch {
	for idx := range i.Batches {
		if i.Batches[idx].SameExpiryDay(date) {
			return &i.Batches[idx]
		}
	}
	return nil
}

// FindBatch returns the batch with the given ID, or nil if it is not in the
// ledger (it may have been pruned after being fully consumed)
func (i *Ingredient) FindBatch(batchID uuid.UUID) *Batch {
	for idx := range i.Batches {
		if i.Batches[idx].ID == batchID {
			return &i.Batches[idx]
		}
	}
	return nil
}

// AddStockResult describes the outcome of an AddStock call
type AddStockResult struct {
	Batch         *Batch
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	Reason        MovementReason
}

// AddStock records incoming stock. Stock arriving with an expiry date that
// matches an existing batch's calendar day is merged into that batch;
// otherwise a new batch is opened. The returned reason distinguishes a
// merge from a fresh batch. A drained ledger is not special: re-adding
// stock after every batch was consumed still opens an ordinary new batch.
func (i *Ingredient) AddStock(quantity decimal.Decimal, expiryDate time.Time) (*AddStockResult, error) {
	return i.addStock(quantity, expiryDate, ReasonNewBatch)
}

// AddInitialStock opens the first batch of a freshly created ingredient.
// Only the very first stock an ingredient ever receives is recorded with
// the new_stock reason; every later batch, including one opened after the
// ledger was fully drained, goes through AddStock instead.
func (i *Ingredient) AddInitialStock(quantity decimal.Decimal, expiryDate time.Time) (*AddStockResult, error) {
	if len(i.Batches) > 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "ingredient already has stock")
	}
	return i.addStock(quantity, expiryDate, ReasonNewStock)
}

func (i *Ingredient) addStock(quantity decimal.Decimal, expiryDate time.Time, freshReason MovementReason) (*AddStockResult, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "quantity must be greater than zero")
	}

	var result *AddStockResult
	if existing := i.FindBatchByExpiry(expiryDate); existing != nil {
		previous := existing.CurrentQuantity
		existing.Restock(quantity)
		result = &AddStockResult{
			Batch:         existing,
			PreviousStock: previous,
			NewStock:      existing.CurrentQuantity,
			Reason:        ReasonRestock,
		}
	} else {
		batch := NewBatch(i.ID, quantity, expiryDate)
		i.Batches = append(i.Batches, *batch)
		result = &AddStockResult{
			Batch:         i.FindBatch(batch.ID),
			PreviousStock: decimal.Zero,
			NewStock:      quantity,
			Reason:        freshReason,
		}
	}

	i.Normalize()
	// the slice may have been reordered, re-resolve the pointer
	result.Batch = i.FindBatch(result.Batch.ID)
	i.touch()
	i.AddDomainEvent(NewStockAddedEvent(i.ID, result.Batch.ID, quantity, result.Reason))
	return result, nil
}

// BatchDeduction records how much was taken from a single batch
type BatchDeduction struct {
	BatchID          uuid.UUID
	Quantity         decimal.Decimal
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
}

// DeductionResult describes a completed deduction in batch consumption order
type DeductionResult struct {
	Deductions []BatchDeduction
}

// Deduct removes quantity from the ledger, consuming batches in expiry order
// (soonest first). Availability is checked against the whole ledger before
// any batch is touched, so an insufficient-stock failure leaves the ledger
// exactly as it was. Fully consumed batches are pruned.
func (i *Ingredient) Deduct(quantity decimal.Decimal) (*DeductionResult, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "quantity must be greater than zero")
	}

	available := i.TotalQuantity()
	if available.LessThan(quantity) {
		return nil, &InsufficientStockError{
			IngredientName: i.Name,
			Needed:         quantity,
			Available:      available,
		}
	}

	i.Normalize()

	remaining := quantity
	deductions := make([]BatchDeduction, 0, len(i.Batches))
	for idx := range i.Batches {
		if remaining.IsZero() {
			break
		}
		batch := &i.Batches[idx]
		previous := batch.CurrentQuantity
		deducted := batch.Deduct(remaining)
		remaining = remaining.Sub(deducted)
		deductions = append(deductions, BatchDeduction{
			BatchID:          batch.ID,
			Quantity:         deducted,
			PreviousQuantity: previous,
			NewQuantity:      batch.CurrentQuantity,
		})
	}

	i.Normalize()
	i.touch()
	i.AddDomainEvent(NewStockDeductedEvent(i.ID, quantity))
	return &DeductionResult{Deductions: deductions}, nil
}

// RestoreResult describes a completed restoration of stock to a batch
type RestoreResult struct {
	BatchID       uuid.UUID
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
}

// Restore returns previously deducted quantity to the batch it came from.
// When the batch has been pruned from the ledger since the deduction, the
// restoration is dropped and false is returned; the caller decides whether
// that warrants a record.
func (i *Ingredient) Restore(batchID uuid.UUID, quantity decimal.Decimal) (*RestoreResult, bool) {
	batch := i.FindBatch(batchID)
	if batch == nil {
		return nil, false
	}

	previous := batch.CurrentQuantity
	batch.Restock(quantity)
	result := &RestoreResult{
		BatchID:       batch.ID,
		PreviousStock: previous,
		NewStock:      batch.CurrentQuantity,
	}

	i.Normalize()
	i.touch()
	i.AddDomainEvent(NewStockRestoredEvent(i.ID, batchID, quantity))
	return result, true
}

// AdjustResult describes a manual batch adjustment
type AdjustResult struct {
	BatchID          uuid.UUID
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	QuantityChanged  bool
}

// AdjustBatch overrides a batch's quantity and/or expiry date. A quantity
// override sets both initial and current quantity, so the batch reads as if
// it had always held the corrected amount. Adjusting the quantity to zero
// prunes the batch.
func (i *Ingredient) AdjustBatch(batchID uuid.UUID, newQuantity *decimal.Decimal, newExpiry *time.Time) (*AdjustResult, error) {
	batch := i.FindBatch(batchID)
	if batch == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "batch not found")
	}
	if newQuantity != nil && newQuantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "quantity cannot be negative")
	}

	result := &AdjustResult{
		BatchID:          batch.ID,
		PreviousQuantity: batch.CurrentQuantity,
		NewQuantity:      batch.CurrentQuantity,
	}

	if newQuantity != nil && !newQuantity.Equal(batch.CurrentQuantity) {
		batch.InitialQuantity = *newQuantity
		batch.CurrentQuantity = *newQuantity
		batch.UpdatedAt = time.Now()
		result.NewQuantity = *newQuantity
		result.QuantityChanged = true
	}
	if newExpiry != nil {
		batch.ExpiryDate = *newExpiry
		batch.UpdatedAt = time.Now()
	}

	i.Normalize()
	i.touch()
	i.AddDomainEvent(NewBatchAdjustedEvent(i.ID, batchID))
	return result, nil
}

// RemoveExpiredBatches prunes batches whose expiry date has passed and
// returns them so the caller can record the write-off
func (i *Ingredient) RemoveExpiredBatches(now time.Time) []Batch {
	removed := make([]Batch, 0)
	kept := i.Batches[:0]
	for _, b := range i.Batches {
		if b.ExpiryDate.Before(now) && b.HasStock() {
			removed = append(removed, b)
			continue
		}
		kept = append(kept, b)
	}
	i.Batches = kept
	if len(removed) > 0 {
		i.Normalize()
		i.touch()
	}
	return removed
}

// UpdateDetails changes the catalog attributes of the ingredient
func (i *Ingredient) UpdateDetails(name, unit, category string) error {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	category = strings.TrimSpace(category)
	if name == "" || unit == "" || category == "" {
		return shared.NewDomainError("INVALID_INPUT", "name, unit and category are required")
	}
	i.Name = name
	i.Unit = unit
	i.Category = category
	i.touch()
	return nil
}

func (i *Ingredient) touch() {
	i.UpdatedAt = time.Now()
}
