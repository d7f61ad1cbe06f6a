package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/ingredient"
)

// BatchResponse represents one batch of an ingredient in API responses
type BatchResponse struct {
	ID              uuid.UUID       `json:"id"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	EntryDate       time.Time       `json:"entry_date"`
}

// IngredientResponse represents an ingredient with its batch ledger
type IngredientResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Category      string          `json:"category"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Batches       []BatchResponse `json:"batches"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// IngredientListFilter represents filter options for the ingredient list
type IngredientListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateIngredientRequest creates an ingredient together with its first batch
type CreateIngredientRequest struct {
	Name       string          `json:"name" binding:"required,notblank"`
	Unit       string          `json:"unit" binding:"required"`
	Category   string          `json:"category" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	ExpiryDate time.Time       `json:"expiry_date" binding:"required"`
}

// UpdateIngredientRequest changes the catalog attributes of an ingredient
type UpdateIngredientRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Unit     string `json:"unit" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// AddStockRequest records incoming stock for an existing ingredient
type AddStockRequest struct {
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	ExpiryDate time.Time       `json:"expiry_date" binding:"required"`
}

// AddStockResponse describes where the incoming stock landed
type AddStockResponse struct {
	Ingredient    IngredientResponse        `json:"ingredient"`
	BatchID       uuid.UUID                 `json:"batch_id"`
	Reason        ingredient.MovementReason `json:"reason"`
	PreviousStock decimal.Decimal           `json:"previous_stock"`
	NewStock      decimal.Decimal           `json:"new_stock"`
}

// AdjustBatchRequest overrides a batch's quantity and/or expiry date
type AdjustBatchRequest struct {
	BatchID    uuid.UUID        `json:"batch_id" binding:"required"`
	Quantity   *decimal.Decimal `json:"quantity"`
	ExpiryDate *time.Time       `json:"expiry_date"`
}

// AdjustBatchResponse describes the outcome of a batch adjustment
type AdjustBatchResponse struct {
	Ingredient       IngredientResponse `json:"ingredient"`
	BatchID          uuid.UUID          `json:"batch_id"`
	PreviousQuantity decimal.Decimal    `json:"previous_quantity"`
	NewQuantity      decimal.Decimal    `json:"new_quantity"`
}

// TotalQuantityResponse reports the summed stock of an ingredient
type TotalQuantityResponse struct {
	IngredientID  uuid.UUID       `json:"ingredient_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// ExpiryAlert flags stock that expires within the alert window
type ExpiryAlert struct {
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Category       string          `json:"category"`
	ExpiryDate     time.Time       `json:"expiry_date"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
}

// LowStockAlert flags an ingredient whose total stock fell below the threshold
type LowStockAlert struct {
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Category       string          `json:"category"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
	Threshold      decimal.Decimal `json:"threshold"`
}

// AlertsResponse bundles the stock alerts
type AlertsResponse struct {
	ExpiringSoon []ExpiryAlert   `json:"expiring_soon"`
	LowStock     []LowStockAlert `json:"low_stock"`
}

// CleanupResponse reports expired batches written off by a cleanup run
type CleanupResponse struct {
	IngredientsTouched int             `json:"ingredients_touched"`
	BatchesRemoved     int             `json:"batches_removed"`
	QuantityRemoved    decimal.Decimal `json:"quantity_removed"`
}

// ToBatchResponse converts a batch entity to its response form
func ToBatchResponse(b *ingredient.Batch) BatchResponse {
	return BatchResponse{
		ID:              b.ID,
		InitialQuantity: b.InitialQuantity,
		CurrentQuantity: b.CurrentQuantity,
		ExpiryDate:      b.ExpiryDate,
		EntryDate:       b.EntryDate,
	}
}

// ToIngredientResponse converts an ingredient aggregate to its response form
func ToIngredientResponse(ing *ingredient.Ingredient) IngredientResponse {
	batches := make([]BatchResponse, 0, len(ing.Batches))
	for idx := range ing.Batches {
		batches = append(batches, ToBatchResponse(&ing.Batches[idx]))
	}
	return IngredientResponse{
		ID:            ing.ID,
		Name:          ing.Name,
		Unit:          ing.Unit,
		Category:      ing.Category,
		TotalQuantity: ing.TotalQuantity(),
		Batches:       batches,
		CreatedAt:     ing.CreatedAt,
		UpdatedAt:     ing.UpdatedAt,
		Version:       ing.Version,
	}
}
