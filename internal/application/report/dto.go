package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/ingredient"
)

// ReportBatch is one batch line inside a report group
type ReportBatch struct {
	BatchID   uuid.UUID       `json:"batch_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	EntryDate time.Time       `json:"entry_date"`
}

// CategoryReportItem groups an ingredient's stock by expiry day
type CategoryReportItem struct {
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	ExpiryDate    time.Time       `json:"expiry_date"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Batches       []ReportBatch   `json:"batches"`
}

// CategoryReport maps each category to its stock grouped by expiry day
type CategoryReport map[string][]CategoryReportItem

// DetailedReportItem is one expiry-day group in the detailed report
type DetailedReportItem struct {
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Category       string          `json:"category"`
	ExpiryDate     time.Time       `json:"expiry_date"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
	Batches        []ReportBatch   `json:"batches"`
}

// StockMovementResponse represents a movement history entry
type StockMovementResponse struct {
	ID             uuid.UUID                 `json:"id"`
	MovementType   ingredient.MovementType   `json:"movement_type"`
	IngredientID   uuid.UUID                 `json:"ingredient_id"`
	IngredientName string                    `json:"ingredient_name"`
	BatchID        *uuid.UUID                `json:"batch_id,omitempty"`
	Quantity       decimal.Decimal           `json:"quantity"`
	PreviousStock  decimal.Decimal           `json:"previous_stock"`
	NewStock       decimal.Decimal           `json:"new_stock"`
	Reason         ingredient.MovementReason `json:"reason"`
	ReferenceID    *uuid.UUID                `json:"reference_id,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// HistoryFilter represents pagination options for movement history
type HistoryFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ExpiryAlertItem is one expiry-day group flagged by the alert report
type ExpiryAlertItem struct {
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Category       string          `json:"category"`
	ExpiryDate     time.Time       `json:"expiry_date"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
}

// CategoryStats summarizes one category's stock
type CategoryStats struct {
	Category        string          `json:"category"`
	IngredientCount int             `json:"ingredient_count"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
}

// ToStockMovementResponse converts a movement record to its response form
func ToStockMovementResponse(m *ingredient.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:             m.ID,
		MovementType:   m.MovementType,
		IngredientID:   m.IngredientID,
		IngredientName: m.IngredientName,
		BatchID:        m.BatchID,
		Quantity:       m.Quantity,
		PreviousStock:  m.PreviousStock,
		NewStock:       m.NewStock,
		Reason:         m.Reason,
		ReferenceID:    m.ReferenceID,
		CreatedAt:      m.CreatedAt,
	}
}
