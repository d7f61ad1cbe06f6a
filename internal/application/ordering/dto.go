package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/order"
)

// PlaceOrderRequest places an order for a number of menu servings
type PlaceOrderRequest struct {
	MenuID   uuid.UUID `json:"menu_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// UsedIngredientResponse is one batch-level consumption line of an order
type UsedIngredientResponse struct {
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	BatchID        uuid.UUID       `json:"batch_id"`
	QuantityUsed   decimal.Decimal `json:"quantity_used"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID                `json:"id"`
	MenuID          uuid.UUID                `json:"menu_id"`
	MenuName        string                   `json:"menu_name"`
	Quantity        int                      `json:"quantity"`
	Status          order.OrderStatus        `json:"status"`
	IngredientsUsed []UsedIngredientResponse `json:"ingredients_used"`
	CreatedAt       time.Time                `json:"created_at"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CancelOrderResponse reports what a cancellation restored
type CancelOrderResponse struct {
	OrderID       uuid.UUID `json:"order_id"`
	RestoredLines int       `json:"restored_lines"`
	// SkippedLines counts usage lines whose batch or ingredient no longer
	// existed, so their stock could not be returned
	SkippedLines int `json:"skipped_lines"`
}

// ToOrderResponse converts an order aggregate to its response form
func ToOrderResponse(o *order.Order) OrderResponse {
	used := make([]UsedIngredientResponse, 0, len(o.IngredientsUsed))
	for _, line := range o.IngredientsUsed {
		used = append(used, UsedIngredientResponse{
			IngredientID:   line.IngredientID,
			IngredientName: line.IngredientName,
			Unit:           line.Unit,
			BatchID:        line.BatchID,
			QuantityUsed:   line.QuantityUsed,
		})
	}
	return OrderResponse{
		ID:              o.ID,
		MenuID:          o.MenuID,
		MenuName:        o.MenuName,
		Quantity:        o.Quantity,
		Status:          o.Status,
		IngredientsUsed: used,
		CreatedAt:       o.CreatedAt,
	}
}
