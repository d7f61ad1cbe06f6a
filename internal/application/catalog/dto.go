package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/menu"
)

// RequirementRequest is one recipe line in a create or update request.
// Only the ingredient ID and the quantity are accepted; name and unit are
// snapshotted from the ingredient at save time.
type RequirementRequest struct {
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateMenuRequest creates a menu with its recipe
type CreateMenuRequest struct {
	Name         string               `json:"name" binding:"required,notblank"`
	Description  string               `json:"description"`
	Price        decimal.Decimal      `json:"price" binding:"required"`
	Requirements []RequirementRequest `json:"requirements" binding:"required,min=1,dive"`
}

// UpdateMenuRequest replaces a menu's attributes and whole recipe
type UpdateMenuRequest struct {
	Name         string               `json:"name" binding:"required,notblank"`
	Description  string               `json:"description"`
	Price        decimal.Decimal      `json:"price" binding:"required"`
	Requirements []RequirementRequest `json:"requirements" binding:"required,min=1,dive"`
}

// RequirementResponse is one recipe line in API responses
type RequirementResponse struct {
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
}

// MenuResponse represents a menu in API responses
type MenuResponse struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Price        decimal.Decimal       `json:"price"`
	Requirements []RequirementResponse `json:"requirements"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// MenuListFilter represents filter options for the menu list
type MenuListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToMenuResponse converts a menu aggregate to its response form
func ToMenuResponse(m *menu.Menu) MenuResponse {
	requirements := make([]RequirementResponse, 0, len(m.Requirements))
	for _, r := range m.Requirements {
		requirements = append(requirements, RequirementResponse{
			IngredientID:   r.IngredientID,
			IngredientName: r.IngredientName,
			Quantity:       r.Quantity,
			Unit:           r.Unit,
		})
	}
	return MenuResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		Requirements: requirements,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
