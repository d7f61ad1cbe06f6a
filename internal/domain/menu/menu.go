package menu

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/shared"
)

// Menu is a sellable dish defined by a recipe: a list of ingredient
// requirements per serving. Requirement lines carry denormalized copies of
// the ingredient name and unit, captured when the menu is saved, so menus
// render without loading ingredients and keep their wording if an
// ingredient is later renamed.
type Menu struct {
	shared.BaseAggregateRoot
	Name         string            `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description  string            `gorm:"type:text"`
	Price        decimal.Decimal   `gorm:"type:decimal(20,2);not null"`
	Requirements []MenuRequirement `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name
func (Menu) TableName() string {
	return "menus"
}

// MenuRequirement is one line of a recipe: how much of one ingredient a
// single serving consumes
type MenuRequirement struct {
	shared.BaseEntity
	MenuID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientName string          `gorm:"type:varchar(255);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Unit           string          `gorm:"type:varchar(50);not null"`
}

// TableName returns the database table name
func (MenuRequirement) TableName() string {
	return "menu_requirements"
}

// NewMenu creates a new menu without requirements
func NewMenu(name, description string, price decimal.Decimal) (*Menu, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "menu name is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "menu price cannot be negative")
	}

	return &Menu{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       strings.TrimSpace(description),
		Price:             price,
		Requirements:      make([]MenuRequirement, 0),
	}, nil
}

// AddRequirement appends a recipe line with a snapshot of the ingredient
// name and unit
func (m *Menu) AddRequirement(ingredientID uuid.UUID, ingredientName, unit string, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "requirement quantity must be greater than zero")
	}
	for _, r := range m.Requirements {
		if r.IngredientID == ingredientID {
			return shared.NewDomainError("INVALID_INPUT", "duplicate ingredient in requirements: "+ingredientName)
		}
	}

	m.Requirements = append(m.Requirements, MenuRequirement{
		BaseEntity:     shared.NewBaseEntity(),
		MenuID:         m.ID,
		IngredientID:   ingredientID,
		IngredientName: ingredientName,
		Quantity:       quantity,
		Unit:           unit,
	})
	return nil
}

// ClearRequirements drops all recipe lines, used when an update replaces
// the whole recipe
func (m *Menu) ClearRequirements() {
	m.Requirements = make([]MenuRequirement, 0)
}

// UpdateDetails changes the menu's display attributes
func (m *Menu) UpdateDetails(name, description string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "menu name is required")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "menu price cannot be negative")
	}
	m.Name = name
	m.Description = strings.TrimSpace(description)
	m.Price = price
	return nil
}
