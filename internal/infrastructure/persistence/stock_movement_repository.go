package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/shared"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// Movements are append-only; there are no update or delete operations.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a single movement record
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *ingredient.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// CreateAll appends a batch of movement records
func (r *GormStockMovementRepository) CreateAll(ctx context.Context, movements []*ingredient.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&movements).Error
}

// FindByType lists movements of one direction, newest first
func (r *GormStockMovementRepository) FindByType(ctx context.Context, movementType ingredient.MovementType, filter shared.Filter) ([]ingredient.StockMovement, error) {
	var movements []ingredient.StockMovement
	query := r.db.WithContext(ctx).
		Model(&ingredient.StockMovement{}).
		Where("movement_type = ?", movementType).
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// CountByType counts movements of one direction
func (r *GormStockMovementRepository) CountByType(ctx context.Context, movementType ingredient.MovementType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ingredient.StockMovement{}).
		Where("movement_type = ?", movementType).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FindByIngredient lists an ingredient's movements, newest first
func (r *GormStockMovementRepository) FindByIngredient(ctx context.Context, ingredientID uuid.UUID, filter shared.Filter) ([]ingredient.StockMovement, error) {
	var movements []ingredient.StockMovement
	query := r.db.WithContext(ctx).
		Model(&ingredient.StockMovement{}).
		Where("ingredient_id = ?", ingredientID).
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ ingredient.StockMovementRepository = (*GormStockMovementRepository)(nil)
