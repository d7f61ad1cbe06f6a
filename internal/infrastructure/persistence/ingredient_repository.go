package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/shared"
)

// GormIngredientRepository implements IngredientRepository using GORM.
// Ingredients always load with their full batch ledger in expiry order.
type GormIngredientRepository struct {
	db *gorm.DB
}

// NewGormIngredientRepository creates a new GormIngredientRepository
func NewGormIngredientRepository(db *gorm.DB) *GormIngredientRepository {
	return &GormIngredientRepository{db: db}
}

func preloadBatches(db *gorm.DB) *gorm.DB {
	return db.Preload("Batches", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("expiry_date ASC, entry_date ASC")
	})
}

// FindByID finds an ingredient with its batch ledger
func (r *GormIngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	var ing ingredient.Ingredient
	if err := preloadBatches(r.db.WithContext(ctx)).First(&ing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ing, nil
}

// FindByName finds an ingredient by its unique name
func (r *GormIngredientRepository) FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error) {
	var ing ingredient.Ingredient
	if err := preloadBatches(r.db.WithContext(ctx)).First(&ing, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ing, nil
}

// FindAll finds ingredients matching the filter, batches included
func (r *GormIngredientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ingredient.Ingredient, error) {
	var ingredients []ingredient.Ingredient
	query := r.applyFilter(preloadBatches(r.db.WithContext(ctx)).Model(&ingredient.Ingredient{}), filter)
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// Count counts ingredients matching the filter
func (r *GormIngredientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&ingredient.Ingredient{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the aggregate and its batches, removing batches that were
// pruned from the ledger
func (r *GormIngredientRepository) Save(ctx context.Context, ing *ingredient.Ingredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(ing).Error; err != nil {
			return err
		}
		return deletePrunedBatches(tx, ing)
	})
}

// SaveWithLock persists the aggregate only if the stored version matches.
// The version is bumped here; a concurrent writer that got there first
// makes the guarded update match zero rows.
func (r *GormIngredientRepository) SaveWithLock(ctx context.Context, ing *ingredient.Ingredient) error {
	ing.IncrementVersion()
	ing.UpdatedAt = time.Now()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ingredient.Ingredient{}).
			Where("id = ? AND version = ?", ing.ID, ing.Version-1).
			Updates(map[string]interface{}{
				"name":       ing.Name,
				"unit":       ing.Unit,
				"category":   ing.Category,
				"version":    ing.Version,
				"updated_at": ing.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		for idx := range ing.Batches {
			if err := tx.Save(&ing.Batches[idx]).Error; err != nil {
				return err
			}
		}
		return deletePrunedBatches(tx, ing)
	})
}

// Delete removes an ingredient and its batches. Movement history is kept.
func (r *GormIngredientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&ingredient.Batch{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&ingredient.Ingredient{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsWithBatchExpiry reports whether the named ingredient already holds a
// batch expiring on the given calendar day
func (r *GormIngredientRepository) ExistsWithBatchExpiry(ctx context.Context, name string, expiry time.Time) (bool, error) {
	dayStart := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, expiry.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&ingredient.Batch{}).
		Joins("JOIN ingredients ON ingredients.id = ingredient_batches.ingredient_id").
		Where("ingredients.name = ?", name).
		Where("ingredient_batches.expiry_date >= ? AND ingredient_batches.expiry_date < ?", dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindWithExpiringBatches returns ingredients holding stock that expires in
// the [from, to] window
func (r *GormIngredientRepository) FindWithExpiringBatches(ctx context.Context, from, to time.Time) ([]ingredient.Ingredient, error) {
	var ingredients []ingredient.Ingredient
	err := preloadBatches(r.db.WithContext(ctx)).
		Model(&ingredient.Ingredient{}).
		Distinct("ingredients.*").
		Joins("JOIN ingredient_batches ON ingredient_batches.ingredient_id = ingredients.id").
		Where("ingredient_batches.current_quantity > 0").
		Where("ingredient_batches.expiry_date >= ? AND ingredient_batches.expiry_date <= ?", from, to).
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}

// deletePrunedBatches removes rows for batches no longer present on the
// aggregate. Drained batches leave the ledger via Normalize.
func deletePrunedBatches(tx *gorm.DB, ing *ingredient.Ingredient) error {
	keptIDs := make([]uuid.UUID, 0, len(ing.Batches))
	for idx := range ing.Batches {
		keptIDs = append(keptIDs, ing.Batches[idx].ID)
	}

	query := tx.Where("ingredient_id = ?", ing.ID)
	if len(keptIDs) > 0 {
		query = query.Where("id NOT IN ?", keptIDs)
	}
	return query.Delete(&ingredient.Batch{}).Error
}

// applyFilter applies filter options to the query. A zero page size means
// no pagination.
func (r *GormIngredientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("name ASC")
	}

	return query
}

func (r *GormIngredientRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "unit":
			query = query.Where("unit = ?", value)
		}
	}
	return query
}

// Ensure GormIngredientRepository implements IngredientRepository
var _ ingredient.IngredientRepository = (*GormIngredientRepository)(nil)
