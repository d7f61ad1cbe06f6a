package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantry/backend/internal/domain/menu"
	"github.com/pantry/backend/internal/domain/shared"
)

// GormMenuRepository implements MenuRepository using GORM
type GormMenuRepository struct {
	db *gorm.DB
}

// NewGormMenuRepository creates a new GormMenuRepository
func NewGormMenuRepository(db *gorm.DB) *GormMenuRepository {
	return &GormMenuRepository{db: db}
}

// FindByID finds a menu with its recipe
func (r *GormMenuRepository) FindByID(ctx context.Context, id uuid.UUID) (*menu.Menu, error) {
	var m menu.Menu
	if err := r.db.WithContext(ctx).Preload("Requirements").First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByName finds a menu by its unique name
func (r *GormMenuRepository) FindByName(ctx context.Context, name string) (*menu.Menu, error) {
	var m menu.Menu
	if err := r.db.WithContext(ctx).Preload("Requirements").First(&m, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindAll finds menus matching the filter
func (r *GormMenuRepository) FindAll(ctx context.Context, filter shared.Filter) ([]menu.Menu, error) {
	var menus []menu.Menu
	query := r.db.WithContext(ctx).Preload("Requirements").Model(&menu.Menu{})
	query = r.applySearch(query, filter)

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

	if err := query.Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

// Count counts menus matching the filter
func (r *GormMenuRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&menu.Menu{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the menu and replaces its recipe lines. Lines removed from
// the aggregate are deleted.
func (r *GormMenuRepository) Save(ctx context.Context, m *menu.Menu) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(m).Error; err != nil {
			return err
		}

		keptIDs := make([]uuid.UUID, 0, len(m.Requirements))
		for idx := range m.Requirements {
			keptIDs = append(keptIDs, m.Requirements[idx].ID)
		}
		query := tx.Where("menu_id = ?", m.ID)
		if len(keptIDs) > 0 {
			query = query.Where("id NOT IN ?", keptIDs)
		}
		return query.Delete(&menu.MenuRequirement{}).Error
	})
}

// Delete removes a menu and its recipe
func (r *GormMenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id = ?", id).Delete(&menu.MenuRequirement{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&menu.Menu{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormMenuRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormMenuRepository implements MenuRepository
var _ menu.MenuRepository = (*GormMenuRepository)(nil)
