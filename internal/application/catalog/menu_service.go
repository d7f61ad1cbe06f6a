package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/menu"
	"github.com/pantry/backend/internal/domain/shared"
)

// MenuService handles menu management. Recipe lines snapshot the ingredient
// name and unit at save time, so a later rename of an ingredient does not
// rewrite existing menus.
type MenuService struct {
	menuRepo       menu.MenuRepository
	ingredientRepo ingredient.IngredientRepository
}

// NewMenuService creates a new MenuService
func NewMenuService(menuRepo menu.MenuRepository, ingredientRepo ingredient.IngredientRepository) *MenuService {
	return &MenuService{
		menuRepo:       menuRepo,
		ingredientRepo: ingredientRepo,
	}
}

func (s *MenuService) buildRequirements(ctx context.Context, m *menu.Menu, requirements []RequirementRequest) error {
	for _, req := range requirements {
		ing, err := s.ingredientRepo.FindByID(ctx, req.IngredientID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("NOT_FOUND",
					"ingredient not found: "+req.IngredientID.String())
			}
			return err
		}
		if err := m.AddRequirement(ing.ID, ing.Name, ing.Unit, req.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Create creates a menu, validating every recipe ingredient exists
func (s *MenuService) Create(ctx context.Context, req CreateMenuRequest) (*MenuResponse, error) {
	if _, err := s.menuRepo.FindByName(ctx, req.Name); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "a menu with this name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	m, err := menu.NewMenu(req.Name, req.Description, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.buildRequirements(ctx, m, req.Requirements); err != nil {
		return nil, err
	}
	if err := s.menuRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	response := ToMenuResponse(m)
	return &response, nil
}

// Update replaces a menu's attributes and recipe, re-snapshotting ingredient
// names and units
func (s *MenuService) Update(ctx context.Context, menuID uuid.UUID, req UpdateMenuRequest) (*MenuResponse, error) {
	m, err := s.menuRepo.FindByID(ctx, menuID)
	if err != nil {
		return nil, err
	}

	if other, err := s.menuRepo.FindByName(ctx, req.Name); err == nil {
		if other.ID != m.ID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "a menu with this name already exists")
		}
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := m.UpdateDetails(req.Name, req.Description, req.Price); err != nil {
		return nil, err
	}
	m.ClearRequirements()
	if err := s.buildRequirements(ctx, m, req.Requirements); err != nil {
		return nil, err
	}
	if err := s.menuRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	response := ToMenuResponse(m)
	return &response, nil
}

// GetByID retrieves a menu with its recipe
func (s *MenuService) GetByID(ctx context.Context, menuID uuid.UUID) (*MenuResponse, error) {
	m, err := s.menuRepo.FindByID(ctx, menuID)
	if err != nil {
		return nil, err
	}
	response := ToMenuResponse(m)
	return &response, nil
}

// List retrieves menus with pagination and filters
func (s *MenuService) List(ctx context.Context, filter MenuListFilter) (*shared.Paginated[MenuResponse], error) {
	repoFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		repoFilter.PageSize = filter.PageSize
	}
	repoFilter.Search = filter.Search

	menus, err := s.menuRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.menuRepo.Count(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]MenuResponse, 0, len(menus))
	for idx := range menus {
		responses = append(responses, ToMenuResponse(&menus[idx]))
	}
	result := shared.NewPaginated(responses, total, repoFilter.Page, repoFilter.PageSize)
	return &result, nil
}

// Delete removes a menu. Existing orders keep their own snapshot of the
// menu name and are not affected.
func (s *MenuService) Delete(ctx context.Context, menuID uuid.UUID) error {
	if _, err := s.menuRepo.FindByID(ctx, menuID); err != nil {
		return err
	}
	return s.menuRepo.Delete(ctx, menuID)
}
