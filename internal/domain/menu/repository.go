package menu

import (
	"context"

	"github.com/google/uuid"

	"github.com/pantry/backend/internal/domain/shared"
)

// MenuRepository persists menu aggregates with their requirement lines
type MenuRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Menu, error)
	FindByName(ctx context.Context, name string) (*Menu, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Menu, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, m *Menu) error
	Delete(ctx context.Context, id uuid.UUID) error
}
