package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/pantry/backend/internal/domain/shared"
)

// OrderRepository persists order aggregates with their usage lines
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}
