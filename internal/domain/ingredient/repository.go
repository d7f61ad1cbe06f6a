package ingredient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pantry/backend/internal/domain/shared"
)

// IngredientRepository persists ingredient aggregates with their batch ledger
type IngredientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Ingredient, error)
	FindByName(ctx context.Context, name string) (*Ingredient, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Ingredient, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, ing *Ingredient) error
	// SaveWithLock saves only if the stored version matches, returning
	// shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, ing *Ingredient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsWithBatchExpiry reports whether an ingredient with the given name
	// already has a batch expiring on the given calendar day
	ExistsWithBatchExpiry(ctx context.Context, name string, expiry time.Time) (bool, error)
	// FindWithExpiringBatches returns ingredients holding stock that expires
	// in the [from, to] window
	FindWithExpiringBatches(ctx context.Context, from, to time.Time) ([]Ingredient, error)
}

// StockMovementRepository persists the append-only movement history
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	CreateAll(ctx context.Context, movements []*StockMovement) error
	FindByType(ctx context.Context, movementType MovementType, filter shared.Filter) ([]StockMovement, error)
	CountByType(ctx context.Context, movementType MovementType) (int64, error)
	FindByIngredient(ctx context.Context, ingredientID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
}
