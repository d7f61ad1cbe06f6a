package inventory

import (
	"context"

	"github.com/pantry/backend/internal/domain/ingredient"
)

// TransactionScope provides transactional access to stock repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the stock repositories within
// a transaction. Batches are child entities of the Ingredient aggregate and
// have no repository of their own: they are persisted through the aggregate.
type TransactionalRepositories interface {
	// IngredientRepo returns the ingredient repository scoped to the current transaction
	IngredientRepo() ingredient.IngredientRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() ingredient.StockMovementRepository
}

// NoOpTransactionScope is a transaction scope without real transactions,
// useful for testing
type NoOpTransactionScope struct {
	ingredientRepo ingredient.IngredientRepository
	movementRepo   ingredient.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	ingredientRepo ingredient.IngredientRepository,
	movementRepo ingredient.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ingredientRepo: ingredientRepo,
		movementRepo:   movementRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// IngredientRepo returns the ingredient repository
func (s *NoOpTransactionScope) IngredientRepo() ingredient.IngredientRepository {
	return s.ingredientRepo
}

// MovementRepo returns the stock movement repository
func (s *NoOpTransactionScope) MovementRepo() ingredient.StockMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
