package ordering

import (
	"context"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/menu"
	"github.com/pantry/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the repositories an
// order touches. Placing an order mutates several ingredient aggregates, the
// order itself and the movement history; they commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.OrderRepository
	// MenuRepo returns the menu repository scoped to the current transaction
	MenuRepo() menu.MenuRepository
	// IngredientRepo returns the ingredient repository scoped to the current transaction
	IngredientRepo() ingredient.IngredientRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() ingredient.StockMovementRepository
}

// NoOpTransactionScope is a transaction scope without real transactions,
// useful for testing
type NoOpTransactionScope struct {
	orderRepo      order.OrderRepository
	menuRepo       menu.MenuRepository
	ingredientRepo ingredient.IngredientRepository
	movementRepo   ingredient.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	orderRepo order.OrderRepository,
	menuRepo menu.MenuRepository,
	ingredientRepo ingredient.IngredientRepository,
	movementRepo ingredient.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:      orderRepo,
		menuRepo:       menuRepo,
		ingredientRepo: ingredientRepo,
		movementRepo:   movementRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

// MenuRepo returns the menu repository
func (s *NoOpTransactionScope) MenuRepo() menu.MenuRepository {
	return s.menuRepo
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
