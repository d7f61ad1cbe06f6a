package persistence

import (
	"context"

	"gorm.io/gorm"

	appord "github.com/pantry/backend/internal/application/ordering"
	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/menu"
	"github.com/pantry/backend/internal/domain/order"
)

// GormOrderTransactionScope implements the ordering TransactionScope using
// GORM transactions. An order commits together with every ledger deduction
// and movement it caused.
type GormOrderTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderTransactionScope creates a new GormOrderTransactionScope
func NewGormOrderTransactionScope(db *gorm.DB) *GormOrderTransactionScope {
	return &GormOrderTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormOrderTransactionScope) Execute(ctx context.Context, fn func(repos appord.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormOrderRepositories{tx: tx})
	})
}

type gormOrderRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormOrderRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// MenuRepo returns the menu repository scoped to the current transaction
func (r *gormOrderRepositories) MenuRepo() menu.MenuRepository {
	return NewGormMenuRepository(r.tx)
}

// IngredientRepo returns the ingredient repository scoped to the current transaction
func (r *gormOrderRepositories) IngredientRepo() ingredient.IngredientRepository {
	return NewGormIngredientRepository(r.tx)
}

// MovementRepo returns the movement repository scoped to the current transaction
func (r *gormOrderRepositories) MovementRepo() ingredient.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var _ appord.TransactionScope = (*GormOrderTransactionScope)(nil)
var _ appord.TransactionalRepositories = (*gormOrderRepositories)(nil)
