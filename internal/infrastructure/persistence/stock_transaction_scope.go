package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/pantry/backend/internal/application/inventory"
	"github.com/pantry/backend/internal/domain/ingredient"
)

// GormStockTransactionScope implements the inventory TransactionScope using
// GORM transactions. Ledger mutation and movement append commit together or
// not at all.
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStockRepositories{tx: tx})
	})
}

type gormStockRepositories struct {
	tx *gorm.DB
}

// IngredientRepo returns the ingredient repository scoped to the current transaction
func (r *gormStockRepositories) IngredientRepo() ingredient.IngredientRepository {
	return NewGormIngredientRepository(r.tx)
}

// MovementRepo returns the movement repository scoped to the current transaction
func (r *gormStockRepositories) MovementRepo() ingredient.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormStockTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormStockRepositories)(nil)
