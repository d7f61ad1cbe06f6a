package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/shared"
)

// StockAuditHandler writes an audit log line for every stock-related domain
// event. The movement table is the source of truth; this is operator-facing
// visibility only.
type StockAuditHandler struct {
	logger *zap.Logger
}

// NewStockAuditHandler creates a new StockAuditHandler
func NewStockAuditHandler(logger *zap.Logger) *StockAuditHandler {
	return &StockAuditHandler{logger: logger.Named("stock-audit")}
}

// Handle logs the event
func (h *StockAuditHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.logger.Info("stock event",
		zap.String("event_type", evt.EventType()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	)
	return nil
}

// EventTypes lists the stock events this handler audits
func (h *StockAuditHandler) EventTypes() []string {
	return []string{
		ingredient.EventTypeStockAdded,
		ingredient.EventTypeStockDeducted,
		ingredient.EventTypeStockRestored,
		ingredient.EventTypeBatchAdjusted,
	}
}

// Ensure StockAuditHandler implements EventHandler
var _ shared.EventHandler = (*StockAuditHandler)(nil)
