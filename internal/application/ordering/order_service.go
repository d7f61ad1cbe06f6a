package ordering

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/order"
	"github.com/pantry/backend/internal/domain/shared"
)

// OrderService fulfills and cancels orders. Both operations run as a single
// database transaction across the menu, the affected ingredients, the order
// and the movement history.
type OrderService struct {
	orderRepo      order.OrderRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.OrderRepository, txScope TransactionScope) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *OrderService) publishDomainEvents(ctx context.Context, staged []*ingredient.Ingredient) {
	if s.eventPublisher == nil {
		return
	}
	for _, ing := range staged {
		events := ing.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = s.eventPublisher.Publish(ctx, events...)
		ing.ClearDomainEvents()
	}
}

// Place fulfills an order in two phases inside one transaction. First every
// recipe requirement is deducted on the in-memory aggregates; nothing is
// written until all of them succeeded. Then the staged aggregates, the order
// and its movements are saved together. Any failure, including an optimistic
// lock conflict on save, rolls the whole transaction back.
func (s *OrderService) Place(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	var (
		response *OrderResponse
		staged   []*ingredient.Ingredient
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		m, err := repos.MenuRepo().FindByID(ctx, req.MenuID)
		if err != nil {
			return err
		}

		ord, err := order.NewOrder(m.ID, m.Name, req.Quantity)
		if err != nil {
			return err
		}

		servings := decimal.NewFromInt(int64(req.Quantity))
		staged = make([]*ingredient.Ingredient, 0, len(m.Requirements))
		movements := make([]*ingredient.StockMovement, 0, len(m.Requirements))
		orderID := ord.ID

		// stage phase: deduct everything in memory, write nothing yet
		for _, requirement := range m.Requirements {
			ing, err := repos.IngredientRepo().FindByID(ctx, requirement.IngredientID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewDomainError("NOT_FOUND",
						"ingredient not found: "+requirement.IngredientName)
				}
				return err
			}

			needed := requirement.Quantity.Mul(servings)
			result, err := ing.Deduct(needed)
			if err != nil {
				return err
			}

			for _, deduction := range result.Deductions {
				ord.RecordUsage(ing.ID, ing.Name, ing.Unit, deduction.BatchID, deduction.Quantity)

				batchID := deduction.BatchID
				movement, err := ingredient.NewStockMovement(
					ingredient.MovementOut, ingredient.ReasonOrder,
					ing.ID, ing.Name, &batchID,
					deduction.Quantity, deduction.PreviousQuantity, deduction.NewQuantity,
					&orderID,
				)
				if err != nil {
					return err
				}
				movements = append(movements, movement)
			}
			staged = append(staged, ing)
		}

		// commit phase: persist the staged aggregates and the order together
		for _, ing := range staged {
			if err := repos.IngredientRepo().SaveWithLock(ctx, ing); err != nil {
				return err
			}
		}
		if err := repos.OrderRepo().Save(ctx, ord); err != nil {
			return err
		}
		if err := repos.MovementRepo().CreateAll(ctx, movements); err != nil {
			return err
		}

		r := ToOrderResponse(ord)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, staged)
	return response, nil
}

// Cancel reverses an order by replaying its usage lines in the opposite
// direction, then removes the order. A line whose ingredient was deleted or
// whose batch was pruned since fulfillment is skipped: that stock is gone
// and no movement is recorded for it.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*CancelOrderResponse, error) {
	var (
		response *CancelOrderResponse
		staged   []*ingredient.Ingredient
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ord, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !ord.CanCancel() {
			return shared.NewDomainError("INVALID_STATE", "order cannot be cancelled")
		}

		loaded := make(map[uuid.UUID]*ingredient.Ingredient)
		movements := make([]*ingredient.StockMovement, 0, len(ord.IngredientsUsed))
		restored, skipped := 0, 0

		for _, line := range ord.IngredientsUsed {
			ing, ok := loaded[line.IngredientID]
			if !ok {
				ing, err = repos.IngredientRepo().FindByID(ctx, line.IngredientID)
				if err != nil {
					if errors.Is(err, shared.ErrNotFound) {
						skipped++
						continue
					}
					return err
				}
				loaded[line.IngredientID] = ing
			}

			result, found := ing.Restore(line.BatchID, line.QuantityUsed)
			if !found {
				skipped++
				continue
			}

			batchID := line.BatchID
			movement, err := ingredient.NewStockMovement(
				ingredient.MovementIn, ingredient.ReasonOrderCancellation,
				ing.ID, ing.Name, &batchID,
				line.QuantityUsed, result.PreviousStock, result.NewStock,
				&orderID,
			)
			if err != nil {
				return err
			}
			movements = append(movements, movement)
			restored++
		}

		staged = make([]*ingredient.Ingredient, 0, len(loaded))
		for _, ing := range loaded {
			if err := repos.IngredientRepo().SaveWithLock(ctx, ing); err != nil {
				return err
			}
			staged = append(staged, ing)
		}
		if err := repos.MovementRepo().CreateAll(ctx, movements); err != nil {
			return err
		}
		if err := repos.OrderRepo().Delete(ctx, ord.ID); err != nil {
			return err
		}

		response = &CancelOrderResponse{
			OrderID:       ord.ID,
			RestoredLines: restored,
			SkippedLines:  skipped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, staged)
	return response, nil
}

// GetByID retrieves an order with its usage lines
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	ord, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(ord)
	return &response, nil
}

// List retrieves orders with pagination and filters
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	repoFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		repoFilter.PageSize = filter.PageSize
	}
	repoFilter.Search = filter.Search
	if filter.Status != "" {
		repoFilter.Filters["status"] = filter.Status
	}

	orders, err := s.orderRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for idx := range orders {
		responses = append(responses, ToOrderResponse(&orders[idx]))
	}
	result := shared.NewPaginated(responses, total, repoFilter.Page, repoFilter.PageSize)
	return &result, nil
}
