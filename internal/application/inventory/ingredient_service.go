package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/shared"
)

// AlertThresholds configures when stock alerts fire
type AlertThresholds struct {
	// ExpiryWindow is how far ahead expiring stock is flagged
	ExpiryWindow time.Duration
	// LowStock is the total quantity below which an ingredient is flagged
	LowStock decimal.Decimal
}

// DefaultAlertThresholds returns the default alert configuration
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		ExpiryWindow: 7 * 24 * time.Hour,
		LowStock:     decimal.NewFromInt(10),
	}
}

// IngredientService handles ingredient and stock operations
type IngredientService struct {
	ingredientRepo ingredient.IngredientRepository
	movementRepo   ingredient.StockMovementRepository
	txScope        TransactionScope
	thresholds     AlertThresholds
	eventPublisher shared.EventPublisher
}

// NewIngredientService creates a new IngredientService
func NewIngredientService(
	ingredientRepo ingredient.IngredientRepository,
	movementRepo ingredient.StockMovementRepository,
	txScope TransactionScope,
	thresholds AlertThresholds,
) *IngredientService {
	return &IngredientService{
		ingredientRepo: ingredientRepo,
		movementRepo:   movementRepo,
		txScope:        txScope,
		thresholds:     thresholds,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *IngredientService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *IngredientService) publishDomainEvents(ctx context.Context, ing *ingredient.Ingredient) {
	if s.eventPublisher == nil {
		return
	}
	events := ing.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	ing.ClearDomainEvents()
}

// Create creates a new ingredient with its first batch. An ingredient with
// the same name already holding a batch for the same expiry day is rejected;
// stock for that day should be added to the existing ingredient instead.
func (s *IngredientService) Create(ctx context.Context, req CreateIngredientRequest) (*IngredientResponse, error) {
	exists, err := s.ingredientRepo.ExistsWithBatchExpiry(ctx, req.Name, req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			"an ingredient with this name already has a batch for this expiry date, add stock to it instead")
	}

	ing, err := ingredient.NewIngredient(req.Name, req.Unit, req.Category)
	if err != nil {
		return nil, err
	}
	result, err := ing.AddInitialStock(req.Quantity, req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.IngredientRepo().Save(ctx, ing); err != nil {
			return err
		}
		batchID := result.Batch.ID
		movement, err := ingredient.NewStockMovement(
			ingredient.MovementIn, result.Reason,
			ing.ID, ing.Name, &batchID,
			req.Quantity, result.PreviousStock, result.NewStock,
			nil,
		)
		if err != nil {
			return err
		}
		return repos.MovementRepo().Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, ing)
	response := ToIngredientResponse(ing)
	return &response, nil
}

// AddStock records incoming stock for an existing ingredient
func (s *IngredientService) AddStock(ctx context.Context, ingredientID uuid.UUID, req AddStockRequest) (*AddStockResponse, error) {
	var (
		ing      *ingredient.Ingredient
		response *AddStockResponse
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ing, err = repos.IngredientRepo().FindByID(ctx, ingredientID)
		if err != nil {
			return err
		}

		result, err := ing.AddStock(req.Quantity, req.ExpiryDate)
		if err != nil {
			return err
		}
		if err := repos.IngredientRepo().SaveWithLock(ctx, ing); err != nil {
			return err
		}

		batchID := result.Batch.ID
		movement, err := ingredient.NewStockMovement(
			ingredient.MovementIn, result.Reason,
			ing.ID, ing.Name, &batchID,
			req.Quantity, result.PreviousStock, result.NewStock,
			nil,
		)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}

		response = &AddStockResponse{
			Ingredient:    ToIngredientResponse(ing),
			BatchID:       batchID,
			Reason:        result.Reason,
			PreviousStock: result.PreviousStock,
			NewStock:      result.NewStock,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, ing)
	return response, nil
}

// AdjustBatch overrides a batch's quantity and/or expiry date. A quantity
// change is recorded as a manual adjustment movement; the direction follows
// the sign of the change.
func (s *IngredientService) AdjustBatch(ctx context.Context, ingredientID uuid.UUID, req AdjustBatchRequest) (*AdjustBatchResponse, error) {
	var (
		ing      *ingredient.Ingredient
		response *AdjustBatchResponse
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ing, err = repos.IngredientRepo().FindByID(ctx, ingredientID)
		if err != nil {
			return err
		}

		result, err := ing.AdjustBatch(req.BatchID, req.Quantity, req.ExpiryDate)
		if err != nil {
			return err
		}
		if err := repos.IngredientRepo().SaveWithLock(ctx, ing); err != nil {
			return err
		}

		if result.QuantityChanged {
			movementType := ingredient.MovementIn
			delta := result.NewQuantity.Sub(result.PreviousQuantity)
			if delta.IsNegative() {
				movementType = ingredient.MovementOut
				delta = delta.Neg()
			}
			batchID := result.BatchID
			movement, err := ingredient.NewStockMovement(
				movementType, ingredient.ReasonManualAdjustment,
				ing.ID, ing.Name, &batchID,
				delta, result.PreviousQuantity, result.NewQuantity,
				nil,
			)
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Create(ctx, movement); err != nil {
				return err
			}
		}

		response = &AdjustBatchResponse{
			Ingredient:       ToIngredientResponse(ing),
			BatchID:          result.BatchID,
			PreviousQuantity: result.PreviousQuantity,
			NewQuantity:      result.NewQuantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, ing)
	return response, nil
}

// GetByID retrieves an ingredient with its batch ledger
func (s *IngredientService) GetByID(ctx context.Context, ingredientID uuid.UUID) (*IngredientResponse, error) {
	ing, err := s.ingredientRepo.FindByID(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	response := ToIngredientResponse(ing)
	return &response, nil
}

// List retrieves ingredients with pagination and filters
func (s *IngredientService) List(ctx context.Context, filter IngredientListFilter) (*shared.Paginated[IngredientResponse], error) {
	repoFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		repoFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		repoFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		repoFilter.OrderDir = filter.OrderDir
	}
	repoFilter.Search = filter.Search
	if filter.Category != "" {
		repoFilter.Filters["category"] = filter.Category
	}

	items, err := s.ingredientRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.ingredientRepo.Count(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]IngredientResponse, 0, len(items))
	for idx := range items {
		responses = append(responses, ToIngredientResponse(&items[idx]))
	}
	result := shared.NewPaginated(responses, total, repoFilter.Page, repoFilter.PageSize)
	return &result, nil
}

// ListBatches retrieves the batch ledger of an ingredient in expiry order
func (s *IngredientService) ListBatches(ctx context.Context, ingredientID uuid.UUID) ([]BatchResponse, error) {
	ing, err := s.ingredientRepo.FindByID(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	batches := make([]BatchResponse, 0, len(ing.Batches))
	for idx := range ing.Batches {
		batches = append(batches, ToBatchResponse(&ing.Batches[idx]))
	}
	return batches, nil
}

// TotalQuantity reports the summed stock of an ingredient
func (s *IngredientService) TotalQuantity(ctx context.Context, ingredientID uuid.UUID) (*TotalQuantityResponse, error) {
	ing, err := s.ingredientRepo.FindByID(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	return &TotalQuantityResponse{
		IngredientID:  ing.ID,
		Name:          ing.Name,
		Unit:          ing.Unit,
		TotalQuantity: ing.TotalQuantity(),
	}, nil
}

// Update changes the catalog attributes of an ingredient
func (s *IngredientService) Update(ctx context.Context, ingredientID uuid.UUID, req UpdateIngredientRequest) (*IngredientResponse, error) {
	ing, err := s.ingredientRepo.FindByID(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	if err := ing.UpdateDetails(req.Name, req.Unit, req.Category); err != nil {
		return nil, err
	}
	if err := s.ingredientRepo.SaveWithLock(ctx, ing); err != nil {
		return nil, err
	}
	response := ToIngredientResponse(ing)
	return &response, nil
}

// Delete removes an ingredient and its batches. Movement history is kept:
// it carries a denormalized copy of the ingredient name.
func (s *IngredientService) Delete(ctx context.Context, ingredientID uuid.UUID) error {
	if _, err := s.ingredientRepo.FindByID(ctx, ingredientID); err != nil {
		return err
	}
	return s.ingredientRepo.Delete(ctx, ingredientID)
}

// Alerts reports stock that expires within the alert window and ingredients
// whose total stock fell below the threshold
func (s *IngredientService) Alerts(ctx context.Context) (*AlertsResponse, error) {
	now := time.Now()
	expiring, err := s.ingredientRepo.FindWithExpiringBatches(ctx, now, now.Add(s.thresholds.ExpiryWindow))
	if err != nil {
		return nil, err
	}

	response := &AlertsResponse{
		ExpiringSoon: make([]ExpiryAlert, 0),
		LowStock:     make([]LowStockAlert, 0),
	}

	for idx := range expiring {
		ing := &expiring[idx]
		// group same-day batches into one alert line
		byDay := make(map[string]*ExpiryAlert)
		order := make([]string, 0)
		for bIdx := range ing.Batches {
			batch := &ing.Batches[bIdx]
			if !batch.HasStock() || batch.ExpiryDate.Before(now) || batch.ExpiryDate.After(now.Add(s.thresholds.ExpiryWindow)) {
				continue
			}
			key := batch.ExpiryDate.Format("2006-01-02")
			alert, ok := byDay[key]
			if !ok {
				alert = &ExpiryAlert{
					IngredientID:   ing.ID,
					IngredientName: ing.Name,
					Unit:           ing.Unit,
					Category:       ing.Category,
					ExpiryDate:     batch.ExpiryDate,
					TotalQuantity:  decimal.Zero,
				}
				byDay[key] = alert
				order = append(order, key)
			}
			alert.TotalQuantity = alert.TotalQuantity.Add(batch.CurrentQuantity)
		}
		for _, key := range order {
			response.ExpiringSoon = append(response.ExpiringSoon, *byDay[key])
		}
	}

	all, err := s.ingredientRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	for idx := range all {
		ing := &all[idx]
		total := ing.TotalQuantity()
		if total.LessThan(s.thresholds.LowStock) {
			response.LowStock = append(response.LowStock, LowStockAlert{
				IngredientID:   ing.ID,
				IngredientName: ing.Name,
				Unit:           ing.Unit,
				Category:       ing.Category,
				TotalQuantity:  total,
				Threshold:      s.thresholds.LowStock,
			})
		}
	}

	return response, nil
}

// CleanupExpired writes off all stock past its expiry date, recording an
// expired movement per removed batch
func (s *IngredientService) CleanupExpired(ctx context.Context) (*CleanupResponse, error) {
	now := time.Now()
	response := &CleanupResponse{QuantityRemoved: decimal.Zero}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		expired, err := repos.IngredientRepo().FindWithExpiringBatches(ctx, time.Time{}, now)
		if err != nil {
			return err
		}

		for idx := range expired {
			ing := &expired[idx]
			removed := ing.RemoveExpiredBatches(now)
			if len(removed) == 0 {
				continue
			}
			if err := repos.IngredientRepo().SaveWithLock(ctx, ing); err != nil {
				return err
			}

			movements := make([]*ingredient.StockMovement, 0, len(removed))
			for _, batch := range removed {
				batchID := batch.ID
				movement, err := ingredient.NewStockMovement(
					ingredient.MovementOut, ingredient.ReasonExpired,
					ing.ID, ing.Name, &batchID,
					batch.CurrentQuantity, batch.CurrentQuantity, decimal.Zero,
					nil,
				)
				if err != nil {
					return err
				}
				movements = append(movements, movement)
				response.BatchesRemoved++
				response.QuantityRemoved = response.QuantityRemoved.Add(batch.CurrentQuantity)
			}
			if err := repos.MovementRepo().CreateAll(ctx, movements); err != nil {
				return err
			}
			response.IngredientsTouched++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}
