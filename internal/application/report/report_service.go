package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/shared"
)

// ReportService builds read-side projections over the batch ledger and the
// movement history. It never mutates stock; every report is recomputed from
// the current ledger on request.
type ReportService struct {
	ingredientRepo ingredient.IngredientRepository
	movementRepo   ingredient.StockMovementRepository
	expiryWindow   time.Duration
}

// NewReportService creates a new ReportService
func NewReportService(
	ingredientRepo ingredient.IngredientRepository,
	movementRepo ingredient.StockMovementRepository,
	expiryWindow time.Duration,
) *ReportService {
	return &ReportService{
		ingredientRepo: ingredientRepo,
		movementRepo:   movementRepo,
		expiryWindow:   expiryWindow,
	}
}

// groupByExpiryDay buckets an ingredient's stocked batches by expiry day,
// in expiry order
func groupByExpiryDay(ing *ingredient.Ingredient) []DetailedReportItem {
	byDay := make(map[string]*DetailedReportItem)
	order := make([]string, 0)

	for idx := range ing.Batches {
		batch := &ing.Batches[idx]
		if !batch.HasStock() {
			continue
		}
		key := batch.ExpiryDate.Format("2006-01-02")
		group, ok := byDay[key]
		if !ok {
			group = &DetailedReportItem{
				IngredientID:   ing.ID,
				IngredientName: ing.Name,
				Unit:           ing.Unit,
				Category:       ing.Category,
				ExpiryDate:     batch.ExpiryDate,
				TotalQuantity:  decimal.Zero,
				Batches:        make([]ReportBatch, 0, 1),
			}
			byDay[key] = group
			order = append(order, key)
		}
		group.TotalQuantity = group.TotalQuantity.Add(batch.CurrentQuantity)
		group.Batches = append(group.Batches, ReportBatch{
			BatchID:   batch.ID,
			Quantity:  batch.CurrentQuantity,
			EntryDate: batch.EntryDate,
		})
	}

	items := make([]DetailedReportItem, 0, len(order))
	for _, key := range order {
		items = append(items, *byDay[key])
	}
	return items
}

// CategoryReport groups all stock by category, then by expiry day
func (s *ReportService) CategoryReport(ctx context.Context) (CategoryReport, error) {
	ingredients, err := s.ingredientRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	result := make(CategoryReport)
	for idx := range ingredients {
		ing := &ingredients[idx]
		for _, group := range groupByExpiryDay(ing) {
			result[ing.Category] = append(result[ing.Category], CategoryReportItem{
				Name:          group.IngredientName,
				Unit:          group.Unit,
				ExpiryDate:    group.ExpiryDate,
				TotalQuantity: group.TotalQuantity,
				Batches:       group.Batches,
			})
		}
	}

	for category := range result {
		items := result[category]
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].ExpiryDate.Before(items[b].ExpiryDate)
		})
		result[category] = items
	}
	return result, nil
}

// DetailedCategoryReport lists expiry-day groups, optionally restricted to
// one category, sorted by category then expiry date
func (s *ReportService) DetailedCategoryReport(ctx context.Context, category string) ([]DetailedReportItem, error) {
	filter := shared.Filter{Filters: make(map[string]interface{})}
	if category != "" && category != "all" {
		filter.Filters["category"] = category
	}
	ingredients, err := s.ingredientRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]DetailedReportItem, 0)
	for idx := range ingredients {
		items = append(items, groupByExpiryDay(&ingredients[idx])...)
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Category != items[b].Category {
			return items[a].Category < items[b].Category
		}
		return items[a].ExpiryDate.Before(items[b].ExpiryDate)
	})
	return items, nil
}

func (s *ReportService) history(ctx context.Context, movementType ingredient.MovementType, filter HistoryFilter) (*shared.Paginated[StockMovementResponse], error) {
	repoFilter := shared.DefaultFilter()
	repoFilter.PageSize = 15
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		repoFilter.PageSize = filter.PageSize
	}

	movements, err := s.movementRepo.FindByType(ctx, movementType, repoFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.movementRepo.CountByType(ctx, movementType)
	if err != nil {
		return nil, err
	}

	responses := make([]StockMovementResponse, 0, len(movements))
	for idx := range movements {
		responses = append(responses, ToStockMovementResponse(&movements[idx]))
	}
	result := shared.NewPaginated(responses, total, repoFilter.Page, repoFilter.PageSize)
	return &result, nil
}

// StockInHistory lists inbound movements, newest first
func (s *ReportService) StockInHistory(ctx context.Context, filter HistoryFilter) (*shared.Paginated[StockMovementResponse], error) {
	return s.history(ctx, ingredient.MovementIn, filter)
}

// StockOutHistory lists outbound movements, newest first
func (s *ReportService) StockOutHistory(ctx context.Context, filter HistoryFilter) (*shared.Paginated[StockMovementResponse], error) {
	return s.history(ctx, ingredient.MovementOut, filter)
}

// ExpiryAlerts lists stock expiring within the alert window, grouped by
// expiry day and sorted soonest first
func (s *ReportService) ExpiryAlerts(ctx context.Context) ([]ExpiryAlertItem, error) {
	now := time.Now()
	ingredients, err := s.ingredientRepo.FindWithExpiringBatches(ctx, now, now.Add(s.expiryWindow))
	if err != nil {
		return nil, err
	}

	alerts := make([]ExpiryAlertItem, 0)
	for idx := range ingredients {
		ing := &ingredients[idx]
		for _, group := range groupByExpiryDay(ing) {
			if group.ExpiryDate.Before(now) || group.ExpiryDate.After(now.Add(s.expiryWindow)) {
				continue
			}
			alerts = append(alerts, ExpiryAlertItem{
				IngredientID:   group.IngredientID,
				IngredientName: group.IngredientName,
				Unit:           group.Unit,
				Category:       group.Category,
				ExpiryDate:     group.ExpiryDate,
				TotalQuantity:  group.TotalQuantity,
			})
		}
	}
	sort.SliceStable(alerts, func(a, b int) bool {
		return alerts[a].ExpiryDate.Before(alerts[b].ExpiryDate)
	})
	return alerts, nil
}

// Categories lists the distinct ingredient categories in use
func (s *ReportService) Categories(ctx context.Context) ([]string, error) {
	ingredients, err := s.ingredientRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for idx := range ingredients {
		category := ingredients[idx].Category
		if !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// CategoryStatistics summarizes ingredient count and total stock per category
func (s *ReportService) CategoryStatistics(ctx context.Context) ([]CategoryStats, error) {
	ingredients, err := s.ingredientRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategoryStats)
	order := make([]string, 0)
	for idx := range ingredients {
		ing := &ingredients[idx]
		stats, ok := byCategory[ing.Category]
		if !ok {
			stats = &CategoryStats{Category: ing.Category, TotalQuantity: decimal.Zero}
			byCategory[ing.Category] = stats
			order = append(order, ing.Category)
		}
		stats.IngredientCount++
		stats.TotalQuantity = stats.TotalQuantity.Add(ing.TotalQuantity())
	}

	sort.Strings(order)
	result := make([]CategoryStats, 0, len(order))
	for _, category := range order {
		result = append(result, *byCategory[category])
	}
	return result, nil
}
