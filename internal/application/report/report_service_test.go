package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/shared"
)

type fakeIngredientRepo struct {
	items []*ingredient.Ingredient
}

func (r *fakeIngredientRepo) FindByID(_ context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	for _, ing := range r.items {
		if ing.ID == id {
			return ing, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeIngredientRepo) FindByName(_ context.Context, name string) (*ingredient.Ingredient, error) {
	for _, ing := range r.items {
		if ing.Name == name {
			return ing, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeIngredientRepo) FindAll(_ context.Context, filter shared.Filter) ([]ingredient.Ingredient, error) {
	out := make([]ingredient.Ingredient, 0, len(r.items))
	category, hasCategory := "", false
	if filter.Filters != nil {
		if v, ok := filter.Filters["category"]; ok {
			category, hasCategory = v.(string), true
		}
	}
	for _, ing := range r.items {
		if hasCategory && ing.Category != category {
			continue
		}
		out = append(out, *ing)
	}
	return out, nil
}

func (r *fakeIngredientRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeIngredientRepo) Save(_ context.Context, ing *ingredient.Ingredient) error {
	r.items = append(r.items, ing)
	return nil
}

func (r *fakeIngredientRepo) SaveWithLock(_ context.Context, ing *ingredient.Ingredient) error {
	return r.Save(context.Background(), ing)
}

func (r *fakeIngredientRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeIngredientRepo) ExistsWithBatchExpiry(_ context.Context, _ string, _ time.Time) (bool, error) {
	return false, nil
}

func (r *fakeIngredientRepo) FindWithExpiringBatches(_ context.Context, from, to time.Time) ([]ingredient.Ingredient, error) {
	out := make([]ingredient.Ingredient, 0)
	for _, ing := range r.items {
		for _, b := range ing.Batches {
			if b.HasStock() && !b.ExpiryDate.Before(from) && !b.ExpiryDate.After(to) {
				out = append(out, *ing)
				break
			}
		}
	}
	return out, nil
}

type fakeMovementRepo struct {
	movements []*ingredient.StockMovement
}

func (r *fakeMovementRepo) Create(_ context.Context, m *ingredient.StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) CreateAll(_ context.Context, ms []*ingredient.StockMovement) error {
	r.movements = append(r.movements, ms...)
	return nil
}

func (r *fakeMovementRepo) FindByType(_ context.Context, t ingredient.MovementType, filter shared.Filter) ([]ingredient.StockMovement, error) {
	matching := make([]ingredient.StockMovement, 0)
	for _, m := range r.movements {
		if m.MovementType == t {
			matching = append(matching, *m)
		}
	}
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matching) {
		return []ingredient.StockMovement{}, nil
	}
	end := start + filter.PageSize
	if end > len(matching) {
		end = len(matching)
	}
	return matching[start:end], nil
}

func (r *fakeMovementRepo) CountByType(_ context.Context, t ingredient.MovementType) (int64, error) {
	var n int64
	for _, m := range r.movements {
		if m.MovementType == t {
			n++
		}
	}
	return n, nil
}

func (r *fakeMovementRepo) FindByIngredient(_ context.Context, id uuid.UUID, _ shared.Filter) ([]ingredient.StockMovement, error) {
	out := make([]ingredient.StockMovement, 0)
	for _, m := range r.movements {
		if m.IngredientID == id {
			out = append(out, *m)
		}
	}
	return out, nil
}

func days(n int) time.Time {
	return time.Now().AddDate(0, 0, n)
}

func stocked(t *testing.T, name, unit, category string, quantities []int64, expiries []time.Time) *ingredient.Ingredient {
	t.Helper()
	ing, err := ingredient.NewIngredient(name, unit, category)
	require.NoError(t, err)
	for idx := range quantities {
		_, err := ing.AddStock(decimal.NewFromInt(quantities[idx]), expiries[idx])
		require.NoError(t, err)
	}
	return ing
}

func TestReportService_CategoryReport(t *testing.T) {
	ingredients := &fakeIngredientRepo{}
	movements := &fakeMovementRepo{}
	service := NewReportService(ingredients, movements, 7*24*time.Hour)
	ctx := context.Background()

	tomato := stocked(t, "Tomato", "kg", "vegetables", []int64{5, 3}, []time.Time{days(3), days(10)})
	basil := stocked(t, "Basil", "g", "herbs", []int64{50}, []time.Time{days(5)})
	require.NoError(t, ingredients.Save(ctx, tomato))
	require.NoError(t, ingredients.Save(ctx, basil))

	result, err := service.CategoryReport(ctx)
	require.NoError(t, err)

	require.Contains(t, result, "vegetables")
	require.Contains(t, result, "herbs")
	require.Len(t, result["vegetables"], 2)
	assert.Equal(t, "Tomato", result["vegetables"][0].Name)
	// sorted by expiry inside the category
	assert.True(t, result["vegetables"][0].ExpiryDate.Before(result["vegetables"][1].ExpiryDate))
	assert.True(t, result["vegetables"][0].TotalQuantity.Equal(decimal.NewFromInt(5)))
}

func TestReportService_DetailedCategoryReport(t *testing.T) {
	ingredients := &fakeIngredientRepo{}
	service := NewReportService(ingredients, &fakeMovementRepo{}, 7*24*time.Hour)
	ctx := context.Background()

	require.NoError(t, ingredients.Save(ctx, stocked(t, "Tomato", "kg", "vegetables", []int64{5}, []time.Time{days(3)})))
	require.NoError(t, ingredients.Save(ctx, stocked(t, "Basil", "g", "herbs", []int64{50}, []time.Time{days(5)})))

	t.Run("all categories sorted by category then expiry", func(t *testing.T) {
		items, err := service.DetailedCategoryReport(ctx, "all")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "herbs", items[0].Category)
		assert.Equal(t, "vegetables", items[1].Category)
	})

	t.Run("single category filter", func(t *testing.T) {
		items, err := service.DetailedCategoryReport(ctx, "herbs")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Basil", items[0].IngredientName)
	})
}

func TestReportService_StockHistory(t *testing.T) {
	movements := &fakeMovementRepo{}
	service := NewReportService(&fakeIngredientRepo{}, movements, 7*24*time.Hour)
	ctx := context.Background()

	ingredientID := uuid.New()
	for idx := 0; idx < 20; idx++ {
		m, err := ingredient.NewStockMovement(
			ingredient.MovementIn, ingredient.ReasonRestock,
			ingredientID, "Tomato", nil,
			decimal.NewFromInt(1), decimal.NewFromInt(int64(idx)), decimal.NewFromInt(int64(idx+1)),
			nil,
		)
		require.NoError(t, err)
		require.NoError(t, movements.Create(ctx, m))
	}

	t.Run("default page size is 15", func(t *testing.T) {
		result, err := service.StockInHistory(ctx, HistoryFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(20), result.Total)
		assert.Len(t, result.Items, 15)
		assert.Equal(t, 2, result.TotalPages)
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		result, err := service.StockInHistory(ctx, HistoryFilter{Page: 2})
		require.NoError(t, err)
		assert.Len(t, result.Items, 5)
	})

	t.Run("out history is empty", func(t *testing.T) {
		result, err := service.StockOutHistory(ctx, HistoryFilter{})
		require.NoError(t, err)
		assert.Empty(t, result.Items)
	})
}

func TestReportService_ExpiryAlerts(t *testing.T) {
	ingredients := &fakeIngredientRepo{}
	service := NewReportService(ingredients, &fakeMovementRepo{}, 7*24*time.Hour)
	ctx := context.Background()

	require.NoError(t, ingredients.Save(ctx, stocked(t, "Milk", "l", "dairy", []int64{4}, []time.Time{days(2)})))
	require.NoError(t, ingredients.Save(ctx, stocked(t, "Flour", "kg", "dry", []int64{100}, []time.Time{days(60)})))

	alerts, err := service.ExpiryAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Milk", alerts[0].IngredientName)
	assert.True(t, alerts[0].TotalQuantity.Equal(decimal.NewFromInt(4)))
}

func TestReportService_Categories(t *testing.T) {
	ingredients := &fakeIngredientRepo{}
	service := NewReportService(ingredients, &fakeMovementRepo{}, 7*24*time.Hour)
	ctx := context.Background()

	require.NoError(t, ingredients.Save(ctx, stocked(t, "Tomato", "kg", "vegetables", []int64{5}, []time.Time{days(3)})))
	require.NoError(t, ingredients.Save(ctx, stocked(t, "Cucumber", "kg", "vegetables", []int64{2}, []time.Time{days(4)})))
	require.NoError(t, ingredients.Save(ctx, stocked(t, "Basil", "g", "herbs", []int64{50}, []time.Time{days(5)})))

	categories, err := service.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"herbs", "vegetables"}, categories)

	stats, err := service.CategoryStatistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "herbs", stats[0].Category)
	assert.Equal(t, 1, stats[0].IngredientCount)
	assert.Equal(t, "vegetables", stats[1].Category)
	assert.Equal(t, 2, stats[1].IngredientCount)
	assert.True(t, stats[1].TotalQuantity.Equal(decimal.NewFromInt(7)))
}
