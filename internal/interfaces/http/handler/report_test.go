package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reportapp "github.com/pantry/backend/internal/application/report"
	"github.com/pantry/backend/internal/domain/ingredient"
)

func TestReportCategories(t *testing.T) {
	app := newTestApp()
	app.seedIngredient(t, "Tomato", "kg", "Vegetables", 5, inDays(5))
	app.seedIngredient(t, "Flour", "kg", "Baking", 20, inDays(30))

	w := app.request(t, http.MethodGet, "/api/v1/categories", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var categories []string
	decodeData(t, w, &categories)
	assert.ElementsMatch(t, []string{"Vegetables", "Baking"}, categories)
}

func TestReportCategoryStats(t *testing.T) {
	app := newTestApp()
	app.seedIngredient(t, "Tomato", "kg", "Vegetables", 5, inDays(5))
	app.seedIngredient(t, "Cucumber", "kg", "Vegetables", 3, inDays(4))

	w := app.request(t, http.MethodGet, "/api/v1/categories/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var stats []reportapp.CategoryStats
	decodeData(t, w, &stats)
	require.Len(t, stats, 1)
	assert.Equal(t, "Vegetables", stats[0].Category)
	assert.Equal(t, 2, stats[0].IngredientCount)
	assert.True(t, stats[0].TotalQuantity.Equal(decimal.NewFromInt(8)))
}

func TestReportCategoryReport(t *testing.T) {
	app := newTestApp()
	app.seedIngredient(t, "Tomato", "kg", "Vegetables", 5, inDays(5))

	w := app.request(t, http.MethodGet, "/api/v1/reports/categories", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var report reportapp.CategoryReport
	decodeData(t, w, &report)
	require.Contains(t, report, "Vegetables")
	require.Len(t, report["Vegetables"], 1)
	assert.Equal(t, "Tomato", report["Vegetables"][0].Name)
}

func TestReportDetailedCategoryFilter(t *testing.T) {
	app := newTestApp()
	app.seedIngredient(t, "Tomato", "kg", "Vegetables", 5, inDays(5))
	app.seedIngredient(t, "Flour", "kg", "Baking", 20, inDays(30))

	w := app.request(t, http.MethodGet, "/api/v1/reports/categories/detailed?category=Baking", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var items []reportapp.DetailedReportItem
	decodeData(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Flour", items[0].IngredientName)
}

func TestReportStockHistory(t *testing.T) {
	app := newTestApp()
	ing := app.seedIngredient(t, "Tomato", "kg", "Vegetables", 10, inDays(5))

	// incoming stock and an order produce in and out movements
	w := app.request(t, http.MethodPost, "/api/v1/ingredients/"+ing.ID.String()+"/stock", map[string]any{
		"quantity":    "4",
		"expiry_date": inDays(8),
	})
	require.Equal(t, http.StatusOK, w.Code)

	m := app.seedMenu(t, "Tomato Soup", ing, 2)
	w = app.request(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"menu_id":  m.ID,
		"quantity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.request(t, http.MethodGet, "/api/v1/reports/stock-in", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var in []reportapp.StockMovementResponse
	decodeData(t, w, &in)
	require.Len(t, in, 1)
	assert.Equal(t, ingredient.MovementIn, in[0].MovementType)
	assert.True(t, in[0].Quantity.Equal(decimal.NewFromInt(4)))

	w = app.request(t, http.MethodGet, "/api/v1/reports/stock-out", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out []reportapp.StockMovementResponse
	decodeData(t, w, &out)
	require.Len(t, out, 1)
	assert.Equal(t, ingredient.MovementOut, out[0].MovementType)
	assert.Equal(t, ingredient.ReasonOrder, out[0].Reason)
}

func TestReportExpiryAlerts(t *testing.T) {
	app := newTestApp()
	app.seedIngredient(t, "Cream", "l", "Dairy", 2, inDays(2))
	app.seedIngredient(t, "Rice", "kg", "Grains", 12, inDays(60))

	w := app.request(t, http.MethodGet, "/api/v1/reports/expiry-alerts", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var alerts []reportapp.ExpiryAlertItem
	decodeData(t, w, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Cream", alerts[0].IngredientName)
}
