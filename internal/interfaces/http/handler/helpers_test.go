package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/pantry/backend/internal/application/catalog"
	inventoryapp "github.com/pantry/backend/internal/application/inventory"
	orderingapp "github.com/pantry/backend/internal/application/ordering"
	reportapp "github.com/pantry/backend/internal/application/report"
	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/menu"
	"github.com/pantry/backend/internal/domain/order"
	"github.com/pantry/backend/internal/domain/shared"
	"github.com/pantry/backend/internal/interfaces/http/dto"
	"github.com/pantry/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// ---- in-memory fakes shared by the handler tests ----

func cloneIngredient(ing *ingredient.Ingredient) *ingredient.Ingredient {
	c := *ing
	c.Batches = make([]ingredient.Batch, len(ing.Batches))
	copy(c.Batches, ing.Batches)
	return &c
}

type fakeIngredientRepo struct {
	items map[uuid.UUID]*ingredient.Ingredient
}

func newFakeIngredientRepo() *fakeIngredientRepo {
	return &fakeIngredientRepo{items: make(map[uuid.UUID]*ingredient.Ingredient)}
}

func (r *fakeIngredientRepo) FindByID(_ context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	ing, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneIngredient(ing), nil
}

func (r *fakeIngredientRepo) FindByName(_ context.Context, name string) (*ingredient.Ingredient, error) {
	for _, ing := range r.items {
		if ing.Name == name {
			return cloneIngredient(ing), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeIngredientRepo) FindAll(_ context.Context, _ shared.Filter) ([]ingredient.Ingredient, error) {
	out := make([]ingredient.Ingredient, 0, len(r.items))
	for _, ing := range r.items {
		out = append(out, *cloneIngredient(ing))
	}
	return out, nil
}

func (r *fakeIngredientRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeIngredientRepo) Save(_ context.Context, ing *ingredient.Ingredient) error {
	r.items[ing.ID] = cloneIngredient(ing)
	return nil
}

func (r *fakeIngredientRepo) SaveWithLock(_ context.Context, ing *ingredient.Ingredient) error {
	stored, ok := r.items[ing.ID]
	if ok && stored.Version != ing.Version {
		return shared.ErrConcurrencyConflict
	}
	ing.IncrementVersion()
	r.items[ing.ID] = cloneIngredient(ing)
	return nil
}

func (r *fakeIngredientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeIngredientRepo) ExistsWithBatchExpiry(_ context.Context, name string, expiry time.Time) (bool, error) {
	for _, ing := range r.items {
		if !strings.EqualFold(ing.Name, name) {
			continue
		}
		if ing.FindBatchByExpiry(expiry) != nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeIngredientRepo) FindWithExpiringBatches(_ context.Context, from, to time.Time) ([]ingredient.Ingredient, error) {
	out := make([]ingredient.Ingredient, 0)
	for _, ing := range r.items {
		for _, b := range ing.Batches {
			if b.HasStock() && !b.ExpiryDate.Before(from) && !b.ExpiryDate.After(to) {
				out = append(out, *cloneIngredient(ing))
				break
			}
		}
	}
	return out, nil
}

type fakeMovementRepo struct {
	movements []*ingredient.StockMovement
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{movements: make([]*ingredient.StockMovement, 0)}
}

func (r *fakeMovementRepo) Create(_ context.Context, m *ingredient.StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) CreateAll(_ context.Context, ms []*ingredient.StockMovement) error {
	r.movements = append(r.movements, ms...)
	return nil
}

func (r *fakeMovementRepo) FindByType(_ context.Context, t ingredient.MovementType, _ shared.Filter) ([]ingredient.StockMovement, error) {
	out := make([]ingredient.StockMovement, 0)
	for _, m := range r.movements {
		if m.MovementType == t {
			out = append(out, *m)
		}
	}
	return out, nil
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

type fakeMenuRepo struct {
	items map[uuid.UUID]*menu.Menu
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{items: make(map[uuid.UUID]*menu.Menu)}
}

func cloneMenu(m *menu.Menu) *menu.Menu {
	c := *m
	c.Requirements = make([]menu.MenuRequirement, len(m.Requirements))
	copy(c.Requirements, m.Requirements)
	return &c
}

func (r *fakeMenuRepo) FindByID(_ context.Context, id uuid.UUID) (*menu.Menu, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneMenu(m), nil
}

func (r *fakeMenuRepo) FindByName(_ context.Context, name string) (*menu.Menu, error) {
	for _, m := range r.items {
		if m.Name == name {
			return cloneMenu(m), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMenuRepo) FindAll(_ context.Context, _ shared.Filter) ([]menu.Menu, error) {
	out := make([]menu.Menu, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, *cloneMenu(m))
	}
	return out, nil
}

func (r *fakeMenuRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeMenuRepo) Save(_ context.Context, m *menu.Menu) error {
	r.items[m.ID] = cloneMenu(m)
	return nil
}

func (r *fakeMenuRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeOrderRepo struct {
	items map[uuid.UUID]*order.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{items: make(map[uuid.UUID]*order.Order)}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := *o
	return &c, nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]order.Order, error) {
	out := make([]order.Order, 0, len(r.items))
	for _, o := range r.items {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeOrderRepo) Save(_ context.Context, o *order.Order) error {
	c := *o
	r.items[o.ID] = &c
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// ---- test application wiring ----

type testApp struct {
	ingredients *fakeIngredientRepo
	movements   *fakeMovementRepo
	menus       *fakeMenuRepo
	orders      *fakeOrderRepo

	ingredientService *inventoryapp.IngredientService
	menuService       *catalogapp.MenuService
	orderService      *orderingapp.OrderService
	reportService     *reportapp.ReportService

	engine *gin.Engine
}

func newTestApp() *testApp {
	a := &testApp{
		ingredients: newFakeIngredientRepo(),
		movements:   newFakeMovementRepo(),
		menus:       newFakeMenuRepo(),
		orders:      newFakeOrderRepo(),
	}

	stockScope := inventoryapp.NewNoOpTransactionScope(a.ingredients, a.movements)
	orderScope := orderingapp.NewNoOpTransactionScope(a.orders, a.menus, a.ingredients, a.movements)

	a.ingredientService = inventoryapp.NewIngredientService(a.ingredients, a.movements, stockScope, inventoryapp.DefaultAlertThresholds())
	a.menuService = catalogapp.NewMenuService(a.menus, a.ingredients)
	a.orderService = orderingapp.NewOrderService(a.orders, orderScope)
	a.reportService = reportapp.NewReportService(a.ingredients, a.movements, 7*24*time.Hour)

	a.engine = gin.New()
	api := a.engine.Group("/api/v1")
	NewIngredientHandler(a.ingredientService).RegisterRoutes(api)
	NewMenuHandler(a.menuService).RegisterRoutes(api)
	NewOrderHandler(a.orderService).RegisterRoutes(api)
	NewReportHandler(a.reportService).RegisterRoutes(api)
	return a
}

func (a *testApp) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	resp := decodeResponse(t, w)
	require.True(t, resp.Success, "expected success response, got %s", w.Body.String())
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error, "expected error response, got %s", w.Body.String())
	return resp.Error.Code
}

// seedIngredient creates and stores an ingredient with one batch
func (a *testApp) seedIngredient(t *testing.T, name, unit, category string, qty int64, expiry time.Time) *ingredient.Ingredient {
	t.Helper()
	ing, err := ingredient.NewIngredient(name, unit, category)
	require.NoError(t, err)
	_, err = ing.AddStock(decimalFromInt(qty), expiry)
	require.NoError(t, err)
	require.NoError(t, a.ingredients.Save(context.Background(), ing))
	return ing
}

// seedMenu creates and stores a menu with a single-ingredient recipe
func (a *testApp) seedMenu(t *testing.T, name string, ing *ingredient.Ingredient, perServing int64) *menu.Menu {
	t.Helper()
	m, err := menu.NewMenu(name, "", decimalFromInt(10))
	require.NoError(t, err)
	require.NoError(t, m.AddRequirement(ing.ID, ing.Name, ing.Unit, decimalFromInt(perServing)))
	require.NoError(t, a.menus.Save(context.Background(), m))
	return m
}

func inDays(n int) time.Time {
	return time.Now().AddDate(0, 0, n)
}

func decimalFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
