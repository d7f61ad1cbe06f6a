package ordering

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantry/backend/internal/domain/ingredient"
	"github.com/pantry/backend/internal/domain/menu"
	"github.com/pantry/backend/internal/domain/order"
	"github.com/pantry/backend/internal/domain/shared"
)

// ---- in-memory fakes ----

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

func (r *fakeIngredientRepo) put(ing *ingredient.Ingredient) {
	r.items[ing.ID] = cloneIngredient(ing)
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

type fakeMenuRepo struct {
	items map[uuid.UUID]*menu.Menu
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{items: make(map[uuid.UUID]*menu.Menu)}
}

func (r *fakeMenuRepo) FindByID(_ context.Context, id uuid.UUID) (*menu.Menu, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return m, nil
}

func (r *fakeMenuRepo) FindByName(_ context.Context, name string) (*menu.Menu, error) {
	for _, m := range r.items {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMenuRepo) FindAll(_ context.Context, _ shared.Filter) ([]menu.Menu, error) {
	out := make([]menu.Menu, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMenuRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *fakeMenuRepo) Save(_ context.Context, m *menu.Menu) error {
	r.items[m.ID] = m
	return nil
}

func (r *fakeMenuRepo) Delete(_ context.Context, id uuid.UUID) error {
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
	return o, nil
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
	r.items[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
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

// ---- test fixture ----

type fixture struct {
	ingredients *fakeIngredientRepo
	menus       *fakeMenuRepo
	orders      *fakeOrderRepo
	movements   *fakeMovementRepo
	service     *OrderService
}

func newFixture() *fixture {
	f := &fixture{
		ingredients: newFakeIngredientRepo(),
		menus:       newFakeMenuRepo(),
		orders:      newFakeOrderRepo(),
		movements:   newFakeMovementRepo(),
	}
	scope := NewNoOpTransactionScope(f.orders, f.menus, f.ingredients, f.movements)
	f.service = NewOrderService(f.orders, scope)
	return f
}

func (f *fixture) addIngredient(t *testing.T, name string, quantities []int64, expiries []time.Time) *ingredient.Ingredient {
	t.Helper()
	ing, err := ingredient.NewIngredient(name, "kg", "test")
	require.NoError(t, err)
	for idx := range quantities {
		_, err := ing.AddStock(decimal.NewFromInt(quantities[idx]), expiries[idx])
		require.NoError(t, err)
	}
	ing.ClearDomainEvents()
	f.ingredients.put(ing)
	return ing
}

func (f *fixture) addMenu(t *testing.T, name string, requirements map[*ingredient.Ingredient]decimal.Decimal) *menu.Menu {
	t.Helper()
	m, err := menu.NewMenu(name, "", decimal.NewFromInt(10))
	require.NoError(t, err)
	for ing, qty := range requirements {
		require.NoError(t, m.AddRequirement(ing.ID, ing.Name, ing.Unit, qty))
	}
	require.NoError(t, f.menus.Save(context.Background(), m))
	return m
}

func days(n int) time.Time {
	return time.Now().AddDate(0, 0, n)
}

// ---- tests ----

func TestOrderService_Place(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts stock across batches and records usage", func(t *testing.T) {
		f := newFixture()
		tomato := f.addIngredient(t, "Tomato", []int64{5, 5}, []time.Time{days(3), days(10)})
		m := f.addMenu(t, "Margherita", map[*ingredient.Ingredient]decimal.Decimal{
			tomato: decimal.NewFromFloat(3.5),
		})

		resp, err := f.service.Place(ctx, PlaceOrderRequest{MenuID: m.ID, Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, "Margherita", resp.MenuName)
		assert.Equal(t, 2, resp.Quantity)
		assert.Equal(t, order.StatusCompleted, resp.Status)

		// 7 needed: 5 from the earlier batch, 2 from the later one
		require.Len(t, resp.IngredientsUsed, 2)
		assert.True(t, resp.IngredientsUsed[0].QuantityUsed.Equal(decimal.NewFromInt(5)))
		assert.True(t, resp.IngredientsUsed[1].QuantityUsed.Equal(decimal.NewFromInt(2)))

		stored, err := f.ingredients.FindByID(ctx, tomato.ID)
		require.NoError(t, err)
		assert.True(t, stored.TotalQuantity().Equal(decimal.NewFromInt(3)))
		require.Len(t, stored.Batches, 1)

		outMovements, err := f.movements.FindByType(ctx, ingredient.MovementOut, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, outMovements, 2)
		for _, mv := range outMovements {
			assert.Equal(t, ingredient.ReasonOrder, mv.Reason)
			require.NotNil(t, mv.ReferenceID)
			assert.Equal(t, resp.ID, *mv.ReferenceID)
		}

		saved, err := f.orders.FindByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Len(t, saved.IngredientsUsed, 2)
	})

	t.Run("insufficient stock on a later ingredient leaves everything untouched", func(t *testing.T) {
		f := newFixture()
		tomato := f.addIngredient(t, "Tomato", []int64{10}, []time.Time{days(3)})
		basil := f.addIngredient(t, "Basil", []int64{1}, []time.Time{days(3)})
		m, err := menu.NewMenu("Margherita", "", decimal.NewFromInt(10))
		require.NoError(t, err)
		// requirement order is fixed: tomato succeeds, then basil falls short
		require.NoError(t, m.AddRequirement(tomato.ID, tomato.Name, tomato.Unit, decimal.NewFromInt(2)))
		require.NoError(t, m.AddRequirement(basil.ID, basil.Name, basil.Unit, decimal.NewFromInt(2)))
		require.NoError(t, f.menus.Save(ctx, m))

		_, err = f.service.Place(ctx, PlaceOrderRequest{MenuID: m.ID, Quantity: 1})
		require.Error(t, err)

		var insufficientErr *ingredient.InsufficientStockError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, "Basil", insufficientErr.IngredientName)
		assert.True(t, insufficientErr.Needed.Equal(decimal.NewFromInt(2)))
		assert.True(t, insufficientErr.Available.Equal(decimal.NewFromInt(1)))

		storedTomato, err := f.ingredients.FindByID(ctx, tomato.ID)
		require.NoError(t, err)
		assert.True(t, storedTomato.TotalQuantity().Equal(decimal.NewFromInt(10)))
		storedBasil, err := f.ingredients.FindByID(ctx, basil.ID)
		require.NoError(t, err)
		assert.True(t, storedBasil.TotalQuantity().Equal(decimal.NewFromInt(1)))

		orders, err := f.orders.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.Empty(t, f.movements.movements)
	})

	t.Run("unknown menu returns not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Place(ctx, PlaceOrderRequest{MenuID: uuid.New(), Quantity: 1})
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("deleted ingredient aborts the order", func(t *testing.T) {
		f := newFixture()
		tomato := f.addIngredient(t, "Tomato", []int64{10}, []time.Time{days(3)})
		m := f.addMenu(t, "Margherita", map[*ingredient.Ingredient]decimal.Decimal{
			tomato: decimal.NewFromInt(1),
		})
		require.NoError(t, f.ingredients.Delete(ctx, tomato.ID))

		_, err := f.service.Place(ctx, PlaceOrderRequest{MenuID: m.ID, Quantity: 1})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
		assert.Contains(t, domainErr.Message, "Tomato")
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("restores deducted stock batch by batch", func(t *testing.T) {
		f := newFixture()
		tomato := f.addIngredient(t, "Tomato", []int64{5, 5}, []time.Time{days(3), days(10)})
		m := f.addMenu(t, "Margherita", map[*ingredient.Ingredient]decimal.Decimal{
			tomato: decimal.NewFromInt(3),
		})

		placed, err := f.service.Place(ctx, PlaceOrderRequest{MenuID: m.ID, Quantity: 1})
		require.NoError(t, err)

		resp, err := f.service.Cancel(ctx, placed.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.RestoredLines)
		assert.Equal(t, 0, resp.SkippedLines)

		stored, err := f.ingredients.FindByID(ctx, tomato.ID)
		require.NoError(t, err)
		assert.True(t, stored.TotalQuantity().Equal(decimal.NewFromInt(10)))

		_, err = f.orders.FindByID(ctx, placed.ID)
		require.ErrorIs(t, err, shared.ErrNotFound)

		inMovements, err := f.movements.FindByType(ctx, ingredient.MovementIn, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, inMovements, 1)
		assert.Equal(t, ingredient.ReasonOrderCancellation, inMovements[0].Reason)
		require.NotNil(t, inMovements[0].ReferenceID)
		assert.Equal(t, placed.ID, *inMovements[0].ReferenceID)
	})

	t.Run("line whose batch was pruned is skipped without a movement", func(t *testing.T) {
		f := newFixture()
		tomato := f.addIngredient(t, "Tomato", []int64{5}, []time.Time{days(3)})
		m := f.addMenu(t, "Margherita", map[*ingredient.Ingredient]decimal.Decimal{
			tomato: decimal.NewFromInt(5),
		})

		// the order fully drains the only batch, which prunes it
		placed, err := f.service.Place(ctx, PlaceOrderRequest{MenuID: m.ID, Quantity: 1})
		require.NoError(t, err)

		resp, err := f.service.Cancel(ctx, placed.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, resp.RestoredLines)
		assert.Equal(t, 1, resp.SkippedLines)

		stored, err := f.ingredients.FindByID(ctx, tomato.ID)
		require.NoError(t, err)
		assert.True(t, stored.TotalQuantity().IsZero())

		inMovements, err := f.movements.FindByType(ctx, ingredient.MovementIn, shared.Filter{})
		require.NoError(t, err)
		assert.Empty(t, inMovements)
	})

	t.Run("line whose ingredient was deleted is skipped", func(t *testing.T) {
		f := newFixture()
		tomato := f.addIngredient(t, "Tomato", []int64{5}, []time.Time{days(3)})
		m := f.addMenu(t, "Margherita", map[*ingredient.Ingredient]decimal.Decimal{
			tomato: decimal.NewFromInt(2),
		})

		placed, err := f.service.Place(ctx, PlaceOrderRequest{MenuID: m.ID, Quantity: 1})
		require.NoError(t, err)
		require.NoError(t, f.ingredients.Delete(ctx, tomato.ID))

		resp, err := f.service.Cancel(ctx, placed.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, resp.RestoredLines)
		assert.Equal(t, 1, resp.SkippedLines)

		_, err = f.orders.FindByID(ctx, placed.ID)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown order returns not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.Cancel(ctx, uuid.New())
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tomato := f.addIngredient(t, "Tomato", []int64{100}, []time.Time{days(30)})
	m := f.addMenu(t, "Margherita", map[*ingredient.Ingredient]decimal.Decimal{
		tomato: decimal.NewFromInt(1),
	})

	for idx := 0; idx < 3; idx++ {
		_, err := f.service.Place(ctx, PlaceOrderRequest{MenuID: m.ID, Quantity: 1})
		require.NoError(t, err)
	}

	result, err := f.service.List(ctx, OrderListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Len(t, result.Items, 3)
}
