package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/application/rates"
	"github.com/jhoicas/Contabilidad-api/internal/application/syncengine"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/changeset"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedIdentity struct{ id *entity.Identity }

func (f fixedIdentity) Current() *entity.Identity { return f.id }

var now = time.Date(2024, 1, 20, 12, 0, 0, 0, time.Local)

type fixture struct {
	store  *memstore.DocumentStore
	mirror *mirror.Mirror
	engine *syncengine.Engine
	writer *audit.Writer
	book   *rates.Book
	ledger *ledger.Ledger
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := memstore.NewDocumentStore()
	m := mirror.New(memstore.NewKV(), logger.Nop())
	require.NoError(t, m.Load(context.Background(), "u1"))
	w := audit.NewWriter(fixedIdentity{&entity.Identity{ID: "u1", DisplayName: "Ana"}}, store, m, logger.Nop())
	e := syncengine.NewEngine(m, syncengine.NewStatus(), logger.Nop())
	e.SetBackend(syncengine.NewRemoteBackend(store, w, "u1", time.Second))
	b := rates.NewBook(e, logger.Nop()).WithClock(func() time.Time { return now })
	l := ledger.New(e, b, logger.Nop()).WithClock(func() time.Time { return now })
	return fixture{store: store, mirror: m, engine: e, writer: w, book: b, ledger: l}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func (f fixture) history(t *testing.T) []entity.AuditEntry {
	t.Helper()
	f.engine.Wait()
	h, err := f.writer.History(context.Background())
	require.NoError(t, err)
	return h
}

func (f fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	ing, err := f.ledger.Ingredients.Get(id)
	require.NoError(t, err)
	return ing.CurrentStock
}

// seedRecipe crea un ingrediente con stock y una receta que consume qty por lote.
func (f fixture) seedRecipe(t *testing.T, stock, qty string) (entity.Ingredient, entity.Recipe) {
	t.Helper()
	ctx := context.Background()
	ing, err := f.ledger.Ingredients.Add(ctx, dto.IngredientRequest{
		Name: "Harina", Cost: dec("10"), PresentationSize: dec("1000"), Unit: "g", CurrentStock: dec(stock),
	})
	require.NoError(t, err)
	r, err := f.ledger.Recipes.Add(ctx, dto.RecipeRequest{
		Name:                  "Pan",
		Ingredients:           []dto.RecipeIngredientRequest{{IngredientID: ing.ID, Quantity: dec(qty)}},
		PackagingCostPerBatch: dec("1"),
		LaborCostPerBatch:     dec("2"),
		ItemsPerBatch:         dec("4"),
		ProfitMarginPercent:   dec("50"),
	})
	require.NoError(t, err)
	f.engine.Wait()
	return ing, r
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestTransaction_DerivaMontoUSD(t *testing.T) {
	f := setup(t)
	tx, err := f.ledger.Transactions.Add(context.Background(), dto.TransactionRequest{
		Type: entity.TransactionIncome, Date: "2024-01-15", Description: "Venta",
		AmountBs: dec("1000"), ExchangeRate: ptr(dec("36.5")),
	})
	require.NoError(t, err)
	assert.Equal(t, "27.4", tx.AmountUsd.String())
	assert.Equal(t, entity.DefaultCategory, tx.Category)
	assert.Equal(t, "u1", tx.UserID)

	h := f.history(t)
	require.Len(t, h, 1)
	assert.Equal(t, entity.EventTransactionCreated, h[0].EventType)
	assert.Equal(t, "Ingreso", h[0].EntityType)
	assert.Equal(t, "Venta", h[0].EntityName)
	assert.Equal(t, "Ana", h[0].UserName)
	_, ok := f.store.Get("u1", entity.CollectionTransactions, tx.ID)
	assert.True(t, ok)
}

func TestTransaction_ResuelveTasaDelLibro(t *testing.T) {
	f := setup(t)
	f.mirror.Rates.Insert(entity.ExchangeRate{ID: "2024-01-01", Date: "2024-01-01", Rate: dec("35")})

	tx, err := f.ledger.Transactions.Add(context.Background(), dto.TransactionRequest{
		Type: entity.TransactionExpense, Date: "2024-01-05", Description: "Harina", AmountBs: dec("70"),
	})
	require.NoError(t, err)
	assert.True(t, tx.ExchangeRate.Equal(dec("35")))
	assert.Equal(t, "2", tx.AmountUsd.String())
	assert.Equal(t, "Egreso", tx.EntityType())
}

func TestTransaction_SinTasaEsValidacion(t *testing.T) {
	f := setup(t)
	_, err := f.ledger.Transactions.Add(context.Background(), dto.TransactionRequest{
		Type: entity.TransactionIncome, Date: "2024-01-05", Description: "Venta", AmountBs: dec("10"),
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Zero(t, f.mirror.Transactions.Len())
	assert.Empty(t, f.history(t))
}

func TestTransaction_ValidaCampos(t *testing.T) {
	f := setup(t)
	cases := map[string]dto.TransactionRequest{
		"tipo":        {Type: "otro", Date: "2024-01-05", Description: "x", AmountBs: dec("1"), ExchangeRate: ptr(dec("1"))},
		"fecha":       {Type: "income", Date: "05/01/2024", Description: "x", AmountBs: dec("1"), ExchangeRate: ptr(dec("1"))},
		"descripcion": {Type: "income", Date: "2024-01-05", Description: " ", AmountBs: dec("1"), ExchangeRate: ptr(dec("1"))},
		"monto":       {Type: "income", Date: "2024-01-05", Description: "x", AmountBs: dec("0"), ExchangeRate: ptr(dec("1"))},
		"tasa":        {Type: "income", Date: "2024-01-05", Description: "x", AmountBs: dec("1"), ExchangeRate: ptr(dec("-1"))},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ledger.Transactions.Add(context.Background(), in)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
	assert.Zero(t, f.mirror.Transactions.Len())
}

func TestTransaction_EditarYBorrar(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	in := dto.TransactionRequest{
		Type: entity.TransactionIncome, Date: "2024-01-15", Description: "Venta",
		AmountBs: dec("1000"), ExchangeRate: ptr(dec("40")),
	}
	tx, err := f.ledger.Transactions.Add(ctx, in)
	require.NoError(t, err)
	f.engine.Wait()

	// sin cambios: ni escritura ni historial
	_, err = f.ledger.Transactions.Edit(ctx, tx.ID, in)
	require.NoError(t, err)
	f.engine.Wait()
	assert.Equal(t, 1, f.store.Commits())

	in.AmountBs = dec("2000")
	edited, err := f.ledger.Transactions.Edit(ctx, tx.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "50", edited.AmountUsd.String())

	h := f.history(t)
	require.Len(t, h, 2)
	var edit entity.AuditEntry
	for _, e := range h {
		if e.EventType == entity.EventTransactionEdited {
			edit = e
		}
	}
	fields := map[string]bool{}
	for _, c := range edit.Changes {
		fields[c.Field] = true
	}
	assert.Equal(t, map[string]bool{"amountBs": true, "amountUsd": true}, fields)

	require.NoError(t, f.ledger.Transactions.Delete(ctx, tx.ID))
	f.engine.Wait()
	assert.Zero(t, f.mirror.Transactions.Len())
	_, ok := f.store.Get("u1", entity.CollectionTransactions, tx.ID)
	assert.False(t, ok)
}

func TestTransaction_NoEncontrada(t *testing.T) {
	f := setup(t)
	_, err := f.ledger.Transactions.Edit(context.Background(), "nope", dto.TransactionRequest{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(f.ledger.Transactions.Delete(context.Background(), "nope"), domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Recetas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecipe_CalculaPrecios(t *testing.T) {
	f := setup(t)
	_, r := f.seedRecipe(t, "1000", "200")
	// harina 10/1000 × 200 = 2; +1 empaque = 3; +2 mano de obra = 5; 5/4 × 1.5 = 1.875
	assert.Equal(t, "3", r.CalculatedRecipeOnlyCost.String())
	assert.Equal(t, "5", r.CalculatedTotalCost.String())
	assert.Equal(t, "1.88", r.CalculatedFinalPrice.String())
}

func TestRecipe_CamposCalculadosNoCuentanComoCambio(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ing, r := f.seedRecipe(t, "1000", "200")
	f.engine.Wait()

	_, err := f.ledger.Ingredients.Edit(ctx, ing.ID, dto.IngredientRequest{
		Name: "Harina", Cost: dec("20"), PresentationSize: dec("1000"), Unit: "g", CurrentStock: dec("1000"),
	})
	require.NoError(t, err)
	f.engine.Wait()
	commits := f.store.Commits()

	same := dto.RecipeRequest{
		Name:                  "Pan",
		Ingredients:           []dto.RecipeIngredientRequest{{IngredientID: ing.ID, Quantity: dec("200")}},
		PackagingCostPerBatch: dec("1"), LaborCostPerBatch: dec("2"), ItemsPerBatch: dec("4"), ProfitMarginPercent: dec("50"),
	}
	got, err := f.ledger.Recipes.Edit(ctx, r.ID, same)
	require.NoError(t, err)
	f.engine.Wait()
	assert.Equal(t, commits, f.store.Commits())
	assert.True(t, got.CalculatedFinalPrice.Equal(r.CalculatedFinalPrice))
}

func TestRecipe_CambioDeCantidadSeDescribePorIngrediente(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ing, r := f.seedRecipe(t, "1000", "200")

	_, err := f.ledger.Recipes.Edit(ctx, r.ID, dto.RecipeRequest{
		Name:                  "Pan",
		Ingredients:           []dto.RecipeIngredientRequest{{IngredientID: ing.ID, Quantity: dec("250")}},
		PackagingCostPerBatch: dec("1"), LaborCostPerBatch: dec("2"), ItemsPerBatch: dec("4"), ProfitMarginPercent: dec("50"),
	})
	require.NoError(t, err)

	for _, e := range f.history(t) {
		if e.EventType != entity.EventRecipeEdited {
			continue
		}
		require.Len(t, e.Changes, 1)
		assert.Equal(t, changeset.FieldIngredientQuantityUpdated, e.Changes[0].Field)
		assert.Equal(t, "Cantidad de Harina", e.Changes[0].Label)
		return
	}
	t.Fatal("falta RECIPE_EDITED")
}

// ──────────────────────────────────────────────────────────────────────────────
// Producción y stock
// ──────────────────────────────────────────────────────────────────────────────

func TestProduction_StockInsuficienteNoTocaNada(t *testing.T) {
	f := setup(t)
	ing, r := f.seedRecipe(t, "5", "2")
	f.engine.Wait()
	commits := f.store.Commits()

	_, err := f.ledger.Production.Add(context.Background(), dto.ProductionRequest{RecipeID: r.ID, BatchSize: dec("3")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "Harina")
	assert.True(t, f.stock(t, ing.ID).Equal(dec("5")))
	assert.Zero(t, f.mirror.Production.Len())
	f.engine.Wait()
	assert.Equal(t, commits, f.store.Commits())
}

func TestProduction_EdicionAplicaDeltaNeto(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ing, r := f.seedRecipe(t, "20", "2")

	rec, err := f.ledger.Production.Add(ctx, dto.ProductionRequest{RecipeID: r.ID, BatchSize: dec("3"), Date: "2024-01-18"})
	require.NoError(t, err)
	assert.True(t, f.stock(t, ing.ID).Equal(dec("14")), "3 lotes × 2 = 6")
	assert.Equal(t, "Pan", rec.ProductName)
	f.engine.Wait()

	_, err = f.ledger.Production.Edit(ctx, rec.ID, dto.ProductionRequest{RecipeID: r.ID, BatchSize: dec("5"), Date: "2024-01-18"})
	require.NoError(t, err)
	assert.True(t, f.stock(t, ing.ID).Equal(dec("10")), "solo 4 más, no 10")

	f.engine.Wait()
	doc, ok := f.store.Get("u1", entity.CollectionIngredients, ing.ID)
	require.True(t, ok)
	assert.Equal(t, "10", doc["currentStock"])

	var adjust []entity.AuditEntry
	for _, e := range f.history(t) {
		if e.EventType == entity.EventStockAdjustProductionEdit {
			adjust = append(adjust, e)
		}
	}
	require.Len(t, adjust, 1)
	assert.Equal(t, rec.ID, adjust[0].RelatedEntityID)
	assert.Equal(t, "Stock ajustado por edición de Prod: Pan (cambio: -4)", adjust[0].Changes[0].Label)
}

func TestProduction_CifrasDesdeReceta(t *testing.T) {
	f := setup(t)
	_, r := f.seedRecipe(t, "1000", "200")
	rec, err := f.ledger.Production.Add(context.Background(), dto.ProductionRequest{RecipeID: r.ID, BatchSize: dec("2")})
	require.NoError(t, err)
	// 1.88 × 4 × 2 = 15.04; receta 3 × 2 = 6; mano de obra 2 × 2 = 4
	assert.Equal(t, "15.04", rec.TotalRevenue.String())
	assert.Equal(t, "6", rec.OperatingCostRecipeOnly.String())
	assert.Equal(t, "4", rec.LaborCostForBatch.String())
	assert.Equal(t, "5.04", rec.NetProfit.String())
	assert.Equal(t, "2024-01-20", rec.Date)
}

func TestProduction_BorrarRestauraStock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ing, r := f.seedRecipe(t, "20", "2")
	rec, err := f.ledger.Production.Add(ctx, dto.ProductionRequest{RecipeID: r.ID, BatchSize: dec("3")})
	require.NoError(t, err)

	require.NoError(t, f.ledger.Production.Delete(ctx, rec.ID))
	assert.True(t, f.stock(t, ing.ID).Equal(dec("20")))
	assert.Zero(t, f.mirror.Production.Len())

	var restored bool
	for _, e := range f.history(t) {
		if e.EventType == entity.EventStockAdjustProductionDelete {
			restored = true
			assert.Equal(t, "Stock restaurado por eliminación de Prod: Pan", e.Changes[0].Label)
		}
	}
	assert.True(t, restored)
}

func TestProduction_FalloRemotoRevierteRegistroYStock(t *testing.T) {
	f := setup(t)
	ing, r := f.seedRecipe(t, "20", "2")
	f.engine.Wait()
	f.store.FailNextCommit(errors.New("cuota excedida"))

	_, err := f.ledger.Production.Add(context.Background(), dto.ProductionRequest{RecipeID: r.ID, BatchSize: dec("3")})
	require.NoError(t, err, "la operación retorna antes del commit")
	f.engine.Wait()

	assert.True(t, f.stock(t, ing.ID).Equal(dec("20")))
	assert.Zero(t, f.mirror.Production.Len())
	assert.NotEmpty(t, f.engine.Status().Error())
}

func TestProduction_SinRecetaUsaCifrasEnviadas(t *testing.T) {
	f := setup(t)
	rec, err := f.ledger.Production.Add(context.Background(), dto.ProductionRequest{
		BatchSize: dec("1"), TotalRevenue: dec("100"), OperatingCostRecipeOnly: dec("30"), LaborCostForBatch: dec("20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Desconocido", rec.ProductName)
	assert.Equal(t, "50", rec.NetProfit.String())
}

func TestProduction_RecetaInexistente(t *testing.T) {
	f := setup(t)
	_, err := f.ledger.Production.Add(context.Background(), dto.ProductionRequest{RecipeID: "nope", BatchSize: dec("1")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
