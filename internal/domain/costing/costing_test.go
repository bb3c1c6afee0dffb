package costing_test

import (
	"testing"

	"github.com/jhoicas/Contabilidad-api/internal/domain/costing"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Conversión a USD
// ──────────────────────────────────────────────────────────────────────────────

func TestAmountUSD_RedondeoADosDecimales(t *testing.T) {
	got := costing.AmountUSD(d("1000"), d("36.5"))
	assert.True(t, got.Equal(d("27.40")), "1000/36.5 debe dar 27.40, obtenido %s", got)
}

func TestAmountUSD_RedondeoHalfUp(t *testing.T) {
	// 0.125 / 1 -> 0.13
	assert.True(t, costing.AmountUSD(d("0.125"), d("1")).Equal(d("0.13")))
}

func TestAmountUSD_TasaNoPositiva(t *testing.T) {
	assert.True(t, costing.AmountUSD(d("100"), decimal.Zero).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Precios de receta y producción
// ──────────────────────────────────────────────────────────────────────────────

func sampleRecipe() (entity.Recipe, map[string]entity.Ingredient) {
	ings := map[string]entity.Ingredient{
		"harina": {ID: "harina", Name: "Harina", Cost: d("10"), PresentationSize: d("1000"), Unit: "g"},
		"huevo":  {ID: "huevo", Name: "Huevo", Cost: d("6"), PresentationSize: d("12"), Unit: "u"},
	}
	r := entity.Recipe{
		ID:   "torta",
		Name: "Torta",
		Ingredients: []entity.RecipeIngredient{
			{IngredientID: "harina", Quantity: d("500")},
			{IngredientID: "huevo", Quantity: d("4")},
		},
		PackagingCostPerBatch: d("2"),
		LaborCostPerBatch:     d("3"),
		ItemsPerBatch:         d("10"),
		ProfitMarginPercent:   d("50"),
		LossBufferPercent:     d("10"),
	}
	return r, ings
}

func TestPrice_CalculaCostosYPrecioFinal(t *testing.T) {
	r, ings := sampleRecipe()
	p := costing.Price(r, ings)

	// harina 0.01*500=5, huevo 0.5*4=2
	assert.True(t, p.IngredientsCost.Equal(d("7")))
	assert.True(t, p.RecipeOnlyCost.Equal(d("9")))
	assert.True(t, p.TotalCost.Equal(d("12")))
	// 12*1.1=13.2 /10 = 1.32 *1.5 = 1.98
	assert.True(t, p.FinalPrice.Equal(d("1.98")), "precio final %s", p.FinalPrice)
}

func TestPrice_IngredienteDesconocidoNoSuma(t *testing.T) {
	r, ings := sampleRecipe()
	delete(ings, "huevo")
	p := costing.Price(r, ings)
	assert.True(t, p.IngredientsCost.Equal(d("5")))
}

func TestProduction_NetoPorLotes(t *testing.T) {
	r, ings := sampleRecipe()
	r = costing.ApplyPricing(r, ings)

	f := costing.Production(r, d("2"))
	assert.True(t, f.TotalRevenue.Equal(d("39.6")))           // 1.98*10*2
	assert.True(t, f.OperatingCostRecipeOnly.Equal(d("18")))  // 9*2
	assert.True(t, f.LaborCostForBatch.Equal(d("6")))         // 3*2
	assert.True(t, f.NetProfit.Equal(d("15.6")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumo de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestNetDelta_SoloLaDiferencia(t *testing.T) {
	r := &entity.Recipe{Ingredients: []entity.RecipeIngredient{{IngredientID: "I", Quantity: d("2")}}}

	oldC := costing.Consumption(r, d("3"))
	newC := costing.Consumption(r, d("5"))
	delta := costing.NetDelta(oldC, newC)

	assert.Len(t, delta, 1)
	assert.True(t, delta["I"].Equal(d("4")), "el delta neto debe ser 4, no 10")
}

func TestNetDelta_CambioDeReceta(t *testing.T) {
	a := &entity.Recipe{Ingredients: []entity.RecipeIngredient{{IngredientID: "X", Quantity: d("1")}, {IngredientID: "Y", Quantity: d("2")}}}
	b := &entity.Recipe{Ingredients: []entity.RecipeIngredient{{IngredientID: "Y", Quantity: d("2")}, {IngredientID: "Z", Quantity: d("3")}}}

	delta := costing.NetDelta(costing.Consumption(a, d("1")), costing.Consumption(b, d("1")))

	assert.True(t, delta["X"].Equal(d("-1")), "X se devuelve")
	assert.True(t, delta["Z"].Equal(d("3")), "Z se descuenta")
	_, hasY := delta["Y"]
	assert.False(t, hasY, "Y no cambia")
}

func TestConsumption_SinRecetaOLoteCero(t *testing.T) {
	assert.Empty(t, costing.Consumption(nil, d("3")))
	r := &entity.Recipe{Ingredients: []entity.RecipeIngredient{{IngredientID: "I", Quantity: d("2")}}}
	assert.Empty(t, costing.Consumption(r, decimal.Zero))
}
