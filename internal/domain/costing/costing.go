package costing

import (
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AmountUSD convierte bolívares a dólares: round(bs / rate, 2) con redondeo half-up.
// Una tasa <= 0 devuelve cero; la validación ocurre antes de llegar aquí.
func AmountUSD(amountBs, rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}
	return amountBs.Div(rate).Round(2)
}

// UnitCost costo por unidad de medida de un ingrediente: cost / presentationSize.
func UnitCost(ing entity.Ingredient) decimal.Decimal {
	if !ing.PresentationSize.IsPositive() {
		return decimal.Zero
	}
	return ing.Cost.Div(ing.PresentationSize)
}

// Pricing precios derivados de una receta.
type Pricing struct {
	IngredientsCost decimal.Decimal
	RecipeOnlyCost  decimal.Decimal // ingredientes + empaque
	TotalCost       decimal.Decimal // + mano de obra
	FinalPrice      decimal.Decimal // precio por item con pérdida y margen
}

// Price calcula los costos de la receta con los ingredientes conocidos.
// Ingredientes no encontrados no suman costo.
//
//	withLoss   = totalCost × (1 + loss%/100)
//	finalPrice = withLoss / itemsPerBatch × (1 + margin%/100)
func Price(r entity.Recipe, ingredients map[string]entity.Ingredient) Pricing {
	ingCost := decimal.Zero
	for _, ri := range r.Ingredients {
		ing, ok := ingredients[ri.IngredientID]
		if !ok {
			continue
		}
		ingCost = ingCost.Add(UnitCost(ing).Mul(ri.Quantity))
	}
	recipeOnly := ingCost.Add(r.PackagingCostPerBatch)
	total := recipeOnly.Add(r.LaborCostPerBatch)

	items := r.ItemsPerBatch
	if !items.IsPositive() {
		items = decimal.NewFromInt(1)
	}
	withLoss := total.Mul(decimal.NewFromInt(1).Add(r.LossBufferPercent.Div(hundred)))
	final := withLoss.Div(items).Mul(decimal.NewFromInt(1).Add(r.ProfitMarginPercent.Div(hundred)))

	return Pricing{
		IngredientsCost: ingCost.Round(2),
		RecipeOnlyCost:  recipeOnly.Round(2),
		TotalCost:       total.Round(2),
		FinalPrice:      final.Round(2),
	}
}

// ApplyPricing devuelve la receta con los campos calculados actualizados.
func ApplyPricing(r entity.Recipe, ingredients map[string]entity.Ingredient) entity.Recipe {
	p := Price(r, ingredients)
	r.CalculatedRecipeOnlyCost = p.RecipeOnlyCost
	r.CalculatedTotalCost = p.TotalCost
	r.CalculatedFinalPrice = p.FinalPrice
	return r
}

// ProductionFigures valores derivados de un registro de producción.
type ProductionFigures struct {
	TotalRevenue            decimal.Decimal
	OperatingCostRecipeOnly decimal.Decimal
	LaborCostForBatch       decimal.Decimal
	NetProfit               decimal.Decimal
}

// Production calcula ingresos y ganancia de batchSize lotes de la receta.
//
//	totalRevenue = finalPrice × itemsPerBatch × batchSize
//	netProfit    = totalRevenue − (recipeOnlyCost + laborCost)
func Production(r entity.Recipe, batchSize decimal.Decimal) ProductionFigures {
	items := r.ItemsPerBatch
	if !items.IsPositive() {
		items = decimal.NewFromInt(1)
	}
	revenue := r.CalculatedFinalPrice.Mul(items).Mul(batchSize).Round(2)
	operating := r.CalculatedRecipeOnlyCost.Mul(batchSize).Round(2)
	labor := r.LaborCostPerBatch.Mul(batchSize).Round(2)
	return ProductionFigures{
		TotalRevenue:            revenue,
		OperatingCostRecipeOnly: operating,
		LaborCostForBatch:       labor,
		NetProfit:               revenue.Sub(operating.Add(labor)),
	}
}

// Consumption cantidad de cada ingrediente que consumen batchSize lotes de la receta.
func Consumption(r *entity.Recipe, batchSize decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	if r == nil || !batchSize.IsPositive() {
		return out
	}
	for _, ri := range r.Ingredients {
		out[ri.IngredientID] = out[ri.IngredientID].Add(ri.Quantity.Mul(batchSize))
	}
	return out
}

// NetDelta diferencia de consumo por ingrediente (nuevo − viejo). Valores positivos descuentan stock,
// negativos lo devuelven. Los ingredientes sin cambio neto no aparecen.
func NetDelta(oldConsumption, newConsumption map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for id, q := range newConsumption {
		out[id] = q
	}
	for id, q := range oldConsumption {
		out[id] = out[id].Sub(q)
	}
	for id, q := range out {
		if q.IsZero() {
			delete(out, id)
		}
	}
	return out
}
