package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeIngredient referencia a un Ingredient con la cantidad usada por lote.
type RecipeIngredient struct {
	IngredientID string          `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit,omitempty"`
}

// Recipe receta con costos por lote y precios calculados.
// Los campos Calculated* se recalculan al crear o editar y no entran al historial de cambios.
type Recipe struct {
	ID                       string             `json:"id"`
	Name                     string             `json:"name"`
	Ingredients              []RecipeIngredient `json:"ingredients"`
	PackagingCostPerBatch    decimal.Decimal    `json:"packagingCostPerBatch"`
	LaborCostPerBatch        decimal.Decimal    `json:"laborCostPerBatch"`
	ItemsPerBatch            decimal.Decimal    `json:"itemsPerBatch"`
	ProfitMarginPercent      decimal.Decimal    `json:"profitMarginPercent"`
	LossBufferPercent        decimal.Decimal    `json:"lossBufferPercent"`
	CalculatedRecipeOnlyCost decimal.Decimal    `json:"calculatedRecipeOnlyCost"`
	CalculatedTotalCost      decimal.Decimal    `json:"calculatedTotalCost"`
	CalculatedFinalPrice     decimal.Decimal    `json:"calculatedFinalPrice"`
	CreatedAt                time.Time          `json:"createdAt"`
	UpdatedAt                time.Time          `json:"updatedAt"`
	UserID                   string             `json:"userId,omitempty"`
}

func (r Recipe) DocID() string { return r.ID }

// RecipeCalculatedFields campos derivados que se excluyen del cálculo de cambios.
var RecipeCalculatedFields = []string{"calculatedRecipeOnlyCost", "calculatedTotalCost", "calculatedFinalPrice"}

// CloneIngredients copia la lista para que la receta no comparta backing array.
func (r Recipe) CloneIngredients() []RecipeIngredient {
	if r.Ingredients == nil {
		return nil
	}
	out := make([]RecipeIngredient, len(r.Ingredients))
	copy(out, r.Ingredients)
	return out
}
