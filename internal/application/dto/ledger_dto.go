package dto

import (
	"github.com/shopspring/decimal"
)

// TransactionRequest entrada para crear o editar una transacción.
// ExchangeRate nil: se resuelve desde el libro de tasas para Date.
type TransactionRequest struct {
	Type         string           `json:"type"`
	Date         string           `json:"date"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	AmountBs     decimal.Decimal  `json:"amountBs"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate"`
	Notes        string           `json:"notes"`
}

// IngredientRequest entrada para crear o editar un ingrediente.
type IngredientRequest struct {
	Name             string          `json:"name"`
	Cost             decimal.Decimal `json:"cost"`
	PresentationSize decimal.Decimal `json:"presentationSize"`
	Unit             string          `json:"unit"`
	CurrentStock     decimal.Decimal `json:"currentStock"`
}

// RecipeIngredientRequest línea de receta.
type RecipeIngredientRequest struct {
	IngredientID string          `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit,omitempty"`
}

// RecipeRequest entrada para crear o editar una receta. Los precios calculados no se aceptan.
type RecipeRequest struct {
	Name                  string                    `json:"name"`
	Ingredients           []RecipeIngredientRequest `json:"ingredients"`
	PackagingCostPerBatch decimal.Decimal           `json:"packagingCostPerBatch"`
	LaborCostPerBatch     decimal.Decimal           `json:"laborCostPerBatch"`
	ItemsPerBatch         decimal.Decimal           `json:"itemsPerBatch"`
	ProfitMarginPercent   decimal.Decimal           `json:"profitMarginPercent"`
	LossBufferPercent     decimal.Decimal           `json:"lossBufferPercent"`
}

// ProductionRequest entrada para registrar o editar un lote producido.
// Con RecipeID las cifras se calculan desde la receta; sin receta se toman las enviadas.
type ProductionRequest struct {
	RecipeID                string          `json:"recipeId"`
	ProductName             string          `json:"productName"`
	BatchSize               decimal.Decimal `json:"batchSize"`
	Date                    string          `json:"date"`
	IsSold                  bool            `json:"isSold"`
	TotalRevenue            decimal.Decimal `json:"totalRevenue"`
	OperatingCostRecipeOnly decimal.Decimal `json:"operatingCostRecipeOnly"`
	LaborCostForBatch       decimal.Decimal `json:"laborCostForBatch"`
}

// RateRequest fija la tasa de un día (vacío = hoy).
type RateRequest struct {
	Date string          `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// ResolvedRateResponse resultado de una consulta al libro de tasas.
type ResolvedRateResponse struct {
	Date  string           `json:"date"`
	Mode  string           `json:"mode"`
	Rate  *decimal.Decimal `json:"rate"`
	Found string           `json:"foundDate,omitempty"`
}
