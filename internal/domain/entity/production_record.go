package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionRecord lote producido de una receta. Crear/editar/borrar ajusta el stock de los ingredientes.
type ProductionRecord struct {
	ID                      string          `json:"id"`
	RecipeID                string          `json:"recipeId"` // vacío = sin receta asociada
	ProductName             string          `json:"productName"`
	BatchSize               decimal.Decimal `json:"batchSize"`
	Date                    string          `json:"date"`
	TotalRevenue            decimal.Decimal `json:"totalRevenue"`
	OperatingCostRecipeOnly decimal.Decimal `json:"operatingCostRecipeOnly"`
	LaborCostForBatch       decimal.Decimal `json:"laborCostForBatch"`
	NetProfit               decimal.Decimal `json:"netProfit"`
	IsSold                  bool            `json:"isSold"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
	UserID                  string          `json:"userId,omitempty"`
}

func (p ProductionRecord) DocID() string { return p.ID }
