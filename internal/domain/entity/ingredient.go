package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient insumo con costo por presentación y stock actual.
// CurrentStock solo cambia por registros de producción o edición directa.
type Ingredient struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Cost             decimal.Decimal `json:"cost"`
	PresentationSize decimal.Decimal `json:"presentationSize"`
	Unit             string          `json:"unit"`
	CurrentStock     decimal.Decimal `json:"currentStock"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	UserID           string          `json:"userId,omitempty"`
}

func (i Ingredient) DocID() string { return i.ID }
