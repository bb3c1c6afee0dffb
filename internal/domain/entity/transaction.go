package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// DefaultCategory categoría asignada cuando la transacción no trae una.
const DefaultCategory = "General"

// Transaction ingreso o egreso en bolívares con su equivalente en USD.
// AmountUsd siempre es derivado: round(AmountBs / ExchangeRate, 2).
type Transaction struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"` // income | expense
	Date         string          `json:"date"` // YYYY-MM-DD
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	AmountBs     decimal.Decimal `json:"amountBs"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	AmountUsd    decimal.Decimal `json:"amountUsd"`
	Notes        string          `json:"notes"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	UserID       string          `json:"userId,omitempty"`
}

func (t Transaction) DocID() string { return t.ID }

// EntityType etiqueta usada en el historial ("Ingreso" / "Egreso").
func (t Transaction) EntityType() string {
	if t.Type == TransactionIncome {
		return "Ingreso"
	}
	return "Egreso"
}
