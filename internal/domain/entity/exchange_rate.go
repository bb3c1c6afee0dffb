package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate tasa Bs/USD de un día. El id es la propia fecha: a lo sumo una tasa por fecha y propietario.
type ExchangeRate struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Rate      decimal.Decimal `json:"rate"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"userId,omitempty"`
}

func (r ExchangeRate) DocID() string { return r.ID }

// RatePoint punto histórico devuelto por la fuente externa de tasas.
type RatePoint struct {
	Price      decimal.Decimal
	LastUpdate string // "dd/mm/yyyy, hh:mm AM"
}
