package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// RateSource fuente HTTP externa de tasas. History consulta los puntos publicados para un día;
// una lista vacía significa "sin tasa para esa fecha".
type RateSource interface {
	History(ctx context.Context, date time.Time) ([]entity.RatePoint, error)
}
