package rates

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// DefaultMaxRetries días hacia atrás que se consultan después de la fecha pedida.
const DefaultMaxRetries = 5

// Result desenlace de una adquisición. Nunca se devuelve como error: Rate nil indica agotamiento.
type Result struct {
	Rate      *decimal.Decimal `json:"rate"`
	DateFound string           `json:"dateFound,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Acquirer consulta la fuente externa retrocediendo un día por intento y aplica la tasa hallada.
type Acquirer struct {
	source     repository.RateSource
	book       *Book
	maxRetries int
	log        *logger.Logger

	mu    sync.Mutex
	cache map[string][]entity.RatePoint
}

// NewAcquirer maxRetries < 0 usa DefaultMaxRetries.
func NewAcquirer(source repository.RateSource, book *Book, maxRetries int, log *logger.Logger) *Acquirer {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Acquirer{
		source:     source,
		book:       book,
		maxRetries: maxRetries,
		log:        log.Component("rate_acquirer"),
		cache:      make(map[string][]entity.RatePoint),
	}
}

// Invalidate descarta las respuestas cacheadas. Se llama en cada recarga de sesión.
func (a *Acquirer) Invalidate() {
	a.mu.Lock()
	a.cache = make(map[string][]entity.RatePoint)
	a.mu.Unlock()
}

// AcquireToday adquiere la tasa para la fecha local de hoy.
func (a *Acquirer) AcquireToday(ctx context.Context) Result {
	return a.AcquireForDate(ctx, a.book.Today())
}

// AcquireForDate busca la tasa publicada para date o, si no hay, para los maxRetries días
// anteriores. La tasa hallada se aplica a date y además a su propia fecha si difiere.
func (a *Acquirer) AcquireForDate(ctx context.Context, date string) Result {
	start, err := entity.ParseDate(date)
	if err != nil {
		return Result{Error: err.Error()}
	}

	for i := 0; i <= a.maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return Result{Error: err.Error()}
		}
		day := start.AddDate(0, 0, -i)
		attempt := entity.FormatDate(day)
		a.log.Debug().Int("attempt", i+1).Str("date", attempt).Msg("consultando fuente de tasas")

		point, ok := a.lookup(ctx, day)
		if !ok {
			continue
		}
		found := foundDate(point.LastUpdate, attempt)

		if err := a.book.Update(ctx, date, point.Price); err != nil {
			return Result{Error: err.Error()}
		}
		if found != date {
			if err := a.book.Update(ctx, found, point.Price); err != nil {
				a.log.Warn().Err(err).Str("date", found).Msg("no se pudo guardar la tasa en su fecha original")
			}
		}
		price := point.Price
		a.log.Info().Str("requested", date).Str("found", found).Str("rate", price.String()).Msg("tasa adquirida")
		return Result{Rate: &price, DateFound: found}
	}

	msg := fmt.Sprintf("%s para %s ni %d días anteriores", domain.ErrRateUnavailable.Error(), date, a.maxRetries)
	a.log.Warn().Str("date", date).Msg(msg)
	return Result{Error: msg}
}

// lookup primer punto válido publicado para day. Errores, respuestas vacías y precios no
// positivos cuentan como "sin tasa".
func (a *Acquirer) lookup(ctx context.Context, day time.Time) (entity.RatePoint, bool) {
	key := entity.FormatDate(day)
	a.mu.Lock()
	points, cached := a.cache[key]
	a.mu.Unlock()

	if !cached {
		var err error
		points, err = a.source.History(ctx, day)
		if err != nil {
			a.log.Debug().Err(err).Str("date", key).Msg("fuente de tasas sin respuesta válida")
			return entity.RatePoint{}, false
		}
		a.mu.Lock()
		a.cache[key] = points
		a.mu.Unlock()
	}
	if len(points) == 0 || !points[0].Price.IsPositive() {
		return entity.RatePoint{}, false
	}
	return points[0], true
}

// foundDate convierte "dd/mm/yyyy, hh:mm" a YYYY-MM-DD; si no se puede, usa fallback.
func foundDate(lastUpdate, fallback string) string {
	datePart, _, _ := strings.Cut(lastUpdate, ",")
	t, err := time.Parse("2/1/2006", strings.TrimSpace(datePart))
	if err != nil {
		return fallback
	}
	return entity.FormatDate(t)
}
