package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/application/syncengine"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// Book tabla de tasas del propietario actual, ordenada por fecha descendente.
type Book struct {
	engine *syncengine.Engine
	rates  *mirror.Collection[entity.ExchangeRate]
	now    func() time.Time
	log    *logger.Logger
}

// NewBook construye el libro de tasas sobre el espejo del motor.
func NewBook(engine *syncengine.Engine, log *logger.Logger) *Book {
	return &Book{
		engine: engine,
		rates:  engine.Mirror().Rates,
		now:    time.Now,
		log:    log.Component("rates"),
	}
}

// WithClock reemplaza el reloj (tests).
func (b *Book) WithClock(now func() time.Time) *Book {
	b.now = now
	return b
}

// Today fecha local de hoy según el reloj del libro.
func (b *Book) Today() string {
	return entity.Today(b.now())
}

// List todas las tasas, más reciente primero.
func (b *Book) List() []entity.ExchangeRate {
	return b.rates.All()
}

// ResolveForDate tasa de la fecha más reciente <= date.
func (b *Book) ResolveForDate(date string) (decimal.Decimal, bool) {
	r, ok := b.LatestBefore(date)
	if !ok {
		return decimal.Zero, false
	}
	return r.Rate, true
}

// ResolveExact tasa solo si existe una con exactamente esa fecha.
func (b *Book) ResolveExact(date string) (decimal.Decimal, bool) {
	for _, r := range b.rates.All() {
		if r.Date == date {
			return r.Rate, true
		}
	}
	return decimal.Zero, false
}

// LatestBefore registro completo de la fecha más reciente <= date.
func (b *Book) LatestBefore(date string) (entity.ExchangeRate, bool) {
	for _, r := range b.rates.All() {
		if r.Date <= date {
			return r, true
		}
	}
	return entity.ExchangeRate{}, false
}

// Current tasa vigente: la de hoy si existe, si no la más reciente.
func (b *Book) Current() (entity.ExchangeRate, bool) {
	all := b.rates.All()
	if len(all) == 0 {
		return entity.ExchangeRate{}, false
	}
	today := b.Today()
	for _, r := range all {
		if r.Date == today {
			return r, true
		}
	}
	return all[0], true
}

// Update fija la tasa de date (vacío = hoy). Si ya existe con el mismo valor no hace nada:
// ni escritura remota ni entrada de historial.
func (b *Book) Update(ctx context.Context, date string, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: la tasa de cambio debe ser un número positivo", domain.ErrInvalidInput)
	}
	if date == "" {
		date = b.Today()
	}
	if _, err := entity.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	prev, existed := b.rates.Get(date)
	if existed && prev.Rate.Equal(rate) {
		return nil
	}

	entry := entity.ExchangeRate{
		ID:        date,
		Date:      date,
		Rate:      rate,
		Timestamp: b.now().UTC(),
		UserID:    b.engine.Owner(),
	}
	eventType := entity.EventExchangeRateCreated
	var oldValue any
	if existed {
		eventType = entity.EventExchangeRateEdited
		oldValue = prev.Rate
	}

	m := syncengine.NewMutation("rate.update")
	if err := syncengine.Put(m, b.rates, entry, false); err != nil {
		return err
	}
	m.Record(audit.Event{
		EventType:  eventType,
		EntityType: entity.EntityTypeExchangeRate,
		EntityID:   date,
		EntityName: "Tasa del " + date,
		Changes: []entity.Change{{
			Field:    "rate",
			OldValue: oldValue,
			NewValue: rate,
			Label:    "Tasa (Bs/USD)",
		}},
	})
	if err := b.engine.Execute(ctx, m); err != nil {
		return err
	}
	b.log.Info().Str("date", date).Str("rate", rate.String()).Msg("tasa actualizada")
	return nil
}
