// Package scheduler tareas programadas con cron (adquisición diaria de la tasa).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Contabilidad-api/internal/application/rates"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// RateAcquirer lo que el scheduler necesita del adquiridor de tasas.
type RateAcquirer interface {
	AcquireToday(ctx context.Context) rates.Result
}

// Scheduler ejecuta la adquisición de la tasa del día según una expresión cron de 5 campos.
type Scheduler struct {
	cron     *cron.Cron
	acquirer RateAcquirer
	timeout  time.Duration
	log      *logger.Logger
}

// New crea el scheduler sin tareas.
func New(acquirer RateAcquirer, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		acquirer: acquirer,
		timeout:  2 * time.Minute,
		log:      log.Component("scheduler"),
	}
}

// Start registra la tarea diaria con spec ("0 9 * * *") y arranca. spec vacío no agenda nada.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		s.log.Info().Msg("adquisición programada desactivada")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run() }); err != nil {
		return fmt.Errorf("scheduler: expresión %q inválida: %w", spec, err)
	}
	s.log.Info().Str("spec", spec).Msg("iniciando scheduler")
	s.cron.Start()
	return nil
}

// Stop detiene el cron y espera a que termine la tarea en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler detenido")
}

// Entries cantidad de tareas agendadas.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// RunNow ejecuta la tarea de inmediato (útil al arrancar).
func (s *Scheduler) RunNow() rates.Result { return s.run() }

func (s *Scheduler) run() rates.Result {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res := s.acquirer.AcquireToday(ctx)
	if res.Rate == nil {
		s.log.Warn().Str("error", res.Error).Msg("no se pudo adquirir la tasa del día")
		return res
	}
	s.log.Info().Str("rate", res.Rate.String()).Str("date_found", res.DateFound).Msg("tasa del día adquirida")
	return res
}
