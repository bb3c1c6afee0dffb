package syncengine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// Engine aplica cada mutación de forma optimista sobre el espejo, la despacha al backend activo y,
// si el commit remoto falla, la revierte exactamente.
type Engine struct {
	mirror *mirror.Mirror
	status *Status
	log    *logger.Logger

	mu      sync.RWMutex
	backend Backend

	// serializa aplicación y reversión sobre el espejo
	applyMu sync.Mutex
	wg      conc.WaitGroup
}

// NewEngine arranca sin backend; SetBackend es obligatorio antes de Execute.
func NewEngine(m *mirror.Mirror, status *Status, log *logger.Logger) *Engine {
	return &Engine{mirror: m, status: status, log: log.Component("syncengine")}
}

// SetBackend cambia la estrategia de persistencia (cambio de alcance).
func (e *Engine) SetBackend(b Backend) {
	e.mu.Lock()
	e.backend = b
	e.mu.Unlock()
	if b != nil {
		e.status.SetMode(b.Mode())
	}
}

// Backend backend activo.
func (e *Engine) Backend() Backend {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.backend
}

// Status estado visible.
func (e *Engine) Status() *Status { return e.status }

// Mirror espejo gobernado por el motor.
func (e *Engine) Mirror() *mirror.Mirror { return e.mirror }

// Owner id del propietario en modo remoto; vacío en modo local.
func (e *Engine) Owner() string {
	b := e.Backend()
	if b == nil || b.Mode() != ModeRemote {
		return ""
	}
	return b.Scope()
}

// NewID id nuevo según el backend activo: asignado por el almacén o con prefijo local.
func (e *Engine) NewID() string {
	return e.Backend().NewID()
}

// Execute valida, aplica y despacha la mutación. Retorna apenas el estado local refleja el
// cambio; el commit remoto continúa en segundo plano y sus fallos se reportan por Status.
func (e *Engine) Execute(ctx context.Context, m *Mutation) error {
	b := e.Backend()
	if b == nil {
		return errors.New("syncengine: sin backend configurado")
	}
	m.setState(Validating)
	for _, ev := range m.events {
		if err := audit.Validate(ev); err != nil {
			return err
		}
	}
	if m.Empty() {
		m.finish(Committed, nil)
		return nil
	}
	if b.Scope() != e.mirror.Scope() {
		return fmt.Errorf("%w: cambio de alcance en curso (%s -> %s)", domain.ErrConflict, e.mirror.Scope(), b.Scope())
	}

	m.scope = e.mirror.Scope()
	e.applyMu.Lock()
	m.restores = make([]func(), 0, len(m.steps))
	for _, s := range m.steps {
		m.restores = append(m.restores, s.checkpoint())
		s.apply()
	}
	e.applyMu.Unlock()
	for _, fn := range m.after {
		fn()
	}
	m.setState(OptimisticApplied)

	if err := e.mirror.Persist(ctx, m.collections()...); err != nil {
		if b.Mode() == ModeLocal {
			e.rollback(ctx, m, err)
			return fmt.Errorf("espejo local: %w", err)
		}
		e.log.Warn().Err(err).Str("mutation", m.name).Msg("no se pudo persistir el espejo")
	}

	if err := b.Dispatch(ctx, m, e); err != nil {
		e.rollback(ctx, m, err)
		if errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrSyncFailure, err)
	}
	return nil
}

// Go implementa Settler.
func (e *Engine) Go(fn func()) {
	e.wg.Go(fn)
}

// Settle implementa Settler.
func (e *Engine) Settle(m *Mutation, err error) {
	if err != nil {
		e.rollback(context.Background(), m, err)
		return
	}
	e.status.ClearError()
	m.finish(Committed, nil)
	e.log.Debug().Str("mutation", m.name).Msg("mutación confirmada")
}

// Wait espera a que terminen los commits en segundo plano.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) rollback(ctx context.Context, m *Mutation, cause error) {
	e.status.SetError(fmt.Sprintf("%s: %v", domain.ErrSyncFailure.Error(), cause))
	e.log.Error().Err(cause).Str("mutation", m.name).Msg("commit fallido, revirtiendo cambios optimistas")

	// Si el alcance cambió, el espejo ya no contiene estos cambios.
	if m.scope != e.mirror.Scope() {
		m.finish(RolledBack, cause)
		return
	}
	e.applyMu.Lock()
	for i := len(m.restores) - 1; i >= 0; i-- {
		m.restores[i]()
	}
	e.applyMu.Unlock()
	for _, fn := range m.after {
		fn()
	}
	if err := e.mirror.Persist(context.WithoutCancel(ctx), m.collections()...); err != nil {
		e.log.Warn().Err(err).Str("mutation", m.name).Msg("no se pudo persistir el espejo tras revertir")
	}
	m.finish(RolledBack, cause)
}
