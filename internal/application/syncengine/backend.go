package syncengine

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
)

// Settler recibe el desenlace de una mutación despachada.
type Settler interface {
	// Go lanza fn en segundo plano bajo el control del motor.
	Go(fn func())
	// Settle cierra la mutación: err nil confirma, err no nil revierte.
	Settle(m *Mutation, err error)
}

// Backend estrategia de persistencia elegida una vez por cambio de alcance.
type Backend interface {
	Mode() Mode
	// Scope alcance de las escrituras ("local" o id del propietario).
	Scope() string
	NewID() string
	// Dispatch envía la mutación ya aplicada localmente. Un error devuelto significa que ni
	// siquiera pudo prepararse; el motor revierte de inmediato.
	Dispatch(ctx context.Context, m *Mutation, s Settler) error
}

// RemoteBackend agrupa todas las escrituras y eventos de una mutación en un lote atómico y lo
// confirma en segundo plano.
type RemoteBackend struct {
	store   repository.DocumentStore
	writer  *audit.Writer
	scope   string
	timeout time.Duration
}

// NewRemoteBackend backend remoto para el propietario scope. timeout <= 0 no limita el commit.
func NewRemoteBackend(store repository.DocumentStore, writer *audit.Writer, scope string, timeout time.Duration) *RemoteBackend {
	return &RemoteBackend{store: store, writer: writer, scope: scope, timeout: timeout}
}

func (b *RemoteBackend) Mode() Mode { return ModeRemote }
func (b *RemoteBackend) Scope() string { return b.scope }
func (b *RemoteBackend) NewID() string { return b.store.NewID() }

func (b *RemoteBackend) Dispatch(ctx context.Context, m *Mutation, s Settler) error {
	batch := b.store.NewBatch(b.scope)
	for _, w := range m.Writes() {
		switch w.Kind {
		case WriteSet:
			batch.Set(w.Collection, w.ID, audit.SanitizeDocument(w.Doc))
		case WriteMerge:
			batch.Merge(w.Collection, w.ID, audit.SanitizeDocument(w.Doc))
		case WriteDelete:
			batch.Delete(w.Collection, w.ID)
		default:
			return fmt.Errorf("escritura desconocida %d en %s/%s", w.Kind, w.Collection, w.ID)
		}
	}
	for _, e := range m.Events() {
		if _, err := b.writer.Record(ctx, e, batch); err != nil {
			return err
		}
	}
	m.setState(Dispatched)

	// El commit sobrevive a la cancelación del llamador: la operación ya retornó.
	bg := context.WithoutCancel(ctx)
	s.Go(func() {
		cctx := bg
		if b.timeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(bg, b.timeout)
			defer cancel()
		}
		s.Settle(m, batch.Commit(cctx))
	})
	return nil
}

// LocalBackend escribe el historial en el espejo de forma síncrona. No hay commit remoto, la
// mutación queda confirmada al despachar.
type LocalBackend struct {
	writer *audit.Writer
}

func NewLocalBackend(writer *audit.Writer) *LocalBackend {
	return &LocalBackend{writer: writer}
}

func (b *LocalBackend) Mode() Mode { return ModeLocal }
func (b *LocalBackend) Scope() string { return mirror.LocalScope }
func (b *LocalBackend) NewID() string { return entity.NewLocalID() }

func (b *LocalBackend) Dispatch(ctx context.Context, m *Mutation, s Settler) error {
	recorded := make([]string, 0, len(m.Events()))
	for _, e := range m.Events() {
		id, err := b.writer.Record(ctx, e, nil)
		if err != nil {
			// el historial no conserva eventos de una mutación revertida
			if derr := b.writer.Discard(context.WithoutCancel(ctx), recorded...); derr != nil {
				return fmt.Errorf("%w (descartar historial: %v)", err, derr)
			}
			return err
		}
		recorded = append(recorded, id)
	}
	m.setState(Dispatched)
	s.Settle(m, nil)
	return nil
}
