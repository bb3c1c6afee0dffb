package syncengine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// State estado de una mutación: Validating → OptimisticApplied → Dispatched → Committed | RolledBack.
type State int32

const (
	Validating State = iota
	OptimisticApplied
	Dispatched
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case OptimisticApplied:
		return "optimistic_applied"
	case Dispatched:
		return "dispatched"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// WriteKind tipo de escritura remota.
type WriteKind int

const (
	WriteSet WriteKind = iota
	WriteMerge
	WriteDelete
)

// Write escritura de documento que acompaña a un paso optimista.
type Write struct {
	Collection string
	ID         string
	Kind       WriteKind
	Doc        entity.Document
}

type step struct {
	collection string
	checkpoint func() func()
	apply      func()
	write      Write
}

// Mutation describe una operación de dominio completa: pasos locales (cada uno con su escritura
// remota) más las entradas de historial que viajan en el mismo lote.
type Mutation struct {
	name   string
	steps  []step
	events []audit.Event
	after  []func()

	scope    string
	restores []func()

	state atomic.Int32
	mu    sync.Mutex
	err   error
	done  chan struct{}
	once  sync.Once
}

// NewMutation crea una mutación vacía. name solo se usa en logs.
func NewMutation(name string) *Mutation {
	return &Mutation{name: name, done: make(chan struct{})}
}

// Name nombre de la mutación.
func (m *Mutation) Name() string { return m.name }

// Record agrega un evento de historial al lote.
func (m *Mutation) Record(e audit.Event) {
	m.events = append(m.events, e)
}

// OnApplied registra un recálculo de agregados derivados que corre tras aplicar y tras revertir.
func (m *Mutation) OnApplied(fn func()) {
	m.after = append(m.after, fn)
}

// Writes escrituras remotas en orden.
func (m *Mutation) Writes() []Write {
	out := make([]Write, 0, len(m.steps))
	for _, s := range m.steps {
		out = append(out, s.write)
	}
	return out
}

// Events eventos de historial en orden.
func (m *Mutation) Events() []audit.Event {
	return append([]audit.Event(nil), m.events...)
}

// Empty true si la mutación no toca nada.
func (m *Mutation) Empty() bool {
	return len(m.steps) == 0 && len(m.events) == 0
}

// State estado actual.
func (m *Mutation) State() State {
	return State(m.state.Load())
}

// Err causa del rollback, si lo hubo.
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Done se cierra cuando la mutación llega a Committed o RolledBack.
func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

func (m *Mutation) setState(s State) {
	m.state.Store(int32(s))
}

func (m *Mutation) finish(s State, err error) {
	m.once.Do(func() {
		m.mu.Lock()
		m.err = err
		m.mu.Unlock()
		m.setState(s)
		close(m.done)
	})
}

func (m *Mutation) collections() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range m.steps {
		if _, ok := seen[s.collection]; ok {
			continue
		}
		seen[s.collection] = struct{}{}
		out = append(out, s.collection)
	}
	return out
}

// Put inserta o reemplaza v en la colección (al frente si es nuevo) y escribe el documento completo.
// Con merge=true la escritura remota es set-with-merge.
func Put[T entity.Entity](m *Mutation, col *mirror.Collection[T], v T, merge bool) error {
	doc, err := entity.ToDocument(v)
	if err != nil {
		return err
	}
	kind := WriteSet
	if merge {
		kind = WriteMerge
	}
	id := v.DocID()
	m.steps = append(m.steps, step{
		collection: col.Name(),
		checkpoint: func() func() { return col.Checkpoint(id) },
		apply:      func() { col.Upsert(v) },
		write:      Write{Collection: col.Name(), ID: id, Kind: kind, Doc: doc.Without("id")},
	})
	return nil
}

// Patch reemplaza v localmente pero solo envía los campos indicados (merge).
func Patch[T entity.Entity](m *Mutation, col *mirror.Collection[T], v T, fields ...string) error {
	full, err := entity.ToDocument(v)
	if err != nil {
		return err
	}
	doc := make(entity.Document, len(fields))
	for _, f := range fields {
		doc[f] = full[f]
	}
	id := v.DocID()
	m.steps = append(m.steps, step{
		collection: col.Name(),
		checkpoint: func() func() { return col.Checkpoint(id) },
		apply:      func() { col.Upsert(v) },
		write:      Write{Collection: col.Name(), ID: id, Kind: WriteMerge, Doc: doc},
	})
	return nil
}

// Remove quita el id de la colección y borra el documento remoto.
func Remove[T entity.Entity](m *Mutation, col *mirror.Collection[T], id string) {
	m.steps = append(m.steps, step{
		collection: col.Name(),
		checkpoint: func() func() { return col.Checkpoint(id) },
		apply:      func() { col.Remove(id) },
		write:      Write{Collection: col.Name(), ID: id, Kind: WriteDelete},
	})
}
