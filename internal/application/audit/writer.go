package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// IdentityProvider expone la identidad actual (nil = modo local).
type IdentityProvider interface {
	Current() *entity.Identity
}

// Event datos de un evento antes de resolver id, actor y timestamp.
type Event struct {
	EventType         string
	EntityType        string
	EntityID          string
	EntityName        string
	Changes           []entity.Change
	RelatedEntityID   string
	RelatedEntityName string
}

// Writer agrega entradas al historial: dentro de un lote remoto, como escritura suelta, o en el
// espejo local cuando no hay identidad.
type Writer struct {
	identity IdentityProvider
	store    repository.DocumentStore
	mirror   *mirror.Mirror
	now      func() time.Time
	log      *logger.Logger
}

// NewWriter construye el writer. store puede ser nil si la aplicación solo opera en modo local.
func NewWriter(identity IdentityProvider, store repository.DocumentStore, m *mirror.Mirror, log *logger.Logger) *Writer {
	return &Writer{
		identity: identity,
		store:    store,
		mirror:   m,
		now:      time.Now,
		log:      log.Component("audit"),
	}
}

// WithClock reemplaza el reloj (tests).
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Validate exige eventType y entityType.
func Validate(e Event) error {
	if strings.TrimSpace(e.EventType) == "" || strings.TrimSpace(e.EntityType) == "" {
		return fmt.Errorf("%w: eventType y entityType son obligatorios", domain.ErrInvalidInput)
	}
	return nil
}

// UserName nombre para el historial: displayName, si no email, si no el marcador de sistema local.
func UserName(id *entity.Identity) string {
	if id == nil {
		return entity.LocalSystemUser
	}
	if id.DisplayName != "" {
		return id.DisplayName
	}
	if id.Email != "" {
		return id.Email
	}
	return entity.LocalSystemUser
}

// Record agrega el evento al historial y devuelve el id de la entrada.
//
// Con identidad y batch: lo prepara en el lote y retorna sin esperar el commit.
// Con identidad y sin batch: escritura suelta inmediata.
// Sin identidad: lo agrega al espejo local de forma síncrona.
func (w *Writer) Record(ctx context.Context, e Event, batch repository.Batch) (string, error) {
	if err := Validate(e); err != nil {
		return "", err
	}
	user := w.identity.Current()
	if user == nil {
		return w.appendLocal(ctx, e)
	}
	if w.store == nil {
		return "", fmt.Errorf("historial: sin almacén remoto configurado")
	}

	id := w.store.NewID()
	doc, err := entity.ToDocument(w.entry(e, id, user))
	if err != nil {
		return "", err
	}
	doc = SanitizeDocument(doc.Without("id"))

	if batch != nil {
		batch.Set(entity.CollectionEventHistory, id, doc)
		return id, nil
	}
	if err := w.store.Set(ctx, user.ID, entity.CollectionEventHistory, id, doc, false); err != nil {
		return "", fmt.Errorf("historial: escribir %s: %w", e.EventType, err)
	}
	return id, nil
}

func (w *Writer) appendLocal(ctx context.Context, e Event) (string, error) {
	entry := w.entry(e, entity.NewLocalID(), nil)
	w.mirror.Audit.Insert(entry)
	if err := w.mirror.Persist(ctx, entity.CollectionEventHistory); err != nil {
		w.mirror.Audit.Remove(entry.ID)
		return "", fmt.Errorf("historial: guardar %s: %w", e.EventType, err)
	}
	return entry.ID, nil
}

// Discard retira entradas locales de una mutación que no llegó a confirmarse.
func (w *Writer) Discard(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		w.mirror.Audit.Remove(id)
	}
	return w.mirror.Persist(ctx, entity.CollectionEventHistory)
}

func (w *Writer) entry(e Event, id string, user *entity.Identity) entity.AuditEntry {
	changes := e.Changes
	if changes == nil {
		changes = []entity.Change{}
	}
	entry := entity.AuditEntry{
		ID:                id,
		EventType:         e.EventType,
		EntityType:        e.EntityType,
		EntityID:          e.EntityID,
		EntityName:        e.EntityName,
		Changes:           changes,
		RelatedEntityID:   e.RelatedEntityID,
		RelatedEntityName: e.RelatedEntityName,
		Timestamp:         w.now().UTC(),
		UserName:          UserName(user),
	}
	if user != nil {
		entry.UserID = user.ID
	}
	return entry
}

// History lista el historial del alcance actual, más reciente primero.
func (w *Writer) History(ctx context.Context) ([]entity.AuditEntry, error) {
	user := w.identity.Current()
	if user == nil || w.store == nil {
		return w.mirror.Audit.All(), nil
	}
	docs, err := w.store.List(ctx, user.ID, entity.CollectionEventHistory,
		repository.SortField{Field: "timestamp", Desc: true})
	if err != nil {
		return nil, fmt.Errorf("historial: listar: %w", err)
	}
	out := make([]entity.AuditEntry, 0, len(docs))
	for _, d := range docs {
		entry, err := entity.FromDocument[entity.AuditEntry](d)
		if err != nil {
			w.log.Warn().Err(err).Msg("entrada de historial ilegible, se omite")
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
