package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/application/rates"
	"github.com/jhoicas/Contabilidad-api/internal/application/syncengine"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// ErrReloadInProgress se devuelve cuando ya hay una recarga completa en curso.
var ErrReloadInProgress = errors.New("recarga en curso")

// Options colaboradores externos de la sesión. Store y Source son opcionales:
// sin Store la sesión solo admite modo local; sin Source no hay adquisición de tasas.
type Options struct {
	Store         repository.DocumentStore
	KV            repository.KeyValueStore
	Source        repository.RateSource
	MaxRetries    int
	CommitTimeout time.Duration
	Clock         func() time.Time
}

// Session contexto explícito de la aplicación: identidad, espejo, motor y servicios.
// Se construye una vez por proceso y se pasa a quien lo necesite.
type Session struct {
	store         repository.DocumentStore
	mirror        *mirror.Mirror
	status        *syncengine.Status
	engine        *syncengine.Engine
	writer        *audit.Writer
	commitTimeout time.Duration
	log           *logger.Logger

	Book     *rates.Book
	Acquirer *rates.Acquirer
	Ledger   *ledger.Ledger

	mu       sync.RWMutex
	identity *entity.Identity
	resolved bool
	loaded   string

	// una sola recarga a la vez; el cambio de alcance la espera en vez de rechazarse
	reloadMu sync.Mutex
}

// New arma la sesión en modo local. Llamar SetIdentity (o Reload) antes de operar.
func New(opts Options, log *logger.Logger) *Session {
	s := &Session{
		store:         opts.Store,
		commitTimeout: opts.CommitTimeout,
		log:           log.Component("session"),
	}
	s.mirror = mirror.New(opts.KV, log)
	s.status = syncengine.NewStatus()
	s.engine = syncengine.NewEngine(s.mirror, s.status, log)
	s.writer = audit.NewWriter(s, opts.Store, s.mirror, log)
	s.engine.SetBackend(syncengine.NewLocalBackend(s.writer))

	s.Book = rates.NewBook(s.engine, log)
	if opts.Source != nil {
		s.Acquirer = rates.NewAcquirer(opts.Source, s.Book, opts.MaxRetries, log)
	}
	s.Ledger = ledger.New(s.engine, s.Book, log)

	if opts.Clock != nil {
		s.writer.WithClock(opts.Clock)
		s.Book.WithClock(opts.Clock)
		s.Ledger.WithClock(opts.Clock)
	}
	return s
}

// Current identidad activa (nil = modo local).
func (s *Session) Current() *entity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Engine motor de sincronización de la sesión.
func (s *Session) Engine() *syncengine.Engine { return s.engine }

// Mirror espejo local.
func (s *Session) Mirror() *mirror.Mirror { return s.mirror }

// Status estado visible (modo, carga, error de sincronización).
func (s *Session) Status() syncengine.Snapshot { return s.status.Snapshot() }

// History historial de eventos del alcance actual.
func (s *Session) History(ctx context.Context) ([]entity.AuditEntry, error) {
	return s.writer.History(ctx)
}

// SetIdentity recibe una transición del contexto de identidad. Mientras resolved sea false solo
// marca la carga. Un cambio de alcance (login, logout o cambio de cuenta) elige el backend y
// dispara una recarga completa; el mismo alcance solo actualiza los datos del usuario.
func (s *Session) SetIdentity(ctx context.Context, user *entity.Identity, resolved bool) error {
	if !resolved {
		s.mu.Lock()
		s.resolved = false
		s.mu.Unlock()
		s.status.SetLoading(true)
		return nil
	}
	if user != nil && user.ID == "" {
		return fmt.Errorf("%w: identidad sin id", domain.ErrInvalidInput)
	}
	if user != nil && s.store == nil {
		return fmt.Errorf("%w: no hay almacén remoto configurado", domain.ErrInvalidInput)
	}

	scope := mirror.LocalScope
	if user != nil {
		scope = user.ID
	}

	// Cambio de backend y recarga son una unidad: una recarga en curso termina antes de que el
	// motor pase a escribir en el alcance nuevo.
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	s.mu.RLock()
	same := s.resolved && s.loaded == scope
	s.mu.RUnlock()

	if same {
		s.setIdentity(user)
		s.status.SetLoading(false)
		return nil
	}

	// Desde aquí hasta que la recarga mueve el espejo, el motor rechaza mutaciones: el backend
	// ya apunta al alcance nuevo y el espejo todavía no.
	if user != nil {
		s.engine.SetBackend(syncengine.NewRemoteBackend(s.store, s.writer, scope, s.commitTimeout))
	} else {
		s.engine.SetBackend(syncengine.NewLocalBackend(s.writer))
	}
	s.setIdentity(user)
	s.log.Info().Str("scope", scope).Msg("cambio de alcance")
	return s.reload(ctx)
}

func (s *Session) setIdentity(user *entity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = true
	if user == nil {
		s.identity = nil
		return
	}
	cp := *user
	s.identity = &cp
}

// Reload recarga todas las colecciones del alcance activo. Una segunda recarga concurrente no se
// intercala: devuelve ErrReloadInProgress. Si el almacén remoto no responde se conserva la
// caché local del alcance y la recarga no falla.
func (s *Session) Reload(ctx context.Context) error {
	if !s.reloadMu.TryLock() {
		s.log.Debug().Msg("recarga omitida: ya hay una en curso")
		return ErrReloadInProgress
	}
	defer s.reloadMu.Unlock()
	return s.reload(ctx)
}

// reload requiere reloadMu tomado.
func (s *Session) reload(ctx context.Context) error {
	s.status.SetLoading(true)
	defer s.status.SetLoading(false)
	if s.Acquirer != nil {
		s.Acquirer.Invalidate()
	}

	scope := s.engine.Backend().Scope()
	var err error
	if s.engine.Backend().Mode() == syncengine.ModeRemote {
		err = s.loadRemote(ctx, scope)
	} else {
		err = s.mirror.Load(ctx, scope)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.loaded = scope
	s.mu.Unlock()
	s.log.Info().Str("scope", scope).
		Int("transactions", s.mirror.Transactions.Len()).
		Int("rates", s.mirror.Rates.Len()).
		Msg("datos cargados")
	return nil
}

type snapshot struct {
	transactions []entity.Transaction
	rates        []entity.ExchangeRate
	recipes      []entity.Recipe
	ingredients  []entity.Ingredient
	production   []entity.ProductionRecord
}

func (s *Session) fetch(ctx context.Context, scope string) (snapshot, error) {
	var (
		snap snapshot
		err  error
	)
	byDate := repository.SortField{Field: "date", Desc: true}
	if snap.transactions, err = list[entity.Transaction](ctx, s.store, scope, entity.CollectionTransactions,
		byDate, repository.SortField{Field: "createdAt", Desc: true}); err != nil {
		return snap, err
	}
	if snap.rates, err = list[entity.ExchangeRate](ctx, s.store, scope, entity.CollectionExchangeRates, byDate); err != nil {
		return snap, err
	}
	if snap.recipes, err = list[entity.Recipe](ctx, s.store, scope, entity.CollectionRecipes); err != nil {
		return snap, err
	}
	if snap.ingredients, err = list[entity.Ingredient](ctx, s.store, scope, entity.CollectionIngredients); err != nil {
		return snap, err
	}
	snap.production, err = list[entity.ProductionRecord](ctx, s.store, scope, entity.CollectionProductionRecords, byDate)
	return snap, err
}

func (s *Session) loadRemote(ctx context.Context, scope string) error {
	snap, err := s.fetch(ctx, scope)
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		s.log.Warn().Err(err).Str("scope", scope).Msg("almacén remoto no disponible, usando caché local")
		s.status.SetError("sin conexión con el servidor: mostrando datos guardados")
		return s.mirror.Load(ctx, scope)
	case err != nil:
		s.mirror.SetScope(scope)
		s.mirror.Clear()
		s.log.Error().Err(err).Str("scope", scope).Msg("error cargando datos")
		s.status.SetError("error cargando datos: " + err.Error())
		return fmt.Errorf("cargar datos de %s: %w", scope, err)
	}

	s.mirror.SetScope(scope)
	s.mirror.Transactions.Reset(snap.transactions)
	s.mirror.Rates.Reset(snap.rates)
	s.mirror.Recipes.Reset(snap.recipes)
	s.mirror.Ingredients.Reset(snap.ingredients)
	s.mirror.Production.Reset(snap.production)
	s.mirror.Audit.Reset(nil)
	s.status.ClearError()
	if perr := s.mirror.Persist(ctx); perr != nil {
		s.log.Warn().Err(perr).Msg("no se pudo guardar la caché local")
	}
	return nil
}

func list[T any](ctx context.Context, store repository.DocumentStore, scope, collection string, order ...repository.SortField) ([]T, error) {
	docs, err := store.List(ctx, scope, collection, order...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := entity.FromDocument[T](d)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, d["id"], err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Close espera los commits en segundo plano pendientes.
func (s *Session) Close() {
	s.engine.Wait()
}
