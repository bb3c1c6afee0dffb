package mirror

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// LocalScope alcance del pool sin propietario (modo local).
const LocalScope = "local"

type persistable interface {
	Name() string
	marshal() ([]byte, error)
	unmarshal([]byte) error
	clear()
}

// Mirror espejo local de todas las colecciones, persistido en el KV del dispositivo bajo
// claves "<scope>:<colección>". Es la única fuente de verdad para lo que se muestra.
type Mirror struct {
	kv  repository.KeyValueStore
	log *logger.Logger

	mu    sync.RWMutex
	scope string

	Transactions *Collection[entity.Transaction]
	Rates        *Collection[entity.ExchangeRate]
	Recipes      *Collection[entity.Recipe]
	Ingredients  *Collection[entity.Ingredient]
	Production   *Collection[entity.ProductionRecord]
	Audit        *Collection[entity.AuditEntry]

	all map[string]persistable
}

// New construye el espejo vacío en alcance local.
func New(kv repository.KeyValueStore, log *logger.Logger) *Mirror {
	m := &Mirror{
		kv:           kv,
		log:          log.Component("mirror"),
		scope:        LocalScope,
		Transactions: NewCollection(entity.CollectionTransactions, TransactionsByDateDesc),
		Rates:        NewCollection(entity.CollectionExchangeRates, RatesByDateDesc),
		Recipes:      NewCollection[entity.Recipe](entity.CollectionRecipes, nil),
		Ingredients:  NewCollection[entity.Ingredient](entity.CollectionIngredients, nil),
		Production:   NewCollection(entity.CollectionProductionRecords, ProductionByDateDesc),
		Audit:        NewCollection(entity.CollectionEventHistory, AuditByTimestampDesc),
	}
	m.all = map[string]persistable{
		m.Transactions.Name(): m.Transactions,
		m.Rates.Name():        m.Rates,
		m.Recipes.Name():      m.Recipes,
		m.Ingredients.Name():  m.Ingredients,
		m.Production.Name():   m.Production,
		m.Audit.Name():        m.Audit,
	}
	return m
}

// Scope alcance actual ("local" o id del propietario).
func (m *Mirror) Scope() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scope
}

// Key clave del KV para una colección en el alcance actual.
func (m *Mirror) Key(collection string) string {
	return m.Scope() + ":" + collection
}

// Load cambia de alcance y carga todas las colecciones desde el KV.
// Una clave inexistente deja la colección vacía.
func (m *Mirror) Load(ctx context.Context, scope string) error {
	if scope == "" {
		scope = LocalScope
	}
	m.mu.Lock()
	m.scope = scope
	m.mu.Unlock()

	for name, col := range m.all {
		raw, err := m.kv.Get(ctx, m.Key(name))
		if err != nil {
			return fmt.Errorf("espejo: leer %s: %w", name, err)
		}
		if err := col.unmarshal(raw); err != nil {
			return err
		}
	}
	m.log.Debug().Str("scope", scope).Msg("espejo cargado")
	return nil
}

// SetScope cambia de alcance sin leer el KV. Se usa antes de volcar una recarga remota.
func (m *Mirror) SetScope(scope string) {
	if scope == "" {
		scope = LocalScope
	}
	m.mu.Lock()
	m.scope = scope
	m.mu.Unlock()
}

// Clear vacía todas las colecciones en memoria sin tocar el KV.
func (m *Mirror) Clear() {
	for _, col := range m.all {
		col.clear()
	}
}

// Persist guarda en el KV las colecciones indicadas (todas si no se indica ninguna).
func (m *Mirror) Persist(ctx context.Context, collections ...string) error {
	if len(collections) == 0 {
		for name := range m.all {
			collections = append(collections, name)
		}
	}
	for _, name := range collections {
		col, ok := m.all[name]
		if !ok {
			return fmt.Errorf("espejo: colección desconocida %q", name)
		}
		raw, err := col.marshal()
		if err != nil {
			return fmt.Errorf("espejo: serializar %s: %w", name, err)
		}
		if err := m.kv.Set(ctx, m.Key(name), raw); err != nil {
			return fmt.Errorf("espejo: escribir %s: %w", name, err)
		}
	}
	return nil
}

// TransactionsByDateDesc fecha descendente y luego creación descendente.
func TransactionsByDateDesc(a, b entity.Transaction) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// RatesByDateDesc fecha descendente (YYYY-MM-DD ordena lexicográficamente).
func RatesByDateDesc(a, b entity.ExchangeRate) bool {
	return a.Date > b.Date
}

// ProductionByDateDesc fecha descendente.
func ProductionByDateDesc(a, b entity.ProductionRecord) bool {
	return a.Date > b.Date
}

// AuditByTimestampDesc más reciente primero.
func AuditByTimestampDesc(a, b entity.AuditEntry) bool {
	return a.Timestamp.After(b.Timestamp)
}
