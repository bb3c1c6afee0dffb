package audit_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedIdentity struct{ id *entity.Identity }

func (f fixedIdentity) Current() *entity.Identity { return f.id }

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func event() audit.Event {
	return audit.Event{
		EventType:  entity.EventIngredientCreated,
		EntityType: entity.EntityTypeIngredient,
		EntityID:   "i1",
		EntityName: "Harina",
		Changes:    []entity.Change{{Field: "name", NewValue: "Harina", Label: "Nombre"}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y nombre de usuario
// ──────────────────────────────────────────────────────────────────────────────

func TestRecord_SinTipoEsErrorDeValidacion(t *testing.T) {
	w := audit.NewWriter(fixedIdentity{}, nil, mirror.New(memstore.NewKV(), logger.Nop()), logger.Nop())
	_, err := w.Record(context.Background(), audit.Event{EntityType: "X"}, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = w.Record(context.Background(), audit.Event{EventType: "X"}, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestUserName_Fallbacks(t *testing.T) {
	assert.Equal(t, "Ana", audit.UserName(&entity.Identity{ID: "1", DisplayName: "Ana", Email: "a@x.com"}))
	assert.Equal(t, "a@x.com", audit.UserName(&entity.Identity{ID: "1", Email: "a@x.com"}))
	assert.Equal(t, entity.LocalSystemUser, audit.UserName(&entity.Identity{ID: "1"}))
	assert.Equal(t, entity.LocalSystemUser, audit.UserName(nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// Modo local
// ──────────────────────────────────────────────────────────────────────────────

func TestRecord_ModoLocalAgregaAlEspejo(t *testing.T) {
	ctx := context.Background()
	kv := memstore.NewKV()
	m := mirror.New(kv, logger.Nop())
	w := audit.NewWriter(fixedIdentity{}, nil, m, logger.Nop()).WithClock(func() time.Time { return fixedNow })

	id, err := w.Record(ctx, event(), nil)
	require.NoError(t, err)
	assert.Contains(t, id, entity.LocalIDPrefix)

	entries := m.Audit.All()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.LocalSystemUser, entries[0].UserName)
	assert.Equal(t, fixedNow, entries[0].Timestamp)

	raw, _ := kv.Get(ctx, "local:eventHistory")
	assert.Contains(t, string(raw), entity.EventIngredientCreated, "debe persistirse en el KV")
}

// ──────────────────────────────────────────────────────────────────────────────
// Modo remoto
// ──────────────────────────────────────────────────────────────────────────────

func TestRecord_ConBatchNoEscribeHastaCommit(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewDocumentStore()
	user := &entity.Identity{ID: "u1", Email: "ana@x.com"}
	w := audit.NewWriter(fixedIdentity{user}, store, mirror.New(memstore.NewKV(), logger.Nop()), logger.Nop())

	batch := store.NewBatch(user.ID)
	id, err := w.Record(ctx, event(), batch)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 0, store.Count(user.ID, entity.CollectionEventHistory), "no se escribe antes del commit")

	require.NoError(t, batch.Commit(ctx))
	doc, ok := store.Get(user.ID, entity.CollectionEventHistory, id)
	require.True(t, ok)
	assert.Equal(t, "ana@x.com", doc["userName"])
	assert.Equal(t, "u1", doc["userId"])
}

func TestRecord_SinBatchEscrituraInmediata(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewDocumentStore()
	user := &entity.Identity{ID: "u1", DisplayName: "Ana"}
	w := audit.NewWriter(fixedIdentity{user}, store, mirror.New(memstore.NewKV(), logger.Nop()), logger.Nop())

	_, err := w.Record(ctx, event(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Count(user.ID, entity.CollectionEventHistory))

	history, err := w.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Ana", history[0].UserName)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sanitize
// ──────────────────────────────────────────────────────────────────────────────

func TestSanitize_Recursivo(t *testing.T) {
	var nilMap map[string]any
	var nilPtr *int
	in := entity.Document{
		"a": nilPtr,
		"b": []any{1.0, nilMap, math.NaN()},
		"c": map[string]any{"d": math.Inf(1), "e": "ok"},
	}
	out := audit.SanitizeDocument(in)

	assert.Nil(t, out["a"])
	assert.Equal(t, []any{1.0, nil, nil}, out["b"])
	assert.Equal(t, map[string]any{"d": nil, "e": "ok"}, out["c"])
}
