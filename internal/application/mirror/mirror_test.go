package mirror_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ing(id, stock string) entity.Ingredient {
	return entity.Ingredient{ID: id, Name: id, CurrentStock: decimal.RequireFromString(stock)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Collection
// ──────────────────────────────────────────────────────────────────────────────

func TestCollection_CheckpointRestauraValorExacto(t *testing.T) {
	c := mirror.NewCollection[entity.Ingredient]("ingredients", nil)
	c.Insert(ing("b", "1"))
	c.Insert(ing("a", "5"))

	restore := c.Checkpoint("a")
	require.True(t, c.Replace(ing("a", "7")))
	restore()

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(5)), "debe volver exactamente a 5")
	assert.Equal(t, "a", c.All()[0].ID, "conserva la posición")
}

func TestCollection_CheckpointDeAltaLaElimina(t *testing.T) {
	c := mirror.NewCollection[entity.Ingredient]("ingredients", nil)
	restore := c.Checkpoint("nuevo")
	c.Insert(ing("nuevo", "1"))
	restore()
	_, ok := c.Get("nuevo")
	assert.False(t, ok)
}

func TestCollection_CheckpointDeBajaLaReinsertaEnSuPosicion(t *testing.T) {
	c := mirror.NewCollection[entity.Ingredient]("ingredients", nil)
	c.Reset([]entity.Ingredient{ing("a", "1"), ing("b", "2"), ing("c", "3")})

	restore := c.Checkpoint("b")
	c.Remove("b")
	restore()

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestCollection_OrdenTransacciones(t *testing.T) {
	c := mirror.NewCollection("transactions", mirror.TransactionsByDateDesc)
	now := time.Now()
	c.Insert(entity.Transaction{ID: "1", Date: "2024-01-01", CreatedAt: now})
	c.Insert(entity.Transaction{ID: "2", Date: "2024-02-01", CreatedAt: now})
	c.Insert(entity.Transaction{ID: "3", Date: "2024-01-01", CreatedAt: now.Add(time.Second)})

	all := c.All()
	assert.Equal(t, []string{"2", "3", "1"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

// ──────────────────────────────────────────────────────────────────────────────
// Mirror
// ──────────────────────────────────────────────────────────────────────────────

func TestMirror_PersistYLoadPorAlcance(t *testing.T) {
	ctx := context.Background()
	kv := memstore.NewKV()
	m := mirror.New(kv, logger.Nop())

	require.NoError(t, m.Load(ctx, "user-1"))
	m.Ingredients.Insert(ing("harina", "10"))
	require.NoError(t, m.Persist(ctx, entity.CollectionIngredients))

	raw, err := kv.Get(ctx, "user-1:ingredients")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "harina")

	// Cambiar de alcance deja el espejo vacío para el otro propietario
	require.NoError(t, m.Load(ctx, ""))
	assert.Equal(t, mirror.LocalScope, m.Scope())
	assert.Equal(t, 0, m.Ingredients.Len())

	require.NoError(t, m.Load(ctx, "user-1"))
	got, ok := m.Ingredients.Get("harina")
	require.True(t, ok)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(10)))
}

func TestMirror_PersistColeccionDesconocida(t *testing.T) {
	m := mirror.New(memstore.NewKV(), logger.Nop())
	assert.Error(t, m.Persist(context.Background(), "nope"))
}
