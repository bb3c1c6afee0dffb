package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, path string) *sqlite.KVStore {
	t.Helper()
	s, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKV_ClaveInexistenteEsNil(t *testing.T) {
	s := open(t, ":memory:")
	v, err := s.Get(context.Background(), "local:transactions")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestKV_SetReemplaza(t *testing.T) {
	s := open(t, ":memory:")
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "local:recipes", []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, "local:recipes", []byte(`[1,2]`)))
	require.NoError(t, s.Set(ctx, "u1:recipes", []byte(`[]`)))

	v, err := s.Get(ctx, "local:recipes")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(v))

	keys, err := s.Keys(ctx, "local:")
	require.NoError(t, err)
	assert.Equal(t, []string{"local:recipes"}, keys)
}

func TestKV_EspejoSobreviveReapertura(t *testing.T) {
	path := filepath.Join(t.TempDir(), "espejo.db")
	ctx := context.Background()

	kv, err := sqlite.Open(path)
	require.NoError(t, err)
	m := mirror.New(kv, logger.Nop())
	m.Ingredients.Insert(entity.Ingredient{ID: "i1", Name: "Harina", CurrentStock: decimal.NewFromInt(20)})
	require.NoError(t, m.Persist(ctx, entity.CollectionIngredients))
	require.NoError(t, kv.Close())

	reopened := open(t, path)
	m2 := mirror.New(reopened, logger.Nop())
	require.NoError(t, m2.Load(ctx, mirror.LocalScope))
	got, ok := m2.Ingredients.Get("i1")
	require.True(t, ok)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(20)))
}
