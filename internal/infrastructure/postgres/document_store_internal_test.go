package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
)

func TestListQuery_OrdenParametrizado(t *testing.T) {
	q, args := listQuery("u1", "transactions", []repository.SortField{
		{Field: "date", Desc: true},
		{Field: "createdAt", Desc: true},
	})
	assert.Equal(t,
		"SELECT id, body FROM documents WHERE owner = $1 AND collection = $2 ORDER BY body->>($3::text) DESC, body->>($4::text) DESC, id", q)
	assert.Equal(t, []any{"u1", "transactions", "date", "createdAt"}, args)

	q, args = listQuery("u1", "recipes", nil)
	assert.Equal(t, "SELECT id, body FROM documents WHERE owner = $1 AND collection = $2 ORDER BY id", q)
	assert.Len(t, args, 2)
}

func TestClassify_ErroresDeConexion(t *testing.T) {
	assert.ErrorIs(t, classify(fmt.Errorf("x: %w", context.DeadlineExceeded)), domain.ErrStoreUnavailable)
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "08006"}), domain.ErrStoreUnavailable)
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "23505"}), domain.ErrConflict)

	other := errors.New("sintaxis")
	assert.Equal(t, other, classify(other))
}

func TestWithIPv4Host(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "postgres://app:x@127.0.0.1:5433/libro", withIPv4Host(ctx, "postgres://app:x@127.0.0.1:5433/libro"))
	assert.Equal(t, "postgres://app@10.0.0.5:5432/libro", withIPv4Host(ctx, "postgres://app@10.0.0.5/libro"), "puerto por defecto")
	assert.Equal(t, "postgres://app@[::1]:5432/libro", withIPv4Host(ctx, "postgres://app@[::1]:5432/libro"), "IPv6 literal sin cambios")
	assert.Equal(t, "host=db user=app", withIPv4Host(ctx, "host=db user=app"), "DSN clave=valor sin cambios")
}
