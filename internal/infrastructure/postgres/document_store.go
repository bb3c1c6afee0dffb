package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// schema tabla única de documentos JSONB direccionados por (owner, collection, id).
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	owner      TEXT        NOT NULL,
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	body       JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (owner, collection, id)
);`

const (
	upsertSQL = `INSERT INTO documents (owner, collection, id, body) VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (owner, collection, id) DO UPDATE SET body = excluded.body, updated_at = now()`
	mergeSQL = `INSERT INTO documents (owner, collection, id, body) VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (owner, collection, id) DO UPDATE SET body = documents.body || excluded.body, updated_at = now()`
	deleteSQL = `DELETE FROM documents WHERE owner = $1 AND collection = $2 AND id = $3`
)

// DocumentStore implementa repository.DocumentStore sobre PostgreSQL. Los lotes usan TxRunner.
type DocumentStore struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewDocumentStore construye el almacén. El esquema lo aplica NewPool.
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool, tx: NewTxRunner(pool)}
}

// NewID genera un UUID v4.
func (s *DocumentStore) NewID() string { return uuid.New().String() }

// List ordena por los campos del cuerpo JSON; el id desempata.
func (s *DocumentStore) List(ctx context.Context, scope, collection string, order ...repository.SortField) ([]entity.Document, error) {
	query, args := listQuery(scope, collection, order)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("postgres: listar %s: %w", collection, err))
	}
	defer rows.Close()

	var out []entity.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("postgres: leer %s: %w", collection, err)
		}
		var doc entity.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("postgres: decodificar %s/%s: %w", collection, id, err)
		}
		doc["id"] = id
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("postgres: recorrer %s: %w", collection, err))
	}
	return out, nil
}

func listQuery(scope, collection string, order []repository.SortField) (string, []any) {
	args := []any{scope, collection}
	var b strings.Builder
	b.WriteString(`SELECT id, body FROM documents WHERE owner = $1 AND collection = $2 ORDER BY `)
	for _, f := range order {
		args = append(args, f.Field)
		fmt.Fprintf(&b, "body->>($%d::text)", len(args))
		if f.Desc {
			b.WriteString(" DESC")
		}
		b.WriteString(", ")
	}
	b.WriteString("id")
	return b.String(), args
}

// Set escribe un documento suelto (upsert).
func (s *DocumentStore) Set(ctx context.Context, scope, collection, id string, doc entity.Document, merge bool) error {
	return classify(exec(ctx, s.pool, scope, op{kind: opSet, collection: collection, id: id, doc: doc, merge: merge}))
}

// Delete borra un documento suelto.
func (s *DocumentStore) Delete(ctx context.Context, scope, collection, id string) error {
	return classify(exec(ctx, s.pool, scope, op{kind: opDelete, collection: collection, id: id}))
}

// NewBatch abre un lote.
func (s *DocumentStore) NewBatch(scope string) repository.Batch {
	return &batch{store: s, scope: scope}
}

type opKind int

const (
	opSet opKind = iota
	opDelete
)

type op struct {
	kind       opKind
	collection string
	id         string
	doc        entity.Document
	merge      bool
}

func exec(ctx context.Context, q Querier, scope string, o op) error {
	if o.kind == opDelete {
		if _, err := q.Exec(ctx, deleteSQL, scope, o.collection, o.id); err != nil {
			return fmt.Errorf("postgres: borrar %s/%s: %w", o.collection, o.id, err)
		}
		return nil
	}
	body, err := json.Marshal(o.doc.Without("id"))
	if err != nil {
		return fmt.Errorf("postgres: serializar %s/%s: %w", o.collection, o.id, err)
	}
	sql := upsertSQL
	if o.merge {
		sql = mergeSQL
	}
	if _, err := q.Exec(ctx, sql, scope, o.collection, o.id, body); err != nil {
		return fmt.Errorf("postgres: escribir %s/%s: %w", o.collection, o.id, err)
	}
	return nil
}

type batch struct {
	store *DocumentStore
	scope string
	ops   []op
}

func (b *batch) Set(collection, id string, doc entity.Document) {
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, doc: doc})
}

func (b *batch) Merge(collection, id string, doc entity.Document) {
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, doc: doc, merge: true})
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, op{kind: opDelete, collection: collection, id: id})
}

func (b *batch) Len() int { return len(b.ops) }

// Commit aplica todas las operaciones en una transacción.
func (b *batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	err := b.store.tx.Run(ctx, func(q Querier) error {
		for _, o := range b.ops {
			if err := exec(ctx, q, b.scope, o); err != nil {
				return err
			}
		}
		return nil
	})
	return classify(err)
}
