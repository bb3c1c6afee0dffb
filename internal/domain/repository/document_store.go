package repository

import (
	"context"

	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// SortField criterio de orden para listados del almacén de documentos.
type SortField struct {
	Field string
	Desc  bool
}

// DocumentStore define el puerto del almacén remoto de documentos (DIP).
// Cada colección se direcciona por (scope, collection): scope es el id del propietario.
// Los adaptadores devuelven domain.ErrStoreUnavailable cuando el servidor no responde.
type DocumentStore interface {
	// NewID reserva un identificador de documento nuevo (asignado por el almacén).
	NewID() string
	List(ctx context.Context, scope, collection string, order ...SortField) ([]entity.Document, error)
	// Set escribe un documento. Con merge=true solo reemplaza los campos presentes.
	Set(ctx context.Context, scope, collection, id string, doc entity.Document, merge bool) error
	Delete(ctx context.Context, scope, collection, id string) error
	// NewBatch abre un lote atómico: todo o nada al hacer Commit.
	NewBatch(scope string) Batch
}

// Batch lote atómico de escrituras multi-documento.
type Batch interface {
	Set(collection, id string, doc entity.Document)
	Merge(collection, id string, doc entity.Document)
	Delete(collection, id string)
	Len() int
	Commit(ctx context.Context) error
}
