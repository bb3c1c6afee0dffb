package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore almacén de documentos en memoria con lotes atómicos.
// Permite inyectar fallos de commit y simular indisponibilidad para probar rollback y modo offline.
type DocumentStore struct {
	mu          sync.Mutex
	docs        map[string]map[string]entity.Document // "<scope>/<colección>" -> id -> doc
	failCommits []error
	unavailable bool
	commits     int
	gate        chan struct{}
}

// NewDocumentStore crea un almacén vacío.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]map[string]entity.Document)}
}

// FailNextCommit hace que el próximo Commit falle con err (se encolan en orden).
func (s *DocumentStore) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommits = append(s.failCommits, err)
}

// SetUnavailable simula un servidor caído: List/Set/Delete/Commit devuelven domain.ErrStoreUnavailable.
func (s *DocumentStore) SetUnavailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = v
}

// HoldCommits bloquea los commits hasta que se llame a la función devuelta.
func (s *DocumentStore) HoldCommits() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Commits cantidad de commits exitosos.
func (s *DocumentStore) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Get devuelve una copia del documento (para aserciones).
func (s *DocumentStore) Get(scope, collection, id string) (entity.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[path(scope, collection)][id]
	if !ok {
		return nil, false
	}
	return clone(d), true
}

// Count cantidad de documentos de una colección.
func (s *DocumentStore) Count(scope, collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[path(scope, collection)])
}

// NewID genera un UUID.
func (s *DocumentStore) NewID() string {
	return uuid.New().String()
}

// List devuelve los documentos de la colección ordenados por los campos indicados.
func (s *DocumentStore) List(_ context.Context, scope, collection string, order ...repository.SortField) ([]entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return nil, domain.ErrStoreUnavailable
	}
	out := make([]entity.Document, 0, len(s.docs[path(scope, collection)]))
	for _, d := range s.docs[path(scope, collection)] {
		out = append(out, clone(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, f := range order {
			a, b := fmt.Sprint(out[i][f.Field]), fmt.Sprint(out[j][f.Field])
			if a == b {
				continue
			}
			if f.Desc {
				return a > b
			}
			return a < b
		}
		return fmt.Sprint(out[i]["id"]) < fmt.Sprint(out[j]["id"])
	})
	return out, nil
}

// Set escribe un documento suelto.
func (s *DocumentStore) Set(_ context.Context, scope, collection, id string, doc entity.Document, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return domain.ErrStoreUnavailable
	}
	s.applyLocked(op{kind: opSet, scope: scope, collection: collection, id: id, doc: doc, merge: merge})
	return nil
}

// Delete borra un documento suelto.
func (s *DocumentStore) Delete(_ context.Context, scope, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return domain.ErrStoreUnavailable
	}
	s.applyLocked(op{kind: opDelete, scope: scope, collection: collection, id: id})
	return nil
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
	scope      string
	collection string
	id         string
	doc        entity.Document
	merge      bool
}

type batch struct {
	store *DocumentStore
	scope string
	ops   []op
}

func (b *batch) Set(collection, id string, doc entity.Document) {
	b.ops = append(b.ops, op{kind: opSet, scope: b.scope, collection: collection, id: id, doc: clone(doc)})
}

func (b *batch) Merge(collection, id string, doc entity.Document) {
	b.ops = append(b.ops, op{kind: opSet, scope: b.scope, collection: collection, id: id, doc: clone(doc), merge: true})
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, op{kind: opDelete, scope: b.scope, collection: collection, id: id})
}

func (b *batch) Len() int { return len(b.ops) }

// Commit aplica todas las operaciones o ninguna.
func (b *batch) Commit(ctx context.Context) error {
	s := b.store
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return domain.ErrStoreUnavailable
	}
	if len(s.failCommits) > 0 {
		err := s.failCommits[0]
		s.failCommits = s.failCommits[1:]
		return err
	}
	for _, o := range b.ops {
		s.applyLocked(o)
	}
	s.commits++
	return nil
}

func (s *DocumentStore) applyLocked(o op) {
	p := path(o.scope, o.collection)
	if s.docs[p] == nil {
		s.docs[p] = make(map[string]entity.Document)
	}
	switch o.kind {
	case opDelete:
		delete(s.docs[p], o.id)
	case opSet:
		next := clone(o.doc)
		if o.merge {
			if prev, ok := s.docs[p][o.id]; ok {
				merged := clone(prev)
				for k, v := range next {
					merged[k] = v
				}
				next = merged
			}
		}
		next["id"] = o.id
		s.docs[p][o.id] = next
	}
}

func path(scope, collection string) string {
	return scope + "/" + collection
}

func clone(d entity.Document) entity.Document {
	out := make(entity.Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
