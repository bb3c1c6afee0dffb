// Package mongodb almacén remoto de documentos sobre MongoDB. Cada colección lógica es una colección
// de Mongo; el alcance del propietario viaja en el campo "owner" de cada documento.
//
// El _id es compuesto ("<owner>/<id>") y el id de negocio se guarda en el campo "id": dos
// propietarios pueden tener el mismo id (las tasas usan la fecha como id).
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

const (
	ownerField = "owner"
	idField    = "id"
)

// DocumentStore implementa repository.DocumentStore. Los lotes se confirman dentro de una
// transacción multi-documento (requiere replica set).
type DocumentStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect abre el cliente y verifica la conexión con un ping.
func Connect(ctx context.Context, uri, dbName string) (*DocumentStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: conectar: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}
	return &DocumentStore{client: client, db: client.Database(dbName)}, nil
}

// Close desconecta el cliente.
func (s *DocumentStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// NewID genera un ObjectID en hexadecimal.
func (s *DocumentStore) NewID() string {
	return primitive.NewObjectID().Hex()
}

// List documentos del propietario ordenados por los campos indicados.
func (s *DocumentStore) List(ctx context.Context, scope, collection string, order ...repository.SortField) ([]entity.Document, error) {
	opts := options.Find()
	if len(order) > 0 {
		sort := bson.D{}
		for _, f := range order {
			dir := 1
			if f.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: f.Field, Value: dir})
		}
		opts.SetSort(sort)
	}

	cur, err := s.db.Collection(collection).Find(ctx, bson.M{ownerField: scope}, opts)
	if err != nil {
		return nil, classify(fmt.Errorf("mongodb: listar %s: %w", collection, err))
	}
	defer cur.Close(ctx)

	var out []entity.Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("mongodb: decodificar %s: %w", collection, err)
		}
		out = append(out, fromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, classify(fmt.Errorf("mongodb: recorrer %s: %w", collection, err))
	}
	return out, nil
}

// Set escribe un documento suelto (upsert).
func (s *DocumentStore) Set(ctx context.Context, scope, collection, id string, doc entity.Document, merge bool) error {
	return classify(s.apply(ctx, op{kind: opSet, collection: collection, id: id, doc: doc, merge: merge}, scope))
}

// Delete borra un documento suelto.
func (s *DocumentStore) Delete(ctx context.Context, scope, collection, id string) error {
	return classify(s.apply(ctx, op{kind: opDelete, collection: collection, id: id}, scope))
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

func (s *DocumentStore) apply(ctx context.Context, o op, scope string) error {
	coll := s.db.Collection(o.collection)
	filter := bson.M{"_id": docKey(scope, o.id), ownerField: scope}
	switch o.kind {
	case opDelete:
		if _, err := coll.DeleteOne(ctx, filter); err != nil {
			return fmt.Errorf("mongodb: borrar %s/%s: %w", o.collection, o.id, err)
		}
	case opSet:
		body := toBSON(o.doc, scope, o.id)
		var err error
		if o.merge {
			_, err = coll.UpdateOne(ctx, filter, bson.M{"$set": body}, options.Update().SetUpsert(true))
		} else {
			_, err = coll.ReplaceOne(ctx, filter, body, options.Replace().SetUpsert(true))
		}
		if err != nil {
			return fmt.Errorf("mongodb: escribir %s/%s: %w", o.collection, o.id, err)
		}
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

// Commit aplica todas las operaciones dentro de una transacción: todo o nada.
func (b *batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	sess, err := b.store.client.StartSession()
	if err != nil {
		return classify(fmt.Errorf("mongodb: iniciar sesión: %w", err))
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		for _, o := range b.ops {
			if err := b.store.apply(sc, o, b.scope); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return classify(fmt.Errorf("mongodb: commit de %d operaciones: %w", len(b.ops), err))
	}
	return nil
}

// classify marca como ErrStoreUnavailable los errores de red y de timeout (incluye selección de servidor).
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

// docKey _id del documento dentro de su colección.
func docKey(scope, id string) string {
	return scope + "/" + id
}

// toBSON arma el cuerpo: id de negocio y propietario explícitos. No lleva _id, lo aporta el
// filtro en el upsert y es inmutable en los reemplazos.
func toBSON(doc entity.Document, scope, id string) bson.M {
	out := make(bson.M, len(doc)+2)
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	out[idField] = id
	out[ownerField] = scope
	return out
}

// fromBSON devuelve la forma genérica: id de negocio, sin owner ni _id, subdocumentos como
// mapas planos. Documentos sin campo id usan el _id sin el prefijo del propietario.
func fromBSON(raw bson.M) entity.Document {
	out := make(entity.Document, len(raw))
	for k, v := range raw {
		switch k {
		case "_id", ownerField:
		default:
			out[k] = plain(v)
		}
	}
	if id, ok := out[idField]; ok && id != nil && fmt.Sprint(id) != "" {
		out[idField] = fmt.Sprint(id)
		return out
	}
	key := fmt.Sprint(plain(raw["_id"]))
	if owner, ok := raw[ownerField].(string); ok {
		key = strings.TrimPrefix(key, owner+"/")
	}
	out[idField] = key
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = plain(x)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = plain(x)
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	}
	return v
}
