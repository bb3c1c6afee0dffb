package entity

import (
	"encoding/json"
	"fmt"
)

// Nombres de colección compartidos por el espejo local y el almacén remoto.
const (
	CollectionTransactions      = "transactions"
	CollectionExchangeRates     = "exchangeRates"
	CollectionRecipes           = "recipes"
	CollectionIngredients       = "ingredients"
	CollectionProductionRecords = "productionRecords"
	CollectionEventHistory      = "eventHistory"
)

// Entity es cualquier documento con id estable dentro de su colección y alcance de propietario.
type Entity interface {
	DocID() string
}

// Document es la forma genérica campo -> valor con la que viajan las entidades
// hacia el almacén de documentos y hacia el calculador de cambios.
type Document map[string]any

// ToDocument convierte una entidad tipada en Document usando su forma JSON.
// Los decimales quedan como string y los instantes como RFC3339.
func ToDocument(v any) (Document, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("documento: serializar: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("documento: deserializar: %w", err)
	}
	return doc, nil
}

// FromDocument reconstruye una entidad tipada desde un Document.
func FromDocument[T any](doc Document) (T, error) {
	var out T
	raw, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("documento: serializar: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("documento: decodificar: %w", err)
	}
	return out, nil
}

// Without devuelve una copia superficial del documento sin las claves indicadas.
func (d Document) Without(keys ...string) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
