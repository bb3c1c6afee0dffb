package changeset

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// DefaultIgnored metadatos de identidad y auditoría que nunca cuentan como cambio.
var DefaultIgnored = []string{"id", "createdAt", "updatedAt", "userId"}

// Strategy calcula los cambios de un campo concreto. Recibe los valores ya normalizados
// (ausente -> nil) y solo se invoca cuando difieren.
type Strategy func(field string, oldValue, newValue any) []entity.Change

// Calculator calcula el conjunto de cambios entre dos versiones de una entidad.
// Los campos con estructura anidada registran su propia Strategy; el resto usa la comparación por defecto.
type Calculator struct {
	strategies map[string]Strategy
}

// NewCalculator crea un calculador sin estrategias especiales.
func NewCalculator() *Calculator {
	return &Calculator{strategies: make(map[string]Strategy)}
}

// Register asocia una estrategia a un nombre de campo. Reemplaza la anterior si existía.
func (c *Calculator) Register(field string, s Strategy) {
	c.strategies[field] = s
}

// Diff compara before y after (cualquiera puede ser nil) y devuelve los cambios.
// Siempre ignora DefaultIgnored además de ignore. Las claves se recorren en orden alfabético.
func (c *Calculator) Diff(before, after entity.Document, ignore ...string) []entity.Change {
	skip := make(map[string]struct{}, len(DefaultIgnored)+len(ignore))
	for _, f := range DefaultIgnored {
		skip[f] = struct{}{}
	}
	for _, f := range ignore {
		skip[f] = struct{}{}
	}

	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}
	ordered := make([]string, 0, len(keys))
	for k := range keys {
		if _, ignored := skip[k]; !ignored {
			ordered = append(ordered, k)
		}
	}
	sort.Strings(ordered)

	var changes []entity.Change
	for _, key := range ordered {
		oldValue := normalize(lookup(before, key))
		newValue := normalize(lookup(after, key))
		if Equal(oldValue, newValue) {
			continue
		}
		if s, ok := c.strategies[key]; ok {
			changes = append(changes, s(key, oldValue, newValue)...)
			continue
		}
		if isComposite(oldValue) || isComposite(newValue) {
			changes = append(changes, entity.Change{
				Field:    key,
				OldValue: summarize(oldValue),
				NewValue: summarize(newValue),
				Label:    Label(key),
			})
			continue
		}
		changes = append(changes, entity.Change{
			Field:    key,
			OldValue: oldValue,
			NewValue: newValue,
			Label:    Label(key),
		})
	}
	return changes
}

// Equal compara por igualdad profunda de la forma serializada.
func Equal(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return string(ra) == string(rb)
}

func lookup(doc entity.Document, key string) any {
	if doc == nil {
		return nil
	}
	return doc[key]
}

// normalize convierte ausente y nil tipado en nil explícito.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}

func isComposite(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// summarize resume listas y objetos como "Lista (N items)"; nil como "Vacío".
func summarize(v any) any {
	if v == nil {
		return "Vacío"
	}
	return fmt.Sprintf("Lista (%d items)", reflect.ValueOf(v).Len())
}
