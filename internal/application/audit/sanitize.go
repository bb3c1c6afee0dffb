package audit

import (
	"math"
	"reflect"

	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// Sanitize recorre el valor y reemplaza por nil todo lo que el almacén remoto rechaza:
// nil tipados (punteros, mapas, slices) y flotantes NaN/Inf, también dentro de listas y objetos.
// Se aplica una sola vez, en el borde de escritura remota.
func Sanitize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case entity.Document:
		if t == nil {
			return nil
		}
		return SanitizeDocument(t)
	case map[string]any:
		if t == nil {
			return nil
		}
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = Sanitize(x)
		}
		return out
	case []any:
		if t == nil {
			return nil
		}
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = Sanitize(x)
		}
		return out
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return nil
		}
		return t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}

// SanitizeDocument aplica Sanitize a cada campo del documento.
func SanitizeDocument(d entity.Document) entity.Document {
	if d == nil {
		return nil
	}
	out := make(entity.Document, len(d))
	for k, x := range d {
		out[k] = Sanitize(x)
	}
	return out
}
