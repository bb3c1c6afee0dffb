package mirror

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// Collection colección en memoria ordenada e indexada por id. Es la vista que consumen las
// operaciones de dominio; solo el motor de sincronización la modifica.
// Los valores se guardan por copia: editar implica reemplazar el valor completo.
type Collection[T entity.Entity] struct {
	name  string
	less  func(a, b T) bool // nil = orden de inserción
	mu    sync.RWMutex
	items []T
}

// NewCollection crea una colección vacía. less define el orden tras inserciones (nil = sin reordenar).
func NewCollection[T entity.Entity](name string, less func(a, b T) bool) *Collection[T] {
	return &Collection[T]{name: name, less: less}
}

// Name nombre de la colección (coincide con la colección remota).
func (c *Collection[T]) Name() string { return c.name }

// All devuelve una copia de los elementos en su orden actual.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len cantidad de elementos.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get busca por id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Insert agrega al frente y reordena si la colección tiene orden.
func (c *Collection[T]) Insert(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{v}, c.items...)
	c.sortLocked()
}

// Replace reemplaza en su posición el elemento con el mismo id. Devuelve false si no existe.
func (c *Collection[T]) Replace(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(v.DocID())
	if i < 0 {
		return false
	}
	c.items[i] = v
	return true
}

// Upsert reemplaza si existe o inserta al frente.
func (c *Collection[T]) Upsert(v T) {
	if c.Replace(v) {
		return
	}
	c.Insert(v)
}

// Remove quita el elemento con el id dado.
func (c *Collection[T]) Remove(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, false
	}
	v := c.items[i]
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return v, true
}

// Checkpoint captura el valor exacto y la posición actuales del id y devuelve la función que
// los restaura. Si el id no existía, restaurar lo elimina.
func (c *Collection[T]) Checkpoint(id string) func() {
	c.mu.RLock()
	pos := c.indexOf(id)
	existed := pos >= 0
	var prior T
	if existed {
		prior = c.items[pos]
	}
	c.mu.RUnlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		cur := c.indexOf(id)
		switch {
		case existed && cur >= 0:
			c.items[cur] = prior
		case existed:
			if pos > len(c.items) {
				pos = len(c.items)
			}
			c.items = append(c.items[:pos], append([]T{prior}, c.items[pos:]...)...)
		case cur >= 0:
			c.items = append(c.items[:cur:cur], c.items[cur+1:]...)
		}
	}
}

// Reset reemplaza todo el contenido (recarga completa).
func (c *Collection[T]) Reset(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]T, len(items))
	copy(c.items, items)
	c.sortLocked()
}

func (c *Collection[T]) clear() { c.Reset(nil) }

func (c *Collection[T]) marshal() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := c.items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func (c *Collection[T]) unmarshal(raw []byte) error {
	var items []T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("espejo %s: decodificar: %w", c.name, err)
		}
	}
	c.Reset(items)
	return nil
}

func (c *Collection[T]) indexOf(id string) int {
	for i, it := range c.items {
		if it.DocID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) sortLocked() {
	if c.less == nil {
		return
	}
	sort.SliceStable(c.items, func(i, j int) bool { return c.less(c.items[i], c.items[j]) })
}
