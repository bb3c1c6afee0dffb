package memstore

import (
	"context"
	"sync"

	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
)

var _ repository.KeyValueStore = (*KV)(nil)

// KV almacén clave-valor en memoria (tests y modo sin disco).
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKV crea un KV vacío.
func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

// Get devuelve una copia del valor o (nil, nil) si no existe.
func (k *KV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Set guarda una copia del valor.
func (k *KV) Set(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = append([]byte(nil), value...)
	return nil
}
