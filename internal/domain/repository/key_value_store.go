package repository

import "context"

// KeyValueStore almacén clave-valor persistente del dispositivo (espejo local).
// Get devuelve (nil, nil) cuando la clave no existe.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
