package entity

import "github.com/oklog/ulid/v2"

// LocalIDPrefix marca los ids generados en el dispositivo (modo sin sesión).
const LocalIDPrefix = "local_"

// NewLocalID genera un id local ordenable por tiempo: prefijo + ULID (timestamp en ms + aleatorio).
func NewLocalID() string {
	return LocalIDPrefix + ulid.Make().String()
}
