package entity

// Identity usuario autenticado expuesto por el contexto de identidad externo.
// Una identidad nil significa modo local (sin alcance de propietario remoto).
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}
