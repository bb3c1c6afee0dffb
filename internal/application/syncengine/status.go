package syncengine

import "sync"

// Mode backend que gobierna las mutaciones.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Status canal lateral visible para la interfaz: modo, carga en curso y último error.
// Los fallos de sincronización se informan aquí porque ocurren después de que la operación retornó.
type Status struct {
	mu      sync.RWMutex
	mode    Mode
	loading bool
	err     string
}

// Snapshot copia inmutable del estado.
type Snapshot struct {
	Mode    Mode   `json:"mode"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// NewStatus arranca en modo local sin error.
func NewStatus() *Status {
	return &Status{mode: ModeLocal}
}

func (s *Status) SetMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

func (s *Status) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Status) SetError(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

func (s *Status) ClearError() {
	s.SetError("")
}

func (s *Status) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Mode: s.mode, Loading: s.loading, Error: s.err}
}
