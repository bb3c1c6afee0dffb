package entity

import (
	"fmt"
	"time"
)

// DateLayout formato de fechas de negocio (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ParseDate valida y parsea una fecha YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q: se espera YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formatea un instante como fecha de negocio en su zona local.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today devuelve la fecha local de hoy como YYYY-MM-DD.
func Today(now time.Time) string {
	return FormatDate(now.Local())
}
