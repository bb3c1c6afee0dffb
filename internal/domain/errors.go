package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")

	// ErrSyncFailure: el commit remoto (o la preparación del lote) falló después de la aplicación optimista.
	ErrSyncFailure = errors.New("error de sincronización con el servidor")
	// ErrRateUnavailable: la fuente de tasas no publicó tasa para la fecha ni para los días anteriores.
	ErrRateUnavailable = errors.New("servicio de tasas no disponible")
	// ErrStoreUnavailable: el almacén remoto no responde. Condición blanda, se conserva la caché local.
	ErrStoreUnavailable = errors.New("almacén remoto no disponible")
)
