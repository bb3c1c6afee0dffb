package entity

import "time"

// Tipos de evento del historial.
const (
	EventTransactionCreated = "TRANSACTION_CREATED"
	EventTransactionEdited  = "TRANSACTION_EDITED"
	EventTransactionDeleted = "TRANSACTION_DELETED"

	EventExchangeRateCreated = "EXCHANGE_RATE_CREATED"
	EventExchangeRateEdited  = "EXCHANGE_RATE_EDITED"

	EventRecipeCreated = "RECIPE_CREATED"
	EventRecipeEdited  = "RECIPE_EDITED"
	EventRecipeDeleted = "RECIPE_DELETED"

	EventIngredientCreated = "INGREDIENT_CREATED"
	EventIngredientEdited  = "INGREDIENT_EDITED"
	EventIngredientDeleted = "INGREDIENT_DELETED"

	EventProductionCreated = "PRODUCTION_RECORD_CREATED"
	EventProductionEdited  = "PRODUCTION_RECORD_EDITED"
	EventProductionDeleted = "PRODUCTION_RECORD_DELETED"

	EventStockAdjustProductionAdd    = "STOCK_ADJUST_BY_PRODUCTION_ADD"
	EventStockAdjustProductionDelete = "STOCK_ADJUST_BY_PRODUCTION_DELETE"
	EventStockAdjustProductionEdit   = "STOCK_ADJUST_BY_PRODUCTION_EDIT"
)

// Tipos de entidad mostrados en el historial.
const (
	EntityTypeExchangeRate = "Tasa de Cambio"
	EntityTypeRecipe       = "Receta"
	EntityTypeIngredient   = "Ingrediente"
	EntityTypeProduction   = "Registro de Producción"
	EntityTypeStock        = "Stock de Ingrediente"
)

// LocalSystemUser nombre usado cuando no hay identidad (modo local).
const LocalSystemUser = "Sistema (localStorage)"

// Change diferencia de un campo entre dos versiones de una entidad.
type Change struct {
	Field    string `json:"field"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
	Label    string `json:"label"`
}

// AuditEntry evento inmutable del historial (append-only).
type AuditEntry struct {
	ID                string    `json:"id"`
	EventType         string    `json:"eventType"`
	EntityType        string    `json:"entityType"`
	EntityID          string    `json:"entityId"`
	EntityName        string    `json:"entityName"`
	Changes           []Change  `json:"changes"`
	RelatedEntityID   string    `json:"relatedEntityId,omitempty"`
	RelatedEntityName string    `json:"relatedEntityName,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	UserID            string    `json:"userId,omitempty"`
	UserName          string    `json:"userName"`
}

func (a AuditEntry) DocID() string { return a.ID }
