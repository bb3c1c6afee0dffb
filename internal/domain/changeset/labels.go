package changeset

import (
	"strings"
	"unicode"
)

var fieldLabels = map[string]string{
	"name":                    "Nombre",
	"description":             "Descripción",
	"notes":                   "Notas Adicionales",
	"date":                    "Fecha",
	"category":                "Categoría",
	"type":                    "Tipo Transacción",
	"amountBs":                "Monto (Bs.)",
	"exchangeRate":            "Tasa de Cambio (Bs/USD)",
	"amountUsd":               "Monto (USD)",
	"rate":                    "Tasa (Bs/USD)",
	"cost":                    "Costo de Presentación",
	"presentationSize":        "Tamaño de Presentación",
	"unit":                    "Unidad",
	"currentStock":            "Stock Actual",
	"ingredients":             "Ingredientes",
	"packagingCostPerBatch":   "Costo de Empaque/Lote",
	"laborCostPerBatch":       "Mano de Obra/Lote",
	"itemsPerBatch":           "Items por Lote",
	"profitMarginPercent":     "% Margen de Ganancia",
	"lossBufferPercent":       "% Margen de Pérdida",
	"productName":             "Nombre del Producto",
	"batchSize":               "Tamaño del Lote (Cantidad)",
	"netProfit":               "Ganancia Neta",
	"recipeId":                "Receta Asociada",
	"totalRevenue":            "Ingresos Totales",
	"totalCost":               "Costo Total de Producción",
	"operatingCostRecipeOnly": "Gastos Op. (Ingr. + Emp.)",
	"laborCostForBatch":       "Costo Mano de Obra (Lote)",
	"isSold":                  "Vendido",

	FieldIngredientRemoved:         "Ingrediente Eliminado",
	FieldIngredientAdded:           "Ingrediente Añadido",
	FieldIngredientQuantityUpdated: "Cantidad de Ingrediente",
	FieldIngredientUnitUpdated:     "Unidad de Ingrediente",
}

// Label devuelve la etiqueta legible de un campo. Para claves desconocidas separa el camelCase
// y capitaliza la primera letra ("minStock" -> "Min Stock").
func Label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
