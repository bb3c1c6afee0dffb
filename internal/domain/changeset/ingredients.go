package changeset

import (
	"fmt"

	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// Campos sintéticos emitidos por la estrategia de ingredientes de receta.
const (
	FieldIngredientAdded           = "ingredient_added"
	FieldIngredientRemoved         = "ingredient_removed"
	FieldIngredientQuantityUpdated = "ingredient_quantity_updated"
	FieldIngredientUnitUpdated     = "ingredient_unit_updated"
)

// IngredientLookup resuelve nombre y unidad global de un ingrediente por id.
type IngredientLookup func(id string) (name, unit string, ok bool)

type recipeLine struct {
	quantity string
	unit     string
}

// IngredientStrategy trata la lista de ingredientes como un mapa por ingredientId y emite
// un cambio por ingrediente añadido, eliminado, con cantidad distinta o con unidad distinta.
// Si el ingrediente no existe en el catálogo se muestra como "ID:<id>".
func IngredientStrategy(lookup IngredientLookup) Strategy {
	return func(_ string, oldValue, newValue any) []entity.Change {
		oldIDs, oldLines := indexLines(oldValue)
		newIDs, newLines := indexLines(newValue)

		ids := append([]string{}, oldIDs...)
		for _, id := range newIDs {
			if _, seen := oldLines[id]; !seen {
				ids = append(ids, id)
			}
		}

		var changes []entity.Change
		for _, id := range ids {
			name, globalUnit := fmt.Sprintf("ID:%s", id), ""
			if lookup != nil {
				if n, u, ok := lookup(id); ok {
					name, globalUnit = n, u
				}
			}
			o, hadOld := oldLines[id]
			n, hasNew := newLines[id]

			switch {
			case hadOld && !hasNew:
				changes = append(changes, entity.Change{
					Field:    FieldIngredientRemoved,
					OldValue: fmt.Sprintf("%s (%s %s)", name, o.quantity, orDefault(o.unit, globalUnit)),
					NewValue: nil,
					Label:    "Ingrediente Eliminado: " + name,
				})
			case !hadOld && hasNew:
				changes = append(changes, entity.Change{
					Field:    FieldIngredientAdded,
					OldValue: nil,
					NewValue: fmt.Sprintf("%s (%s %s)", name, n.quantity, orDefault(n.unit, globalUnit)),
					Label:    "Ingrediente Añadido: " + name,
				})
			default:
				if o.quantity != n.quantity {
					changes = append(changes, entity.Change{
						Field:    FieldIngredientQuantityUpdated,
						OldValue: o.quantity,
						NewValue: n.quantity,
						Label:    "Cantidad de " + name,
					})
				}
				if o.unit != n.unit {
					changes = append(changes, entity.Change{
						Field:    FieldIngredientUnitUpdated,
						OldValue: orDefault(o.unit, "(global: "+globalUnit+")"),
						NewValue: orDefault(n.unit, "(global: "+globalUnit+")"),
						Label:    "Unidad de " + name + " (en receta)",
					})
				}
			}
		}
		return changes
	}
}

// indexLines acepta []any de mapas (forma Document) o []entity.RecipeIngredient.
func indexLines(v any) ([]string, map[string]recipeLine) {
	lines := make(map[string]recipeLine)
	var order []string
	add := func(id, qty, unit string) {
		if _, dup := lines[id]; !dup {
			order = append(order, id)
		}
		lines[id] = recipeLine{quantity: qty, unit: unit}
	}
	switch list := v.(type) {
	case []any:
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			id := fmt.Sprint(m["ingredientId"])
			add(id, scalarString(m["quantity"]), scalarString(m["unit"]))
		}
	case []entity.RecipeIngredient:
		for _, ri := range list {
			add(ri.IngredientID, ri.Quantity.String(), ri.Unit)
		}
	}
	return order, lines
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
