package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/syncengine"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/costing"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// RecipeService recetas con precios derivados.
type RecipeService struct {
	*base
}

func (s *RecipeService) List() []entity.Recipe {
	return s.mirror.Recipes.All()
}

func (s *RecipeService) Get(id string) (entity.Recipe, error) {
	r, ok := s.mirror.Recipes.Get(id)
	if !ok {
		return entity.Recipe{}, domain.ErrNotFound
	}
	return r, nil
}

// Add crea la receta y calcula sus costos con los ingredientes actuales.
func (s *RecipeService) Add(ctx context.Context, in dto.RecipeRequest) (entity.Recipe, error) {
	r, err := s.build(in)
	if err != nil {
		return entity.Recipe{}, err
	}
	now := s.stamp()
	r.ID = s.engine.NewID()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.UserID = s.engine.Owner()

	changes, err := s.created(r, entity.RecipeCalculatedFields...)
	if err != nil {
		return entity.Recipe{}, err
	}
	m := syncengine.NewMutation("recipe.add")
	if err := syncengine.Put(m, s.mirror.Recipes, r, false); err != nil {
		return entity.Recipe{}, err
	}
	m.Record(audit.Event{
		EventType:  entity.EventRecipeCreated,
		EntityType: entity.EntityTypeRecipe,
		EntityID:   r.ID,
		EntityName: r.Name,
		Changes:    changes,
	})
	if err := s.engine.Execute(ctx, m); err != nil {
		return entity.Recipe{}, err
	}
	return r, nil
}

// Edit reemplaza la receta. Los campos calculados se recalculan pero no cuentan como cambio.
func (s *RecipeService) Edit(ctx context.Context, id string, in dto.RecipeRequest) (entity.Recipe, error) {
	old, err := s.Get(id)
	if err != nil {
		return entity.Recipe{}, err
	}
	r, err := s.build(in)
	if err != nil {
		return entity.Recipe{}, err
	}
	r.ID, r.CreatedAt, r.UpdatedAt, r.UserID = old.ID, old.CreatedAt, old.UpdatedAt, old.UserID

	changes, err := s.edited(old, r, entity.RecipeCalculatedFields...)
	if err != nil {
		return entity.Recipe{}, err
	}
	if len(changes) == 0 {
		return old, nil
	}
	r.UpdatedAt = s.stamp()

	m := syncengine.NewMutation("recipe.edit")
	if err := syncengine.Put(m, s.mirror.Recipes, r, true); err != nil {
		return entity.Recipe{}, err
	}
	m.Record(audit.Event{
		EventType:  entity.EventRecipeEdited,
		EntityType: entity.EntityTypeRecipe,
		EntityID:   r.ID,
		EntityName: r.Name,
		Changes:    changes,
	})
	if err := s.engine.Execute(ctx, m); err != nil {
		return entity.Recipe{}, err
	}
	return r, nil
}

// Delete elimina la receta. Los registros de producción conservan su recipeId.
func (s *RecipeService) Delete(ctx context.Context, id string) error {
	r, err := s.Get(id)
	if err != nil {
		return err
	}
	changes, err := s.deleted(r)
	if err != nil {
		return err
	}
	m := syncengine.NewMutation("recipe.delete")
	syncengine.Remove(m, s.mirror.Recipes, id)
	m.Record(audit.Event{
		EventType:  entity.EventRecipeDeleted,
		EntityType: entity.EntityTypeRecipe,
		EntityID:   r.ID,
		EntityName: r.Name,
		Changes:    changes,
	})
	return s.engine.Execute(ctx, m)
}

func (s *RecipeService) build(in dto.RecipeRequest) (entity.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.Recipe{}, fmt.Errorf("%w: la receta requiere nombre", domain.ErrInvalidInput)
	}
	if in.ItemsPerBatch.IsNegative() {
		return entity.Recipe{}, fmt.Errorf("%w: items por lote no puede ser negativo", domain.ErrInvalidInput)
	}
	lines := make([]entity.RecipeIngredient, 0, len(in.Ingredients))
	for _, l := range in.Ingredients {
		if l.IngredientID == "" || !l.Quantity.IsPositive() {
			return entity.Recipe{}, fmt.Errorf("%w: cada ingrediente requiere id y cantidad positiva", domain.ErrInvalidInput)
		}
		lines = append(lines, entity.RecipeIngredient{IngredientID: l.IngredientID, Quantity: l.Quantity, Unit: l.Unit})
	}
	r := entity.Recipe{
		Name:                  name,
		Ingredients:           lines,
		PackagingCostPerBatch: in.PackagingCostPerBatch,
		LaborCostPerBatch:     in.LaborCostPerBatch,
		ItemsPerBatch:         in.ItemsPerBatch,
		ProfitMarginPercent:   in.ProfitMarginPercent,
		LossBufferPercent:     in.LossBufferPercent,
	}
	return costing.ApplyPricing(r, s.ingredientIndex()), nil
}

func (s *RecipeService) ingredientIndex() map[string]entity.Ingredient {
	all := s.mirror.Ingredients.All()
	out := make(map[string]entity.Ingredient, len(all))
	for _, ing := range all {
		out[ing.ID] = ing
	}
	return out
}
