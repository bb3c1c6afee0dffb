package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/syncengine"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// IngredientService catálogo de insumos con stock.
type IngredientService struct {
	*base
}

func (s *IngredientService) List() []entity.Ingredient {
	return s.mirror.Ingredients.All()
}

func (s *IngredientService) Get(id string) (entity.Ingredient, error) {
	ing, ok := s.mirror.Ingredients.Get(id)
	if !ok {
		return entity.Ingredient{}, domain.ErrNotFound
	}
	return ing, nil
}

func (s *IngredientService) Add(ctx context.Context, in dto.IngredientRequest) (entity.Ingredient, error) {
	ing, err := buildIngredient(in)
	if err != nil {
		return entity.Ingredient{}, err
	}
	now := s.stamp()
	ing.ID = s.engine.NewID()
	ing.CreatedAt = now
	ing.UpdatedAt = now
	ing.UserID = s.engine.Owner()

	changes, err := s.created(ing)
	if err != nil {
		return entity.Ingredient{}, err
	}
	m := syncengine.NewMutation("ingredient.add")
	if err := syncengine.Put(m, s.mirror.Ingredients, ing, false); err != nil {
		return entity.Ingredient{}, err
	}
	m.Record(audit.Event{
		EventType:  entity.EventIngredientCreated,
		EntityType: entity.EntityTypeIngredient,
		EntityID:   ing.ID,
		EntityName: ing.Name,
		Changes:    changes,
	})
	if err := s.engine.Execute(ctx, m); err != nil {
		return entity.Ingredient{}, err
	}
	return ing, nil
}

// Edit reemplaza los datos del ingrediente, incluido el stock (ajuste manual).
func (s *IngredientService) Edit(ctx context.Context, id string, in dto.IngredientRequest) (entity.Ingredient, error) {
	old, err := s.Get(id)
	if err != nil {
		return entity.Ingredient{}, err
	}
	ing, err := buildIngredient(in)
	if err != nil {
		return entity.Ingredient{}, err
	}
	ing.ID, ing.CreatedAt, ing.UpdatedAt, ing.UserID = old.ID, old.CreatedAt, old.UpdatedAt, old.UserID

	changes, err := s.edited(old, ing)
	if err != nil {
		return entity.Ingredient{}, err
	}
	if len(changes) == 0 {
		return old, nil
	}
	ing.UpdatedAt = s.stamp()

	m := syncengine.NewMutation("ingredient.edit")
	if err := syncengine.Put(m, s.mirror.Ingredients, ing, true); err != nil {
		return entity.Ingredient{}, err
	}
	m.Record(audit.Event{
		EventType:  entity.EventIngredientEdited,
		EntityType: entity.EntityTypeIngredient,
		EntityID:   ing.ID,
		EntityName: ing.Name,
		Changes:    changes,
	})
	if err := s.engine.Execute(ctx, m); err != nil {
		return entity.Ingredient{}, err
	}
	return ing, nil
}

// Delete elimina el ingrediente. Las recetas que lo referencian lo muestran por id.
func (s *IngredientService) Delete(ctx context.Context, id string) error {
	ing, err := s.Get(id)
	if err != nil {
		return err
	}
	changes, err := s.deleted(ing)
	if err != nil {
		return err
	}
	m := syncengine.NewMutation("ingredient.delete")
	syncengine.Remove(m, s.mirror.Ingredients, id)
	m.Record(audit.Event{
		EventType:  entity.EventIngredientDeleted,
		EntityType: entity.EntityTypeIngredient,
		EntityID:   ing.ID,
		EntityName: ing.Name,
		Changes:    changes,
	})
	return s.engine.Execute(ctx, m)
}

func buildIngredient(in dto.IngredientRequest) (entity.Ingredient, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.Ingredient{}, fmt.Errorf("%w: el ingrediente requiere nombre", domain.ErrInvalidInput)
	}
	if in.Cost.IsNegative() || in.PresentationSize.IsNegative() || in.CurrentStock.IsNegative() {
		return entity.Ingredient{}, fmt.Errorf("%w: costo, presentación y stock no pueden ser negativos", domain.ErrInvalidInput)
	}
	return entity.Ingredient{
		Name:             name,
		Cost:             in.Cost,
		PresentationSize: in.PresentationSize,
		Unit:             strings.TrimSpace(in.Unit),
		CurrentStock:     in.CurrentStock,
	}, nil
}
