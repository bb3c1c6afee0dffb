package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/syncengine"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/costing"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// ProductionService registros de producción. Cada alta, edición o baja ajusta el stock de los
// ingredientes de la receta en la misma mutación que el registro.
type ProductionService struct {
	*base
}

type stockMove struct {
	before entity.Ingredient
	after  entity.Ingredient
}

func (mv stockMove) change() decimal.Decimal {
	return mv.after.CurrentStock.Sub(mv.before.CurrentStock)
}

func (s *ProductionService) List() []entity.ProductionRecord {
	return s.mirror.Production.All()
}

func (s *ProductionService) Get(id string) (entity.ProductionRecord, error) {
	rec, ok := s.mirror.Production.Get(id)
	if !ok {
		return entity.ProductionRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

// Add registra el lote. Verifica todo el stock antes de tocar nada: si algún ingrediente no alcanza,
// falla con ErrInsufficientStock y no hay descuento parcial.
func (s *ProductionService) Add(ctx context.Context, in dto.ProductionRequest) (entity.ProductionRecord, error) {
	rec, recipe, err := s.build(in)
	if err != nil {
		return entity.ProductionRecord{}, err
	}
	if recipe != nil && len(recipe.Ingredients) == 0 {
		return entity.ProductionRecord{}, fmt.Errorf("%w: la receta '%s' no tiene ingredientes definidos", domain.ErrInvalidInput, recipe.Name)
	}
	moves, err := s.moves(costing.Consumption(recipe, rec.BatchSize), true)
	if err != nil {
		return entity.ProductionRecord{}, err
	}

	now := s.stamp()
	rec.ID = s.engine.NewID()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.UserID = s.engine.Owner()

	changes, err := s.created(rec)
	if err != nil {
		return entity.ProductionRecord{}, err
	}
	m := syncengine.NewMutation("production.add")
	if err := syncengine.Put(m, s.mirror.Production, rec, false); err != nil {
		return entity.ProductionRecord{}, err
	}
	m.Record(audit.Event{
		EventType:  entity.EventProductionCreated,
		EntityType: entity.EntityTypeProduction,
		EntityID:   rec.ID,
		EntityName: rec.ProductName,
		Changes:    changes,
	})
	if err := s.stage(m, rec, moves, entity.EventStockAdjustProductionAdd, func(stockMove) string {
		return "Stock ajustado por Producción: " + rec.ProductName
	}); err != nil {
		return entity.ProductionRecord{}, err
	}
	if err := s.engine.Execute(ctx, m); err != nil {
		return entity.ProductionRecord{}, err
	}
	return rec, nil
}

// Edit reemplaza el registro. Si cambian la receta o el tamaño del lote aplica solo la diferencia
// neta de consumo por ingrediente.
func (s *ProductionService) Edit(ctx context.Context, id string, in dto.ProductionRequest) (entity.ProductionRecord, error) {
	old, err := s.Get(id)
	if err != nil {
		return entity.ProductionRecord{}, err
	}
	rec, recipe, err := s.build(in)
	if err != nil {
		return entity.ProductionRecord{}, err
	}
	rec.ID, rec.CreatedAt, rec.UpdatedAt, rec.UserID = old.ID, old.CreatedAt, old.UpdatedAt, old.UserID

	var moves []stockMove
	consumptionChanged := old.RecipeID != rec.RecipeID || !old.BatchSize.Equal(rec.BatchSize)
	if consumptionChanged {
		delta := costing.NetDelta(
			costing.Consumption(s.recipe(old.RecipeID), old.BatchSize),
			costing.Consumption(recipe, rec.BatchSize),
		)
		if moves, err = s.moves(delta, false); err != nil {
			return entity.ProductionRecord{}, err
		}
	} else if recipe != nil {
		// mismas cantidades: se conservan las cifras con las que se registró el lote
		rec.TotalRevenue = old.TotalRevenue
		rec.OperatingCostRecipeOnly = old.OperatingCostRecipeOnly
		rec.LaborCostForBatch = old.LaborCostForBatch
		rec.NetProfit = old.NetProfit
	}

	changes, err := s.edited(old, rec)
	if err != nil {
		return entity.ProductionRecord{}, err
	}
	if len(changes) == 0 && len(moves) == 0 {
		return old, nil
	}
	rec.UpdatedAt = s.stamp()

	m := syncengine.NewMutation("production.edit")
	if err := syncengine.Put(m, s.mirror.Production, rec, true); err != nil {
		return entity.ProductionRecord{}, err
	}
	if len(changes) > 0 {
		m.Record(audit.Event{
			EventType:  entity.EventProductionEdited,
			EntityType: entity.EntityTypeProduction,
			EntityID:   rec.ID,
			EntityName: rec.ProductName,
			Changes:    changes,
		})
	}
	if err := s.stage(m, rec, moves, entity.EventStockAdjustProductionEdit, func(mv stockMove) string {
		return fmt.Sprintf("Stock ajustado por edición de Prod: %s (cambio: %s)", rec.ProductName, signed(mv.change()))
	}); err != nil {
		return entity.ProductionRecord{}, err
	}
	if err := s.engine.Execute(ctx, m); err != nil {
		return entity.ProductionRecord{}, err
	}
	return rec, nil
}

// Delete elimina el registro y devuelve al stock lo que consumió.
func (s *ProductionService) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(id)
	if err != nil {
		return err
	}
	restore := costing.NetDelta(costing.Consumption(s.recipe(rec.RecipeID), rec.BatchSize), nil)
	moves, err := s.moves(restore, false)
	if err != nil {
		return err
	}
	changes, err := s.deleted(rec)
	if err != nil {
		return err
	}

	m := syncengine.NewMutation("production.delete")
	syncengine.Remove(m, s.mirror.Production, id)
	m.Record(audit.Event{
		EventType:  entity.EventProductionDeleted,
		EntityType: entity.EntityTypeProduction,
		EntityID:   rec.ID,
		EntityName: rec.ProductName,
		Changes:    changes,
	})
	if err := s.stage(m, rec, moves, entity.EventStockAdjustProductionDelete, func(stockMove) string {
		return "Stock restaurado por eliminación de Prod: " + rec.ProductName
	}); err != nil {
		return err
	}
	return s.engine.Execute(ctx, m)
}

func (s *ProductionService) build(in dto.ProductionRequest) (entity.ProductionRecord, *entity.Recipe, error) {
	date := in.Date
	if date == "" {
		date = entity.Today(s.now())
	}
	if _, err := entity.ParseDate(date); err != nil {
		return entity.ProductionRecord{}, nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if in.BatchSize.IsNegative() {
		return entity.ProductionRecord{}, nil, fmt.Errorf("%w: el tamaño del lote no puede ser negativo", domain.ErrInvalidInput)
	}
	rec := entity.ProductionRecord{
		RecipeID:    in.RecipeID,
		ProductName: strings.TrimSpace(in.ProductName),
		BatchSize:   in.BatchSize,
		Date:        date,
		IsSold:      in.IsSold,
	}

	var recipe *entity.Recipe
	if in.RecipeID != "" {
		recipe = s.recipe(in.RecipeID)
		if recipe == nil {
			return entity.ProductionRecord{}, nil, fmt.Errorf("%w: receta %s", domain.ErrNotFound, in.RecipeID)
		}
		if !in.BatchSize.IsPositive() {
			return entity.ProductionRecord{}, nil, fmt.Errorf("%w: el tamaño del lote debe ser positivo", domain.ErrInvalidInput)
		}
		if rec.ProductName == "" {
			rec.ProductName = recipe.Name
		}
		f := costing.Production(*recipe, in.BatchSize)
		rec.TotalRevenue = f.TotalRevenue
		rec.OperatingCostRecipeOnly = f.OperatingCostRecipeOnly
		rec.LaborCostForBatch = f.LaborCostForBatch
		rec.NetProfit = f.NetProfit
	} else {
		rec.TotalRevenue = in.TotalRevenue
		rec.OperatingCostRecipeOnly = in.OperatingCostRecipeOnly
		rec.LaborCostForBatch = in.LaborCostForBatch
		rec.NetProfit = in.TotalRevenue.Sub(in.OperatingCostRecipeOnly.Add(in.LaborCostForBatch))
	}
	if rec.ProductName == "" {
		rec.ProductName = "Desconocido"
	}
	return rec, recipe, nil
}

func (s *ProductionService) recipe(id string) *entity.Recipe {
	if id == "" {
		return nil
	}
	r, ok := s.mirror.Recipes.Get(id)
	if !ok {
		return nil
	}
	return &r
}

// moves traduce consumo (positivo descuenta, negativo devuelve) a cambios de stock.
// strict exige que todos los ingredientes existan. Nunca se deja stock negativo por consumo.
func (s *ProductionService) moves(consumption map[string]decimal.Decimal, strict bool) ([]stockMove, error) {
	ids := make([]string, 0, len(consumption))
	for id := range consumption {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]stockMove, 0, len(ids))
	for _, id := range ids {
		q := consumption[id]
		if q.IsZero() {
			continue
		}
		ing, ok := s.mirror.Ingredients.Get(id)
		if !ok {
			if strict {
				return nil, fmt.Errorf("%w: ingrediente ID '%s'", domain.ErrNotFound, id)
			}
			continue
		}
		after := ing
		after.CurrentStock = ing.CurrentStock.Sub(q)
		if q.IsPositive() && after.CurrentStock.IsNegative() {
			return nil, fmt.Errorf("%w para '%s'. Necesitas: %s %s, Tienes: %s %s", domain.ErrInsufficientStock,
				ing.Name, q.String(), ing.Unit, ing.CurrentStock.String(), ing.Unit)
		}
		out = append(out, stockMove{before: ing, after: after})
	}
	return out, nil
}

// stage agrega al lote los ajustes de stock y sus entradas de historial.
func (s *ProductionService) stage(m *syncengine.Mutation, rec entity.ProductionRecord, moves []stockMove, eventType string, label func(stockMove) string) error {
	for _, mv := range moves {
		if err := syncengine.Patch(m, s.mirror.Ingredients, mv.after, "currentStock"); err != nil {
			return err
		}
		m.Record(audit.Event{
			EventType:         eventType,
			EntityType:        entity.EntityTypeStock,
			EntityID:          mv.after.ID,
			EntityName:        mv.after.Name,
			RelatedEntityID:   rec.ID,
			RelatedEntityName: rec.ProductName,
			Changes: []entity.Change{{
				Field:    "currentStock",
				OldValue: mv.before.CurrentStock,
				NewValue: mv.after.CurrentStock,
				Label:    label(mv),
			}},
		})
	}
	return nil
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}
