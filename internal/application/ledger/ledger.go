package ledger

import (
	"time"

	"github.com/jhoicas/Contabilidad-api/internal/application/mirror"
	"github.com/jhoicas/Contabilidad-api/internal/application/rates"
	"github.com/jhoicas/Contabilidad-api/internal/application/syncengine"
	"github.com/jhoicas/Contabilidad-api/internal/domain/changeset"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// Ledger agrupa las operaciones de dominio. Cada una valida, calcula derivados y delega en el
// motor de sincronización.
type Ledger struct {
	Transactions *TransactionService
	Ingredients  *IngredientService
	Recipes      *RecipeService
	Production   *ProductionService

	base *base
}

type base struct {
	engine *syncengine.Engine
	mirror *mirror.Mirror
	diff   *changeset.Calculator
	now    func() time.Time
	log    *logger.Logger
}

// New construye los servicios sobre el motor y el libro de tasas.
func New(engine *syncengine.Engine, book *rates.Book, log *logger.Logger) *Ledger {
	b := &base{
		engine: engine,
		mirror: engine.Mirror(),
		diff:   changeset.NewCalculator(),
		now:    time.Now,
		log:    log.Component("ledger"),
	}
	b.diff.Register("ingredients", changeset.IngredientStrategy(b.ingredientInfo))
	return &Ledger{
		Transactions: &TransactionService{base: b, book: book},
		Ingredients:  &IngredientService{base: b},
		Recipes:      &RecipeService{base: b},
		Production:   &ProductionService{base: b},
		base:         b,
	}
}

// WithClock reemplaza el reloj de todos los servicios (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.base.now = now
	return l
}

func (b *base) ingredientInfo(id string) (string, string, bool) {
	ing, ok := b.mirror.Ingredients.Get(id)
	if !ok {
		return "", "", false
	}
	return ing.Name, ing.Unit, true
}

func (b *base) stamp() time.Time {
	return b.now().UTC()
}

// created cambios de un alta: cada campo desde nil.
func (b *base) created(v any, ignore ...string) ([]entity.Change, error) {
	doc, err := entity.ToDocument(v)
	if err != nil {
		return nil, err
	}
	return b.diff.Diff(nil, doc, ignore...), nil
}

// deleted cambios de una baja: cada campo hacia nil.
func (b *base) deleted(v any) ([]entity.Change, error) {
	doc, err := entity.ToDocument(v)
	if err != nil {
		return nil, err
	}
	return b.diff.Diff(doc, nil), nil
}

func (b *base) edited(before, after any, ignore ...string) ([]entity.Change, error) {
	oldDoc, err := entity.ToDocument(before)
	if err != nil {
		return nil, err
	}
	newDoc, err := entity.ToDocument(after)
	if err != nil {
		return nil, err
	}
	return b.diff.Diff(oldDoc, newDoc, ignore...), nil
}
