package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Contabilidad-api/internal/application/audit"
	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/rates"
	"github.com/jhoicas/Contabilidad-api/internal/application/syncengine"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/costing"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// TransactionService ingresos y egresos.
type TransactionService struct {
	*base
	book *rates.Book
}

// List transacciones por fecha descendente.
func (s *TransactionService) List() []entity.Transaction {
	return s.mirror.Transactions.All()
}

// Get transacción por id.
func (s *TransactionService) Get(id string) (entity.Transaction, error) {
	tx, ok := s.mirror.Transactions.Get(id)
	if !ok {
		return entity.Transaction{}, domain.ErrNotFound
	}
	return tx, nil
}

// Add valida, deriva amountUsd y registra la transacción.
func (s *TransactionService) Add(ctx context.Context, in dto.TransactionRequest) (entity.Transaction, error) {
	tx, err := s.build(in)
	if err != nil {
		return entity.Transaction{}, err
	}
	now := s.stamp()
	tx.ID = s.engine.NewID()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	tx.UserID = s.engine.Owner()

	changes, err := s.created(tx)
	if err != nil {
		return entity.Transaction{}, err
	}
	m := syncengine.NewMutation("transaction.add")
	if err := syncengine.Put(m, s.mirror.Transactions, tx, false); err != nil {
		return entity.Transaction{}, err
	}
	m.Record(audit.Event{
		EventType:  entity.EventTransactionCreated,
		EntityType: tx.EntityType(),
		EntityID:   tx.ID,
		EntityName: tx.Description,
		Changes:    changes,
	})
	if err := s.engine.Execute(ctx, m); err != nil {
		return entity.Transaction{}, err
	}
	return tx, nil
}

// Edit reemplaza los campos editables. Sin cambios efectivos no escribe nada.
func (s *TransactionService) Edit(ctx context.Context, id string, in dto.TransactionRequest) (entity.Transaction, error) {
	old, err := s.Get(id)
	if err != nil {
		return entity.Transaction{}, err
	}
	tx, err := s.build(in)
	if err != nil {
		return entity.Transaction{}, err
	}
	tx.ID = old.ID
	tx.CreatedAt = old.CreatedAt
	tx.UserID = old.UserID
	tx.UpdatedAt = old.UpdatedAt

	changes, err := s.edited(old, tx)
	if err != nil {
		return entity.Transaction{}, err
	}
	if len(changes) == 0 {
		return old, nil
	}
	tx.UpdatedAt = s.stamp()

	m := syncengine.NewMutation("transaction.edit")
	if err := syncengine.Put(m, s.mirror.Transactions, tx, true); err != nil {
		return entity.Transaction{}, err
	}
	m.Record(audit.Event{
		EventType:  entity.EventTransactionEdited,
		EntityType: tx.EntityType(),
		EntityID:   tx.ID,
		EntityName: tx.Description,
		Changes:    changes,
	})
	if err := s.engine.Execute(ctx, m); err != nil {
		return entity.Transaction{}, err
	}
	return tx, nil
}

// Delete elimina la transacción.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	tx, err := s.Get(id)
	if err != nil {
		return err
	}
	changes, err := s.deleted(tx)
	if err != nil {
		return err
	}
	m := syncengine.NewMutation("transaction.delete")
	syncengine.Remove(m, s.mirror.Transactions, id)
	m.Record(audit.Event{
		EventType:  entity.EventTransactionDeleted,
		EntityType: tx.EntityType(),
		EntityID:   tx.ID,
		EntityName: tx.Description,
		Changes:    changes,
	})
	return s.engine.Execute(ctx, m)
}

func (s *TransactionService) build(in dto.TransactionRequest) (entity.Transaction, error) {
	if in.Type != entity.TransactionIncome && in.Type != entity.TransactionExpense {
		return entity.Transaction{}, fmt.Errorf("%w: tipo debe ser income o expense", domain.ErrInvalidInput)
	}
	if _, err := entity.ParseDate(in.Date); err != nil {
		return entity.Transaction{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return entity.Transaction{}, fmt.Errorf("%w: faltan campos requeridos para la transacción", domain.ErrInvalidInput)
	}
	if !in.AmountBs.IsPositive() {
		return entity.Transaction{}, fmt.Errorf("%w: monto en Bs. debe ser positivo", domain.ErrInvalidInput)
	}

	rate := in.ExchangeRate
	if rate == nil {
		if r, ok := s.book.ResolveForDate(in.Date); ok {
			rate = &r
		}
	}
	if rate == nil || !rate.IsPositive() {
		return entity.Transaction{}, fmt.Errorf("%w: tasa de cambio inválida o no provista para la fecha %s", domain.ErrInvalidInput, in.Date)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = entity.DefaultCategory
	}
	return entity.Transaction{
		Type:         in.Type,
		Date:         in.Date,
		Description:  desc,
		Category:     category,
		AmountBs:     in.AmountBs,
		ExchangeRate: *rate,
		AmountUsd:    costing.AmountUSD(in.AmountBs, *rate),
		Notes:        in.Notes,
	}, nil
}
