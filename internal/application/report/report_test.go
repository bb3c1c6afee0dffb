package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/Contabilidad-api/internal/application/report"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister []entity.Transaction

func (s staticLister) List() []entity.Transaction { return s }

type fakePDF struct {
	got report.Summary
	err error
}

func (f *fakePDF) GenerateSummaryPDF(_ context.Context, s report.Summary, _ []entity.Transaction) ([]byte, error) {
	f.got = s
	return []byte("%PDF"), f.err
}

func tx(id, typ, date, category, bs, usd string) entity.Transaction {
	return entity.Transaction{
		ID: id, Type: typ, Date: date, Category: category,
		AmountBs: decimal.RequireFromString(bs), AmountUsd: decimal.RequireFromString(usd),
	}
}

var sample = staticLister{
	tx("t1", entity.TransactionIncome, "2024-01-20", "Ventas", "1000", "27.4"),
	tx("t2", entity.TransactionExpense, "2024-01-18", "Insumos", "300", "8.22"),
	tx("t3", entity.TransactionIncome, "2024-01-10", "Ventas", "500", "13.7"),
	tx("t4", entity.TransactionExpense, "2023-12-31", "General", "100", "2.9"),
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Filtro
// ──────────────────────────────────────────────────────────────────────────────

func TestFilter_RangoInclusivoYTipo(t *testing.T) {
	svc := report.NewService(sample, nil)

	got, err := svc.Transactions(report.Filter{StartDate: "2024-01-10", EndDate: "2024-01-20", Type: entity.TransactionIncome})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t3", got[1].ID)
}

func TestFilter_TipoAllYCategoria(t *testing.T) {
	svc := report.NewService(sample, nil)

	got, err := svc.Transactions(report.Filter{Type: report.TypeAll, Category: "Ventas"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.Transactions(report.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 4, "sin criterios devuelve todo")
}

func TestFilter_Validacion(t *testing.T) {
	cases := []report.Filter{
		{StartDate: "20-01-2024"},
		{StartDate: "2024-02-01", EndDate: "2024-01-01"},
		{Type: "transfer"},
	}
	for _, f := range cases {
		assert.ErrorIs(t, f.Validate(), domain.ErrInvalidInput, "%+v", f)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Resumen
// ──────────────────────────────────────────────────────────────────────────────

func TestSummary_TotalesEnAmbasMonedas(t *testing.T) {
	svc := report.NewService(sample, nil)

	s, err := svc.Summary(report.Filter{StartDate: "2024-01-01"})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Count)
	assert.True(t, s.Bs.TotalIncome.Equal(dec("1500")))
	assert.True(t, s.Bs.TotalExpenses.Equal(dec("300")))
	assert.True(t, s.Bs.NetBalance.Equal(dec("1200")))
	assert.True(t, s.Usd.NetBalance.Equal(dec("32.88")))

	require.Len(t, s.Categories, 2)
	assert.Equal(t, "Insumos", s.Categories[0].Category)
	assert.Equal(t, "Ventas", s.Categories[1].Category)
	assert.Equal(t, 2, s.Categories[1].Count)
	assert.True(t, s.Categories[1].Bs.TotalIncome.Equal(dec("1500")))
}

func TestSummary_ListaVaciaEnCero(t *testing.T) {
	s := report.Summarize(report.Filter{}, nil)
	assert.Zero(t, s.Count)
	assert.True(t, s.Bs.NetBalance.IsZero())
	assert.NotNil(t, s.Categories)
}

func TestSummaryPDF_NombreYErrores(t *testing.T) {
	gen := &fakePDF{}
	svc := report.NewService(sample, gen)

	pdf, name, err := svc.SummaryPDF(context.Background(), report.Filter{StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, "resumen_2024-01-01_2024-01-31.pdf", name)
	assert.Equal(t, []byte("%PDF"), pdf)
	assert.Equal(t, 3, gen.got.Count)

	gen.err = errors.New("fuente no encontrada")
	_, _, err = svc.SummaryPDF(context.Background(), report.Filter{})
	assert.ErrorContains(t, err, "fuente no encontrada")

	_, _, err = report.NewService(sample, nil).SummaryPDF(context.Background(), report.Filter{})
	assert.Error(t, err)
}
