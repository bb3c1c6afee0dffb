package pdf_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Contabilidad-api/internal/application/report"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/pdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSummaryPDF_DevuelveDocumento(t *testing.T) {
	txs := []entity.Transaction{
		{ID: "t1", Type: entity.TransactionIncome, Date: "2024-01-20", Description: "Venta de tortas", Category: "Ventas",
			AmountBs: decimal.RequireFromString("1234.5"), AmountUsd: decimal.RequireFromString("33.8")},
		{ID: "t2", Type: entity.TransactionExpense, Date: "2024-01-18", Description: "Harina", Category: "Insumos",
			AmountBs: decimal.RequireFromString("300"), AmountUsd: decimal.RequireFromString("8.22")},
	}
	f := report.Filter{StartDate: "2024-01-01", EndDate: "2024-01-31"}

	out, err := pdf.NewMarotoPDFGenerator("Dulcería").GenerateSummaryPDF(context.Background(), report.Summarize(f, txs), txs)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerateSummaryPDF_SinTransacciones(t *testing.T) {
	out, err := pdf.NewMarotoPDFGenerator("").GenerateSummaryPDF(context.Background(), report.Summarize(report.Filter{}, nil), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
