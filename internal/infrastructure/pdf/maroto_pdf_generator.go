// Package pdf dibuja el resumen contable en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + período     │  fecha de emisión           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Ingresos / Gastos / Balance  (Bs y USD)           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CATEGORÍAS: Categoría | N | Ingresos | Gastos | Balance     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Descripción | Categoría | Bs | USD           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Contabilidad-api/internal/application/report"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

var _ report.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorIncome  = &props.Color{Red: 22, Green: 120, Blue: 60}
	colorExpense = &props.Color{Red: 170, Green: 40, Blue: 40}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa report.PDFGenerator usando Maroto v2.
// Los montos se formatean con separadores de miles en español (1.234,56).
type MarotoPDFGenerator struct {
	title   string
	printer *message.Printer
	now     func() time.Time
}

// NewMarotoPDFGenerator title aparece en el encabezado y como autor del documento.
func NewMarotoPDFGenerator(title string) *MarotoPDFGenerator {
	if title == "" {
		title = "Contabilidad"
	}
	return &MarotoPDFGenerator{
		title:   title,
		printer: message.NewPrinter(language.Spanish),
		now:     time.Now,
	}
}

// GenerateSummaryPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateSummaryPDF(_ context.Context, s report.Summary, txs []entity.Transaction) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Resumen contable", true).
		WithAuthor(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(s.Filter))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.totalsRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if len(s.Categories) > 0 {
		m.AddRows(sectionTitle("POR CATEGORÍA"))
		m.AddRows(tableHeader([]string{"Categoría", "N°", "Ingresos Bs", "Gastos Bs", "Balance Bs"}, []int{4, 1, 2, 2, 3}))
		for _, ct := range s.Categories {
			m.AddRows(g.categoryRow(ct))
		}
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	}

	m.AddRows(sectionTitle(fmt.Sprintf("TRANSACCIONES (%d)", len(txs))))
	m.AddRows(tableHeader([]string{"Fecha", "Descripción", "Categoría", "Monto Bs", "Monto USD"}, []int{2, 4, 2, 2, 2}))
	for _, tx := range txs {
		m.AddRows(g.transactionRow(tx))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(f report.Filter) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(g.title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Período: "+period(f), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("RESUMEN CONTABLE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+g.now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func (g *MarotoPDFGenerator) totalsRow(s report.Summary) core.Row {
	block := func(label string, bs, usd decimal.Decimal, color *props.Color) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 2}),
			text.New("Bs. "+g.money(bs), props.Text{Style: fontstyle.Bold, Size: 11, Color: color, Top: 7}),
			text.New("$ "+g.money(usd), props.Text{Size: 9, Color: colorGray, Top: 13}),
		)
	}
	return row.New(20).Add(
		block("INGRESOS", s.Bs.TotalIncome, s.Usd.TotalIncome, colorIncome),
		block("GASTOS", s.Bs.TotalExpenses, s.Usd.TotalExpenses, colorExpense),
		block("BALANCE NETO", s.Bs.NetBalance, s.Usd.NetBalance, colorPrimary),
	)
}

func (g *MarotoPDFGenerator) categoryRow(ct report.CategoryTotal) core.Row {
	return row.New(6).Add(
		cell(ct.Category, 4, align.Left),
		cell(fmt.Sprint(ct.Count), 1, align.Center),
		cell(g.money(ct.Bs.TotalIncome), 2, align.Right),
		cell(g.money(ct.Bs.TotalExpenses), 2, align.Right),
		cell(g.money(ct.Bs.NetBalance), 3, align.Right),
	)
}

func (g *MarotoPDFGenerator) transactionRow(tx entity.Transaction) core.Row {
	sign := ""
	if tx.Type == entity.TransactionExpense {
		sign = "-"
	}
	return row.New(6).Add(
		cell(displayDate(tx.Date), 2, align.Left),
		cell(tx.Description, 4, align.Left),
		cell(tx.Category, 2, align.Left),
		cell(sign+g.money(tx.AmountBs), 2, align.Right),
		cell(sign+g.money(tx.AmountUsd), 2, align.Right),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func sectionTitle(s string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
	))
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		a := align.Left
		if i >= len(labels)-2 {
			a = align.Right
		}
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(7).Add(cols...)
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

// money formatea con dos decimales y separadores locales: 1234.5 -> "1.234,50".
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func period(f report.Filter) string {
	switch {
	case f.StartDate != "" && f.EndDate != "":
		return displayDate(f.StartDate) + " al " + displayDate(f.EndDate)
	case f.StartDate != "":
		return "desde " + displayDate(f.StartDate)
	case f.EndDate != "":
		return "hasta " + displayDate(f.EndDate)
	}
	return "todo el historial"
}

// displayDate YYYY-MM-DD -> dd/mm/yyyy; deja intacto lo que no parsea.
func displayDate(s string) string {
	t, err := entity.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
