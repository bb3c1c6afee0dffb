// Package report contiene los casos de uso de consulta: filtrado de transacciones y
// resumen de ingresos, gastos y balance en bolívares y dólares.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// TypeAll valor de Filter.Type que no filtra por tipo.
const TypeAll = "all"

// Filter criterios de filtrado. Los campos vacíos no filtran; las fechas son inclusivas (YYYY-MM-DD).
type Filter struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Type      string `json:"type,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Validate revisa formato de fechas, rango y tipo.
func (f Filter) Validate() error {
	for _, d := range []string{f.StartDate, f.EndDate} {
		if d == "" {
			continue
		}
		if _, err := entity.ParseDate(d); err != nil {
			return fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, d)
		}
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return fmt.Errorf("%w: la fecha inicial es posterior a la final", domain.ErrInvalidInput)
	}
	switch f.Type {
	case "", TypeAll, entity.TransactionIncome, entity.TransactionExpense:
	default:
		return fmt.Errorf("%w: tipo %q desconocido", domain.ErrInvalidInput, f.Type)
	}
	return nil
}

// Match indica si la transacción cumple el filtro.
func (f Filter) Match(tx entity.Transaction) bool {
	if f.Type != "" && f.Type != TypeAll && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.StartDate != "" && tx.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && tx.Date > f.EndDate {
		return false
	}
	return true
}

// Apply filtra conservando el orden de entrada.
func (f Filter) Apply(txs []entity.Transaction) []entity.Transaction {
	out := make([]entity.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Totals ingresos, gastos y balance en una moneda.
type Totals struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetBalance    decimal.Decimal `json:"netBalance"`
}

func (t *Totals) add(txType string, amount decimal.Decimal) {
	switch txType {
	case entity.TransactionIncome:
		t.TotalIncome = t.TotalIncome.Add(amount)
	case entity.TransactionExpense:
		t.TotalExpenses = t.TotalExpenses.Add(amount)
	}
	t.NetBalance = t.TotalIncome.Sub(t.TotalExpenses)
}

// CategoryTotal acumulado de una categoría.
type CategoryTotal struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Bs       Totals `json:"bs"`
	Usd      Totals `json:"usd"`
}

// Summary resumen de un conjunto de transacciones.
type Summary struct {
	Filter     Filter          `json:"filter"`
	Count      int             `json:"count"`
	Bs         Totals          `json:"bs"`
	Usd        Totals          `json:"usd"`
	Categories []CategoryTotal `json:"categories"`
}

// Summarize acumula por tipo en ambas monedas. Las categorías salen ordenadas por nombre.
func Summarize(f Filter, txs []entity.Transaction) Summary {
	s := Summary{Filter: f, Categories: []CategoryTotal{}}
	byCat := make(map[string]*CategoryTotal)
	for _, tx := range txs {
		s.Count++
		s.Bs.add(tx.Type, tx.AmountBs)
		s.Usd.add(tx.Type, tx.AmountUsd)

		ct, ok := byCat[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category}
			byCat[tx.Category] = ct
		}
		ct.Count++
		ct.Bs.add(tx.Type, tx.AmountBs)
		ct.Usd.add(tx.Type, tx.AmountUsd)
	}
	for _, ct := range byCat {
		s.Categories = append(s.Categories, *ct)
	}
	sort.Slice(s.Categories, func(i, j int) bool { return s.Categories[i].Category < s.Categories[j].Category })
	return s
}

// TransactionLister fuente de transacciones (el servicio de transacciones del libro).
type TransactionLister interface {
	List() []entity.Transaction
}

// PDFGenerator puerto de salida que dibuja el resumen.
type PDFGenerator interface {
	GenerateSummaryPDF(ctx context.Context, s Summary, txs []entity.Transaction) ([]byte, error)
}

// Service casos de uso de reportes sobre el espejo local.
type Service struct {
	source    TransactionLister
	generator PDFGenerator
}

// NewService generator puede ser nil si no se exporta PDF.
func NewService(source TransactionLister, generator PDFGenerator) *Service {
	return &Service{source: source, generator: generator}
}

// Transactions lista filtrada.
func (s *Service) Transactions(f Filter) ([]entity.Transaction, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.Apply(s.source.List()), nil
}

// Summary resumen de la lista filtrada.
func (s *Service) Summary(f Filter) (Summary, error) {
	txs, err := s.Transactions(f)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(f, txs), nil
}

// SummaryPDF genera el PDF del resumen y devuelve también el nombre de archivo sugerido.
func (s *Service) SummaryPDF(ctx context.Context, f Filter) ([]byte, string, error) {
	if s.generator == nil {
		return nil, "", fmt.Errorf("reporte: sin generador de PDF")
	}
	txs, err := s.Transactions(f)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.generator.GenerateSummaryPDF(ctx, Summarize(f, txs), txs)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generar pdf: %w", err)
	}
	return pdf, filename(f), nil
}

func filename(f Filter) string {
	switch {
	case f.StartDate != "" && f.EndDate != "":
		return fmt.Sprintf("resumen_%s_%s.pdf", f.StartDate, f.EndDate)
	case f.StartDate != "":
		return fmt.Sprintf("resumen_desde_%s.pdf", f.StartDate)
	case f.EndDate != "":
		return fmt.Sprintf("resumen_hasta_%s.pdf", f.EndDate)
	}
	return "resumen.pdf"
}
