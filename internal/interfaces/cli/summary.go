package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Contabilidad-api/internal/application/report"
)

func newSummaryCommand(opts *RootOptions) *cobra.Command {
	var (
		f      report.Filter
		pdfOut string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totales del período en Bs y USD",
		Long: `Resume las transacciones del espejo local entre --from y --to (inclusive).

Ejemplo:
  ledgerctl summary --from 2024-01-01 --to 2024-01-31 --pdf enero.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, env *Env) error {
				s, err := env.Reports.Summary(f)
				if err != nil {
					return err
				}
				if pdfOut != "" {
					doc, _, err := env.Reports.SummaryPDF(ctx, f)
					if err != nil {
						return err
					}
					if err := os.WriteFile(pdfOut, doc, 0o644); err != nil {
						return fmt.Errorf("escribir %s: %w", pdfOut, err)
					}
				}

				p := printer{format: opts.Format, w: cmd.OutOrStdout()}
				if p.isJSON() {
					return p.json(s)
				}
				p.line("Transacciones: %d", s.Count)
				p.line("Ingresos:  Bs %s  |  USD %s", s.Bs.TotalIncome.StringFixed(2), s.Usd.TotalIncome.StringFixed(2))
				p.line("Gastos:    Bs %s  |  USD %s", s.Bs.TotalExpenses.StringFixed(2), s.Usd.TotalExpenses.StringFixed(2))
				p.line("Balance:   Bs %s  |  USD %s", s.Bs.NetBalance.StringFixed(2), s.Usd.NetBalance.StringFixed(2))
				for _, c := range s.Categories {
					p.line("  %-20s %3d  Bs %s", c.Category, c.Count, c.Bs.NetBalance.StringFixed(2))
				}
				if pdfOut != "" {
					p.line("PDF: %s", pdfOut)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.StartDate, "from", "", "fecha inicial YYYY-MM-DD")
	cmd.Flags().StringVar(&f.EndDate, "to", "", "fecha final YYYY-MM-DD")
	cmd.Flags().StringVar(&f.Type, "type", "", "income | expense | all")
	cmd.Flags().StringVar(&f.Category, "category", "", "categoría exacta")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "escribe además el resumen en PDF")
	return cmd
}
