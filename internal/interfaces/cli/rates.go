package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/domain"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

func newRatesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Tasas de cambio Bs/USD",
	}
	cmd.AddCommand(newRatesAcquireCommand(opts))
	cmd.AddCommand(newRatesResolveCommand(opts))
	return cmd
}

func newRatesAcquireCommand(opts *RootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Consulta la fuente externa y guarda la tasa del día",
		Long: `Busca la tasa publicada para --date (hoy por defecto) y, si no hay,
retrocede un día por intento hasta RATES_MAX_RETRIES.

Ejemplo:
  ledgerctl rates acquire --date 2024-01-20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, env *Env) error {
				if env.Session.Acquirer == nil {
					return errors.New("no hay fuente de tasas configurada (RATES_BASE_URL)")
				}
				if date == "" {
					date = env.Session.Book.Today()
				}
				res := env.Session.Acquirer.AcquireForDate(ctx, date)
				env.Session.Engine().Wait()

				p := printer{format: opts.Format, w: cmd.OutOrStdout()}
				if p.isJSON() {
					if err := p.json(res); err != nil {
						return err
					}
				} else if res.Rate != nil {
					p.line("%s: %s Bs/USD (publicada el %s)", date, res.Rate.String(), res.DateFound)
				}
				if res.Rate == nil {
					return fmt.Errorf("%w: %s", domain.ErrRateUnavailable, res.Error)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "fecha YYYY-MM-DD (por defecto hoy)")
	return cmd
}

func newRatesResolveCommand(opts *RootOptions) *cobra.Command {
	var date string
	var exact bool
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Tasa aplicable a una fecha según el libro local",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := entity.ParseDate(date); err != nil {
				return err
			}
			return withEnv(cmd, opts, func(_ context.Context, env *Env) error {
				resp := dto.ResolvedRateResponse{Date: date, Mode: "fallback"}
				if exact {
					resp.Mode = "exact"
					if rate, ok := env.Session.Book.ResolveExact(date); ok {
						resp.Rate, resp.Found = &rate, date
					}
				} else if r, ok := env.Session.Book.LatestBefore(date); ok {
					rate := r.Rate
					resp.Rate, resp.Found = &rate, r.Date
				}

				p := printer{format: opts.Format, w: cmd.OutOrStdout()}
				if p.isJSON() {
					return p.json(resp)
				}
				if resp.Rate == nil {
					p.line("%s: sin tasa", date)
					return nil
				}
				p.line("%s: %s Bs/USD (tasa del %s)", date, resp.Rate.String(), resp.Found)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "fecha YYYY-MM-DD")
	cmd.Flags().BoolVar(&exact, "exact", false, "solo una tasa con exactamente esa fecha")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
