// Package cli comandos de operador sobre el espejo local (tasas y resúmenes).
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Contabilidad-api/internal/application/report"
	"github.com/jhoicas/Contabilidad-api/internal/application/session"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
	infrapdf "github.com/jhoicas/Contabilidad-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/ratesource"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Contabilidad-api/pkg/config"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

// Formatos de salida.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Env lo que los comandos necesitan: sesión local ya cargada y servicio de reportes.
type Env struct {
	Session *session.Session
	Reports *report.Service
	Close   func()
}

// Opener abre el entorno de trabajo. Los tests inyectan uno sobre memstore.
type Opener func(ctx context.Context, opts *RootOptions) (*Env, error)

// RootOptions flags globales.
type RootOptions struct {
	Format  string
	DBPath  string
	Verbose bool
	Open    Opener
}

// NewRootCommand crea el comando raíz. open nil usa OpenLocal.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenLocal
	}
	opts := &RootOptions{Open: open}

	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operaciones de mantenimiento del libro contable",
		Long: `Herramientas de operador sobre el espejo local (SQLite):
adquisición y consulta de tasas de cambio y resúmenes del período.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != FormatText && opts.Format != FormatJSON {
				return fmt.Errorf("formato %q inválido: text o json", opts.Format)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "formato de salida (text|json)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "ruta del espejo SQLite (por defecto LOCAL_STORE_PATH)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "logs de depuración")

	cmd.AddCommand(newRatesCommand(opts))
	cmd.AddCommand(newSummaryCommand(opts))
	return cmd
}

// OpenLocal abre el espejo SQLite y una sesión en modo local. La fuente de tasas se toma
// de la configuración (RATES_BASE_URL).
func OpenLocal(ctx context.Context, opts *RootOptions) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path := cfg.Local.Path
	if opts.DBPath != "" {
		path = opts.DBPath
	}

	log := logger.Nop()
	if opts.Verbose {
		log = logger.New(logger.Config{Env: "development", Level: "debug", Out: os.Stderr})
	}

	kv, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	var source repository.RateSource
	if cfg.Rates.BaseURL != "" {
		source = ratesource.NewClient(cfg.Rates)
	}
	sess := session.New(session.Options{
		KV:         kv,
		Source:     source,
		MaxRetries: cfg.Rates.MaxRetries,
	}, log)
	if err := sess.SetIdentity(ctx, nil, true); err != nil {
		sess.Close()
		kv.Close()
		return nil, err
	}
	return &Env{
		Session: sess,
		Reports: report.NewService(sess.Ledger.Transactions, infrapdf.NewMarotoPDFGenerator(cfg.App.Name)),
		Close: func() {
			sess.Close()
			kv.Close()
		},
	}, nil
}

func withEnv(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, env *Env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := opts.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("abrir espejo local: %w", err)
	}
	defer env.Close()
	return fn(ctx, env)
}
