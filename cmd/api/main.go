package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Contabilidad-api/internal/application/report"
	"github.com/jhoicas/Contabilidad-api/internal/application/session"
	"github.com/jhoicas/Contabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/mongodb"
	infrapdf "github.com/jhoicas/Contabilidad-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/ratesource"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/Contabilidad-api/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/Contabilidad-api/internal/interfaces/http"
	"github.com/jhoicas/Contabilidad-api/pkg/config"
	"github.com/jhoicas/Contabilidad-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("conexión al almacén remoto")
	}
	defer closeStore()

	kv, err := sqlite.Open(cfg.Local.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Local.Path).Msg("apertura del espejo local")
	}
	defer kv.Close()

	// Sin URL base no hay adquisición de tasas; el resto funciona igual.
	var source repository.RateSource
	if cfg.Rates.BaseURL != "" {
		source = ratesource.NewClient(cfg.Rates)
	}

	sess := session.New(session.Options{
		Store:         store,
		KV:            kv,
		Source:        source,
		MaxRetries:    cfg.Rates.MaxRetries,
		CommitTimeout: cfg.Sync.CommitTimeout(),
	}, log)
	defer sess.Close()

	if err := sess.SetIdentity(ctx, nil, true); err != nil {
		log.Fatal().Err(err).Msg("carga del espejo local")
	}

	var sched *scheduler.Scheduler
	if sess.Acquirer != nil {
		sched = scheduler.New(sess.Acquirer, log)
		if err := sched.Start(cfg.Scheduler.RateSpec); err != nil {
			log.Fatal().Err(err).Msg("scheduler")
		}
	}

	reports := report.NewService(sess.Ledger.Transactions, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Contabilidad API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger.json no encontrado, /docs desactivado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "mode": sess.Status().Mode})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Session:   sess,
		Reports:   reports,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if sched != nil {
		sched.Stop()
	}

	log.Info().Msg("aplicación detenida")
}

// openStore elige el almacén remoto según STORE_BACKEND. La función devuelta libera la conexión.
func openStore(ctx context.Context, cfg *config.Config) (repository.DocumentStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		s, err := mongodb.Connect(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.Close(closeCtx)
		}, nil
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewDocumentStore(pool), pool.Close, nil
	default:
		return memstore.NewDocumentStore(), func() {}, nil
	}
}
