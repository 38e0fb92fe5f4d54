package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/opendoors/balance-dual/internal/application/report"
	"github.com/opendoors/balance-dual/internal/domain/coherence"
	"github.com/opendoors/balance-dual/internal/infrastructure/cache"
	"github.com/opendoors/balance-dual/internal/infrastructure/postgres"
	httpRouter "github.com/opendoors/balance-dual/internal/interfaces/http"
	"github.com/opendoors/balance-dual/pkg/config"
	"github.com/opendoors/balance-dual/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	settings, err := cfg.Fiscal.Settings()
	if err != nil {
		log.Fatal().Err(err).Msg("configuración fiscal")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	recordRepo := postgres.NewInvoiceRecordRepository(pool)

	// Caché opcional: sin REDIS_ADDR cada informe se calcula en el momento.
	var reportCache report.Cache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()

		rc := cache.NewReportCache(client, cfg.Redis.CacheTTL)
		rc.ListenForInvalidation(ctx)
		reportCache = rc
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("caché de informes activa")
	}

	assembler, err := report.NewAssembler(settings, time.Now)
	if err != nil {
		log.Fatal().Err(err).Msg("armado de informes")
	}
	reportSvc := report.NewService(recordRepo, assembler, reportCache, log.WithComponent("report"))

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.RouterDeps{
		Reports:    httpRouter.NewReportHandler(reportSvc, log.WithComponent("http")),
		Validation: httpRouter.NewValidationHandler(coherence.NewValidator(settings)),
	},
		recover.New(),
		httpRouter.RequestLogger(log.WithComponent("http")),
		// Swagger UI en local: http://localhost:<port>/docs
		swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Balance dual API",
		}),
	)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
