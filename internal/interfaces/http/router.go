package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reports    *ReportHandler
	Validation *ValidationHandler
}

// Router registra las rutas de la API. La autenticación queda a cargo del gateway.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	reports := api.Group("/reports")
	reports.Get("/balance-iva", deps.Reports.BalanceVAT)
	reports.Get("/balance-real", deps.Reports.BalanceReal)
	reports.Get("/balance-fiscal", deps.Reports.BalanceFiscal)
	reports.Get("/comprehensive-report", deps.Reports.Comprehensive)
	reports.Get("/balance-by-partner", deps.Reports.ByPartner)
	reports.Get("/compare-years", deps.Reports.CompareYears)
	reports.Get("/fiscal-years", deps.Reports.FiscalYears)
	reports.Get("/review", deps.Reports.Review)
	reports.Post("/cache/invalidate", deps.Reports.Invalidate)

	validation := api.Group("/validation")
	validation.Post("/cuit", deps.Validation.CUIT)
	validation.Post("/amounts", deps.Validation.Amounts)
	validation.Post("/coherence", deps.Validation.Coherence)
	validation.Post("/split-gross", deps.Validation.SplitGross)
}

// NewApp aplicación Fiber con recover, log de peticiones, /health y las rutas de la API.
func NewApp(name string, deps RouterDeps, mw ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	for _, h := range mw {
		app.Use(h)
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": name})
	})
	Router(app, deps)
	return app
}
