package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Trazabilidad-api/internal/application/labels"
	apptrace "github.com/jhoicas/Trazabilidad-api/internal/application/trace"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/csvledger"
	infrapdf "github.com/jhoicas/Trazabilidad-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/Trazabilidad-api/internal/interfaces/http"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ledger", cfg.Ledger.Path).
		Msg("iniciando aplicación")

	// Ledger CSV compartido entre procesos: único punto de exclusión mutua
	// de todo el sistema.
	store := csvledger.New(csvledger.Config{
		Path:        cfg.Ledger.Path,
		Origin:      cfg.Trace.Origin,
		LockTimeout: cfg.Ledger.LockTimeout(),
	})

	registerMovementUC := apptrace.NewRegisterMovementUseCase(store, cfg.Trace.Locations)
	dashboardUC := apptrace.NewDashboardUseCase(store, cfg.Trace.Locations)

	// PDF: etiquetas de orden de trabajo con QR
	labelGenerator := infrapdf.NewMarotoLabelGenerator()
	labelsUC := labels.NewUseCase(store, labelGenerator, cfg.Trace.Origin, nil)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterMovement: registerMovementUC,
		DashboardUC:      dashboardUC,
		LabelsUC:         labelsUC,
		Locations:        cfg.Trace.Locations,
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

	log.Info().Msg("aplicación detenida")
}
