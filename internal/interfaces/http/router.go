package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/labels"
	apptrace "github.com/jhoicas/Trazabilidad-api/internal/application/trace"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *apptrace.RegisterMovementUseCase
	DashboardUC      *apptrace.DashboardUseCase
	LabelsUC         *labels.UseCase
	// Locations conjunto ordenado de estaciones; valida /station/:location.
	Locations []string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Estaciones de escaneo
	scanHandler := NewScanHandler(deps.RegisterMovement, deps.Locations)
	api.Post("/scan", scanHandler.RegisterScan)
	app.Get("/station/:location", scanHandler.StationPage)

	// Dashboard (solo lectura)
	dashboard := api.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/status", dashboardHandler.GetStatus)
	dashboard.Get("/timeline", dashboardHandler.GetTimeline)
	dashboard.Get("/summary", dashboardHandler.GetSummary)

	// Etiquetas
	labelHandler := NewLabelHandler(deps.LabelsUC)
	api.Post("/labels", labelHandler.Generate)
}

// ledgerError mapea los errores de dominio del ledger al envoltorio HTTP.
// LOCK_TIMEOUT es transitorio (la estación puede reintentar el escaneo);
// CORRUPT_LEDGER es fatal y se reporta sin auto-reparación.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sin eventos para el filtro indicado"})
	case errors.Is(err, domain.ErrLockTimeout):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: "ledger ocupado, reintente el escaneo"})
	case errors.Is(err, domain.ErrCorruptLedger):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "CORRUPT_LEDGER", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
