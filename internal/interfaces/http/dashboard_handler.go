package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	apptrace "github.com/jhoicas/Trazabilidad-api/internal/application/trace"
)

// DashboardHandler maneja los endpoints de solo lectura del dashboard.
// El front los sondea en cada tick de refresco; cada petición rederiva las
// vistas desde la historia completa del ledger.
type DashboardHandler struct {
	uc *apptrace.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *apptrace.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetStatus godoc
// @Summary      Último avistamiento del objetivo
// @Tags         dashboard
// @Produce      json
// @Param        item_id  query  string  false  "Prioridad absoluta sobre model"
// @Param        model    query  string  false  "Solo se consulta si item_id está vacío"
// @Param        from     query  string  false  "YYYY-MM-DD inclusivo"
// @Param        to       query  string  false  "YYYY-MM-DD, incluye el día completo"
// @Success      200  {object}  dto.StatusDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dashboard/status [get]
func (h *DashboardHandler) GetStatus(c *fiber.Ctx) error {
	var q dto.TraceQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	status, err := h.uc.GetStatus(c.Context(), q)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(status)
}

// GetTimeline devuelve la secuencia cronológica de eventos del objetivo.
// GET /api/dashboard/timeline
//
// Lista vacía no es error: el dashboard la renderiza como "sin datos".
func (h *DashboardHandler) GetTimeline(c *fiber.Ctx) error {
	var q dto.TraceQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	timeline, err := h.uc.GetTimeline(c.Context(), q)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(timeline),
		"events": timeline,
	})
}

// GetSummary devuelve la tabla ubicación × cantidad (y el desglose por ítem
// si el filtro fue por modelo).
// GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	var q dto.TraceQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	summary, err := h.uc.GetSummary(c.Context(), q)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(summary)
}
