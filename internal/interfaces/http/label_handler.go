package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/labels"
)

// LabelHandler maneja la emisión de etiquetas de orden de trabajo.
type LabelHandler struct {
	uc *labels.UseCase
}

// NewLabelHandler construye el handler.
func NewLabelHandler(uc *labels.UseCase) *LabelHandler {
	return &LabelHandler{uc: uc}
}

// Generate godoc
// @Summary      Emitir etiquetas de orden de trabajo en PDF
// @Tags         labels
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  dto.LabelRequest  true  "item_id para reimprimir; model+substance+count para órdenes nuevas"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/labels [post]
func (h *LabelHandler) Generate(c *fiber.Ctx) error {
	var in dto.LabelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	pdf, batch, err := h.uc.Generate(c.Context(), in)
	if err != nil {
		return ledgerError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="labels-`+batch.BatchID+`.pdf"`)
	c.Set("X-Label-Batch-ID", batch.BatchID)
	return c.Send(pdf)
}
