package http

import (
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	apptrace "github.com/jhoicas/Trazabilidad-api/internal/application/trace"
)

// ScanHandler maneja las peticiones de las estaciones de escaneo: la página
// de captura con cámara y el POST del escaneo.
type ScanHandler struct {
	uc        *apptrace.RegisterMovementUseCase
	locations map[string]struct{}
}

// NewScanHandler construye el handler.
func NewScanHandler(uc *apptrace.RegisterMovementUseCase, locations []string) *ScanHandler {
	set := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		set[loc] = struct{}{}
	}
	return &ScanHandler{uc: uc, locations: set}
}

// RegisterScan godoc
// @Summary      Registrar un avistamiento de ítem
// @Tags         trace
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "item_id, location, quantity; model/substance solo los fija el Office"
// @Success      201   {object}  dto.MovementEventDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/scan [post]
func (h *ScanHandler) RegisterScan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ev, err := h.uc.Register(c.Context(), in)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementEventDTO{
		Timestamp: ev.FormatTimestamp(),
		ItemID:    ev.ItemID,
		Location:  ev.Location,
		Quantity:  ev.Quantity,
		Model:     ev.Model,
		Substance: ev.Substance,
	})
}

// StationPage sirve la página de escaneo fija a una estación.
// GET /station/:location
//
// La página decodifica el QR con la cámara (html5-qrcode) y envía el
// resultado a POST /api/scan con la location fija de la estación.
func (h *ScanHandler) StationPage(c *fiber.Ctx) error {
	location := c.Params("location")
	if _, ok := h.locations[location]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "estación desconocida"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return stationPageTmpl.Execute(c.Response().BodyWriter(), struct{ Location string }{Location: location})
}

// stationPageTmpl página de captura de las estaciones (QR por cámara +
// cantidad manual). Mismo flujo que el front original: decodificar, vibrar,
// enviar y recargar.
var stationPageTmpl = template.Must(template.New("station").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>QR Scanner</title>
  <script src="https://unpkg.com/html5-qrcode"></script>
</head>
<body>
  <h3>&#128247; Location: {{.Location}}</h3>

  <div id="reader" style="width:300px"></div>

  <input id="quantity" placeholder="Quantity" required>
  <button onclick="submitScan()">Submit</button>

  <script>
    let itemId = "";

    const qr = new Html5Qrcode("reader");
    qr.start(
      { facingMode: "environment" },
      { fps: 10, qrbox: 250 },
      decoded => {
        itemId = decoded;
        if (navigator.vibrate) navigator.vibrate(200);
        qr.stop();
      }
    );

    async function submitScan() {
      await fetch("/api/scan", {
        method: "POST",
        headers: {"Content-Type": "application/json"},
        body: JSON.stringify({
          item_id: itemId,
          location: {{.Location}},
          quantity: document.getElementById("quantity").value
        })
      });
      location.reload();
    }
  </script>
</body>
</html>
`))
