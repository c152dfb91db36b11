package dto

// ScanRequest cuerpo de POST /api/scan. Las estaciones aguas abajo del origen
// pueden omitir model/substance: el store los hereda del último registro de
// origen del ítem. Quantity viaja como texto opaco; la interpretación numérica
// es del motor de consultas, no del store.
type ScanRequest struct {
	ItemID    string `json:"item_id"`
	Location  string `json:"location"`
	Quantity  string `json:"quantity"`
	Model     string `json:"model"`
	Substance string `json:"substance"`
}

// MovementEventDTO un evento del ledger tal como se expone por la API.
// Timestamp en el layout fijo del ledger (segundos, ancho fijo).
type MovementEventDTO struct {
	Timestamp string `json:"timestamp"`
	ItemID    string `json:"item_id"`
	Location  string `json:"location"`
	Quantity  string `json:"quantity"`
	Model     string `json:"model"`
	Substance string `json:"substance"`
}

// TraceQuery parámetros comunes de los endpoints del dashboard.
// item_id tiene prioridad absoluta sobre model; from/to en formato YYYY-MM-DD
// (to incluye el día completo).
type TraceQuery struct {
	ItemID string `query:"item_id"`
	Model  string `query:"model"`
	From   string `query:"from"`
	To     string `query:"to"`
}

// StatusDTO respuesta de GET /api/dashboard/status: el último avistamiento
// del objetivo, con la cantidad ya coaccionada a entero no negativo.
type StatusDTO struct {
	ItemID    string `json:"item_id"`
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"`
	Quantity  int64  `json:"quantity"`
	Model     string `json:"model"`
	Substance string `json:"substance"`
}

// LocationTotalDTO fila de la tabla ubicación × cantidad, en el orden
// configurado del proceso. Cero cubre tanto "sin eventos" como "suma cero";
// el front decide cómo renderizar cada caso.
type LocationTotalDTO struct {
	Location string `json:"location"`
	Quantity int64  `json:"quantity"`
}

// ItemSummaryDTO sub-agregación por ítem cuando el objetivo es un modelo.
type ItemSummaryDTO struct {
	ItemID       string             `json:"item_id"`
	LastLocation string             `json:"last_location"`
	Totals       []LocationTotalDTO `json:"totals"`
}

// TraceSummaryDTO respuesta de GET /api/dashboard/summary.
// Items solo se rellena cuando el filtro efectivo fue por modelo.
type TraceSummaryDTO struct {
	TotalEvents int                `json:"total_events"`
	Totals      []LocationTotalDTO `json:"totals"`
	Items       []ItemSummaryDTO   `json:"items,omitempty"`
}
