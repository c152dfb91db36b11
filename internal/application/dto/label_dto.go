package dto

// LabelRequest cuerpo de POST /api/labels.
//
// Con ItemID: reimprime la etiqueta de un ítem existente, pre-rellenando
// model/substance desde su último registro de origen en el ledger.
// Sin ItemID: emite Count órdenes de trabajo nuevas (contador diario) con el
// model/substance indicados.
type LabelRequest struct {
	ItemID    string `json:"item_id"`
	Model     string `json:"model"`
	Substance string `json:"substance"`
	Count     int    `json:"count"`
}

// LabelBatchDTO metadatos del lote generado; el PDF viaja aparte como bytes.
type LabelBatchDTO struct {
	BatchID    string   `json:"batch_id"`
	WorkOrders []string `json:"work_orders"`
}
