// Package pdf implementa la generación de etiquetas de orden de trabajo con
// Maroto v2.
//
// Layout de la página A4 (una etiqueta por fila):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + fecha de emisión + ID de lote              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  [QR orden]  │  N° Orden de Trabajo                          │
//	│              │  Model/Part No   |  Raw Mtrl Substance        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  [QR orden]  │  ...                                          │
//	└─────────────────────────────────────────────────────────────┘
//
// El QR codifica exactamente el WorkOrderID, que es lo que decodifican las
// cámaras de las estaciones.
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Trazabilidad-api/internal/application/labels"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// Ensure MarotoLabelGenerator implements labels.LabelPDFGenerator.
var _ labels.LabelPDFGenerator = (*MarotoLabelGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoLabelGenerator genera el PDF de un lote de etiquetas.
type MarotoLabelGenerator struct{}

// NewMarotoLabelGenerator construye el generador.
func NewMarotoLabelGenerator() *MarotoLabelGenerator { return &MarotoLabelGenerator{} }

// GenerateLabelsPDF genera el PDF y devuelve sus bytes.
func (g *MarotoLabelGenerator) GenerateLabelsPDF(_ context.Context, batchID string, toPrint []labels.LabelData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Etiquetas de Orden de Trabajo", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(batchID, toPrint))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	for _, l := range toPrint {
		m.AddRows(labelRow(l))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("maroto generate: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título del lote + fecha de emisión.
func headerRow(batchID string, toPrint []labels.LabelData) core.Row {
	issued := ""
	if len(toPrint) > 0 {
		issued = toPrint[0].IssuedAt.Format(entity.TimestampLayout)
	}
	return row.New(14).Add(
		col.New(7).Add(
			text.New("ETIQUETAS DE ORDEN DE TRABAJO", props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary,
			}),
			text.New(fmt.Sprintf("Lote: %s", batchID), props.Text{
				Size: 7, Color: colorGray, Top: 7,
			}),
		),
		col.New(5).Add(
			text.New("Emitido: "+issued, props.Text{Size: 8, Color: colorGray, Top: 2}),
			text.New(fmt.Sprintf("Etiquetas: %d", len(toPrint)), props.Text{Size: 8, Color: colorGray, Top: 6}),
		),
	)
}

// labelRow: QR de la orden + campos descriptivos.
func labelRow(l labels.LabelData) core.Row {
	return row.New(34).Add(
		col.New(3).Add(code.NewQr(l.WorkOrderID, props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Work Order No", props.Text{Size: 7, Color: colorGray, Top: 2}),
			text.New(l.WorkOrderID, props.Text{Style: fontstyle.Bold, Size: 13, Top: 5}),
			text.New("Model/Part No: "+l.Model, props.Text{Size: 9, Top: 14}),
			text.New("Raw Mtrl Substance: "+l.Substance, props.Text{Size: 9, Top: 20}),
			text.New("Emitida: "+l.IssuedAt.Format(entity.TimestampLayout), props.Text{
				Size: 7, Color: colorGray, Top: 27,
			}),
		),
	)
}
