// Package labels contiene el caso de uso de emisión de etiquetas de orden de
// trabajo: genera identificadores con contador diario, pre-rellena los
// atributos desde el ledger y delega el PDF en el generador Maroto.
package labels

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	dtrace "github.com/jhoicas/Trazabilidad-api/internal/domain/trace"
)

const maxLabelsPerBatch = 50

// LabelData datos de una etiqueta individual: el QR codifica WorkOrderID.
type LabelData struct {
	WorkOrderID string
	Model       string
	Substance   string
	IssuedAt    time.Time
}

// LabelPDFGenerator puerto hacia la infraestructura de PDF.
type LabelPDFGenerator interface {
	GenerateLabelsPDF(ctx context.Context, batchID string, labels []LabelData) ([]byte, error)
}

// UseCase emisión de etiquetas.
type UseCase struct {
	ledger repository.LedgerRepository
	pdf    LabelPDFGenerator
	origin string
	clock  func() time.Time
}

// NewUseCase construye el caso de uso. clock nil usa time.Now.
func NewUseCase(ledger repository.LedgerRepository, pdf LabelPDFGenerator, origin string, clock func() time.Time) *UseCase {
	if clock == nil {
		clock = time.Now
	}
	if origin == "" {
		origin = entity.DefaultOriginLocation
	}
	return &UseCase{ledger: ledger, pdf: pdf, origin: origin, clock: clock}
}

// Generate produce el PDF del lote y sus metadatos.
//
// Con ItemID reimprime la etiqueta de ese ítem, pre-rellenando model/substance
// desde su último registro de origen (el valor del request solo se usa si el
// ledger no conoce el ítem). Sin ItemID emite Count órdenes de trabajo nuevas
// WO-YYYYMMDD-NNNN, continuando el contador diario observado en el ledger.
func (uc *UseCase) Generate(ctx context.Context, in dto.LabelRequest) ([]byte, *dto.LabelBatchDTO, error) {
	snap, err := uc.ledger.ReadAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := uc.clock()
	var toPrint []LabelData

	if in.ItemID != "" {
		model, substance := in.Model, in.Substance
		if origin, ok := dtrace.LatestOriginEvent(snap, in.ItemID, uc.origin); ok {
			model, substance = origin.Model, origin.Substance
		}
		if model == "" {
			model = entity.UnknownAttribute
		}
		if substance == "" {
			substance = entity.UnknownAttribute
		}
		toPrint = []LabelData{{WorkOrderID: in.ItemID, Model: model, Substance: substance, IssuedAt: now}}
	} else {
		count := in.Count
		if count <= 0 {
			count = 1
		}
		if count > maxLabelsPerBatch {
			return nil, nil, fmt.Errorf("%w: count=%d supera el máximo %d", domain.ErrInvalidInput, count, maxLabelsPerBatch)
		}
		if in.Model == "" || in.Substance == "" {
			return nil, nil, fmt.Errorf("%w: model y substance son obligatorios para órdenes nuevas", domain.ErrInvalidInput)
		}
		next := uc.nextSequence(snap, now)
		for i := 0; i < count; i++ {
			toPrint = append(toPrint, LabelData{
				WorkOrderID: fmt.Sprintf("WO-%s-%04d", now.Format("20060102"), next+i),
				Model:       in.Model,
				Substance:   in.Substance,
				IssuedAt:    now,
			})
		}
	}

	batch := &dto.LabelBatchDTO{BatchID: uuid.New().String()}
	for _, l := range toPrint {
		batch.WorkOrders = append(batch.WorkOrders, l.WorkOrderID)
	}

	pdf, err := uc.pdf.GenerateLabelsPDF(ctx, batch.BatchID, toPrint)
	if err != nil {
		return nil, nil, fmt.Errorf("generar PDF de etiquetas: %w", err)
	}
	return pdf, batch, nil
}

// nextSequence continúa el contador diario: 1 + órdenes de origen ya
// registradas hoy. No reserva el número en el ledger (la reserva real ocurre
// cuando el Office escanea la etiqueta); una colisión entre dos emisores
// simultáneos produce etiquetas duplicadas, igual que el contador manual que
// reemplaza.
func (uc *UseCase) nextSequence(snap entity.Snapshot, now time.Time) int {
	prefix := "WO-" + now.Format("20060102")
	seen := 0
	for _, ev := range snap {
		if ev.Location == uc.origin && len(ev.ItemID) >= len(prefix) && ev.ItemID[:len(prefix)] == prefix {
			seen++
		}
	}
	return seen + 1
}
